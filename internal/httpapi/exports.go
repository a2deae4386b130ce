package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportTimesheets(w http.ResponseWriter, r *http.Request) {
	employeeID, err := optionalUUID(r, "employeeId")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	from, err := optionalDate(r, "from")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	to, err := optionalDate(r, "to")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	b, err := s.deps.Export.TimesheetsXLSX(r.Context(), employeeID, from, to)
	if err != nil {
		writeError(w, r, s.logger, common.InternalError("failed to export timesheets", err))
		return
	}
	writeXLSX(w, "timesheets.xlsx", b)
}

func (s *Server) exportEstimates(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Export.EstimatesXLSX(r.Context())
	if err != nil {
		writeError(w, r, s.logger, common.InternalError("failed to export estimates", err))
		return
	}
	writeXLSX(w, "estimates.xlsx", b)
}

func writeXLSX(w http.ResponseWriter, name string, b []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func optionalDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseYMD(raw)
	if err != nil {
		return nil, common.ValidationErrors{{Field: name, Message: "must be a YYYY-MM-DD date"}}
	}
	return &t, nil
}
