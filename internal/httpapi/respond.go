package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string                   `json:"error"`
	Fields []common.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err with the status from common.HTTPStatus. Internal
// causes are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := common.HTTPStatus(err)
	body := errorBody{Error: common.PublicMessage(err)}
	var verrs common.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error = "validation failed"
		body.Fields = verrs
	}
	if status >= http.StatusInternalServerError {
		common.LoggerFromContext(r.Context(), logger).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, body)
}

// decode reads the body, checks it against s and decodes it into dst.
func decode(w http.ResponseWriter, r *http.Request, s *common.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.ValidationErrors{{Field: "(body)", Message: "request body too large"}}
		}
		return common.ValidationErrors{{Field: "(body)", Message: "unreadable request body"}}
	}
	return s.DecodeJSON(body, dst)
}

// actingEmployee returns the employee named by the X-Employee-ID header.
func actingEmployee(r *http.Request) (uuid.UUID, error) {
	return common.ParseUUIDField(HeaderEmployeeID, common.EmployeeIDFromContext(r.Context()))
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.ValidationErrors{{Field: "limit", Message: "must be a non-negative integer"}}
	}
	return n, nil
}

func optionalUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := common.ParseUUIDField(name, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
