package httpapi

import (
	"net/http"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/schema"
	"github.com/joseph-ayodele/fieldops/internal/services/timesheet"
)

type clockActionRequest struct {
	Action    constants.ClockAction `json:"action"`
	Latitude  float64               `json:"latitude"`
	Longitude float64               `json:"longitude"`
	JobID     string                `json:"jobId"`
	Notes     string                `json:"notes"`
}

func (s *Server) clockAction(w http.ResponseWriter, r *http.Request) {
	employeeID, err := actingEmployee(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var req clockActionRequest
	if err := decode(w, r, schema.ClockAction, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	res, err := s.deps.Timesheets.Clock(r.Context(), timesheet.ClockRequest{
		EmployeeID: employeeID,
		Action:     req.Action,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		JobID:      req.JobID,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	status := http.StatusOK
	if req.Action == constants.ClockIn {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (s *Server) listTimesheets(w http.ResponseWriter, r *http.Request) {
	employeeID, err := optionalUUID(r, "employeeId")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	list, err := s.deps.Timesheets.List(r.Context(), employeeID, limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) timesheetStatus(w http.ResponseWriter, r *http.Request) {
	employeeID, err := actingEmployee(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	st, err := s.deps.Timesheets.Status(r.Context(), employeeID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req timesheet.CreateEmployeeRequest
	if err := decode(w, r, schema.Employee, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	emp, err := s.deps.Timesheets.CreateEmployee(r.Context(), req)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUUIDField("id", r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	emp, err := s.deps.Timesheets.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}
