package httpapi

import (
	"net/http"

	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/schema"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
)

type createEstimateResponse struct {
	Estimate  *entity.Estimate         `json:"estimate"`
	Breakdown entity.EstimateBreakdown `json:"breakdown"`
}

func (s *Server) createEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimates.CreateRequest
	if err := decode(w, r, schema.Estimate, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	est, err := s.deps.Estimates.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createEstimateResponse{Estimate: est, Breakdown: est.Breakdown})
}

func (s *Server) listEstimates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	list, err := s.deps.Estimates.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUUIDField("id", r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	est, err := s.deps.Estimates.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}
