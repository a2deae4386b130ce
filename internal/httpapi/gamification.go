package httpapi

import (
	"net/http"

	"github.com/joseph-ayodele/fieldops/internal/gamification"
	"github.com/joseph-ayodele/fieldops/internal/schema"
)

type awardXPRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) getXP(w http.ResponseWriter, r *http.Request) {
	employeeID, err := actingEmployee(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	view, err := s.deps.Gamification.GetXP(r.Context(), employeeID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) awardXP(w http.ResponseWriter, r *http.Request) {
	employeeID, err := actingEmployee(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var req awardXPRequest
	if err := decode(w, r, schema.AwardXP, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	view, err := s.deps.Gamification.AwardXP(r.Context(), employeeID, req.Amount, req.Reason)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) completeJob(w http.ResponseWriter, r *http.Request) {
	employeeID, err := actingEmployee(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var outcome gamification.JobOutcome
	if err := decode(w, r, schema.JobCompletion, &outcome); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	res, err := s.deps.Gamification.CompleteJob(r.Context(), employeeID, outcome)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	status := http.StatusOK
	if res.Queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	board, err := s.deps.Gamification.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) getFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := s.deps.Flags.All(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

func (s *Server) setFlags(w http.ResponseWriter, r *http.Request) {
	updates := map[string]bool{}
	if err := decode(w, r, schema.FeatureFlags, &updates); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	flags, err := s.deps.Flags.Set(r.Context(), updates)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}
