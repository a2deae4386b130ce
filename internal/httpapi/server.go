// Package httpapi exposes the calculation, timesheet, estimate and
// gamification operations as a JSON API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/fieldops/internal/cache"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/export"
	"github.com/joseph-ayodele/fieldops/internal/gamification"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
	gamesvc "github.com/joseph-ayodele/fieldops/internal/services/gamification"
	"github.com/joseph-ayodele/fieldops/internal/services/timesheet"
)

// Deps are the services behind the API.
type Deps struct {
	Timesheets   *timesheet.Service
	Estimates    *estimates.Service
	Gamification *gamesvc.Service
	Flags        *gamification.Flags
	Export       *export.Service
	Cache        *cache.Service
	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error
}

type Server struct {
	deps      Deps
	rateLimit common.RateLimitConfig
	logger    *slog.Logger
}

func NewServer(deps Deps, rateLimit common.RateLimitConfig, logger *slog.Logger) *Server {
	return &Server{deps: deps, rateLimit: rateLimit, logger: logger}
}

// Handler returns the routed API with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("POST /api/materials/calc", s.calculateMaterials)
	mux.HandleFunc("POST /api/weather/classify", s.classifyWeather)
	mux.HandleFunc("POST /api/weather/recommendation", s.recommendWindow)
	mux.HandleFunc("POST /api/geo/fences", s.checkFences)
	mux.HandleFunc("POST /api/geo/route", s.routeDistance)

	mux.HandleFunc("POST /api/employees", s.createEmployee)
	mux.HandleFunc("GET /api/employees/{id}", s.getEmployee)
	mux.HandleFunc("POST /api/timesheets", s.clockAction)
	mux.HandleFunc("GET /api/timesheets", s.listTimesheets)
	mux.HandleFunc("GET /api/timesheets/status", s.timesheetStatus)

	mux.HandleFunc("POST /api/estimates", s.createEstimate)
	mux.HandleFunc("GET /api/estimates", s.listEstimates)
	mux.HandleFunc("GET /api/estimates/{id}", s.getEstimate)

	mux.HandleFunc("GET /api/gamification/xp", s.getXP)
	mux.HandleFunc("POST /api/gamification/xp", s.awardXP)
	mux.HandleFunc("POST /api/gamification/jobs/complete", s.completeJob)
	mux.HandleFunc("GET /api/gamification/leaderboard", s.leaderboard)
	mux.HandleFunc("GET /api/flags", s.getFlags)
	mux.HandleFunc("PUT /api/flags", s.setFlags)

	mux.HandleFunc("GET /api/exports/timesheets.xlsx", s.exportTimesheets)
	mux.HandleFunc("GET /api/exports/estimates.xlsx", s.exportEstimates)

	return Chain(mux,
		RequestContext(s.logger),
		Recover(s.logger),
		AccessLog(s.logger),
		SecurityHeaders(),
		RateLimit(s.deps.Cache, s.rateLimit),
	)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			common.LoggerFromContext(r.Context(), s.logger).Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
