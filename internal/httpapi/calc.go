package httpapi

import (
	"net/http"

	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/materials"
	"github.com/joseph-ayodele/fieldops/internal/schema"
	"github.com/joseph-ayodele/fieldops/internal/utils"
	"github.com/joseph-ayodele/fieldops/internal/weather"
)

func (s *Server) calculateMaterials(w http.ResponseWriter, r *http.Request) {
	var req materials.Request
	if err := decode(w, r, schema.Materials, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, materials.Calculate(req))
}

func (s *Server) classifyWeather(w http.ResponseWriter, r *http.Request) {
	var sample weather.Sample
	if err := decode(w, r, schema.WeatherSample, &sample); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, weather.Classify(sample))
}

type forecastRequest struct {
	Forecast []weather.ForecastPoint `json:"forecast"`
}

type windowResponse struct {
	Window *weather.Window `json:"window"`
}

func (s *Server) recommendWindow(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := decode(w, r, schema.Forecast, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, windowResponse{Window: weather.RecommendWindow(req.Forecast)})
}

type fenceCheckRequest struct {
	Point  geo.Point   `json:"point"`
	Fences []geo.Fence `json:"fences"`
}

type fenceCheckResponse struct {
	Checks []geo.FenceCheck `json:"checks"`
}

func (s *Server) checkFences(w http.ResponseWriter, r *http.Request) {
	var req fenceCheckRequest
	if err := decode(w, r, schema.FenceCheck, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fenceCheckResponse{Checks: geo.CheckFences(req.Point, req.Fences)})
}

type routeRequest struct {
	Path []geo.Point `json:"path"`
}

type routeResponse struct {
	Legs  int     `json:"legs"`
	Miles float64 `json:"miles"`
}

func (s *Server) routeDistance(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decode(w, r, schema.Route, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resp := routeResponse{Miles: utils.Round2(geo.TotalDistanceMiles(req.Path))}
	if len(req.Path) > 1 {
		resp.Legs = len(req.Path) - 1
	}
	writeJSON(w, http.StatusOK, resp)
}
