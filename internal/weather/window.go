package weather

import "time"

// ForecastPoint is one forecast slot.
type ForecastPoint struct {
	Time            time.Time `json:"time"`
	PrecipitationIn float64   `json:"precipitationIn"`
	TempF           float64   `json:"tempF"`
	WindMph         float64   `json:"windMph"`
}

// Window is a recommended work slot.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Suitable reports whether p allows work.
func (p ForecastPoint) Suitable() bool {
	return p.PrecipitationIn <= MaxWindowPrecipitationIn && p.TempF >= MinCautionTempF && p.WindMph <= MaxWindMph
}

// RecommendWindow returns a fixed-length window starting at the first
// suitable point in forecast order, or nil when none qualifies.
func RecommendWindow(forecast []ForecastPoint) *Window {
	for _, p := range forecast {
		if p.Suitable() {
			return &Window{Start: p.Time, End: p.Time.Add(WindowDuration)}
		}
	}
	return nil
}
