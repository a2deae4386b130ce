// Package weather decides whether conditions allow asphalt work.
package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/fieldops/constants"
)

// Thresholds in °F and mph.
const (
	MinDelayTempF   = 40.0
	MaxDelayTempF   = 95.0
	MinCautionTempF = 50.0
	MaxCautionTempF = 85.0
	CloudyCoolTempF = 60.0
	MaxWindMph      = 15.0

	MaxWindowPrecipitationIn = 0.05
	WindowDuration           = 4 * time.Hour
)

// Sample is a single observation.
type Sample struct {
	TempF           float64 `json:"tempF"`
	PrecipitationIn float64 `json:"precipitationIn"`
	WindMph         float64 `json:"windMph"`
	Condition       string  `json:"condition"`
}

// Assessment is the classifier output.
type Assessment struct {
	Recommendation constants.WorkRecommendation `json:"recommendation"`
	Reasons        []string                     `json:"reasons"`
}

// Classify maps a sample to PROCEED, CAUTION or DELAY. Checks only ever make
// the recommendation stricter.
func Classify(s Sample) Assessment {
	a := Assessment{Recommendation: constants.RecommendProceed, Reasons: []string{}}
	cond := strings.ToLower(s.Condition)

	switch {
	case s.TempF < MinDelayTempF || s.TempF > MaxDelayTempF:
		a.raise(constants.RecommendDelay, fmt.Sprintf("temperature %.0f°F outside %.0f-%.0f°F", s.TempF, MinDelayTempF, MaxDelayTempF))
	case s.TempF < MinCautionTempF || s.TempF > MaxCautionTempF:
		a.raise(constants.RecommendCaution, fmt.Sprintf("temperature %.0f°F outside ideal %.0f-%.0f°F", s.TempF, MinCautionTempF, MaxCautionTempF))
	}

	switch {
	case strings.Contains(cond, "rain") || strings.Contains(cond, "storm"):
		a.raise(constants.RecommendDelay, "precipitation in conditions: "+s.Condition)
	case strings.Contains(cond, "cloud") && s.TempF < CloudyCoolTempF:
		a.raise(constants.RecommendCaution, "cloudy and cool, slow curing expected")
	}

	if s.WindMph > MaxWindMph && a.Recommendation == constants.RecommendProceed {
		a.raise(constants.RecommendCaution, fmt.Sprintf("wind %.0f mph above %.0f mph", s.WindMph, MaxWindMph))
	}
	return a
}

func (a *Assessment) raise(r constants.WorkRecommendation, reason string) {
	if r.Severity() > a.Recommendation.Severity() {
		a.Recommendation = r
	}
	a.Reasons = append(a.Reasons, reason)
}
