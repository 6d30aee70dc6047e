package risk

import "github.com/couchcryptid/climate-risk-engine/internal/domain"

// FloodFactors are the inputs of ScoreFlood. Nil fields are unknown.
type FloodFactors struct {
	RecentRainfall   *float64 `json:"recent_rainfall,omitempty"`   // last 7 days, mm
	BaselineRainfall *float64 `json:"baseline_rainfall,omitempty"` // expected 7-day total, mm
	Elevation        *float64 `json:"elevation,omitempty"`         // m
	Slope            *float64 `json:"slope,omitempty"`             // degrees
}

// Anomaly returns recent rainfall as a multiple of the baseline, or nil when
// either is unknown or the baseline is not positive.
func (f FloodFactors) Anomaly() *float64 {
	if f.RecentRainfall == nil || f.BaselineRainfall == nil || *f.BaselineRainfall <= 0 {
		return nil
	}
	return domain.Float(*f.RecentRainfall / *f.BaselineRainfall)
}

var floodAdvice = map[domain.RiskLevel][]string{
	domain.LevelExtreme: {
		"Move to higher ground and avoid flood-prone areas",
		"Do not walk or drive through flood water",
		"Follow evacuation orders from local authorities",
	},
	domain.LevelHigh: {
		"Prepare an emergency kit and evacuation plan",
		"Move valuables above expected flood levels",
		"Monitor local flood warnings closely",
	},
	domain.LevelModerate: {
		"Clear drains and gutters around the property",
		"Stay informed about rainfall forecasts",
	},
	domain.LevelLow: {
		"No immediate action needed",
	},
}

// ScoreFlood scores flood risk from recent rainfall, its anomaly against the
// baseline, and terrain.
func ScoreFlood(f FloodFactors) Result {
	var s scorecard
	s.add(floodRainfall, f.RecentRainfall)
	s.add(floodAnomaly, f.Anomaly())
	s.add(floodElevation, f.Elevation)
	s.add(floodSlope, f.Slope)
	return s.finish(domain.HazardFlood, floodLevels, floodAdvice)
}
