package risk

import "github.com/couchcryptid/climate-risk-engine/internal/domain"

// DroughtFactors are the inputs of ScoreDrought. Nil fields are unknown.
type DroughtFactors struct {
	// PrecipitationAnomaly is (recent − baseline) / baseline, so −0.75 means
	// a quarter of the expected rain fell.
	PrecipitationAnomaly *float64 `json:"precipitation_anomaly,omitempty"`
	TemperatureAnomaly   *float64 `json:"temperature_anomaly,omitempty"` // °C above the regional normal
	RecentRainfall       *float64 `json:"recent_rainfall,omitempty"`     // last 30 days, mm
}

var droughtAdvice = map[domain.RiskLevel][]string{
	domain.LevelExtreme: {
		"Follow mandatory water restrictions",
		"Prioritize drinking water and livestock supply",
		"Prepare for elevated wildfire danger",
	},
	domain.LevelSevere: {
		"Reduce non-essential water use",
		"Irrigate crops during the coolest hours",
	},
	domain.LevelModerate: {
		"Monitor soil moisture and reservoir levels",
		"Plan for possible water restrictions",
	},
	domain.LevelMild: {
		"Watch for continued dry conditions",
	},
	domain.LevelNone: {
		"No immediate action needed",
	},
}

// ScoreDrought scores real-time drought risk.
func ScoreDrought(f DroughtFactors) Result {
	var s scorecard
	if b, ok := s.score(droughtPrecipAnomaly, f.PrecipitationAnomaly); ok {
		s.warn(b, (1+*f.PrecipitationAnomaly)*100)
	}
	s.add(droughtTempAnomaly, f.TemperatureAnomaly)
	s.add(droughtRecentRainfall, f.RecentRainfall)
	return s.finish(domain.HazardDrought, droughtLevels, droughtAdvice)
}
