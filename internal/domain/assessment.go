package domain

import "time"

// Hazard names a scored hazard family.
type Hazard string

const (
	HazardFlood     Hazard = "flood"
	HazardDrought   Hazard = "drought"
	HazardLandslide Hazard = "landslide"
)

// ParseHazard validates a hazard name.
func ParseHazard(s string) (Hazard, error) {
	switch h := Hazard(s); h {
	case HazardFlood, HazardDrought, HazardLandslide:
		return h, nil
	default:
		return "", ErrUnknownHazard
	}
}

// RiskLevel is a hazard-specific ordered category label.
type RiskLevel string

const (
	LevelNone     RiskLevel = "none"
	LevelMild     RiskLevel = "mild"
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelModerate RiskLevel = "moderate"
	LevelHigh     RiskLevel = "high"
	LevelSevere   RiskLevel = "severe"
	LevelVeryHigh RiskLevel = "very_high"
	LevelExtreme  RiskLevel = "extreme"
)

// Trend describes the direction a score is moving.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendUnknown    Trend = "unknown"
)

// ComponentScore is one capped contribution to a risk score.
type ComponentScore struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Missing bool    `json:"missing,omitempty"`
}

// RiskAssessment is the per-hazard result exposed to consumers.
type RiskAssessment struct {
	Hazard          Hazard           `json:"hazard"`
	Location        Location         `json:"location"`
	RiskScore       float64          `json:"risk_score"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Components      []ComponentScore `json:"components"`
	Warnings        []string         `json:"warnings"`
	Recommendations []string         `json:"recommendations"`
	Trend           Trend            `json:"trend"`
	DataQuality     DataQuality      `json:"data_quality"`
	AssessedAt      time.Time        `json:"assessed_at"`
	RequestID       string           `json:"request_id,omitempty"`
}
