package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType names a family of extreme-weather events.
type EventType string

const (
	EventHeatWave EventType = "heat_wave"
	EventColdWave EventType = "cold_wave"
	EventDrought  EventType = "drought"
	EventFlood    EventType = "flood"
	EventStorm    EventType = "storm"
)

// Severity is the four-level event severity derived from intensity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityExtreme  Severity = "extreme"
)

// SeverityFromIntensity maps an intensity in [0,1] to a severity:
// ≥0.8 extreme, ≥0.6 high, ≥0.4 moderate, else low.
func SeverityFromIntensity(intensity float64) Severity {
	switch {
	case intensity >= 0.8:
		return SeverityExtreme
	case intensity >= 0.6:
		return SeverityHigh
	case intensity >= 0.4:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// DetectedEvent is a closed run of days satisfying a hazard predicate.
type DetectedEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Duration  int       `json:"duration"`
	Intensity float64   `json:"intensity"`

	// Ongoing is set when the run was still open at the end of the series.
	Ongoing bool `json:"ongoing,omitempty"`

	// Type-specific measurements. Units follow the scanned parameter.
	MaxValue     float64 `json:"max_value,omitempty"`
	MinValue     float64 `json:"min_value,omitempty"`
	MeanValue    float64 `json:"mean_value,omitempty"`
	PeakDate     string  `json:"peak_date,omitempty"`
	Total        float64 `json:"total,omitempty"`   // flood: cumulative precipitation
	Deficit      float64 `json:"deficit,omitempty"` // drought: accumulated shortfall
	ReturnPeriod int     `json:"return_period,omitempty"`
}

// eventNamespace scopes event IDs so they never collide with other v5 UUIDs.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:climate-risk-engine:event"))

// EventID produces a deterministic ID from the event's identifying fields.
func EventID(eventType EventType, start, end string) string {
	name := fmt.Sprintf("%s|%s|%s", eventType, start, end)
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}
