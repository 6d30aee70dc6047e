package events

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// HeatWaveThresholds configures DetectHeatWaves over daily temperature (°C).
type HeatWaveThresholds struct {
	Options
	Temperature float64 // a day is hot when temp >= Temperature
	MinDuration int     // consecutive hot days required
}

// ColdWaveThresholds configures DetectColdWaves over daily temperature (°C).
type ColdWaveThresholds struct {
	Options
	Temperature float64 // a day is cold when temp <= Temperature
	MinDuration int
}

// DroughtThresholds configures DetectDroughts over daily precipitation (mm).
type DroughtThresholds struct {
	Options
	DryDay        float64 // a day is dry when precip < DryDay
	ExpectedDaily float64 // baseline daily precipitation the deficit is measured against
	MinDeficit    float64 // accumulated shortfall required to emit
}

// FloodThresholds configures DetectFloods over daily precipitation (mm).
type FloodThresholds struct {
	Options
	HeavyRain float64 // a day is heavy when precip >= HeavyRain
	MinTotal  float64 // cumulative precipitation required to emit
}

// StormThresholds configures DetectStorms over daily wind speed (m/s).
type StormThresholds struct {
	Options
	WindSpeed   float64
	MinDuration int
}

// Defaults for each detector.
var (
	DefaultHeatWave = HeatWaveThresholds{Temperature: 35, MinDuration: 3}
	DefaultColdWave = ColdWaveThresholds{Temperature: -5, MinDuration: 3}
	DefaultDrought  = DroughtThresholds{DryDay: 1, ExpectedDaily: 2, MinDeficit: 30}
	DefaultFlood    = FloodThresholds{HeavyRain: 20, MinTotal: 50}
	DefaultStorm    = StormThresholds{WindSpeed: 10, MinDuration: 1}
)

// Intensity reference scales: the excess at which the magnitude share saturates.
const (
	temperatureExcessScale = 10.0 // °C beyond the threshold
	droughtDeficitScale    = 4.0  // multiples of MinDeficit
	droughtDurationScale   = 90.0 // days
	stormDurationScale     = 3.0  // days
)

// DetectHeatWaves emits runs of at least MinDuration consecutive days at or
// above the temperature threshold.
func DetectHeatWaves(points []domain.Point, th HeatWaveThresholds) []domain.DetectedEvent {
	return detector{
		eventType: domain.EventHeatWave,
		holds:     func(v float64) bool { return v >= th.Temperature },
		closes:    func(r *run) bool { return r.days >= th.MinDuration },
		finish: func(r *run, e *domain.DetectedEvent) {
			e.Intensity = 0.6*ratio(r.max-th.Temperature, temperatureExcessScale) +
				0.4*ratio(float64(r.days), float64(3*max(th.MinDuration, 1)))
		},
	}.scan(points, th.Options)
}

// DetectColdWaves emits runs of at least MinDuration consecutive days at or
// below the temperature threshold.
func DetectColdWaves(points []domain.Point, th ColdWaveThresholds) []domain.DetectedEvent {
	return detector{
		eventType: domain.EventColdWave,
		holds:     func(v float64) bool { return v <= th.Temperature },
		closes:    func(r *run) bool { return r.days >= th.MinDuration },
		finish: func(r *run, e *domain.DetectedEvent) {
			e.PeakDate = r.minDate
			e.Intensity = 0.6*ratio(th.Temperature-r.min, temperatureExcessScale) +
				0.4*ratio(float64(r.days), float64(3*max(th.MinDuration, 1)))
		},
	}.scan(points, th.Options)
}

// DetectDroughts emits dry spells whose accumulated shortfall against the
// expected daily precipitation reaches MinDeficit.
func DetectDroughts(points []domain.Point, th DroughtThresholds) []domain.DetectedEvent {
	return detector{
		eventType: domain.EventDrought,
		holds:     func(v float64) bool { return v < th.DryDay },
		fold: func(r *run, p domain.Point) {
			r.deficit += math.Max(0, th.ExpectedDaily-p.Value)
		},
		closes: func(r *run) bool { return r.deficit > 0 && r.deficit >= th.MinDeficit },
		finish: func(r *run, e *domain.DetectedEvent) {
			e.Deficit = r.deficit
			e.PeakDate = ""
			e.Intensity = 0.7*ratio(r.deficit, droughtDeficitScale*th.MinDeficit) +
				0.3*ratio(float64(r.days), droughtDurationScale)
		},
	}.scan(points, th.Options)
}

// DetectFloods emits runs of heavy-rain days whose cumulative precipitation
// reaches MinTotal. Intensity follows the coarse return period.
func DetectFloods(points []domain.Point, th FloodThresholds) []domain.DetectedEvent {
	return detector{
		eventType: domain.EventFlood,
		holds:     func(v float64) bool { return v >= th.HeavyRain },
		closes:    func(r *run) bool { return r.sum >= th.MinTotal },
		finish: func(r *run, e *domain.DetectedEvent) {
			e.Total = r.sum
			e.ReturnPeriod = ReturnPeriod(r.sum)
			e.Intensity = returnPeriodIntensity(e.ReturnPeriod)
		},
	}.scan(points, th.Options)
}

// DetectStorms emits runs of windy days at or above the wind threshold.
func DetectStorms(points []domain.Point, th StormThresholds) []domain.DetectedEvent {
	return detector{
		eventType: domain.EventStorm,
		holds:     func(v float64) bool { return v >= th.WindSpeed },
		closes:    func(r *run) bool { return r.days >= th.MinDuration },
		finish: func(r *run, e *domain.DetectedEvent) {
			e.Intensity = 0.8*ratio(r.max-th.WindSpeed, th.WindSpeed) +
				0.2*ratio(float64(r.days), stormDurationScale)
		},
	}.scan(points, th.Options)
}

// returnPeriods maps cumulative precipitation (mm) to an approximate
// recurrence interval in years, highest first. This is a coarse lookup, not a
// frequency analysis.
var returnPeriods = []struct {
	minTotal float64
	years    int
}{
	{250, 100},
	{200, 50},
	{150, 25},
	{100, 10},
	{75, 5},
}

// ReturnPeriod estimates the recurrence interval in years of a flood with the
// given cumulative precipitation.
func ReturnPeriod(total float64) int {
	for _, rp := range returnPeriods {
		if total >= rp.minTotal {
			return rp.years
		}
	}
	return 2
}

func returnPeriodIntensity(years int) float64 {
	switch {
	case years >= 100:
		return 1.0
	case years >= 50:
		return 0.85
	case years >= 25:
		return 0.7
	case years >= 10:
		return 0.55
	case years >= 5:
		return 0.4
	default:
		return 0.2
	}
}
