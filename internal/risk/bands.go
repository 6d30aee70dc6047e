// Package risk scores flood, drought and landslide hazards from
// pre-computed factors.
//
// A score is the sum of independently capped components. Every component is
// looked up in a band table (the first band the factor reaches wins) so a
// component's weight is the upper bound of its contribution, not a
// coefficient. All band tables and level ladders live in this file; warnings
// and recommendations are derived from the same band hits and the same
// level ladder that produced the score.
package risk

import (
	"fmt"
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// direction says how a factor is compared against a band threshold.
type direction int

const (
	atLeast direction = iota // v >= threshold
	atMost                   // v <= threshold
	below                    // v < threshold
)

// band is one row of a component table. warn, when set, is a format string
// receiving the factor value.
type band struct {
	threshold float64
	score     float64
	warn      string
}

// table is an ordered band lookup for one component, most severe first.
type table struct {
	name   string
	weight float64
	dir    direction
	bands  []band
}

// lookup returns the first band the value reaches.
func (t table) lookup(v float64) (band, bool) {
	if math.IsNaN(v) {
		return band{}, false
	}
	for _, b := range t.bands {
		var hit bool
		switch t.dir {
		case atLeast:
			hit = v >= b.threshold
		case atMost:
			hit = v <= b.threshold
		case below:
			hit = v < b.threshold
		}
		if hit {
			return b, true
		}
	}
	return band{}, false
}

// rung is one step of a level ladder.
type rung struct {
	min   float64
	level domain.RiskLevel
}

// ladder maps a final score to a level, highest rung first. The last rung
// must have min 0.
type ladder []rung

func (l ladder) level(score float64) domain.RiskLevel {
	for _, r := range l {
		if score >= r.min {
			return r.level
		}
	}
	return l[len(l)-1].level
}

// top reports whether the level is the ladder's highest rung.
func (l ladder) top(level domain.RiskLevel) bool {
	return len(l) > 0 && l[0].level == level
}

// Flood component tables.
var (
	floodRainfall = table{name: "recent_rainfall", weight: 0.40, dir: atLeast, bands: []band{
		{150, 0.40, "Extreme rainfall: %.0f mm in the last 7 days"},
		{100, 0.30, "Heavy rainfall: %.0f mm in the last 7 days"},
		{50, 0.20, ""},
		{25, 0.10, ""},
	}}
	floodAnomaly = table{name: "rainfall_anomaly", weight: 0.30, dir: atLeast, bands: []band{
		{3.0, 0.30, "Rainfall is %.1fx the seasonal baseline"},
		{2.0, 0.20, "Rainfall is %.1fx the seasonal baseline"},
		{1.5, 0.10, ""},
	}}
	floodElevation = table{name: "elevation", weight: 0.15, dir: below, bands: []band{
		{10, 0.15, "Low-lying terrain: %.0f m elevation"},
		{50, 0.10, ""},
		{100, 0.05, ""},
	}}
	floodSlope = table{name: "slope", weight: 0.15, dir: below, bands: []band{
		{2, 0.15, ""},
		{5, 0.08, ""},
	}}

	floodLevels = ladder{
		{0.75, domain.LevelExtreme},
		{0.50, domain.LevelHigh},
		{0.25, domain.LevelModerate},
		{0, domain.LevelLow},
	}
)

// Drought component tables.
var (
	droughtPrecipAnomaly = table{name: "precipitation_anomaly", weight: 0.60, dir: atMost, bands: []band{
		{-0.75, 0.60, "Precipitation is %.0f%% of normal over the last 30 days"},
		{-0.50, 0.45, "Precipitation is %.0f%% of normal over the last 30 days"},
		{-0.25, 0.25, ""},
		{-0.10, 0.10, ""},
	}}
	droughtTempAnomaly = table{name: "temperature_anomaly", weight: 0.25, dir: atLeast, bands: []band{
		{5, 0.25, "Temperatures %.1f°C above the regional normal"},
		{3, 0.15, ""},
		{1, 0.05, ""},
	}}
	droughtRecentRainfall = table{name: "recent_rainfall", weight: 0.15, dir: below, bands: []band{
		{5, 0.15, "Only %.1f mm of rain in the last 30 days"},
		{15, 0.10, ""},
		{30, 0.05, ""},
	}}

	droughtLevels = ladder{
		{0.60, domain.LevelExtreme},
		{0.40, domain.LevelSevere},
		{0.25, domain.LevelModerate},
		{0.10, domain.LevelMild},
		{0, domain.LevelNone},
	}

	// droughtMonthlyLevels categorizes historical monthly drought scores.
	droughtMonthlyLevels = ladder{
		{0.75, domain.LevelExtreme},
		{0.50, domain.LevelHigh},
		{0.25, domain.LevelMedium},
		{0, domain.LevelLow},
	}
)

// Landslide component tables.
var (
	landslideSlope = table{name: "slope", weight: 0.35, dir: atLeast, bands: []band{
		{45, 0.35, "Very steep terrain: %.0f° slope"},
		{35, 0.28, "Steep terrain: %.0f° slope"},
		{25, 0.20, ""},
		{15, 0.10, ""},
		{5, 0.03, ""},
	}}
	// landslideAspectBonus is added for north-facing slopes, which hold
	// moisture longer. Slope plus aspect stays within the slope weight.
	landslideAspectBonus = 0.05

	landslideRain24h = table{name: "rainfall_24h", weight: 0.30, dir: atLeast, bands: []band{
		{100, 0.30, "Intense rainfall: %.0f mm in 24 hours"},
		{50, 0.20, ""},
		{25, 0.10, ""},
	}}
	landslideRain72h = table{name: "rainfall_72h", weight: 0.30, dir: atLeast, bands: []band{
		{150, 0.30, "Prolonged rainfall: %.0f mm in 72 hours"},
		{100, 0.20, ""},
		{50, 0.10, ""},
	}}
	landslideRain7d = table{name: "rainfall_7d", weight: 0.30, dir: atLeast, bands: []band{
		{200, 0.25, "Saturating rainfall: %.0f mm in 7 days"},
		{100, 0.15, ""},
	}}
	landslideSoil = table{name: "soil_moisture", weight: 0.15, dir: atLeast, bands: []band{
		{0.8, 0.15, "Saturated soil: %.2f volumetric moisture"},
		{0.6, 0.10, ""},
		{0.4, 0.05, ""},
	}}
	landslideVegetation = table{name: "vegetation", weight: 0.10, dir: below, bands: []band{
		{0.2, 0.10, "Sparse vegetation cover (NDVI %.2f)"},
		{0.4, 0.05, ""},
	}}
	landslideHistory = table{name: "historical_events", weight: 0.10, dir: atLeast, bands: []band{
		{10, 0.10, "%.0f landslides recorded nearby"},
		{5, 0.07, ""},
		{1, 0.04, ""},
	}}

	landslideLevels = ladder{
		{0.70, domain.LevelVeryHigh},
		{0.50, domain.LevelHigh},
		{0.30, domain.LevelModerate},
		{0, domain.LevelLow},
	}
)

// Monthly (historical) component tables. Factors come from one calendar
// month's own sub-series.
var (
	monthFloodExtremeDays = table{name: "extreme_days", weight: 0.40, dir: atLeast, bands: []band{
		{3, 0.40, ""},
		{1, 0.20, ""},
	}}
	monthFloodMaxDaily = table{name: "max_daily", weight: 0.30, dir: atLeast, bands: []band{
		{100, 0.30, ""},
		{50, 0.20, ""},
		{25, 0.10, ""},
	}}
	monthFloodTotalRatio = table{name: "total_ratio", weight: 0.30, dir: atLeast, bands: []band{
		{2.0, 0.30, ""},
		{1.5, 0.20, ""},
		{1.2, 0.10, ""},
	}}

	monthDroughtDeficit = table{name: "deficit_ratio", weight: 0.50, dir: atLeast, bands: []band{
		{0.75, 0.50, ""},
		{0.50, 0.35, ""},
		{0.25, 0.20, ""},
		{0.10, 0.10, ""},
	}}
	monthDroughtDryRun = table{name: "longest_dry_run", weight: 0.30, dir: atLeast, bands: []band{
		{25, 0.30, ""},
		{15, 0.20, ""},
		{10, 0.10, ""},
	}}
	monthDroughtHeat = table{name: "temperature_excess", weight: 0.20, dir: atLeast, bands: []band{
		{3, 0.20, ""},
		{1.5, 0.10, ""},
	}}

	monthLandslideMax3Day = table{name: "max_3day", weight: 0.35, dir: atLeast, bands: []band{
		{150, 0.35, ""},
		{100, 0.25, ""},
		{50, 0.15, ""},
	}}
	monthLandslideHeavyDays = table{name: "heavy_days", weight: 0.25, dir: atLeast, bands: []band{
		{5, 0.25, ""},
		{2, 0.15, ""},
	}}
	monthLandslideSlope = table{name: "slope", weight: 0.30, dir: atLeast, bands: []band{
		{35, 0.30, ""},
		{25, 0.20, ""},
		{15, 0.10, ""},
	}}
	monthLandslideRainyDays = table{name: "rainy_days", weight: 0.10, dir: atLeast, bands: []band{
		{20, 0.10, ""},
	}}
)

// Daily precipitation thresholds (mm) used when summarizing a month.
const (
	RainyDayPrecip   = 1.0
	HeavyDayPrecip   = 25.0
	ExtremeDayPrecip = 50.0
)

// Level functions exposed for callers that score outside this package.

// FloodLevel maps a flood score to its level.
func FloodLevel(score float64) domain.RiskLevel { return floodLevels.level(score) }

// DroughtLevel maps a real-time drought score to its level.
func DroughtLevel(score float64) domain.RiskLevel { return droughtLevels.level(score) }

// DroughtMonthlyLevel maps a historical monthly drought score to its category.
func DroughtMonthlyLevel(score float64) domain.RiskLevel { return droughtMonthlyLevels.level(score) }

// LandslideLevel maps a landslide score to its level.
func LandslideLevel(score float64) domain.RiskLevel { return landslideLevels.level(score) }

// trendThreshold is the score change below which a trend is stable.
const trendThreshold = 0.05

// CompareTrend classifies the movement from an earlier score to the current one.
func CompareTrend(previous, current float64) domain.Trend {
	switch d := current - previous; {
	case math.IsNaN(d):
		return domain.TrendUnknown
	case d >= trendThreshold:
		return domain.TrendIncreasing
	case d <= -trendThreshold:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// round4 removes float noise before a score is compared against a ladder.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func warning(format string, v float64) string {
	return fmt.Sprintf(format, v)
}
