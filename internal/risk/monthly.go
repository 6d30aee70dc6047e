package risk

import "github.com/couchcryptid/climate-risk-engine/internal/domain"

// MonthlyFloodFactors summarize one month for ScoreFloodMonth.
type MonthlyFloodFactors struct {
	ExtremeDays   int     // days with at least ExtremeDayPrecip
	MaxDaily      float64 // mm
	Total         float64 // mm
	BaselineTotal float64 // mean total of the same calendar month over the window, mm
}

// MonthlyDroughtFactors summarize one month for ScoreDroughtMonth.
type MonthlyDroughtFactors struct {
	Total         float64
	BaselineTotal float64
	LongestDryRun int      // consecutive days below RainyDayPrecip
	TempExcess    *float64 // mean temperature above the calendar-month mean, °C
}

// MonthlyLandslideFactors summarize one month for ScoreLandslideMonth.
type MonthlyLandslideFactors struct {
	Max3Day   float64 // largest 3-day total, mm
	HeavyDays int     // days with at least HeavyDayPrecip
	RainyDays int
	Slope     *float64
}

// ScoreFloodMonth scores one historical month for flooding.
func ScoreFloodMonth(f MonthlyFloodFactors) (float64, domain.RiskLevel) {
	var ratio *float64
	if f.BaselineTotal > 0 {
		ratio = domain.Float(f.Total / f.BaselineTotal)
	}
	score := monthScore(
		part(monthFloodExtremeDays, domain.Float(float64(f.ExtremeDays))),
		part(monthFloodMaxDaily, domain.Float(f.MaxDaily)),
		part(monthFloodTotalRatio, ratio),
	)
	return score, floodLevels.level(score)
}

// ScoreDroughtMonth scores one historical month for drought using the
// historical category set.
func ScoreDroughtMonth(f MonthlyDroughtFactors) (float64, domain.RiskLevel) {
	var deficit *float64
	if f.BaselineTotal > 0 {
		deficit = domain.Float((f.BaselineTotal - f.Total) / f.BaselineTotal)
	}
	score := monthScore(
		part(monthDroughtDeficit, deficit),
		part(monthDroughtDryRun, domain.Float(float64(f.LongestDryRun))),
		part(monthDroughtHeat, f.TempExcess),
	)
	return score, droughtMonthlyLevels.level(score)
}

// ScoreLandslideMonth scores one historical month for landslides.
func ScoreLandslideMonth(f MonthlyLandslideFactors) (float64, domain.RiskLevel) {
	score := monthScore(
		part(monthLandslideMax3Day, domain.Float(f.Max3Day)),
		part(monthLandslideHeavyDays, domain.Float(float64(f.HeavyDays))),
		part(monthLandslideSlope, f.Slope),
		part(monthLandslideRainyDays, domain.Float(float64(f.RainyDays))),
	)
	return score, landslideLevels.level(score)
}

func part(t table, v *float64) float64 {
	if v == nil {
		return 0
	}
	b, _ := t.lookup(*v)
	return min(b.score, t.weight)
}

func monthScore(parts ...float64) float64 {
	var total float64
	for _, p := range parts {
		total += p
	}
	return round4(clamp01(total))
}
