package history

import (
	"sort"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

// HazardMonth is a monthly aggregate with its hazard score attached.
type HazardMonth struct {
	MonthlyAggregate
	Hazard    domain.Hazard    `json:"hazard"`
	RiskScore float64          `json:"risk_score"`
	RiskLevel domain.RiskLevel `json:"risk_level"`
}

// FloodHistory scores every month for flooding against the window's
// calendar-month precipitation baseline.
func FloodHistory(months []MonthlyAggregate) []HazardMonth {
	base := baselineOf(months)
	out := make([]HazardMonth, 0, len(months))
	for _, m := range months {
		score, level := risk.ScoreFloodMonth(risk.MonthlyFloodFactors{
			ExtremeDays:   m.ExtremeDays,
			MaxDaily:      m.MaxDailyPrecip,
			Total:         m.TotalPrecip,
			BaselineTotal: base.precip[m.Month],
		})
		out = append(out, HazardMonth{MonthlyAggregate: m, Hazard: domain.HazardFlood, RiskScore: score, RiskLevel: level})
	}
	return out
}

// DroughtHistory scores every month for drought against the window's
// calendar-month precipitation and temperature baselines.
func DroughtHistory(months []MonthlyAggregate) []HazardMonth {
	base := baselineOf(months)
	out := make([]HazardMonth, 0, len(months))
	for _, m := range months {
		f := risk.MonthlyDroughtFactors{
			Total:         m.TotalPrecip,
			BaselineTotal: base.precip[m.Month],
			LongestDryRun: m.LongestDryRun,
		}
		if m.PrecipDays == 0 {
			// No readings is not a deficit.
			f.BaselineTotal = 0
		}
		if m.AvgTemp != nil && base.temp[m.Month] != nil {
			f.TempExcess = domain.Float(*m.AvgTemp - *base.temp[m.Month])
		}
		score, level := risk.ScoreDroughtMonth(f)
		out = append(out, HazardMonth{MonthlyAggregate: m, Hazard: domain.HazardDrought, RiskScore: score, RiskLevel: level})
	}
	return out
}

// LandslideHistory scores every month for landslides. slope is the static
// terrain slope in degrees and may be nil.
func LandslideHistory(months []MonthlyAggregate, slope *float64) []HazardMonth {
	out := make([]HazardMonth, 0, len(months))
	for _, m := range months {
		score, level := risk.ScoreLandslideMonth(risk.MonthlyLandslideFactors{
			Max3Day:   m.Max3DayPrecip,
			HeavyDays: m.HeavyDays,
			RainyDays: m.RainyDays,
			Slope:     slope,
		})
		out = append(out, HazardMonth{MonthlyAggregate: m, Hazard: domain.HazardLandslide, RiskScore: score, RiskLevel: level})
	}
	return out
}

// SeasonalPattern is the mean score of each calendar month over a window.
type SeasonalPattern struct {
	// MonthlyMean is indexed by calendar month; index 0 is unused.
	MonthlyMean [13]float64 `json:"-"`
	Months      []MonthMean `json:"months"`
	PeakMonths  []int       `json:"peak_months"`
}

// MonthMean is one calendar month of a SeasonalPattern.
type MonthMean struct {
	Month   int     `json:"month"`
	Mean    float64 `json:"mean"`
	Samples int     `json:"samples"`
}

// peakMonthCount is how many of the highest-scoring months are reported.
const peakMonthCount = 3

// Seasonal computes the per-calendar-month mean score and the peak months.
func Seasonal(records []HazardMonth) SeasonalPattern {
	var (
		sums [13]float64
		n    [13]int
		p    SeasonalPattern
	)
	for _, r := range records {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		sums[r.Month] += r.RiskScore
		n[r.Month]++
	}

	p.Months = []MonthMean{}
	for month := 1; month <= 12; month++ {
		if n[month] == 0 {
			continue
		}
		p.MonthlyMean[month] = sums[month] / float64(n[month])
		p.Months = append(p.Months, MonthMean{Month: month, Mean: p.MonthlyMean[month], Samples: n[month]})
	}

	ranked := make([]MonthMean, 0, len(p.Months))
	for _, m := range p.Months {
		if m.Mean > 0 {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Mean > ranked[j].Mean })
	p.PeakMonths = []int{}
	for i := 0; i < len(ranked) && i < peakMonthCount; i++ {
		p.PeakMonths = append(p.PeakMonths, ranked[i].Month)
	}
	return p
}

// trendSlope is the yearly change in mean score below which a trend is stable.
const trendSlope = 0.01

// Trend fits a least-squares line through the yearly mean scores.
// Fewer than two years gives TrendUnknown.
func Trend(records []HazardMonth) domain.Trend {
	slope, ok := yearlySlope(records)
	if !ok {
		return domain.TrendUnknown
	}

	switch {
	case slope > trendSlope:
		return domain.TrendIncreasing
	case slope < -trendSlope:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// yearlySlope returns the least-squares slope of the yearly mean scores.
func yearlySlope(records []HazardMonth) (float64, bool) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range records {
		sums[r.Year] += r.RiskScore
		counts[r.Year]++
	}
	if len(sums) < 2 {
		return 0, false
	}

	years := make([]int, 0, len(sums))
	for year := range sums {
		years = append(years, year)
	}
	sort.Ints(years)

	// Summed in year order so equal inputs give a bit-identical slope.
	var sx, sy, sxx, sxy float64
	for _, year := range years {
		x := float64(year - years[0])
		y := sums[year] / float64(counts[year])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	n := float64(len(years))
	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0, false
	}
	return (n*sxy - sx*sy) / denom, true
}

// Analysis is a complete historical view of one hazard at one location.
type Analysis struct {
	Hazard    domain.Hazard   `json:"hazard"`
	Location  domain.Location `json:"location"`
	Years     int             `json:"years"`
	Months    []HazardMonth   `json:"months"`
	Seasonal  SeasonalPattern `json:"seasonal"`
	Trend     domain.Trend    `json:"trend"`
	MeanScore float64         `json:"mean_score"`
	Peak      *HazardMonth    `json:"peak,omitempty"`
}

// Analyze aggregates observations over the window and scores the hazard.
func Analyze(hazard domain.Hazard, observations []domain.DailyObservation, years int, terrain *domain.Terrain) (Analysis, error) {
	months := AggregateMonthly(observations, years)

	var records []HazardMonth
	switch hazard {
	case domain.HazardFlood:
		records = FloodHistory(months)
	case domain.HazardDrought:
		records = DroughtHistory(months)
	case domain.HazardLandslide:
		var slope *float64
		if terrain != nil {
			slope = domain.Float(terrain.Slope)
		}
		records = LandslideHistory(months, slope)
	default:
		return Analysis{}, domain.ErrUnknownHazard
	}

	a := Analysis{
		Hazard:   hazard,
		Years:    years,
		Months:   records,
		Seasonal: Seasonal(records),
		Trend:    Trend(records),
	}
	var total float64
	for i := range records {
		total += records[i].RiskScore
		if a.Peak == nil || records[i].RiskScore > a.Peak.RiskScore {
			a.Peak = &records[i]
		}
	}
	if len(records) > 0 {
		a.MeanScore = total / float64(len(records))
	}
	return a, nil
}
