// Package history groups daily observations into calendar months across a
// multi-year window and scores each month for flood, drought and landslide
// risk.
//
// Long-term baselines (mean precipitation and temperature per calendar
// month) are computed over the whole window handed to the hazard functions,
// so the same month can score differently when the window length changes.
package history

import (
	"sort"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

// MonthlyAggregate summarizes one calendar month of observations.
type MonthlyAggregate struct {
	MonthKey    string   `json:"month_key"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Days        int      `json:"days"`
	AvgTemp     *float64 `json:"avg_temp,omitempty"`
	MaxTemp     *float64 `json:"max_temp,omitempty"`
	MinTemp     *float64 `json:"min_temp,omitempty"`
	AvgHumidity *float64 `json:"avg_humidity,omitempty"`
	TotalPrecip float64  `json:"total_precip"`
	PrecipDays  int      `json:"precip_days"` // days with a precipitation reading
	RainyDays   int      `json:"rainy_days"`

	MaxDailyPrecip float64 `json:"max_daily_precip"`
	HeavyDays      int     `json:"heavy_days"`
	ExtremeDays    int     `json:"extreme_days"`
	LongestDryRun  int     `json:"longest_dry_run"`
	Max3DayPrecip  float64 `json:"max_3day_precip"`
}

// bucket accumulates one month in a single pass.
type bucket struct {
	agg              MonthlyAggregate
	tempSum          float64
	tempN            int
	humSum           float64
	humN             int
	maxTemp, minTemp float64
	precip           []domain.Point
}

// AggregateMonthly groups observations by "YYYY-MM" and returns the months
// in chronological order. When years > 0 only the last `years` calendar
// years ending at the latest observation are kept.
func AggregateMonthly(observations []domain.DailyObservation, years int) []MonthlyAggregate {
	obs := make([]domain.DailyObservation, 0, len(observations))
	for _, o := range observations {
		if domain.ParseDate(o.Date).IsZero() {
			continue
		}
		obs = append(obs, o)
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date < obs[j].Date })
	if len(obs) == 0 {
		return []MonthlyAggregate{}
	}

	firstYear := 0
	if years > 0 {
		firstYear = domain.ParseDate(obs[len(obs)-1].Date).Year() - years + 1
	}

	buckets := make(map[string]*bucket)
	var keys []string
	for _, o := range obs {
		t := domain.ParseDate(o.Date)
		if t.Year() < firstYear {
			continue
		}
		key := domain.MonthKey(o.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{agg: MonthlyAggregate{MonthKey: key, Year: t.Year(), Month: int(t.Month())}}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.add(o)
	}

	sort.Strings(keys)
	out := make([]MonthlyAggregate, 0, len(keys))
	for _, key := range keys {
		out = append(out, buckets[key].finish())
	}
	return out
}

func (b *bucket) add(o domain.DailyObservation) {
	b.agg.Days++
	if o.Temperature != nil {
		v := *o.Temperature
		if b.tempN == 0 || v > b.maxTemp {
			b.maxTemp = v
		}
		if b.tempN == 0 || v < b.minTemp {
			b.minTemp = v
		}
		b.tempSum += v
		b.tempN++
	}
	if o.Humidity != nil {
		b.humSum += *o.Humidity
		b.humN++
	}
	if o.Precipitation != nil {
		b.precip = append(b.precip, domain.Point{Date: o.Date, Value: *o.Precipitation})
	}
}

func (b *bucket) finish() MonthlyAggregate {
	agg := b.agg
	if b.tempN > 0 {
		agg.AvgTemp = domain.Float(b.tempSum / float64(b.tempN))
		agg.MaxTemp = domain.Float(b.maxTemp)
		agg.MinTemp = domain.Float(b.minTemp)
	}
	if b.humN > 0 {
		agg.AvgHumidity = domain.Float(b.humSum / float64(b.humN))
	}

	agg.PrecipDays = len(b.precip)
	dryRun := 0
	for i, p := range b.precip {
		v := p.Value
		agg.TotalPrecip += v
		agg.MaxDailyPrecip = max(agg.MaxDailyPrecip, v)
		if v >= risk.RainyDayPrecip {
			agg.RainyDays++
		}
		if v >= risk.HeavyDayPrecip {
			agg.HeavyDays++
		}
		if v >= risk.ExtremeDayPrecip {
			agg.ExtremeDays++
		}

		// A missing day breaks a dry run.
		consecutive := i > 0 && domain.NextDay(b.precip[i-1].Date) == p.Date
		switch {
		case v >= risk.RainyDayPrecip:
			dryRun = 0
		case consecutive && dryRun > 0:
			dryRun++
		default:
			dryRun = 1
		}
		agg.LongestDryRun = max(agg.LongestDryRun, dryRun)

		agg.Max3DayPrecip = max(agg.Max3DayPrecip, trailing3Day(b.precip, i))
	}
	return agg
}

// trailing3Day sums the readings within the three calendar days ending at
// points[i].
func trailing3Day(points []domain.Point, i int) float64 {
	t := domain.ParseDate(points[i].Date)
	from := domain.FormatDate(t.AddDate(0, 0, -2))
	total := 0.0
	for j := i; j >= 0 && points[j].Date >= from; j-- {
		total += points[j].Value
	}
	return total
}

// calendarBaseline holds per-calendar-month means over a window.
type calendarBaseline struct {
	precip [13]float64
	temp   [13]*float64
}

func baselineOf(months []MonthlyAggregate) calendarBaseline {
	var (
		base               calendarBaseline
		precipSum, tempSum [13]float64
		precipN, tempN     [13]int
	)
	for _, m := range months {
		if m.Month < 1 || m.Month > 12 {
			continue
		}
		if m.PrecipDays > 0 {
			precipSum[m.Month] += m.TotalPrecip
			precipN[m.Month]++
		}
		if m.AvgTemp != nil {
			tempSum[m.Month] += *m.AvgTemp
			tempN[m.Month]++
		}
	}
	for month := 1; month <= 12; month++ {
		if precipN[month] > 0 {
			base.precip[month] = precipSum[month] / float64(precipN[month])
		}
		if tempN[month] > 0 {
			base.temp[month] = domain.Float(tempSum[month] / float64(tempN[month]))
		}
	}
	return base
}
