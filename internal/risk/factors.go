package risk

import "github.com/couchcryptid/climate-risk-engine/internal/domain"

// Factor windows, in calendar days.
const (
	FloodRecentDays    = 7
	DroughtRecentDays  = 30
	DroughtBaseline    = 60
	LandslideShortDays = 3
)

// FloodFactorsFrom derives flood factors from daily precipitation as of the
// given date (the last observed day when asOf is empty). The baseline is the
// mean 7-day total over every earlier day in the series.
func FloodFactorsFrom(precip []domain.Point, terrain *domain.Terrain, asOf string) FloodFactors {
	var f FloodFactors
	if terrain != nil {
		f.Elevation = domain.Float(terrain.Elevation)
		f.Slope = domain.Float(terrain.Slope)
	}

	end := endDate(precip, asOf)
	if end == "" {
		return f
	}
	recent := window(precip, end, FloodRecentDays)
	if len(recent) == 0 {
		return f
	}
	f.RecentRainfall = domain.Float(sum(recent))

	before := domain.Between(precip, "", dayBefore(recent[0].Date))
	if len(before) >= FloodRecentDays {
		f.BaselineRainfall = domain.Float(sum(before) / float64(len(before)) * FloodRecentDays)
	}
	return f
}

// DroughtFactorsFrom derives drought factors from daily precipitation and
// mean temperature as of the given date. The precipitation anomaly compares
// the mean daily rain of the last 30 days with the 60 days before them.
func DroughtFactorsFrom(precip, temp []domain.Point, regionalNormal float64, asOf string) DroughtFactors {
	var f DroughtFactors
	asOf = reference(asOf, precip, temp)

	if end := endDate(precip, asOf); end != "" {
		recent := window(precip, end, DroughtRecentDays)
		if len(recent) > 0 {
			f.RecentRainfall = domain.Float(sum(recent))
			baseline := window(precip, dayBefore(domain.FormatDate(
				domain.ParseDate(end).AddDate(0, 0, -(DroughtRecentDays-1)))), DroughtBaseline)
			if len(baseline) > 0 {
				expected := sum(baseline) / float64(len(baseline))
				if expected > 0 {
					actual := sum(recent) / float64(len(recent))
					f.PrecipitationAnomaly = domain.Float((actual - expected) / expected)
				}
			}
		}
	}

	if end := endDate(temp, asOf); end != "" {
		if recent := window(temp, end, DroughtRecentDays); len(recent) > 0 {
			f.TemperatureAnomaly = domain.Float(sum(recent)/float64(len(recent)) - regionalNormal)
		}
	}
	return f
}

// LandslideFactorsFrom derives landslide factors from daily precipitation,
// soil moisture and terrain as of the given date. ndvi and events are
// optional static factors.
func LandslideFactorsFrom(precip, soil []domain.Point, terrain *domain.Terrain, ndvi *float64, events *int, asOf string) LandslideFactors {
	f := LandslideFactors{NDVI: ndvi, HistoricalEvents: events}
	if terrain != nil {
		f.Slope = domain.Float(terrain.Slope)
		f.Aspect = terrain.Aspect
	}
	asOf = reference(asOf, precip, soil)

	if end := endDate(precip, asOf); end != "" {
		if day := window(precip, end, 1); len(day) > 0 {
			f.Rainfall24h = domain.Float(sum(day))
		}
		if short := window(precip, end, LandslideShortDays); len(short) > 0 {
			f.Rainfall72h = domain.Float(sum(short))
		}
		if week := window(precip, end, FloodRecentDays); len(week) > 0 {
			f.Rainfall7d = domain.Float(sum(week))
		}
	}

	if end := endDate(soil, asOf); end != "" {
		if latest := window(soil, end, 1); len(latest) > 0 {
			f.SoilMoisture = domain.Float(latest[0].Value)
		}
	}
	return f
}

// reference is asOf, or the latest last date across the series when asOf is
// empty, so every window of one assessment ends on the same day.
func reference(asOf string, series ...[]domain.Point) string {
	if asOf != "" {
		return asOf
	}
	for _, points := range series {
		if len(points) > 0 && points[len(points)-1].Date > asOf {
			asOf = points[len(points)-1].Date
		}
	}
	return asOf
}

// endDate is asOf, or the last point's date when asOf is empty.
func endDate(points []domain.Point, asOf string) string {
	if asOf != "" {
		return asOf
	}
	if len(points) == 0 {
		return ""
	}
	return points[len(points)-1].Date
}

// window returns the points within the `days` calendar days ending at end.
func window(points []domain.Point, end string, days int) []domain.Point {
	t := domain.ParseDate(end)
	if t.IsZero() || days <= 0 {
		return nil
	}
	from := domain.FormatDate(t.AddDate(0, 0, -(days - 1)))
	return domain.Between(points, from, end)
}

func dayBefore(date string) string {
	t := domain.ParseDate(date)
	if t.IsZero() {
		return ""
	}
	return domain.FormatDate(t.AddDate(0, 0, -1))
}

func sum(points []domain.Point) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}
