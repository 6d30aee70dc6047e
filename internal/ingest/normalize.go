// Package ingest turns heterogeneous upstream per-parameter responses into
// uniform, ordered, sentinel-free series.
//
// Upstream failures never reach the calculators as errors: a failed or timed
// out fetch becomes an empty series tagged upstream_failure, and a location
// without data becomes an empty series tagged no_data.
package ingest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Fetcher retrieves one parameter's raw daily values for a location. Keys
// are calendar days in YYYY-MM-DD or compact YYYYMMDD form.
type Fetcher interface {
	FetchSeries(ctx context.Context, param domain.Parameter, loc domain.Location, start, end string) (map[string]float64, error)
}

const compactDateLayout = "20060102"

// NormalizeDate converts a compact or canonical date to YYYY-MM-DD.
func NormalizeDate(s string) (string, bool) {
	for _, layout := range []string{domain.DateLayout, compactDateLayout} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return domain.FormatDate(t), true
		}
	}
	return "", false
}

// Valid reports whether v is a real reading for the parameter rather than a
// missing-data sentinel.
func Valid(param domain.Parameter, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	switch param {
	case domain.ParamTemperature, domain.ParamTemperatureMax, domain.ParamTemperatureMin:
		return v > -100
	case domain.ParamPrecipitation, domain.ParamWindSpeed:
		return v >= 0
	case domain.ParamHumidity:
		return v >= 0 && v <= 100
	case domain.ParamSoilMoisture:
		return v >= 0 && v <= 1
	default:
		return true
	}
}

// Normalize filters sentinels and malformed dates from a raw response and
// returns one point per day in date order. When a day appears in both date
// forms the canonical key wins. The quality is no_data when nothing usable
// remains and partial when some readings were dropped.
func Normalize(param domain.Parameter, raw map[string]float64) domain.Series {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]bool, len(raw))
	points := make([]domain.Point, 0, len(raw))
	dropped := 0
	for _, key := range keys {
		v := raw[key]
		day, ok := NormalizeDate(key)
		if !ok || !Valid(param, v) {
			dropped++
			continue
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		points = append(points, domain.Point{Date: day, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	quality := domain.QualityOK
	switch {
	case len(points) == 0:
		quality = domain.QualityNoData
	case dropped > 0:
		quality = domain.QualityPartial
	}
	return domain.Series{Parameter: param, Points: points, Quality: quality}
}

// Failed is the uniform signal for a parameter whose fetch failed.
func Failed(param domain.Parameter) domain.Series {
	return domain.Series{Parameter: param, Points: []domain.Point{}, Quality: domain.QualityUpstreamFailure}
}

// Quality combines per-series tags into one result tag: ok when every series
// is ok, upstream_failure when every series failed, no_data when none has
// points, partial otherwise.
func Quality(series map[domain.Parameter]domain.Series) domain.DataQuality {
	if len(series) == 0 {
		return domain.QualityNoData
	}
	var ok, failed, empty int
	for _, s := range series {
		switch {
		case s.Quality == domain.QualityUpstreamFailure:
			failed++
		case s.Empty():
			empty++
		case s.Quality == domain.QualityOK:
			ok++
		}
	}
	switch {
	case ok == len(series):
		return domain.QualityOK
	case failed == len(series):
		return domain.QualityUpstreamFailure
	case failed+empty == len(series):
		if failed > 0 {
			return domain.QualityUpstreamFailure
		}
		return domain.QualityNoData
	default:
		return domain.QualityPartial
	}
}
