package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = domain.Location{Lat: 47.6, Lon: -122.3}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFetcher serves canned responses per parameter.
type stubFetcher struct {
	mu       sync.Mutex
	data     map[domain.Parameter]map[string]float64
	errs     map[domain.Parameter]error
	block    map[domain.Parameter]bool
	calls    int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubFetcher) FetchSeries(ctx context.Context, param domain.Parameter, _ domain.Location, _, _ string) (map[string]float64, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	block := s.block[param]
	err := s.errs[param]
	data := s.data[param]
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"20240115", "2024-01-15", true},
		{"2024-01-15", "2024-01-15", true},
		{"20240230", "", false},
		{"2024-1-15", "", false},
		{"", "", false},
		{"garbage!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		param domain.Parameter
		v     float64
		want  bool
	}{
		{"temperature sentinel", domain.ParamTemperature, -999, false},
		{"temperature at bound", domain.ParamTemperatureMax, -100, false},
		{"cold temperature", domain.ParamTemperatureMin, -60, true},
		{"negative precipitation", domain.ParamPrecipitation, -1, false},
		{"dry day", domain.ParamPrecipitation, 0, true},
		{"humidity above 100", domain.ParamHumidity, 100.5, false},
		{"saturated air", domain.ParamHumidity, 100, true},
		{"negative wind", domain.ParamWindSpeed, -0.1, false},
		{"soil above 1", domain.ParamSoilMoisture, 1.2, false},
		{"soil fraction", domain.ParamSoilMoisture, 0.35, true},
		{"NaN", domain.ParamPrecipitation, math.NaN(), false},
		{"Inf", domain.ParamTemperature, math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.param, tt.v))
		})
	}
}

func TestNormalize_SortsAndFilters(t *testing.T) {
	raw := map[string]float64{
		"20240103":   3,
		"2024-01-01": 1,
		"20240102":   -999,
		"20240104":   4,
		"bad":        5,
	}

	got := Normalize(domain.ParamTemperature, raw)

	assert.Equal(t, domain.ParamTemperature, got.Parameter)
	assert.Equal(t, domain.QualityPartial, got.Quality)
	assert.Equal(t, []domain.Point{
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-01-03", Value: 3},
		{Date: "2024-01-04", Value: 4},
	}, got.Points)
}

func TestNormalize_OnePointPerDay(t *testing.T) {
	raw := map[string]float64{
		"20240101":   41,
		"2024-01-01": 40,
		"20240102":   40,
		"20240103":   40,
	}

	for range 20 {
		got := Normalize(domain.ParamHumidity, raw)

		assert.Equal(t, domain.QualityOK, got.Quality)
		assert.Equal(t, []domain.Point{
			{Date: "2024-01-01", Value: 40},
			{Date: "2024-01-02", Value: 40},
			{Date: "2024-01-03", Value: 40},
		}, got.Points)
	}
}

func TestNormalize_DuplicateDayFallsBackToValidReading(t *testing.T) {
	got := Normalize(domain.ParamPrecipitation, map[string]float64{
		"2024-01-01": -999,
		"20240101":   3,
	})

	assert.Equal(t, domain.QualityPartial, got.Quality)
	assert.Equal(t, []domain.Point{{Date: "2024-01-01", Value: 3}}, got.Points)
}

func TestNormalize_QualityTags(t *testing.T) {
	assert.Equal(t, domain.QualityOK, Normalize(domain.ParamPrecipitation, map[string]float64{"20240101": 2}).Quality)

	empty := Normalize(domain.ParamPrecipitation, nil)
	assert.Equal(t, domain.QualityNoData, empty.Quality)
	assert.NotNil(t, empty.Points)
	assert.True(t, empty.Empty())

	allSentinel := Normalize(domain.ParamPrecipitation, map[string]float64{"20240101": -999})
	assert.Equal(t, domain.QualityNoData, allSentinel.Quality)
}

func TestQuality(t *testing.T) {
	ok := domain.Series{Points: []domain.Point{{Date: "2024-01-01"}}, Quality: domain.QualityOK}
	failed := Failed(domain.ParamHumidity)
	noData := Normalize(domain.ParamWindSpeed, nil)

	assert.Equal(t, domain.QualityNoData, Quality(nil))
	assert.Equal(t, domain.QualityOK, Quality(map[domain.Parameter]domain.Series{"a": ok, "b": ok}))
	assert.Equal(t, domain.QualityPartial, Quality(map[domain.Parameter]domain.Series{"a": ok, "b": failed}))
	assert.Equal(t, domain.QualityUpstreamFailure, Quality(map[domain.Parameter]domain.Series{"a": failed}))
	assert.Equal(t, domain.QualityUpstreamFailure, Quality(map[domain.Parameter]domain.Series{"a": failed, "b": noData}))
	assert.Equal(t, domain.QualityNoData, Quality(map[domain.Parameter]domain.Series{"a": noData}))
}

func TestCollector_FailureIsIsolated(t *testing.T) {
	f := &stubFetcher{
		data: map[domain.Parameter]map[string]float64{
			domain.ParamTemperature:   {"20240101": 10, "20240102": 12},
			domain.ParamPrecipitation: {"20240101": 5},
		},
		errs: map[domain.Parameter]error{
			domain.ParamHumidity: errors.New("upstream 503"),
		},
	}
	metrics := observability.NewMetricsForTesting()
	c := NewCollector(f, time.Second, discardLogger(), metrics)

	params := []domain.Parameter{domain.ParamTemperature, domain.ParamPrecipitation, domain.ParamHumidity, domain.ParamWindSpeed}
	got := c.Collect(context.Background(), testLoc, params, "20240101", "20240102")

	require.Len(t, got, 4)
	assert.Len(t, got[domain.ParamTemperature].Points, 2)
	assert.Equal(t, domain.QualityOK, got[domain.ParamPrecipitation].Quality)
	assert.Equal(t, domain.QualityUpstreamFailure, got[domain.ParamHumidity].Quality)
	assert.Empty(t, got[domain.ParamHumidity].Points)
	assert.Equal(t, domain.QualityNoData, got[domain.ParamWindSpeed].Quality)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("humidity", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("wind_speed", "empty")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("temperature", "success")), 0)
}

func TestCollector_TimeoutBecomesUpstreamFailure(t *testing.T) {
	f := &stubFetcher{
		data:  map[domain.Parameter]map[string]float64{domain.ParamTemperature: {"20240101": 10}},
		block: map[domain.Parameter]bool{domain.ParamSoilMoisture: true},
	}
	c := NewCollector(f, 20*time.Millisecond, discardLogger(), nil)

	got := c.Collect(context.Background(), testLoc, []domain.Parameter{domain.ParamTemperature, domain.ParamSoilMoisture}, "20240101", "20240101")

	assert.Equal(t, domain.QualityOK, got[domain.ParamTemperature].Quality)
	assert.Equal(t, domain.QualityUpstreamFailure, got[domain.ParamSoilMoisture].Quality)
}

func TestCollector_BoundsConcurrency(t *testing.T) {
	f := &stubFetcher{}
	c := NewCollector(f, time.Second, discardLogger(), nil)

	params := append(append([]domain.Parameter{}, domain.AllParameters...), domain.AllParameters...)
	got := c.Collect(context.Background(), testLoc, params, "20240101", "20240101")

	assert.Len(t, got, len(domain.AllParameters))
	assert.LessOrEqual(t, int(f.peak.Load()), maxConcurrentFetches)
}

func TestCachedFetcher_CachesNonEmptyResults(t *testing.T) {
	f := &stubFetcher{data: map[domain.Parameter]map[string]float64{
		domain.ParamTemperature: {"20240101": 10},
	}}
	m := cache.NewManager(cache.Options{Enabled: true, Clock: clockwork.NewFakeClock()})
	cf := NewCachedFetcher(f, cache.NewStore[map[string]float64](m, "weather", time.Hour))

	for range 3 {
		got, err := cf.FetchSeries(context.Background(), domain.ParamTemperature, testLoc, "20240101", "20240101")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"20240101": 10}, got)
	}
	assert.Equal(t, 1, f.calls)

	for range 2 {
		got, err := cf.FetchSeries(context.Background(), domain.ParamHumidity, testLoc, "20240101", "20240101")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 3, f.calls, "empty results are not cached")
}

func TestCachedFetcher_ErrorsAreNotCached(t *testing.T) {
	f := &stubFetcher{errs: map[domain.Parameter]error{domain.ParamTemperature: errors.New("boom")}}
	m := cache.NewManager(cache.Options{Enabled: true, Clock: clockwork.NewFakeClock()})
	cf := NewCachedFetcher(f, cache.NewStore[map[string]float64](m, "weather", time.Hour))

	_, err := cf.FetchSeries(context.Background(), domain.ParamTemperature, testLoc, "20240101", "20240101")
	require.Error(t, err)
	_, err = cf.FetchSeries(context.Background(), domain.ParamTemperature, testLoc, "20240101", "20240101")
	require.Error(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestCachedFetcher_NilStorePassesThrough(t *testing.T) {
	f := &stubFetcher{data: map[domain.Parameter]map[string]float64{
		domain.ParamTemperature: {"20240101": 10},
	}}
	cf := NewCachedFetcher(f, nil)

	for range 2 {
		_, err := cf.FetchSeries(context.Background(), domain.ParamTemperature, testLoc, "20240101", "20240101")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.calls)
}

func TestSeriesKey(t *testing.T) {
	a := SeriesKey(domain.ParamTemperature, domain.Location{Lat: 47.60001, Lon: -122.3}, "20240101", "20240131")
	b := SeriesKey(domain.ParamTemperature, domain.Location{Lat: 47.60004, Lon: -122.3}, "20240101", "20240131")
	c := SeriesKey(domain.ParamPrecipitation, domain.Location{Lat: 47.6, Lon: -122.3}, "20240101", "20240131")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
