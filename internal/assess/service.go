// Package assess orchestrates the data flow for one location: ingestion
// feeds the index calculators and event detectors, which feed the risk
// scorers, while the historical aggregator wraps the same series per month.
// The cache sits in front of ingestion and of every finished result.
package assess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/history"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/jonboulle/clockwork"
)

// TerrainSource provides elevation, slope and aspect for a point.
type TerrainSource interface {
	Terrain(ctx context.Context, loc domain.Location) (domain.Terrain, error)
}

// HazardCatalog counts recorded hazard occurrences near a point.
type HazardCatalog interface {
	CountWithin(hazard domain.Hazard, loc domain.Location, radiusKm float64) int
}

// Options configures a Service. Zero durations and counts take the defaults
// below. RegionalNormalTemp is used as given since 0 °C is a valid normal.
type Options struct {
	Terrain TerrainSource
	Catalog HazardCatalog
	Cache   *cache.Manager
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics

	FetchTimeout       time.Duration
	LookbackDays       int
	HistoryYears       int
	RegionalNormalTemp float64
	LandslideRadiusKm  float64

	WeatherTTL    time.Duration
	EventsTTL     time.Duration
	AssessmentTTL time.Duration
	HistoryTTL    time.Duration
}

// Defaults and limits.
const (
	DefaultFetchTimeout      = 30 * time.Second
	DefaultLookbackDays      = 120
	DefaultHistoryYears      = 10
	MaxHistoryYears          = 40
	DefaultRegionalNormal    = 15.0
	DefaultLandslideRadiusKm = 25.0
	DefaultWeatherTTL        = time.Hour
	DefaultEventsTTL         = 30 * time.Minute
	DefaultAssessmentTTL     = 15 * time.Minute
	DefaultHistoryTTL        = 24 * time.Hour
)

func (o *Options) applyDefaults() {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = DefaultLookbackDays
	}
	if o.HistoryYears <= 0 {
		o.HistoryYears = DefaultHistoryYears
	}
	o.HistoryYears = min(o.HistoryYears, MaxHistoryYears)
	if o.LandslideRadiusKm <= 0 {
		o.LandslideRadiusKm = DefaultLandslideRadiusKm
	}
	if o.WeatherTTL <= 0 {
		o.WeatherTTL = DefaultWeatherTTL
	}
	if o.EventsTTL <= 0 {
		o.EventsTTL = DefaultEventsTTL
	}
	if o.AssessmentTTL <= 0 {
		o.AssessmentTTL = DefaultAssessmentTTL
	}
	if o.HistoryTTL <= 0 {
		o.HistoryTTL = DefaultHistoryTTL
	}
}

// Service answers assessment, event, index and history queries.
type Service struct {
	opts      Options
	collector *ingest.Collector

	assessments *cache.Store[domain.RiskAssessment]
	events      *cache.Store[[]domain.DetectedEvent]
	histories   *cache.Store[history.Analysis]
	terrains    *cache.Store[domain.Terrain]
}

// New creates a service reading series through fetcher. When opts.Cache is
// enabled, raw series and finished results are cached in separate stores.
func New(fetcher ingest.Fetcher, opts Options) *Service {
	opts.applyDefaults()

	weather := cache.NewStore[map[string]float64](opts.Cache, "weather", opts.WeatherTTL)
	if weather != nil {
		fetcher = ingest.NewCachedFetcher(fetcher, weather)
	}

	return &Service{
		opts:        opts,
		collector:   ingest.NewCollector(fetcher, opts.FetchTimeout, opts.Logger, opts.Metrics),
		assessments: cache.NewStore[domain.RiskAssessment](opts.Cache, "assessments", opts.AssessmentTTL),
		events:      cache.NewStore[[]domain.DetectedEvent](opts.Cache, "events", opts.EventsTTL),
		histories:   cache.NewStore[history.Analysis](opts.Cache, "history", opts.HistoryTTL),
		terrains:    cache.NewStore[domain.Terrain](opts.Cache, "terrain", opts.HistoryTTL),
	}
}

// now is the service clock in UTC.
func (s *Service) now() time.Time {
	return s.opts.Clock.Now().UTC()
}

// lookback returns the recent window ending today.
func (s *Service) lookback(now time.Time) (start, end string) {
	return domain.FormatDate(now.AddDate(0, 0, -(s.opts.LookbackDays - 1))), domain.FormatDate(now)
}

// terrain returns terrain for loc, or nil when no source is configured or
// the lookup fails.
func (s *Service) terrain(ctx context.Context, loc domain.Location) *domain.Terrain {
	if s.opts.Terrain == nil {
		return nil
	}
	key := locationKey(loc)
	if t, ok := s.terrains.Get(key); ok {
		return &t
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	t, err := s.opts.Terrain.Terrain(ctx, loc)
	if err != nil {
		s.opts.Logger.Warn("terrain lookup failed",
			"lat", loc.Lat,
			"lon", loc.Lon,
			"error", err,
		)
		return nil
	}
	s.terrains.Set(key, t, 0)
	return &t
}

func locationKey(loc domain.Location) string {
	return fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lon)
}
