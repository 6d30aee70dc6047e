package ingest

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// CachedFetcher wraps a Fetcher with a TTL cache.
type CachedFetcher struct {
	inner Fetcher
	store *cache.Store[map[string]float64]
}

// NewCachedFetcher creates a cache decorator around a fetcher. A nil store
// disables caching.
func NewCachedFetcher(inner Fetcher, store *cache.Store[map[string]float64]) *CachedFetcher {
	return &CachedFetcher{inner: inner, store: store}
}

func (c *CachedFetcher) FetchSeries(ctx context.Context, param domain.Parameter, loc domain.Location, start, end string) (map[string]float64, error) {
	key := SeriesKey(param, loc, start, end)
	if raw, ok := c.store.Get(key); ok {
		return raw, nil
	}
	raw, err := c.inner.FetchSeries(ctx, param, loc, start, end)
	if err != nil {
		return raw, err
	}
	// Only cache non-empty results so "no data yet" responses can be retried.
	if len(raw) > 0 {
		c.store.Set(key, raw, 0)
	}
	return raw, nil
}

// SeriesKey identifies one fetch. Coordinates are rounded to about 10 m.
func SeriesKey(param domain.Parameter, loc domain.Location, start, end string) string {
	return fmt.Sprintf("%s|%.4f,%.4f|%s|%s", param, loc.Lat, loc.Lon, start, end)
}
