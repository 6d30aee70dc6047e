package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the parallel fetches of one query.
const maxConcurrentFetches = 4

// Collector fetches the parameters of one query concurrently. A failure in
// one fetch never aborts the others.
type Collector struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCollector creates a collector applying timeout to every fetch. A zero
// timeout leaves deadlines to the caller's context.
func NewCollector(f Fetcher, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Collector {
	return &Collector{fetcher: f, timeout: timeout, logger: logger, metrics: metrics}
}

// Collect fetches every parameter for the location and window. Every
// requested parameter is present in the result.
func (c *Collector) Collect(ctx context.Context, loc domain.Location, params []domain.Parameter, start, end string) map[domain.Parameter]domain.Series {
	results := make([]domain.Series, len(params))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, param := range params {
		g.Go(func() error {
			results[i] = c.Fetch(ctx, param, loc, start, end)
			return nil
		})
	}
	_ = g.Wait() // fetches never return errors; failures are tagged on the series

	out := make(map[domain.Parameter]domain.Series, len(params))
	for i, param := range params {
		out[param] = results[i]
	}
	return out
}

// Fetch retrieves and normalizes one parameter. Errors and timeouts are
// logged and returned as a failed series.
func (c *Collector) Fetch(ctx context.Context, param domain.Parameter, loc domain.Location, start, end string) domain.Series {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	begin := time.Now()
	raw, err := c.fetcher.FetchSeries(ctx, param, loc, start, end)
	c.observeDuration(param, time.Since(begin))
	if err != nil {
		c.logger.Warn("fetch series failed",
			"parameter", param,
			"lat", loc.Lat,
			"lon", loc.Lon,
			"error", err,
		)
		c.observe(param, "error")
		return Failed(param)
	}

	series := Normalize(param, raw)
	if series.Empty() {
		c.observe(param, "empty")
	} else {
		c.observe(param, "success")
	}
	return series
}

func (c *Collector) observe(param domain.Parameter, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.FetchRequests.WithLabelValues(string(param), outcome).Inc()
}

func (c *Collector) observeDuration(param domain.Parameter, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.FetchDuration.WithLabelValues(string(param)).Observe(d.Seconds())
}
