// Package power fetches daily point series from the NASA POWER API.
package power

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the daily point endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// ErrUnsupportedParameter is returned for parameters POWER does not serve.
var ErrUnsupportedParameter = errors.New("unsupported parameter")

// parameterNames maps domain parameters to POWER parameter codes.
var parameterNames = map[domain.Parameter]string{
	domain.ParamTemperature:    "T2M",
	domain.ParamTemperatureMax: "T2M_MAX",
	domain.ParamTemperatureMin: "T2M_MIN",
	domain.ParamPrecipitation:  "PRECTOTCORR",
	domain.ParamHumidity:       "RH2M",
	domain.ParamWindSpeed:      "WS2M",
	domain.ParamSoilMoisture:   "GWETROOT",
}

// Client implements ingest.Fetcher against NASA POWER.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a POWER client. requestsPerSecond <= 0 disables rate limiting.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: newLimiter(requestsPerSecond),
		logger:  logger,
	}
}

func newLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := max(1, int(requestsPerSecond))
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// FetchSeries returns the raw daily values of one parameter keyed by
// compact YYYYMMDD dates. Fill values are passed through for the
// normalizer to drop.
func (c *Client) FetchSeries(ctx context.Context, param domain.Parameter, loc domain.Location, start, end string) (map[string]float64, error) {
	name, ok := parameterNames[param]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedParameter, param)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"parameters": {name},
		"community":  {"AG"},
		"longitude":  {strconv.FormatFloat(loc.Lon, 'f', 4, 64)},
		"latitude":   {strconv.FormatFloat(loc.Lat, 'f', 4, 64)},
		"start":      {compact(start)},
		"end":        {compact(end)},
		"format":     {"JSON"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("power %s request: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("power API error: status %d: %s", resp.StatusCode, body)
	}

	var powerResp response
	if err := json.NewDecoder(resp.Body).Decode(&powerResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	values := powerResp.Properties.Parameter[name]
	c.logger.Debug("power series fetched",
		"parameter", name,
		"lat", loc.Lat,
		"lon", loc.Lon,
		"days", len(values),
	)
	if values == nil {
		values = map[string]float64{}
	}
	return values, nil
}

func compact(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// POWER API response types.

type response struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Parameter map[string]map[string]float64 `json:"parameter"`
}
