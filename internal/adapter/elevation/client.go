// Package elevation derives terrain (elevation, slope, aspect) for a point
// from the Open-Meteo elevation API.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// DefaultBaseURL is the Open-Meteo elevation endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/elevation"

// stencilStep is the offset in degrees of the four neighbours sampled
// around the centre point, roughly 110 m.
const stencilStep = 0.001

const (
	metresPerDegreeLat = 110540.0
	metresPerDegreeLon = 111320.0
)

// flatSlope is the slope in degrees below which aspect is undefined.
const flatSlope = 0.01

// Client implements the terrain source using a five-point elevation stencil.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an elevation client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Terrain samples the centre and its north, south, east and west
// neighbours in one request and derives slope and aspect from central
// differences.
func (c *Client) Terrain(ctx context.Context, loc domain.Location) (domain.Terrain, error) {
	points := stencil(loc)
	lats := make([]string, len(points))
	lons := make([]string, len(points))
	for i, p := range points {
		lats[i] = strconv.FormatFloat(p.Lat, 'f', 6, 64)
		lons[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64)
	}
	params := url.Values{
		"latitude":  {strings.Join(lats, ",")},
		"longitude": {strings.Join(lons, ",")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Terrain{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Terrain{}, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Terrain{}, fmt.Errorf("elevation API error: status %d: %s", resp.StatusCode, body)
	}

	var elevResp response
	if err := json.NewDecoder(resp.Body).Decode(&elevResp); err != nil {
		return domain.Terrain{}, fmt.Errorf("decode response: %w", err)
	}
	if len(elevResp.Elevation) != len(points) {
		return domain.Terrain{}, fmt.Errorf("elevation API returned %d values, want %d", len(elevResp.Elevation), len(points))
	}

	terrain := FromStencil(loc.Lat, elevResp.Elevation[0], elevResp.Elevation[1], elevResp.Elevation[2], elevResp.Elevation[3], elevResp.Elevation[4])
	c.logger.Debug("terrain derived",
		"lat", loc.Lat,
		"lon", loc.Lon,
		"elevation", terrain.Elevation,
		"slope", terrain.Slope,
	)
	return terrain, nil
}

// stencil returns centre, north, south, east, west.
func stencil(loc domain.Location) []domain.Location {
	return []domain.Location{
		loc,
		{Lat: loc.Lat + stencilStep, Lon: loc.Lon},
		{Lat: loc.Lat - stencilStep, Lon: loc.Lon},
		{Lat: loc.Lat, Lon: loc.Lon + stencilStep},
		{Lat: loc.Lat, Lon: loc.Lon - stencilStep},
	}
}

// FromStencil derives terrain from elevations in metres at the centre and
// its four neighbours. Slope is in degrees from horizontal; aspect is the
// compass bearing the slope faces (downhill), nil on flat ground.
func FromStencil(lat, centre, north, south, east, west float64) domain.Terrain {
	dx := 2 * stencilStep * metresPerDegreeLon * math.Cos(lat*math.Pi/180)
	dy := 2 * stencilStep * metresPerDegreeLat

	var gx float64
	if dx > 0 {
		gx = (east - west) / dx
	}
	gy := (north - south) / dy

	slope := math.Atan(math.Hypot(gx, gy)) * 180 / math.Pi
	terrain := domain.Terrain{Elevation: centre, Slope: slope}
	if slope < flatSlope {
		return terrain
	}

	aspect := math.Atan2(-gx, -gy) * 180 / math.Pi
	if aspect < 0 {
		aspect += 360
	}
	terrain.Aspect = &aspect
	return terrain
}

// Open-Meteo API response types.

type response struct {
	Elevation []float64 `json:"elevation"`
}
