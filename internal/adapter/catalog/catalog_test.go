package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {"hazard": "landslide", "lat": 47.60, "lon": -122.33, "date": "2019-02-12"},
  {"hazard": "landslide", "lat": 47.65, "lon": -122.30, "date": "2021-01-05"},
  {"hazard": "landslide", "lat": 48.50, "lon": -121.00},
  {"hazard": "flood", "lat": 47.61, "lon": -122.33},
  {"hazard": "tsunami", "lat": 47.61, "lon": -122.33},
  {"hazard": "landslide", "lat": 123, "lon": 0}
]`

var seattle = domain.Location{Lat: 47.6062, Lon: -122.3321}

func TestParse_DropsInvalidRecords(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestCountWithin(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, 2, c.CountWithin(domain.HazardLandslide, seattle, 10))
	assert.Equal(t, 3, c.CountWithin(domain.HazardLandslide, seattle, 200))
	assert.Equal(t, 1, c.CountWithin(domain.HazardFlood, seattle, 10))
	assert.Zero(t, c.CountWithin(domain.HazardDrought, seattle, 1000))
	assert.Zero(t, c.CountWithin(domain.HazardLandslide, domain.Location{Lat: 0, Lon: 0}, 10))
}

func TestDistance(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	assert.InDelta(t, 111.2, Distance(domain.Location{Lat: 0, Lon: 0}, domain.Location{Lat: 1, Lon: 0}), 0.1)
	assert.InDelta(t, 0, Distance(seattle, seattle), 1e-9)

	// Seattle to Portland.
	portland := domain.Location{Lat: 45.5152, Lon: -122.6784}
	assert.InDelta(t, 234, Distance(seattle, portland), 3)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	empty, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Zero(t, c.Len())
	assert.Zero(t, c.CountWithin(domain.HazardLandslide, seattle, 100))
}
