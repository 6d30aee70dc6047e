// Package catalog serves historical hazard occurrences from a JSON file.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const earthRadiusKm = 6371.0

// Record is one recorded hazard occurrence.
type Record struct {
	Hazard domain.Hazard `json:"hazard"`
	Lat    float64       `json:"lat"`
	Lon    float64       `json:"lon"`
	Date   string        `json:"date,omitempty"`
}

// Catalog is an immutable, in-memory set of hazard records.
type Catalog struct {
	records []Record
}

// New builds a catalog from records. Records with an unknown hazard or
// out-of-range coordinates are dropped.
func New(records []Record) *Catalog {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if _, err := domain.ParseHazard(string(r.Hazard)); err != nil {
			continue
		}
		if (domain.Location{Lat: r.Lat, Lon: r.Lon}).Validate() != nil {
			continue
		}
		kept = append(kept, r)
	}
	return &Catalog{records: kept}
}

// Parse reads a JSON array of records.
func Parse(r io.Reader) (*Catalog, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(records), nil
}

// Load reads a catalog file. An empty path yields an empty catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return New(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// CountWithin counts records of the hazard within radiusKm of loc.
func (c *Catalog) CountWithin(hazard domain.Hazard, loc domain.Location, radiusKm float64) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, r := range c.records {
		if r.Hazard != hazard {
			continue
		}
		if Distance(loc, domain.Location{Lat: r.Lat, Lon: r.Lon}) <= radiusKm {
			n++
		}
	}
	return n
}

// Distance is the great-circle distance in kilometres.
func Distance(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
