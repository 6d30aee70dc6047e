// Package csvfile serves daily series for one site from a CSV file, for
// offline runs.
//
// The header row names a "date" column and any of the parameter columns
// (temperature, precipitation, humidity, wind_speed, soil_moisture,
// temperature_max, temperature_min). Empty cells are gaps.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
)

const dateColumn = "date"

// Fetcher implements ingest.Fetcher over an in-memory table. The location
// argument is ignored: the file describes a single site.
type Fetcher struct {
	columns map[domain.Parameter]map[string]float64
	dates   int
	last    string
}

// Load reads a CSV file.
func Load(path string) (*Fetcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads CSV from r.
func Parse(r io.Reader) (*Fetcher, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data rows")
	}

	header := rows[0]
	dateIdx := -1
	params := make(map[int]domain.Parameter)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == dateColumn {
			dateIdx = i
			continue
		}
		for _, p := range domain.AllParameters {
			if string(p) == name {
				params[i] = p
			}
		}
	}
	if dateIdx < 0 {
		return nil, errors.New("missing date column")
	}

	f := &Fetcher{columns: make(map[domain.Parameter]map[string]float64, len(params))}
	for _, p := range params {
		f.columns[p] = make(map[string]float64)
	}

	for n, row := range rows[1:] {
		if len(row) != len(header) {
			continue
		}
		date, ok := ingest.NormalizeDate(strings.TrimSpace(row[dateIdx]))
		if !ok {
			return nil, fmt.Errorf("row %d: invalid date %q", n+2, row[dateIdx])
		}
		f.dates++
		if date > f.last {
			f.last = date
		}
		for i, p := range params {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, p, err)
			}
			f.columns[p][date] = v
		}
	}
	return f, nil
}

// Days returns the number of dated rows read.
func (f *Fetcher) Days() int { return f.dates }

// LastDate returns the latest date in the file as YYYY-MM-DD.
func (f *Fetcher) LastDate() string { return f.last }

// FetchSeries returns the parameter's values dated within [start, end].
// A parameter without a column yields an empty result.
func (f *Fetcher) FetchSeries(ctx context.Context, param domain.Parameter, _ domain.Location, start, end string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, ok := ingest.NormalizeDate(start)
	if !ok {
		return nil, fmt.Errorf("%w: start %q", domain.ErrInvalidWindow, start)
	}
	to, ok := ingest.NormalizeDate(end)
	if !ok {
		return nil, fmt.Errorf("%w: end %q", domain.ErrInvalidWindow, end)
	}

	out := make(map[string]float64)
	for date, v := range f.columns[param] {
		if date >= from && date <= to {
			out[date] = v
		}
	}
	return out, nil
}
