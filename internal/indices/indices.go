// Package indices computes standardized drought/wetness indices and
// instantaneous comfort transforms from normalized series.
//
// Every function is total: short, degenerate or misaligned input produces a
// result whose Status says so, never a number posing as a real statistic.
package indices

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Status says whether an index value was actually computed.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
	StatusNoVariability    Status = "no_variability"
)

// Category labels shared by SPI and SPEI.
const (
	CategoryExtremelyWet     = "Extremely Wet"
	CategoryVeryWet          = "Very Wet"
	CategoryModeratelyWet    = "Moderately Wet"
	CategoryNearNormal       = "Near Normal"
	CategoryModeratelyDry    = "Moderately Dry"
	CategorySeverelyDry      = "Severely Dry"
	CategoryExtremelyDry     = "Extremely Dry"
	CategoryInsufficientData = "Insufficient Data"
	CategoryNoVariability    = "No Variability"
)

// Standardized index band edges, symmetric around zero.
const (
	bandModerate = 1.0
	bandSevere   = 1.5
	bandExtreme  = 2.0
)

// Value is one computed index entry.
type Value struct {
	Date        string  `json:"date,omitempty"`
	Value       float64 `json:"value"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Timescale   int     `json:"timescale,omitempty"`
	Status      Status  `json:"status"`
}

// OK reports whether the value is a real statistic.
func (v Value) OK() bool { return v.Status == StatusOK }

// SPI computes the Standardized Precipitation Index of the latest point
// against the trailing timescale-length window that ends with it.
func SPI(points []domain.Point, timescale int) Value {
	return standardize(points, timescale, "precipitation")
}

// SPISeries computes SPI for every period that has a full trailing window,
// in date order.
func SPISeries(points []domain.Point, timescale int) []Value {
	if timescale <= 0 || len(points) < timescale {
		return nil
	}
	out := make([]Value, 0, len(points)-timescale+1)
	for end := timescale; end <= len(points); end++ {
		out = append(out, standardize(points[end-timescale:end], timescale, "precipitation"))
	}
	return out
}

// SPEI computes the Standardized Precipitation-Evapotranspiration Index over
// the water balance precip − pet. Both series must cover the same dates.
func SPEI(precip, pet []domain.Point, timescale int) Value {
	balance, ok := waterBalance(precip, pet)
	if !ok {
		return insufficient(timescale, "precipitation and evapotranspiration series are missing or misaligned")
	}
	return standardize(balance, timescale, "water balance")
}

func standardize(points []domain.Point, timescale int, what string) Value {
	if timescale <= 0 || len(points) < timescale {
		return insufficient(timescale, "fewer "+what+" samples than the requested timescale")
	}

	window := points[len(points)-timescale:]
	latest := window[len(window)-1]

	// A constant window is detected from its range; summation residue would
	// otherwise leave a stdDev near 1e-17 and a spurious z-score.
	sum, lo, hi := 0.0, window[0].Value, window[0].Value
	for _, p := range window {
		sum += p.Value
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	mean := sum / float64(len(window))

	var sq float64
	for _, p := range window {
		d := p.Value - mean
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(window)))

	if lo == hi || stdDev == 0 || math.IsNaN(stdDev) {
		return Value{
			Date:        latest.Date,
			Category:    CategoryNoVariability,
			Description: "all " + what + " samples in the window are identical",
			Timescale:   timescale,
			Status:      StatusNoVariability,
		}
	}

	z := (latest.Value - mean) / stdDev
	category := standardizedCategory(z)
	return Value{
		Date:        latest.Date,
		Value:       z,
		Category:    category,
		Description: describeStandardized(category),
		Timescale:   timescale,
		Status:      StatusOK,
	}
}

func insufficient(timescale int, why string) Value {
	return Value{
		Category:    CategoryInsufficientData,
		Description: why,
		Timescale:   timescale,
		Status:      StatusInsufficientData,
	}
}

// standardizedCategory maps a z-score to the seven SPI/SPEI bands.
func standardizedCategory(z float64) string {
	switch {
	case z >= bandExtreme:
		return CategoryExtremelyWet
	case z >= bandSevere:
		return CategoryVeryWet
	case z >= bandModerate:
		return CategoryModeratelyWet
	case z > -bandModerate:
		return CategoryNearNormal
	case z > -bandSevere:
		return CategoryModeratelyDry
	case z > -bandExtreme:
		return CategorySeverelyDry
	default:
		return CategoryExtremelyDry
	}
}

func describeStandardized(category string) string {
	switch category {
	case CategoryExtremelyWet:
		return "exceptionally wet conditions, flooding likely"
	case CategoryVeryWet:
		return "very wet conditions"
	case CategoryModeratelyWet:
		return "wetter than normal"
	case CategoryNearNormal:
		return "near normal conditions"
	case CategoryModeratelyDry:
		return "drier than normal"
	case CategorySeverelyDry:
		return "severe dryness"
	default:
		return "exceptional dryness"
	}
}

// waterBalance subtracts pet from precip day by day. It fails when the two
// series differ in length or in any date.
func waterBalance(precip, pet []domain.Point) ([]domain.Point, bool) {
	if len(precip) == 0 || len(precip) != len(pet) {
		return nil, false
	}
	out := make([]domain.Point, len(precip))
	for i := range precip {
		if precip[i].Date != pet[i].Date {
			return nil, false
		}
		out[i] = domain.Point{Date: precip[i].Date, Value: precip[i].Value - pet[i].Value}
	}
	return out, true
}
