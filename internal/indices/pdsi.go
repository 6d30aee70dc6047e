package indices

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// PDSI category labels.
const (
	CategoryModerateDrought = "Moderate Drought"
	CategorySevereDrought   = "Severe Drought"
	CategoryExtremeDrought  = "Extreme Drought"
)

const (
	// pdsiScale converts a mean daily water balance (mm/day) into PDSI units.
	pdsiScale = 1.25
	pdsiBound = 4.0

	// Blaney–Criddle coefficients with a fixed mean daytime-hours fraction.
	petDaylightFraction = 0.27
	petSlope            = 0.46
	petIntercept        = 8.13
)

// EstimatePET approximates daily potential evapotranspiration (mm/day) from
// mean air temperature (°C) using a temperature-only Blaney–Criddle form.
func EstimatePET(temp []domain.Point) []domain.Point {
	out := make([]domain.Point, len(temp))
	for i, p := range temp {
		pet := petDaylightFraction * (petSlope*p.Value + petIntercept)
		if pet < 0 {
			pet = 0
		}
		out[i] = domain.Point{Date: p.Date, Value: pet}
	}
	return out
}

// PDSI computes a simplified Palmer Drought Severity Index: the mean water
// balance over the aligned window, rescaled and clamped to [-4, +4]. There is
// no soil-capacity iteration, so the result is an approximation of the
// reference index. When pet is empty it is estimated from temp.
func PDSI(precip, temp, pet []domain.Point) Value {
	if len(pet) == 0 {
		pet = EstimatePET(temp)
	}
	balance, ok := waterBalance(precip, pet)
	if !ok {
		return insufficient(0, "simplified PDSI needs aligned precipitation and evapotranspiration series")
	}

	var sum float64
	for _, p := range balance {
		sum += p.Value
	}
	mean := sum / float64(len(balance))
	value := clamp(mean/pdsiScale, -pdsiBound, pdsiBound)
	if math.IsNaN(value) {
		return insufficient(0, "water balance is not a number")
	}

	category := pdsiCategory(value)
	return Value{
		Date:        balance[len(balance)-1].Date,
		Value:       value,
		Category:    category,
		Description: "simplified PDSI (approximation): " + describePDSI(category),
		Timescale:   len(balance),
		Status:      StatusOK,
	}
}

func pdsiCategory(v float64) string {
	switch {
	case v >= 4:
		return CategoryExtremelyWet
	case v >= 3:
		return CategoryVeryWet
	case v >= 2:
		return CategoryModeratelyWet
	case v > -2:
		return CategoryNearNormal
	case v > -3:
		return CategoryModerateDrought
	case v > -4:
		return CategorySevereDrought
	default:
		return CategoryExtremeDrought
	}
}

func describePDSI(category string) string {
	switch category {
	case CategoryModerateDrought:
		return "moderate water deficit"
	case CategorySevereDrought:
		return "severe water deficit"
	case CategoryExtremeDrought:
		return "extreme water deficit"
	default:
		return describeStandardized(category)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
