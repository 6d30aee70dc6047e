package indices

import (
	"fmt"
	"math"
	"testing"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailyPoints builds consecutive January points from values.
func dailyPoints(values ...float64) []domain.Point {
	out := make([]domain.Point, len(values))
	for i, v := range values {
		out[i] = domain.Point{Date: fmt.Sprintf("2024-01-%02d", i+1), Value: v}
	}
	return out
}

func TestSPI_Computed(t *testing.T) {
	v := SPI(dailyPoints(10, 20, 30, 40, 50), 5)

	require.True(t, v.OK())
	assert.InDelta(t, math.Sqrt2, v.Value, 1e-9)
	assert.Equal(t, CategoryModeratelyWet, v.Category)
	assert.Equal(t, "2024-01-05", v.Date)
	assert.Equal(t, 5, v.Timescale)
}

func TestSPI_UsesTrailingWindowOnly(t *testing.T) {
	v := SPI(dailyPoints(1000, 10, 20, 30, 40, 50), 5)

	require.True(t, v.OK())
	assert.InDelta(t, math.Sqrt2, v.Value, 1e-9, "the first sample is outside the window")
}

func TestSPI_DryLatest(t *testing.T) {
	v := SPI(dailyPoints(50, 40, 30, 20, 10), 5)

	require.True(t, v.OK())
	assert.InDelta(t, -math.Sqrt2, v.Value, 1e-9)
	assert.Equal(t, CategoryModeratelyDry, v.Category)
}

func TestSPI_IdenticalValuesHaveNoVariability(t *testing.T) {
	for _, value := range []float64{0, 0.1, 0.3, 1.1, 2.7, 3.5, 120} {
		for _, timescale := range []int{3, 4, 7, 30, 90} {
			t.Run(fmt.Sprintf("%g/%d", value, timescale), func(t *testing.T) {
				points := make([]float64, timescale)
				for i := range points {
					points[i] = value
				}
				v := SPI(dailyPoints(points...), timescale)

				assert.Equal(t, StatusNoVariability, v.Status)
				assert.Equal(t, CategoryNoVariability, v.Category)
				assert.Zero(t, v.Value)
				assert.False(t, math.IsNaN(v.Value))
				assert.False(t, math.IsInf(v.Value, 0))
			})
		}
	}
}

func TestSPEI_ConstantBalanceHasNoVariability(t *testing.T) {
	precip := make([]float64, 30)
	pet := make([]float64, 30)
	for i := range precip {
		precip[i] = 2.7
		pet[i] = 1.1
	}
	v := SPEI(dailyPoints(precip...), dailyPoints(pet...), 30)

	assert.Equal(t, StatusNoVariability, v.Status)
	assert.Zero(t, v.Value)
}

func TestSPI_ShorterThanTimescale(t *testing.T) {
	v := SPI(dailyPoints(1, 2, 3), 4)

	assert.Equal(t, StatusInsufficientData, v.Status)
	assert.Equal(t, CategoryInsufficientData, v.Category)
	assert.Zero(t, v.Value)
}

func TestSPI_DegenerateTimescale(t *testing.T) {
	assert.Equal(t, StatusInsufficientData, SPI(dailyPoints(1, 2, 3), 0).Status)
	assert.Equal(t, StatusInsufficientData, SPI(nil, 3).Status)
}

func TestStandardizedCategory_Boundaries(t *testing.T) {
	tests := []struct {
		z        float64
		expected string
	}{
		{2.0, CategoryExtremelyWet},
		{1.99, CategoryVeryWet},
		{1.5, CategoryVeryWet},
		{1.49, CategoryModeratelyWet},
		{1.0, CategoryModeratelyWet},
		{0.99, CategoryNearNormal},
		{0, CategoryNearNormal},
		{-0.99, CategoryNearNormal},
		{-1.0, CategoryModeratelyDry},
		{-1.49, CategoryModeratelyDry},
		{-1.5, CategorySeverelyDry},
		{-1.99, CategorySeverelyDry},
		{-2.0, CategoryExtremelyDry},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, standardizedCategory(tt.z), "z=%v", tt.z)
	}
}

func TestSPISeries(t *testing.T) {
	values := SPISeries(dailyPoints(10, 20, 30, 40, 50), 3)

	require.Len(t, values, 3)
	assert.Equal(t, "2024-01-03", values[0].Date)
	assert.Equal(t, "2024-01-05", values[2].Date)
	for _, v := range values {
		assert.InDelta(t, 1.2247, v.Value, 1e-4)
	}

	assert.Nil(t, SPISeries(dailyPoints(1, 2), 3))
}

func TestSPEI(t *testing.T) {
	precip := dailyPoints(10, 20, 30, 40, 50)
	pet := dailyPoints(5, 5, 5, 5, 5)

	v := SPEI(precip, pet, 5)
	require.True(t, v.OK())
	assert.InDelta(t, math.Sqrt2, v.Value, 1e-9)
}

func TestSPEI_RequiresAlignedSeries(t *testing.T) {
	precip := dailyPoints(10, 20, 30)

	t.Run("different length", func(t *testing.T) {
		v := SPEI(precip, dailyPoints(1, 1), 2)
		assert.Equal(t, StatusInsufficientData, v.Status)
		assert.Zero(t, v.Value)
	})

	t.Run("different dates", func(t *testing.T) {
		pet := dailyPoints(1, 1, 1)
		pet[1].Date = "2024-02-02"
		v := SPEI(precip, pet, 2)
		assert.Equal(t, StatusInsufficientData, v.Status)
	})

	t.Run("missing pet", func(t *testing.T) {
		v := SPEI(precip, nil, 2)
		assert.Equal(t, StatusInsufficientData, v.Status)
	})

	t.Run("shorter than timescale", func(t *testing.T) {
		v := SPEI(precip, dailyPoints(1, 1, 1), 4)
		assert.Equal(t, StatusInsufficientData, v.Status)
		assert.Equal(t, CategoryInsufficientData, v.Category)
	})
}

func TestEstimatePET(t *testing.T) {
	pet := EstimatePET(dailyPoints(20, -40))

	require.Len(t, pet, 2)
	assert.InDelta(t, 0.27*(0.46*20+8.13), pet[0].Value, 1e-9)
	assert.Zero(t, pet[1].Value, "PET is floored at zero")
	assert.Equal(t, "2024-01-01", pet[0].Date)
}

func TestPDSI(t *testing.T) {
	t.Run("deficit clamps at -4", func(t *testing.T) {
		v := PDSI(dailyPoints(0, 0, 0), nil, dailyPoints(5, 6, 7))
		require.True(t, v.OK())
		assert.Equal(t, -4.0, v.Value)
		assert.Equal(t, CategoryExtremeDrought, v.Category)
		assert.Contains(t, v.Description, "simplified")
	})

	t.Run("balanced is near normal", func(t *testing.T) {
		v := PDSI(dailyPoints(3, 3), nil, dailyPoints(3, 3))
		require.True(t, v.OK())
		assert.Zero(t, v.Value)
		assert.Equal(t, CategoryNearNormal, v.Category)
	})

	t.Run("pet estimated from temperature", func(t *testing.T) {
		v := PDSI(dailyPoints(10, 10, 10), dailyPoints(20, 20, 20), nil)
		require.True(t, v.OK())
		assert.Equal(t, 4.0, v.Value)
		assert.Equal(t, CategoryExtremelyWet, v.Category)
	})

	t.Run("no inputs", func(t *testing.T) {
		v := PDSI(nil, nil, nil)
		assert.Equal(t, StatusInsufficientData, v.Status)
	})
}

func TestPDSICategory_Boundaries(t *testing.T) {
	assert.Equal(t, CategoryVeryWet, pdsiCategory(3))
	assert.Equal(t, CategoryModeratelyWet, pdsiCategory(2))
	assert.Equal(t, CategoryNearNormal, pdsiCategory(-1.99))
	assert.Equal(t, CategoryModerateDrought, pdsiCategory(-2))
	assert.Equal(t, CategorySevereDrought, pdsiCategory(-3))
	assert.Equal(t, CategoryExtremeDrought, pdsiCategory(-4))
}

func TestHeatIndex(t *testing.T) {
	tests := []struct {
		name     string
		tempF    float64
		humidity float64
		value    float64
		category string
	}{
		{"mild day uses simple formula", 70, 50, 69.05, HeatNormal},
		{"hot humid day", 90, 50, 94.597, HeatExtremeCaution},
		{"dangerous", 100, 60, 129.489, HeatExtremeDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := HeatIndex(tt.tempF, tt.humidity)
			require.True(t, v.OK())
			assert.InDelta(t, tt.value, v.Value, 0.01)
			assert.Equal(t, tt.category, v.Category)
		})
	}
}

func TestHeatIndex_NaNInput(t *testing.T) {
	v := HeatIndex(math.NaN(), 50)
	assert.Equal(t, StatusInsufficientData, v.Status)
}

func TestWindChill(t *testing.T) {
	t.Run("calm wind returns ambient", func(t *testing.T) {
		v := WindChill(30, 2.9)
		assert.Equal(t, 30.0, v.Value)
		assert.Equal(t, ChillNone, v.Category)
	})

	t.Run("warm air has no chill effect", func(t *testing.T) {
		v := WindChill(60, 20)
		assert.Equal(t, 60.0, v.Value)
		assert.Equal(t, ChillNone, v.Category)
	})

	t.Run("at the wind threshold the formula applies", func(t *testing.T) {
		v := WindChill(30, 3)
		assert.NotEqual(t, ChillNone, v.Category)
		assert.Less(t, v.Value, 30.0)
	})

	t.Run("NWS table values", func(t *testing.T) {
		assert.InDelta(t, -19.398, WindChill(0, 15).Value, 0.01)
		assert.Equal(t, ChillHigh, WindChill(0, 15).Category)
		assert.Equal(t, ChillLow, WindChill(30, 10).Category)
		assert.Equal(t, ChillExtreme, WindChill(-20, 30).Category)
	})
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 212.0, CelsiusToFahrenheit(100), 1e-9)
	assert.InDelta(t, 22.369, MetresPerSecondToMph(10), 1e-3)
}
