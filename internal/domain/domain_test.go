package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityFromIntensity(t *testing.T) {
	tests := []struct {
		intensity float64
		expected  Severity
	}{
		{0, SeverityLow},
		{0.39, SeverityLow},
		{0.4, SeverityModerate},
		{0.59, SeverityModerate},
		{0.6, SeverityHigh},
		{0.79, SeverityHigh},
		{0.8, SeverityExtreme},
		{1, SeverityExtreme},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SeverityFromIntensity(tt.intensity), "intensity %v", tt.intensity)
	}
}

func TestEventID(t *testing.T) {
	a := EventID(EventHeatWave, "2024-07-01", "2024-07-04")
	b := EventID(EventHeatWave, "2024-07-01", "2024-07-04")
	c := EventID(EventFlood, "2024-07-01", "2024-07-04")

	assert.Equal(t, a, b, "same inputs must give the same ID")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36)
}

func TestParseHazard(t *testing.T) {
	h, err := ParseHazard("drought")
	require.NoError(t, err)
	assert.Equal(t, HazardDrought, h)

	_, err = ParseHazard("tsunami")
	assert.ErrorIs(t, err, ErrUnknownHazard)
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Lat: 45.5, Lon: -122.6}.Validate())
	assert.ErrorIs(t, Location{Lat: 91, Lon: 0}.Validate(), ErrInvalidLocation)
	assert.ErrorIs(t, Location{Lat: 0, Lon: -181}.Validate(), ErrInvalidLocation)
}

func TestMergeObservations(t *testing.T) {
	series := map[Parameter]Series{
		ParamTemperature: {Points: []Point{
			{Date: "2024-01-02", Value: 5},
			{Date: "2024-01-01", Value: 4},
		}},
		ParamPrecipitation: {Points: []Point{
			{Date: "2024-01-01", Value: 12},
			{Date: "2024-01-03", Value: 0},
		}},
	}

	obs := MergeObservations(series)
	require.Len(t, obs, 3)

	assert.Equal(t, "2024-01-01", obs[0].Date)
	require.NotNil(t, obs[0].Temperature)
	assert.Equal(t, 4.0, *obs[0].Temperature)
	require.NotNil(t, obs[0].Precipitation)
	assert.Equal(t, 12.0, *obs[0].Precipitation)

	assert.Equal(t, "2024-01-02", obs[1].Date)
	assert.Nil(t, obs[1].Precipitation)

	assert.Equal(t, "2024-01-03", obs[2].Date)
	assert.Nil(t, obs[2].Temperature)
}

func TestExtract_SkipsGaps(t *testing.T) {
	obs := []DailyObservation{
		{Date: "2024-01-01", Precipitation: Float(3)},
		{Date: "2024-01-02"},
		{Date: "2024-01-03", Precipitation: Float(0)},
	}

	points := Extract(obs, ParamPrecipitation)
	assert.Equal(t, []Point{{Date: "2024-01-01", Value: 3}, {Date: "2024-01-03", Value: 0}}, points)
}

func TestDateHelpers(t *testing.T) {
	assert.Equal(t, "2024-03-01", NextDay("2024-02-29"))
	assert.Equal(t, "2023-01-01", NextDay("2022-12-31"))
	assert.Empty(t, NextDay("not-a-date"))
	assert.Equal(t, "2022-12", MonthKey("2022-12-31"))
	assert.Empty(t, MonthKey("2022"))

	points := []Point{{Date: "2024-01-01"}, {Date: "2024-01-05"}, {Date: "2024-01-09"}}
	assert.Equal(t, points[1:], Since(points, "2024-01-02"))
	assert.Equal(t, points[1:2], Between(points, "2024-01-02", "2024-01-08"))
	assert.Nil(t, Since(points, "2025-01-01"))
}

func TestParseAssessmentRequest(t *testing.T) {
	req, err := ParseAssessmentRequest(RawEvent{
		Key:   []byte("key-1"),
		Value: []byte(`{"lat":35.5,"lon":-97.25,"hazard":"landslide"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "key-1", req.RequestID)
	assert.Equal(t, HazardLandslide, req.Hazard)
	assert.Equal(t, Location{Lat: 35.5, Lon: -97.25}, req.Location())

	req, err = ParseAssessmentRequest(RawEvent{Value: []byte(`{"request_id":"r-2","lat":0,"lon":0}`)})
	require.NoError(t, err)
	assert.Equal(t, "r-2", req.RequestID)
	assert.Empty(t, req.Hazard)

	_, err = ParseAssessmentRequest(RawEvent{Value: []byte(`{"lat":-91,"lon":0}`)})
	require.ErrorIs(t, err, ErrInvalidLocation)

	_, err = ParseAssessmentRequest(RawEvent{Value: []byte(`{"lat":0,"lon":0,"hazard":"hail"}`)})
	require.ErrorIs(t, err, ErrUnknownHazard)

	_, err = ParseAssessmentRequest(RawEvent{Value: []byte(`{`)})
	require.Error(t, err)
}
