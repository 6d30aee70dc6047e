package assess

import (
	"context"
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/indices"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
)

var indexParameters = []domain.Parameter{
	domain.ParamTemperature,
	domain.ParamPrecipitation,
	domain.ParamHumidity,
	domain.ParamWindSpeed,
}

// IndexReport bundles the standardized indices and comfort transforms for
// the latest observation at a location.
type IndexReport struct {
	Location    domain.Location    `json:"location"`
	Date        string             `json:"date,omitempty"`
	SPI30       indices.Value      `json:"spi_30"`
	SPI90       indices.Value      `json:"spi_90"`
	SPEI30      indices.Value      `json:"spei_30"`
	PDSI        indices.Value      `json:"pdsi"`
	HeatIndex   indices.Value      `json:"heat_index"`
	WindChill   indices.Value      `json:"wind_chill"`
	DataQuality domain.DataQuality `json:"data_quality"`
}

// Indices computes an IndexReport over the recent window.
func (s *Service) Indices(ctx context.Context, loc domain.Location) (IndexReport, error) {
	if err := loc.Validate(); err != nil {
		return IndexReport{}, err
	}
	start, end := s.lookback(s.now())
	series := s.collector.Collect(ctx, loc, indexParameters, start, end)

	report := ComputeIndices(domain.MergeObservations(series))
	report.Location = loc
	report.DataQuality = ingest.Quality(series)
	return report, nil
}

// ComputeIndices derives every index from daily observations. Days missing
// either precipitation or temperature are left out of the water balance so
// both series stay aligned.
func ComputeIndices(observations []domain.DailyObservation) IndexReport {
	precip := domain.Extract(observations, domain.ParamPrecipitation)

	var balancePrecip, balanceTemp []domain.Point
	for _, obs := range observations {
		if obs.Precipitation == nil || obs.Temperature == nil {
			continue
		}
		balancePrecip = append(balancePrecip, domain.Point{Date: obs.Date, Value: *obs.Precipitation})
		balanceTemp = append(balanceTemp, domain.Point{Date: obs.Date, Value: *obs.Temperature})
	}
	pet := indices.EstimatePET(balanceTemp)

	report := IndexReport{
		SPI30:     indices.SPI(precip, 30),
		SPI90:     indices.SPI(precip, 90),
		SPEI30:    indices.SPEI(balancePrecip, pet, 30),
		PDSI:      indices.PDSI(balancePrecip, balanceTemp, pet),
		HeatIndex: indices.HeatIndex(math.NaN(), math.NaN()),
		WindChill: indices.WindChill(math.NaN(), math.NaN()),
	}
	if n := len(observations); n > 0 {
		report.Date = observations[n-1].Date
	}

	if obs, ok := latest(observations, func(o domain.DailyObservation) bool {
		return o.Temperature != nil && o.Humidity != nil
	}); ok {
		report.HeatIndex = indices.HeatIndex(indices.CelsiusToFahrenheit(*obs.Temperature), *obs.Humidity)
		report.HeatIndex.Date = obs.Date
	}
	if obs, ok := latest(observations, func(o domain.DailyObservation) bool {
		return o.Temperature != nil && o.WindSpeed != nil
	}); ok {
		report.WindChill = indices.WindChill(indices.CelsiusToFahrenheit(*obs.Temperature), indices.MetresPerSecondToMph(*obs.WindSpeed))
		report.WindChill.Date = obs.Date
	}
	return report
}

func latest(observations []domain.DailyObservation, usable func(domain.DailyObservation) bool) (domain.DailyObservation, bool) {
	for i := len(observations) - 1; i >= 0; i-- {
		if usable(observations[i]) {
			return observations[i], true
		}
	}
	return domain.DailyObservation{}, false
}
