package assess

import (
	"context"
	"fmt"
	"sort"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/events"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
)

var eventParameters = []domain.Parameter{
	domain.ParamTemperatureMax,
	domain.ParamTemperatureMin,
	domain.ParamPrecipitation,
	domain.ParamWindSpeed,
}

// EventReport is the set of events detected in one window.
type EventReport struct {
	Location    domain.Location        `json:"location"`
	Start       string                 `json:"start"`
	End         string                 `json:"end"`
	Events      []domain.DetectedEvent `json:"events"`
	DataQuality domain.DataQuality     `json:"data_quality"`
}

// Events detects heat waves, cold waves, droughts, floods and storms at loc
// between start and end inclusive. Empty bounds default to the recent
// window. Events are ordered by start date, then type.
func (s *Service) Events(ctx context.Context, loc domain.Location, start, end string) (EventReport, error) {
	if err := loc.Validate(); err != nil {
		return EventReport{}, err
	}
	from, to, err := s.window(start, end)
	if err != nil {
		return EventReport{}, err
	}

	key := fmt.Sprintf("%s|%s|%s", locationKey(loc), from, to)
	if cached, ok := s.events.Get(key); ok {
		return EventReport{Location: loc, Start: from, End: to, Events: cached, DataQuality: domain.QualityOK}, nil
	}

	series := s.collector.Collect(ctx, loc, eventParameters, from, to)
	detected := DetectAll(series)
	quality := ingest.Quality(series)

	if quality == domain.QualityOK {
		s.events.Set(key, detected, 0)
	}
	if s.opts.Metrics != nil {
		for _, e := range detected {
			s.opts.Metrics.EventsDetected.WithLabelValues(string(e.Type)).Inc()
		}
	}
	s.opts.Logger.Info("events detected",
		"lat", loc.Lat,
		"lon", loc.Lon,
		"start", from,
		"end", to,
		"count", len(detected),
		"quality", quality,
	)
	return EventReport{Location: loc, Start: from, End: to, Events: detected, DataQuality: quality}, nil
}

// DetectAll runs every detector with default thresholds over the series
// and merges the results.
func DetectAll(series map[domain.Parameter]domain.Series) []domain.DetectedEvent {
	tmax := series[domain.ParamTemperatureMax].Points
	tmin := series[domain.ParamTemperatureMin].Points
	precip := series[domain.ParamPrecipitation].Points
	wind := series[domain.ParamWindSpeed].Points

	out := make([]domain.DetectedEvent, 0)
	out = append(out, events.DetectHeatWaves(tmax, events.DefaultHeatWave)...)
	out = append(out, events.DetectColdWaves(tmin, events.DefaultColdWave)...)
	out = append(out, events.DetectDroughts(precip, events.DefaultDrought)...)
	out = append(out, events.DetectFloods(precip, events.DefaultFlood)...)
	out = append(out, events.DetectStorms(wind, events.DefaultStorm)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// window validates explicit bounds, defaulting empty ones to the recent
// window.
func (s *Service) window(start, end string) (string, string, error) {
	defStart, defEnd := s.lookback(s.now())
	from, to := defStart, defEnd
	if start != "" {
		d, ok := ingest.NormalizeDate(start)
		if !ok {
			return "", "", fmt.Errorf("%w: start %q", domain.ErrInvalidWindow, start)
		}
		from = d
	}
	if end != "" {
		d, ok := ingest.NormalizeDate(end)
		if !ok {
			return "", "", fmt.Errorf("%w: end %q", domain.ErrInvalidWindow, end)
		}
		to = d
	}
	if from > to {
		return "", "", fmt.Errorf("%w: %s is after %s", domain.ErrInvalidWindow, from, to)
	}
	return from, to, nil
}
