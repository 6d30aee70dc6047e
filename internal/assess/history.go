package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/history"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
)

var historyParameters = []domain.Parameter{
	domain.ParamTemperature,
	domain.ParamPrecipitation,
	domain.ParamHumidity,
}

// History builds the multi-year monthly analysis of one hazard at loc.
// years <= 0 uses the configured default; more than MaxHistoryYears is
// rejected with ErrInvalidWindow.
func (s *Service) History(ctx context.Context, hazard domain.Hazard, loc domain.Location, years int) (history.Analysis, error) {
	if err := loc.Validate(); err != nil {
		return history.Analysis{}, err
	}
	if _, err := domain.ParseHazard(string(hazard)); err != nil {
		return history.Analysis{}, fmt.Errorf("%w: %q", err, hazard)
	}
	if years > MaxHistoryYears {
		return history.Analysis{}, fmt.Errorf("%w: %d years exceeds %d", domain.ErrInvalidWindow, years, MaxHistoryYears)
	}
	if years <= 0 {
		years = s.opts.HistoryYears
	}

	now := s.now()
	key := fmt.Sprintf("%s|%s|%d|%s", hazard, locationKey(loc), years, domain.FormatDate(now))
	if a, ok := s.histories.Get(key); ok {
		return a, nil
	}

	start := domain.FormatDate(time.Date(now.Year()-years+1, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := domain.FormatDate(now)
	series := s.collector.Collect(ctx, loc, historyParameters, start, end)

	var terrain *domain.Terrain
	if hazard == domain.HazardLandslide {
		terrain = s.terrain(ctx, loc)
	}

	analysis, err := history.Analyze(hazard, domain.MergeObservations(series), years, terrain)
	if err != nil {
		return history.Analysis{}, err
	}
	analysis.Location = loc

	if ingest.Quality(series) == domain.QualityOK {
		s.histories.Set(key, analysis, 0)
	}
	s.opts.Logger.Info("history analyzed",
		"hazard", hazard,
		"lat", loc.Lat,
		"lon", loc.Lon,
		"years", years,
		"months", len(analysis.Months),
		"trend", analysis.Trend,
	)
	return analysis, nil
}
