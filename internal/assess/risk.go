package assess

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
	"golang.org/x/sync/errgroup"
)

// trendLagDays is how far back the comparison score for Trend is taken.
const trendLagDays = 7

// hazardParameters lists the series each real-time scorer reads.
var hazardParameters = map[domain.Hazard][]domain.Parameter{
	domain.HazardFlood:     {domain.ParamPrecipitation},
	domain.HazardDrought:   {domain.ParamPrecipitation, domain.ParamTemperature},
	domain.HazardLandslide: {domain.ParamPrecipitation, domain.ParamSoilMoisture},
}

// Hazards lists every scored hazard in a stable order.
var Hazards = []domain.Hazard{domain.HazardFlood, domain.HazardDrought, domain.HazardLandslide}

// Assess scores one hazard at loc from the recent window. Upstream failures
// degrade the result's DataQuality; only an invalid location or hazard is
// an error.
func (s *Service) Assess(ctx context.Context, hazard domain.Hazard, loc domain.Location) (domain.RiskAssessment, error) {
	if err := loc.Validate(); err != nil {
		return domain.RiskAssessment{}, err
	}
	if _, err := domain.ParseHazard(string(hazard)); err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("%w: %q", err, hazard)
	}

	now := s.now()
	key := fmt.Sprintf("%s|%s|%s", hazard, locationKey(loc), domain.FormatDate(now))
	if a, ok := s.assessments.Get(key); ok {
		return a, nil
	}

	start, end := s.lookback(now)
	series := s.collector.Collect(ctx, loc, hazardParameters[hazard], start, end)

	var terrain *domain.Terrain
	if hazard != domain.HazardDrought {
		terrain = s.terrain(ctx, loc)
	}

	current := s.score(hazard, loc, series, terrain, "")
	a := current.Assessment(loc, now)
	a.Trend = s.trend(hazard, loc, series, terrain, current)
	a.DataQuality = combineQuality(current.Quality, ingest.Quality(series))

	if a.DataQuality != domain.QualityUpstreamFailure {
		s.assessments.Set(key, a, 0)
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.Assessments.WithLabelValues(string(hazard), string(a.RiskLevel)).Inc()
	}
	s.opts.Logger.Info("risk assessed",
		"hazard", hazard,
		"lat", loc.Lat,
		"lon", loc.Lon,
		"score", a.RiskScore,
		"level", a.RiskLevel,
		"quality", a.DataQuality,
	)
	return a, nil
}

// AssessAll scores every hazard at loc concurrently, in Hazards order.
func (s *Service) AssessAll(ctx context.Context, loc domain.Location) ([]domain.RiskAssessment, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.RiskAssessment, len(Hazards))
	g, gctx := errgroup.WithContext(ctx)
	for i, hazard := range Hazards {
		g.Go(func() error {
			a, err := s.Assess(gctx, hazard, loc)
			if err != nil {
				return fmt.Errorf("assess %s: %w", hazard, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// score runs the hazard's scorer with factors as of asOf (the latest
// observed day when empty).
func (s *Service) score(hazard domain.Hazard, loc domain.Location, series map[domain.Parameter]domain.Series, terrain *domain.Terrain, asOf string) risk.Result {
	precip := series[domain.ParamPrecipitation].Points
	switch hazard {
	case domain.HazardFlood:
		return risk.ScoreFlood(risk.FloodFactorsFrom(precip, terrain, asOf))
	case domain.HazardDrought:
		temp := series[domain.ParamTemperature].Points
		return risk.ScoreDrought(risk.DroughtFactorsFrom(precip, temp, s.opts.RegionalNormalTemp, asOf))
	default:
		soil := series[domain.ParamSoilMoisture].Points
		var events *int
		if s.opts.Catalog != nil {
			n := s.opts.Catalog.CountWithin(domain.HazardLandslide, loc, s.opts.LandslideRadiusKm)
			events = &n
		}
		return risk.ScoreLandslide(risk.LandslideFactorsFrom(precip, soil, terrain, nil, events, asOf))
	}
}

// trend compares the current score with the score of the same factors a
// week earlier.
func (s *Service) trend(hazard domain.Hazard, loc domain.Location, series map[domain.Parameter]domain.Series, terrain *domain.Terrain, current risk.Result) domain.Trend {
	if current.Quality == domain.QualityNoData {
		return domain.TrendUnknown
	}
	latest := latestDate(series)
	if latest == "" {
		return domain.TrendUnknown
	}
	earlier := domain.FormatDate(domain.ParseDate(latest).AddDate(0, 0, -trendLagDays))
	previous := s.score(hazard, loc, series, terrain, earlier)
	if previous.Quality == domain.QualityNoData {
		return domain.TrendUnknown
	}
	return risk.CompareTrend(previous.Score, current.Score)
}

func latestDate(series map[domain.Parameter]domain.Series) string {
	var latest string
	for _, s := range series {
		if n := len(s.Points); n > 0 && s.Points[n-1].Date > latest {
			latest = s.Points[n-1].Date
		}
	}
	return latest
}

// combineQuality merges the scorer's view of missing factors with the
// ingestion outcome. A fully missing result caused by failed fetches is
// reported as upstream_failure so callers know to retry.
func combineQuality(scored, fetched domain.DataQuality) domain.DataQuality {
	switch {
	case scored == domain.QualityNoData && fetched == domain.QualityUpstreamFailure:
		return domain.QualityUpstreamFailure
	case scored == domain.QualityOK && fetched != domain.QualityOK:
		return domain.QualityPartial
	default:
		return scored
	}
}
