package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Result is the outcome of one scorer.
type Result struct {
	Hazard          domain.Hazard
	Score           float64
	Level           domain.RiskLevel
	Components      []domain.ComponentScore
	Warnings        []string
	Recommendations []string
	Quality         domain.DataQuality
}

// Assessment wraps the result for consumers.
func (r Result) Assessment(loc domain.Location, at time.Time) domain.RiskAssessment {
	return domain.RiskAssessment{
		Hazard:          r.Hazard,
		Location:        loc,
		RiskScore:       r.Score,
		RiskLevel:       r.Level,
		Components:      r.Components,
		Warnings:        r.Warnings,
		Recommendations: r.Recommendations,
		Trend:           domain.TrendUnknown,
		DataQuality:     r.Quality,
		AssessedAt:      at,
	}
}

// Component returns the named component score.
func (r Result) Component(name string) (domain.ComponentScore, bool) {
	for _, c := range r.Components {
		if c.Name == name {
			return c, true
		}
	}
	return domain.ComponentScore{}, false
}

// scorecard accumulates component contributions for one scorer run.
type scorecard struct {
	components []domain.ComponentScore
	warnings   []string
	total      float64
	missing    int
	unobserved int
}

// score looks the factor up in its table and records the contribution.
// A nil factor is recorded as a missing component scoring 0.
func (s *scorecard) score(t table, v *float64) (band, bool) {
	if v == nil {
		s.record(t.name, t.weight, 0, true)
		return band{}, false
	}
	b, ok := t.lookup(*v)
	s.record(t.name, t.weight, b.score, false)
	return b, ok
}

// add scores the factor and emits the band's warning for it.
func (s *scorecard) add(t table, v *float64) {
	if b, ok := s.score(t, v); ok {
		s.warn(b, *v)
	}
}

// supplement scores a factor that has no live source. When unknown it is
// listed as missing but does not lower the data quality.
func (s *scorecard) supplement(t table, v *float64) {
	if v != nil {
		s.add(t, v)
		return
	}
	s.components = append(s.components, domain.ComponentScore{Name: t.name, Weight: t.weight, Missing: true})
	s.unobserved++
}

func (s *scorecard) record(name string, weight, score float64, missing bool) {
	score = min(score, weight)
	s.components = append(s.components, domain.ComponentScore{
		Name:    name,
		Score:   round4(score),
		Weight:  weight,
		Missing: missing,
	})
	s.total += score
	if missing {
		s.missing++
	}
}

func (s *scorecard) warn(b band, v float64) {
	if b.warn != "" {
		s.warnings = append(s.warnings, warning(b.warn, v))
	}
}

func (s *scorecard) finish(hazard domain.Hazard, levels ladder, advice map[domain.RiskLevel][]string) Result {
	score := round4(clamp01(s.total))
	level := levels.level(score)

	warnings := s.warnings
	if levels.top(level) {
		headline := fmt.Sprintf("%s %s risk (score %.2f)", titleLevel(level), hazard, score)
		warnings = append([]string{headline}, warnings...)
	}

	quality := domain.QualityOK
	switch {
	case s.missing > 0 && s.missing+s.unobserved == len(s.components):
		quality = domain.QualityNoData
	case s.missing > 0:
		quality = domain.QualityPartial
	}

	return Result{
		Hazard:          hazard,
		Score:           score,
		Level:           level,
		Components:      s.components,
		Warnings:        nonNil(warnings),
		Recommendations: nonNil(advice[level]),
		Quality:         quality,
	}
}

func titleLevel(level domain.RiskLevel) string {
	s := strings.ReplaceAll(string(level), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
