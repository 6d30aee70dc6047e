package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Assessor scores hazards at a location.
type Assessor interface {
	Assess(ctx context.Context, hazard domain.Hazard, loc domain.Location) (domain.RiskAssessment, error)
	AssessAll(ctx context.Context, loc domain.Location) ([]domain.RiskAssessment, error)
}

// RiskTransformer implements Transformer by answering assessment requests.
type RiskTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates a RiskTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *RiskTransformer {
	return &RiskTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

// Transform parses a request and returns one assessment per requested
// hazard, each tagged with the request ID.
func (t *RiskTransformer) Transform(ctx context.Context, raw domain.RawEvent) ([]domain.RiskAssessment, error) {
	req, err := domain.ParseAssessmentRequest(raw)
	if err != nil {
		return nil, err
	}

	var out []domain.RiskAssessment
	if req.Hazard == "" {
		out, err = t.assessor.AssessAll(ctx, req.Location())
		if err != nil {
			return nil, err
		}
	} else {
		a, err := t.assessor.Assess(ctx, req.Hazard, req.Location())
		if err != nil {
			return nil, err
		}
		out = []domain.RiskAssessment{a}
	}

	for i := range out {
		out[i].RequestID = req.RequestID
	}
	t.logger.Debug("request assessed",
		"request_id", req.RequestID,
		"hazards", len(out),
	)
	return out, nil
}
