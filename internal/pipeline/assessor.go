package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
)

// Publisher forwards completed assessments downstream.
type Publisher interface {
	Publish(ctx context.Context, a domain.Assessment) error
}

// Assessor runs the resolve-classify-alert sequence for one request.
type Assessor struct {
	resolver   *Resolver
	classifier *Classifier
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewAssessor wires the stages. Pass a nil publisher to skip publishing.
func NewAssessor(resolver *Resolver, classifier *Classifier, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	return &Assessor{
		resolver:   resolver,
		classifier: classifier,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness delegates to the classifier.
func (a *Assessor) CheckReadiness(ctx context.Context) error {
	return a.classifier.CheckReadiness(ctx)
}

// Assess resolves, classifies and publishes one request.
func (a *Assessor) Assess(ctx context.Context, req domain.RawRequest) (domain.Assessment, error) {
	start := time.Now()

	res, err := a.resolver.Resolve(ctx, req)
	if err != nil {
		return domain.Assessment{}, err
	}

	a.logger.Info("final features",
		"lat", res.Coordinates.Lat,
		"lon", res.Coordinates.Lon,
		"features", res.Features,
		"demo_override", res.DemoSite,
	)

	pred, err := a.classifier.Classify(res.Features)
	if err != nil {
		return domain.Assessment{}, err
	}

	assessment := domain.NewAssessment(res.Coordinates, res.Features, pred, res.DemoSite)
	a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, assessment); err != nil {
			a.logger.Warn("publish assessment failed", "error", err, "assessment_id", assessment.ID)
		}
	}
	return assessment, nil
}
