package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
)

// Classifier maps feature vectors to risk predictions using a model
// handle loaded once at startup.
type Classifier struct {
	model   domain.ProbabilityModel
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClassifier creates a Classifier. A nil model makes every
// classification fail with domain.ErrModelUnavailable.
func NewClassifier(model domain.ProbabilityModel, logger *slog.Logger, metrics *observability.Metrics) *Classifier {
	loaded := 0.0
	if model != nil {
		loaded = 1
	}
	metrics.ModelLoaded.Set(loaded)

	return &Classifier{model: model, logger: logger, metrics: metrics}
}

// CheckReadiness reports whether a model is loaded.
func (c *Classifier) CheckReadiness(_ context.Context) error {
	if c.model == nil {
		return domain.ErrModelUnavailable
	}
	return nil
}

// Classify scores a complete feature vector.
func (c *Classifier) Classify(features domain.FeatureVector) (domain.RiskPrediction, error) {
	if c.model == nil {
		c.metrics.PredictionErrors.WithLabelValues("model_unavailable").Inc()
		return domain.RiskPrediction{}, domain.ErrModelUnavailable
	}

	p, err := c.model.Probability(features.Vector())
	if err == nil && (math.IsNaN(p) || p < 0 || p > 1) {
		err = fmt.Errorf("model returned probability %v outside [0, 1]", p)
	}
	if err != nil {
		c.metrics.PredictionErrors.WithLabelValues("model_error").Inc()
		c.logger.Error("model prediction failed", "error", err, "features", features)
		return domain.RiskPrediction{}, &domain.PredictionError{Cause: err}
	}

	pred := domain.NewRiskPrediction(p)
	c.metrics.Predictions.WithLabelValues(string(pred.Risk)).Inc()
	c.logger.Info("prediction computed",
		"risk", pred.Risk,
		"probability", pred.Probability,
		"rockfall_predicted", pred.RockfallPredicted,
	)
	return pred, nil
}

// ClassifyMap validates a feature mapping and scores it.
func (c *Classifier) ClassifyMap(m map[string]any) (domain.FeatureVector, domain.RiskPrediction, error) {
	if c.model == nil {
		c.metrics.PredictionErrors.WithLabelValues("model_unavailable").Inc()
		return domain.FeatureVector{}, domain.RiskPrediction{}, domain.ErrModelUnavailable
	}
	features, err := domain.ParseFeatureVector(m)
	if err != nil {
		return domain.FeatureVector{}, domain.RiskPrediction{}, err
	}
	pred, err := c.Classify(features)
	return features, pred, err
}
