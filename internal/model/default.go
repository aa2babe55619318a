package model

import "github.com/couchcryptid/rockfall-risk-service/internal/domain"

// DefaultArtifact is the baseline model shipped with the service. Its
// weights rank the demo sites high, medium and low respectively.
func DefaultArtifact() Artifact {
	return Artifact{
		Kind:         KindLogisticRegression,
		Version:      "2024.10-baseline",
		Features:     append([]string(nil), domain.FeatureOrder[:]...),
		Intercept:    -5.0,
		Coefficients: []float64{0.03, 0.02, 0.06, 0.05, 3.0, 0.4},
	}
}
