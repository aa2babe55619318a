// Package model loads the rockfall classifier artifact.
//
// The artifact is a JSON-encoded logistic regression over the six domain
// features, optionally with per-feature standardization:
//
//	{
//	  "kind": "logistic_regression",
//	  "version": "2024.10",
//	  "features": ["rainfall", "temperature", "slope", "wind_speed", "displacement_rate", "vibration"],
//	  "intercept": -5.0,
//	  "coefficients": [0.03, 0.02, 0.06, 0.05, 3.0, 0.4],
//	  "scaler": {"mean": [...], "scale": [...]}
//	}
//
// The feature list must match domain.FeatureOrder exactly. A loaded
// Logistic is immutable and safe for concurrent use.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
)

// KindLogisticRegression is the only artifact kind understood.
const KindLogisticRegression = "logistic_regression"

// Artifact is the on-disk model description.
type Artifact struct {
	Kind         string    `json:"kind"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Scaler       *Scaler   `json:"scaler,omitempty"`
}

// Scaler standardizes each feature as (x - mean) / scale before weighting.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Logistic implements domain.ProbabilityModel.
type Logistic struct {
	version      string
	intercept    float64
	coefficients []float64
	mean         []float64
	scale        []float64
}

// Load reads and validates the artifact at path.
func Load(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an artifact.
func Parse(data []byte) (*Logistic, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact and builds the model from it.
func New(a Artifact) (*Logistic, error) {
	if a.Kind != KindLogisticRegression {
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	n := len(domain.FeatureOrder)
	if len(a.Features) != n {
		return nil, fmt.Errorf("model expects %d features, artifact lists %d", n, len(a.Features))
	}
	for i, name := range domain.FeatureOrder {
		if a.Features[i] != name {
			return nil, fmt.Errorf("feature %d: artifact has %q, want %q", i, a.Features[i], name)
		}
	}
	if len(a.Coefficients) != n {
		return nil, fmt.Errorf("artifact has %d coefficients, want %d", len(a.Coefficients), n)
	}
	if !finite(a.Intercept) || !allFinite(a.Coefficients) {
		return nil, errors.New("artifact weights must be finite")
	}

	m := &Logistic{
		version:      a.Version,
		intercept:    a.Intercept,
		coefficients: append([]float64(nil), a.Coefficients...),
	}

	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return nil, fmt.Errorf("scaler must have %d means and scales", n)
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 || !finite(s) || !finite(a.Scaler.Mean[i]) {
				return nil, fmt.Errorf("scaler entry %d (%s) is invalid", i, domain.FeatureOrder[i])
			}
		}
		m.mean = append([]float64(nil), a.Scaler.Mean...)
		m.scale = append([]float64(nil), a.Scaler.Scale...)
	}

	return m, nil
}

// Version returns the artifact version string.
func (m *Logistic) Version() string {
	return m.version
}

// Probability returns the probability of rockfall for x laid out in domain.FeatureOrder.
func (m *Logistic) Probability(x []float64) (float64, error) {
	if len(x) != len(m.coefficients) {
		return 0, fmt.Errorf("input has %d features, model expects %d", len(x), len(m.coefficients))
	}

	z := m.intercept
	for i, v := range x {
		if m.scale != nil {
			v = (v - m.mean[i]) / m.scale[i]
		}
		z += m.coefficients[i] * v
	}
	if !finite(z) {
		return 0, fmt.Errorf("non-finite decision value %v", z)
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
