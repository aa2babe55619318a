package domain

import (
	"fmt"
	"math"
)

// Feature names as they appear in requests, responses and model artifacts.
const (
	FieldRainfall         = "rainfall"
	FieldTemperature      = "temperature"
	FieldSlope            = "slope"
	FieldWindSpeed        = "wind_speed"
	FieldDisplacementRate = "displacement_rate"
	FieldVibration        = "vibration"
)

// FeatureOrder is the column order the model was trained on.
var FeatureOrder = [6]string{
	FieldRainfall,
	FieldTemperature,
	FieldSlope,
	FieldWindSpeed,
	FieldDisplacementRate,
	FieldVibration,
}

// Fallbacks applied when a feature cannot be resolved or coerced.
const (
	DefaultRainfall         = 10.0
	DefaultTemperature      = 25.0
	DefaultSlope            = 30.0
	DefaultWindSpeed        = 2.0
	DefaultDisplacementRate = 0.01
	DefaultVibration        = 0.0
)

// FeatureVector is the complete model input.
type FeatureVector struct {
	Rainfall         float64 `json:"rainfall"`
	Temperature      float64 `json:"temperature"`
	Slope            float64 `json:"slope"`
	WindSpeed        float64 `json:"wind_speed"`
	DisplacementRate float64 `json:"displacement_rate"`
	Vibration        float64 `json:"vibration"`
}

// Vector lays the features out in FeatureOrder.
func (f FeatureVector) Vector() []float64 {
	return []float64{
		f.Rainfall,
		f.Temperature,
		f.Slope,
		f.WindSpeed,
		f.DisplacementRate,
		f.Vibration,
	}
}

// Finite reports whether every feature is a finite number.
func (f FeatureVector) Finite() bool {
	for _, v := range f.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ParseFeatureVector builds a FeatureVector from a mapping that must carry
// all six features. Absent keys are reported together in a
// MissingFeaturesError; a present but non-numeric value is a PredictionError.
func ParseFeatureVector(m map[string]any) (FeatureVector, error) {
	var missing []string
	for _, name := range FeatureOrder {
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return FeatureVector{}, &MissingFeaturesError{Fields: missing}
	}

	var values [6]float64
	for i, name := range FeatureOrder {
		v, ok := Float(m[name])
		if !ok {
			return FeatureVector{}, &PredictionError{Cause: fmt.Errorf("feature %q is not numeric: %v", name, m[name])}
		}
		values[i] = v
	}

	return FeatureVector{
		Rainfall:         values[0],
		Temperature:      values[1],
		Slope:            values[2],
		WindSpeed:        values[3],
		DisplacementRate: values[4],
		Vibration:        values[5],
	}, nil
}
