package domain

import "context"

// WeatherProvider returns the current weather at a location.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// SlopeLookup returns the bench slope in degrees at a location, or
// ErrNoData when the location is not covered.
type SlopeLookup interface {
	SlopeAt(ctx context.Context, lat, lon float64) (float64, error)
}

// SensorStateReader returns the most recent merged sensor readings.
type SensorStateReader interface {
	LatestSensorState(ctx context.Context) (SensorState, error)
}

// ProbabilityModel returns the probability of the positive (rockfall)
// class for a feature vector laid out in FeatureOrder.
type ProbabilityModel interface {
	Probability(x []float64) (float64, error)
}

// SensorState is the latest value seen for each sensor reading name.
type SensorState map[string]any

// Value returns the reading stored under key, treating null as absent.
func (s SensorState) Value(key string) (any, bool) {
	v, ok := s[key]
	return v, ok && v != nil
}
