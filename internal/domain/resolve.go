package domain

import "math"

// MinDisplacementRate floors the slope-derived displacement rate.
const MinDisplacementRate = 0.01

// Source yields a candidate value for one feature; ok is false when the
// source has nothing to offer.
type Source func() (v any, ok bool)

// First returns the value of the first available source.
func First(sources ...Source) (any, bool) {
	for _, s := range sources {
		if v, ok := s(); ok {
			return v, true
		}
	}
	return nil, false
}

// FromRequest reads a non-null request key.
func FromRequest(r RawRequest, key string) Source {
	return func() (any, bool) { return r.Value(key) }
}

// FromLookup reads a field out of a successful lookup.
func FromLookup[T any](l Lookup[T], pick func(T) (any, bool)) Source {
	return func() (any, bool) {
		v, ok := l.Get()
		if !ok {
			return nil, false
		}
		return pick(v)
	}
}

// Constant always yields v.
func Constant(v float64) Source {
	return func() (any, bool) { return v, true }
}

// Observations are the collaborator reads made for one request.
type Observations struct {
	Weather Lookup[WeatherSnapshot]
	Slope   Lookup[float64]
	Sensors Lookup[SensorState]
}

// DisplacementFromSlope estimates a displacement rate of 1% of the slope
// in degrees, floored at MinDisplacementRate.
func DisplacementFromSlope(slopeDeg float64) float64 {
	return math.Max(MinDisplacementRate, 0.01*slopeDeg)
}

// ResolveFeatures fuses request overrides and observations into a
// complete FeatureVector. It never fails: anything unusable falls back to
// the feature's default.
func ResolveFeatures(req RawRequest, obs Observations) FeatureVector {
	rainfall, _ := First(
		FromRequest(req, FieldRainfall),
		FromLookup(obs.Weather, func(w WeatherSnapshot) (any, bool) {
			if w.Rain == nil {
				return nil, false
			}
			return w.Rain.Hourly(), true
		}),
		FromRequest(req, keyRain),
		Constant(DefaultRainfall),
	)
	temperature, _ := First(
		FromRequest(req, FieldTemperature),
		FromLookup(obs.Weather, func(w WeatherSnapshot) (any, bool) { return optional(w.Temp) }),
		Constant(DefaultTemperature),
	)
	windSpeed, _ := First(
		FromRequest(req, FieldWindSpeed),
		FromLookup(obs.Weather, func(w WeatherSnapshot) (any, bool) { return optional(w.WindSpeed) }),
		Constant(DefaultWindSpeed),
	)
	vibration, _ := First(
		FromRequest(req, FieldVibration),
		FromLookup(obs.Sensors, func(s SensorState) (any, bool) { return s.Value(FieldVibration) }),
		Constant(DefaultVibration),
	)
	slope, _ := First(
		FromRequest(req, FieldSlope),
		FromLookup(obs.Slope, func(deg float64) (any, bool) { return deg, true }),
		Constant(DefaultSlope),
	)
	displacement, _ := First(
		FromRequest(req, FieldDisplacementRate),
		func() (any, bool) {
			v, ok := req.Value(keyDisplacement)
			if !ok {
				return nil, false
			}
			return FloatOr(v, DefaultDisplacementRate), true
		},
		func() (any, bool) {
			return DisplacementFromSlope(FloatOr(slope, DefaultSlope)), true
		},
	)

	return FeatureVector{
		Rainfall:         FloatOr(rainfall, DefaultRainfall),
		Temperature:      FloatOr(temperature, DefaultTemperature),
		Slope:            FloatOr(slope, DefaultSlope),
		WindSpeed:        FloatOr(windSpeed, DefaultWindSpeed),
		DisplacementRate: FloatOr(displacement, DefaultDisplacementRate),
		Vibration:        FloatOr(vibration, DefaultVibration),
	}
}

func optional(p *float64) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
