package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func noObservations() Observations {
	return Observations{
		Weather: Absent[WeatherSnapshot](),
		Slope:   Absent[float64](),
		Sensors: Absent[SensorState](),
	}
}

func TestResolveFeatures_AllDefaults(t *testing.T) {
	got := ResolveFeatures(RawRequest{"lat": 10.0, "lon": 10.0}, noObservations())

	assert.Equal(t, DefaultRainfall, got.Rainfall)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Equal(t, DefaultSlope, got.Slope)
	assert.Equal(t, DefaultWindSpeed, got.WindSpeed)
	assert.Equal(t, DefaultVibration, got.Vibration)
	// derived from the default slope
	assert.InDelta(t, 0.3, got.DisplacementRate, 1e-12)
	assert.True(t, got.Finite())
}

func TestResolveFeatures_RequestOverridesWin(t *testing.T) {
	req := RawRequest{
		"rainfall":          json.Number("55"),
		"temperature":       "31.5",
		"slope":             45,
		"wind_speed":        7.0,
		"displacement_rate": 0.2,
		"vibration":         1.1,
	}
	obs := Observations{
		Weather: Found(WeatherSnapshot{Temp: ptr(10), WindSpeed: ptr(1), Rain: &Rainfall{OneHour: ptr(4)}}),
		Slope:   Found(20.0),
		Sensors: Found(SensorState{"vibration": 9.0}),
	}

	got := ResolveFeatures(req, obs)

	assert.Equal(t, FeatureVector{
		Rainfall:         55,
		Temperature:      31.5,
		Slope:            45,
		WindSpeed:        7,
		DisplacementRate: 0.2,
		Vibration:        1.1,
	}, got)
}

func TestResolveFeatures_ObservationsFillGaps(t *testing.T) {
	obs := Observations{
		Weather: Found(WeatherSnapshot{Temp: ptr(18), WindSpeed: ptr(4.5), Rain: &Rainfall{OneHour: ptr(2.5)}}),
		Slope:   Found(40.0),
		Sensors: Found(SensorState{"vibration": json.Number("2.2")}),
	}

	got := ResolveFeatures(RawRequest{}, obs)

	assert.Equal(t, 2.5, got.Rainfall)
	assert.Equal(t, 18.0, got.Temperature)
	assert.Equal(t, 4.5, got.WindSpeed)
	assert.Equal(t, 40.0, got.Slope)
	assert.InDelta(t, 0.4, got.DisplacementRate, 1e-12)
	assert.Equal(t, 2.2, got.Vibration)
}

func TestResolveFeatures_Rainfall(t *testing.T) {
	cases := []struct {
		name    string
		req     RawRequest
		weather Lookup[WeatherSnapshot]
		want    float64
	}{
		{
			name:    "three hour accumulation divided",
			weather: Found(WeatherSnapshot{Rain: &Rainfall{ThreeHour: ptr(9)}}),
			want:    3.0,
		},
		{
			name:    "one hour preferred over three hour",
			weather: Found(WeatherSnapshot{Rain: &Rainfall{OneHour: ptr(1.2), ThreeHour: ptr(9)}}),
			want:    1.2,
		},
		{
			name:    "empty rain object reads as dry",
			req:     RawRequest{"rain": 5.0},
			weather: Found(WeatherSnapshot{Rain: &Rainfall{}}),
			want:    0,
		},
		{
			name:    "no rain object falls through to request rain",
			req:     RawRequest{"rain": 5.0},
			weather: Found(WeatherSnapshot{Temp: ptr(20)}),
			want:    5.0,
		},
		{
			name:    "failed weather falls through to request rain",
			req:     RawRequest{"rain": "6"},
			weather: Failed[WeatherSnapshot](errors.New("timeout")),
			want:    6.0,
		},
		{
			name:    "override beats weather",
			req:     RawRequest{"rainfall": 12.0, "rain": 5.0},
			weather: Found(WeatherSnapshot{Rain: &Rainfall{OneHour: ptr(1)}}),
			want:    12.0,
		},
		{
			name:    "non numeric override takes the fallback",
			req:     RawRequest{"rainfall": "lots"},
			weather: Found(WeatherSnapshot{Rain: &Rainfall{OneHour: ptr(1)}}),
			want:    DefaultRainfall,
		},
		{
			name:    "null override is skipped",
			req:     RawRequest{"rainfall": nil},
			weather: Found(WeatherSnapshot{Rain: &Rainfall{OneHour: ptr(1)}}),
			want:    1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := noObservations()
			obs.Weather = tc.weather
			req := tc.req
			if req == nil {
				req = RawRequest{}
			}
			got := ResolveFeatures(req, obs)
			assert.InDelta(t, tc.want, got.Rainfall, 1e-12)
		})
	}
}

func TestResolveFeatures_DisplacementRate(t *testing.T) {
	cases := []struct {
		name  string
		req   RawRequest
		slope Lookup[float64]
		want  float64
	}{
		{name: "derived from looked up slope", slope: Found(40.0), want: 0.4},
		{name: "floor applies to gentle slope", slope: Found(0.5), want: 0.01},
		{name: "floor applies to negative slope", req: RawRequest{"slope": -10}, want: 0.01},
		{name: "derived from slope override", req: RawRequest{"slope": "25"}, want: 0.25},
		{name: "non numeric slope derives from default", req: RawRequest{"slope": "steep"}, want: 0.3},
		{name: "displacement field used", req: RawRequest{"displacement": 0.07}, slope: Found(40.0), want: 0.07},
		{name: "bad displacement field", req: RawRequest{"displacement": "n/a"}, slope: Found(40.0), want: 0.01},
		{name: "explicit rate wins", req: RawRequest{"displacement_rate": 0.9, "displacement": 0.07}, want: 0.9},
		{name: "bad explicit rate", req: RawRequest{"displacement_rate": "x"}, slope: Found(40.0), want: 0.01},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := noObservations()
			if tc.slope.Status == LookupFound {
				obs.Slope = tc.slope
			}
			req := tc.req
			if req == nil {
				req = RawRequest{}
			}
			got := ResolveFeatures(req, obs)
			assert.InDelta(t, tc.want, got.DisplacementRate, 1e-12)
		})
	}
}

func TestResolveFeatures_SlopeLookupZeroIsUsed(t *testing.T) {
	obs := noObservations()
	obs.Slope = Found(0.0)

	got := ResolveFeatures(RawRequest{}, obs)

	assert.Equal(t, 0.0, got.Slope)
	assert.Equal(t, MinDisplacementRate, got.DisplacementRate)
}

func TestResolveFeatures_SensorStateWithoutVibration(t *testing.T) {
	obs := noObservations()
	obs.Sensors = Found(SensorState{"displacement": 0.4})

	got := ResolveFeatures(RawRequest{}, obs)

	assert.Equal(t, DefaultVibration, got.Vibration)
}

func TestResolveFeatures_GarbageNeverLeaks(t *testing.T) {
	req := RawRequest{
		"rainfall":          map[string]any{"1h": 3},
		"temperature":       []any{1, 2},
		"slope":             "NaN",
		"wind_speed":        "Inf",
		"displacement_rate": struct{}{},
		"vibration":         "loud",
	}

	got := ResolveFeatures(req, noObservations())

	require.True(t, got.Finite())
	assert.Equal(t, FeatureVector{
		Rainfall:         DefaultRainfall,
		Temperature:      DefaultTemperature,
		Slope:            DefaultSlope,
		WindSpeed:        DefaultWindSpeed,
		DisplacementRate: DefaultDisplacementRate,
		Vibration:        DefaultVibration,
	}, got)
}

func TestResolveFeatures_Deterministic(t *testing.T) {
	req := RawRequest{"lat": 12.3, "lon": 45.6, "rain": 3}
	obs := Observations{
		Weather: Found(WeatherSnapshot{Temp: ptr(21)}),
		Slope:   Found(33.0),
		Sensors: Failed[SensorState](errors.New("broker down")),
	}

	first := ResolveFeatures(req, obs)
	for range 10 {
		assert.Equal(t, first, ResolveFeatures(req, obs))
	}
}

func TestFirst_ShortCircuits(t *testing.T) {
	called := false
	v, ok := First(
		Constant(1),
		func() (any, bool) {
			called = true
			return 2.0, true
		},
	)

	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.False(t, called)
}

func TestLookupOf(t *testing.T) {
	assert.Equal(t, LookupFound, LookupOf(1.0, nil).Status)
	assert.Equal(t, LookupAbsent, LookupOf(0.0, ErrNoData).Status)

	failed := LookupOf(0.0, errors.New("boom"))
	assert.Equal(t, LookupFailed, failed.Status)
	assert.EqualError(t, failed.Err, "boom")
	assert.Equal(t, "failed", failed.Status.String())
}
