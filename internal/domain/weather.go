package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Rainfall holds rain accumulations as reported by a weather provider.
type Rainfall struct {
	OneHour   *float64 `json:"1h,omitempty"`
	ThreeHour *float64 `json:"3h,omitempty"`
}

// UnmarshalJSON accepts either a bare number, read as the hourly figure,
// or an object with "1h" and/or "3h" keys.
func (r *Rainfall) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode rainfall: %w", err)
		}
		*r = Rainfall{OneHour: &v}
		return nil
	}
	type plain Rainfall
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode rainfall: %w", err)
	}
	*r = Rainfall(p)
	return nil
}

// Hourly returns the 1h figure, else a third of the 3h figure, else 0.
// A zero figure counts as missing.
func (r Rainfall) Hourly() float64 {
	if r.OneHour != nil && *r.OneHour != 0 {
		return *r.OneHour
	}
	if r.ThreeHour != nil && *r.ThreeHour != 0 {
		return *r.ThreeHour / 3
	}
	return 0
}

// WeatherSnapshot is a provider-neutral current weather reading. Nil
// fields were not reported.
type WeatherSnapshot struct {
	Temp      *float64  `json:"temp"`
	Humidity  *float64  `json:"humidity"`
	Rain      *Rainfall `json:"rain"`
	WindSpeed *float64  `json:"wind_speed"`
}

// WeatherSummary is the normalized view served by the weather endpoint.
type WeatherSummary struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Rainfall    *float64 `json:"rainfall"`
	WindSpeed   *float64 `json:"wind_speed"`
}

// WeatherReport combines both providers' readings with a summary.
type WeatherReport struct {
	OpenWeather *WeatherSnapshot `json:"openweather"`
	NASAPower   *WeatherSnapshot `json:"nasa_power"`
	Summary     WeatherSummary   `json:"summary"`
}

// Summarize prefers the primary snapshot and falls back to the secondary.
// The primary always reports a rainfall figure (0 when it has no rain
// object); the secondary does not report humidity.
func Summarize(primary, secondary *WeatherSnapshot) WeatherSummary {
	switch {
	case primary != nil:
		rain := 0.0
		if primary.Rain != nil {
			rain = primary.Rain.Hourly()
		}
		return WeatherSummary{
			Temperature: primary.Temp,
			Humidity:    primary.Humidity,
			Rainfall:    &rain,
			WindSpeed:   primary.WindSpeed,
		}
	case secondary != nil:
		s := WeatherSummary{Temperature: secondary.Temp, WindSpeed: secondary.WindSpeed}
		if secondary.Rain != nil {
			rain := secondary.Rain.Hourly()
			s.Rainfall = &rain
		}
		return s
	default:
		return WeatherSummary{}
	}
}
