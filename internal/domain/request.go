package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request keys that are not features themselves.
const (
	keyLat          = "lat"
	keyLatitude     = "latitude"
	keyLon          = "lon"
	keyLongitude    = "longitude"
	keyRain         = "rain"
	keyDisplacement = "displacement"
)

// RawRequest is a decoded prediction request body. Numbers are kept as
// json.Number.
type RawRequest map[string]any

// ParseRawRequest decodes a JSON object body.
func ParseRawRequest(data []byte) (RawRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var req RawRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if req == nil {
		return nil, ErrInvalidBody
	}
	return req, nil
}

// Value returns the value stored under key, treating null as absent.
func (r RawRequest) Value(key string) (any, bool) {
	v, ok := r[key]
	return v, ok && v != nil
}

// Coordinates holds a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Coordinates reads "lat" (or "latitude") and "lon" (or "longitude").
func (r RawRequest) Coordinates() (Coordinates, error) {
	lat, okLat := r.first(keyLat, keyLatitude)
	lon, okLon := r.first(keyLon, keyLongitude)
	if !okLat || !okLon {
		return Coordinates{}, ErrMissingCoordinates
	}

	latF, okLat := Float(lat)
	lonF, okLon := Float(lon)
	if !okLat || !okLon {
		return Coordinates{}, ErrInvalidCoordinates
	}
	return Coordinates{Lat: latF, Lon: lonF}, nil
}

func (r RawRequest) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.Value(k); ok {
			return v, true
		}
	}
	return nil, false
}
