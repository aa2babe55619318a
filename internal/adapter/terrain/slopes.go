// Package terrain provides static slope and elevation lookups.
package terrain

import (
	"context"
	_ "embed"
	"fmt"
	"math"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed slopes.yaml
var defaultSlopes []byte

const earthRadiusKm = 6371.0

// SlopeSite is one surveyed location.
type SlopeSite struct {
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	SlopeDeg float64 `yaml:"slope_deg"`
	RadiusKm float64 `yaml:"radius_km"`
}

// SlopeTable implements domain.SlopeLookup over a fixed set of sites.
type SlopeTable struct {
	sites []SlopeSite
}

// DefaultSlopeTable returns the embedded survey table.
func DefaultSlopeTable() (*SlopeTable, error) {
	return ParseSlopeTable(defaultSlopes)
}

// ParseSlopeTable parses a YAML table with a top-level "sites" list.
func ParseSlopeTable(data []byte) (*SlopeTable, error) {
	var doc struct {
		Sites []SlopeSite `yaml:"sites"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse slope table: %w", err)
	}
	for _, s := range doc.Sites {
		if s.RadiusKm <= 0 {
			return nil, fmt.Errorf("slope site %q: radius_km must be positive", s.Name)
		}
		if s.SlopeDeg < 0 || s.SlopeDeg > 90 {
			return nil, fmt.Errorf("slope site %q: slope_deg %v out of range", s.Name, s.SlopeDeg)
		}
	}
	return &SlopeTable{sites: doc.Sites}, nil
}

// SlopeAt returns the slope of the nearest site covering the location, or
// domain.ErrNoData when none does.
func (t *SlopeTable) SlopeAt(_ context.Context, lat, lon float64) (float64, error) {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range t.sites {
		d := haversineKm(lat, lon, s.Lat, s.Lon)
		if d <= s.RadiusKm && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, domain.ErrNoData
	}
	return t.sites[best].SlopeDeg, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
