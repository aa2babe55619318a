package domain

import (
	"math"
	"sort"
)

// GridKey is a coordinate pair quantized to tenths of a degree.
type GridKey struct {
	Lat int
	Lon int
}

// GridKeyOf rounds each coordinate to one decimal place.
func GridKeyOf(c Coordinates) GridKey {
	return GridKey{
		Lat: int(math.Round(c.Lat * 10)),
		Lon: int(math.Round(c.Lon * 10)),
	}
}

// Center returns the coordinates the key was rounded to.
func (k GridKey) Center() Coordinates {
	return Coordinates{Lat: float64(k.Lat) / 10, Lon: float64(k.Lon) / 10}
}

// DemoSite is an exemplar site whose features are pinned for presentations.
type DemoSite struct {
	Name     string
	Key      GridKey
	Expected RiskLevel
	Features FeatureVector
}

// demoOverrides is read-only after package init.
var demoOverrides = map[GridKey]DemoSite{
	{Lat: 230, Lon: 865}: {
		Name:     "Jharia",
		Key:      GridKey{Lat: 230, Lon: 865},
		Expected: RiskHigh,
		Features: FeatureVector{Slope: 50, Rainfall: 70, Temperature: 35, Vibration: 3.5, WindSpeed: 10.0, DisplacementRate: 0.5},
	},
	{Lat: 223, Lon: 848}: {
		Name:     "Talcher",
		Key:      GridKey{Lat: 223, Lon: 848},
		Expected: RiskMedium,
		Features: FeatureVector{Slope: 35, Rainfall: 40, Temperature: 30, Vibration: 1.5, WindSpeed: 6.0, DisplacementRate: 0.3},
	},
	{Lat: 238, Lon: 850}: {
		Name:     "Dhanbad",
		Key:      GridKey{Lat: 238, Lon: 850},
		Expected: RiskLow,
		Features: FeatureVector{Slope: 15, Rainfall: 10, Temperature: 25, Vibration: 0.2, WindSpeed: 2.0, DisplacementRate: 0.1},
	},
}

// DemoOverride returns the pinned site for coordinates that round onto one.
func DemoOverride(c Coordinates) (DemoSite, bool) {
	site, ok := demoOverrides[GridKeyOf(c)]
	return site, ok
}

// DemoSites returns the pinned sites ordered by name.
func DemoSites() []DemoSite {
	sites := make([]DemoSite, 0, len(demoOverrides))
	for _, s := range demoOverrides {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites
}
