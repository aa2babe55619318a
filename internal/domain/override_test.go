package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The override table pins presentation sites; these tests keep it honest
// so it is never mistaken for real resolution.

func TestDemoOverride_Jharia(t *testing.T) {
	site, ok := DemoOverride(Coordinates{Lat: 23.04, Lon: 86.53})
	require.True(t, ok)

	assert.Equal(t, "Jharia", site.Name)
	assert.Equal(t, FeatureVector{
		Slope:            50,
		Rainfall:         70,
		Temperature:      35,
		Vibration:        3.5,
		WindSpeed:        10.0,
		DisplacementRate: 0.5,
	}, site.Features)
}

func TestDemoOverride_Rounding(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinates
		site string
	}{
		{name: "talcher exact", c: Coordinates{Lat: 22.3, Lon: 84.8}, site: "Talcher"},
		{name: "dhanbad rounded up", c: Coordinates{Lat: 23.76, Lon: 84.96}, site: "Dhanbad"},
		{name: "jharia from below", c: Coordinates{Lat: 22.96, Lon: 86.54}, site: "Jharia"},
		{name: "miss by a tenth", c: Coordinates{Lat: 23.16, Lon: 86.5}},
		{name: "swapped axes", c: Coordinates{Lat: 86.5, Lon: 23.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			site, ok := DemoOverride(tc.c)
			if tc.site == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.site, site.Name)
		})
	}
}

func TestDemoSites_OrderedAndIsolated(t *testing.T) {
	sites := DemoSites()
	require.Len(t, sites, 3)
	assert.Equal(t, "Dhanbad", sites[0].Name)
	assert.Equal(t, "Jharia", sites[1].Name)
	assert.Equal(t, "Talcher", sites[2].Name)

	sites[1].Features.Slope = 1
	again, ok := DemoOverride(Coordinates{Lat: 23.0, Lon: 86.5})
	require.True(t, ok)
	assert.Equal(t, 50.0, again.Features.Slope)
}

func TestGridKey_Center(t *testing.T) {
	k := GridKeyOf(Coordinates{Lat: 22.34, Lon: 84.76})
	assert.Equal(t, GridKey{Lat: 223, Lon: 848}, k)
	assert.InDelta(t, 22.3, k.Center().Lat, 1e-9)
	assert.InDelta(t, 84.8, k.Center().Lon, 1e-9)
}
