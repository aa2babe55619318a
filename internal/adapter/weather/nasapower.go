package weather

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/upstream"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// NASAPowerURL is the daily point endpoint.
const NASAPowerURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// NASA POWER parameter names.
const (
	paramTemperature = "T2M"
	paramRainfall    = "PRECTOTCORR"
	paramWindSpeed   = "WS10M"
)

// fillValue marks days NASA POWER has no data for.
const fillValue = -999

// window is how far back the daily series is requested. Recent days are
// often still filled, so the latest real value is used.
const window = 7 * 24 * time.Hour

// NASAPower implements domain.WeatherProvider using NASA POWER daily data.
// Daily precipitation is reported as the hourly rain figure.
type NASAPower struct {
	client  *upstream.Client
	baseURL string
	clock   clockwork.Clock
}

// NewNASAPower creates a NASA POWER client.
func NewNASAPower(client *upstream.Client, baseURL string, clock clockwork.Clock) *NASAPower {
	if baseURL == "" {
		baseURL = NASAPowerURL
	}
	return &NASAPower{client: client, baseURL: baseURL, clock: clock}
}

// CurrentWeather returns the latest daily values near a location.
func (n *NASAPower) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	end := n.clock.Now().UTC()
	start := end.Add(-window)

	params := url.Values{
		"parameters": {paramTemperature + "," + paramRainfall + "," + paramWindSpeed},
		"community":  {"RE"},
		"latitude":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', -1, 64)},
		"start":      {start.Format("20060102")},
		"end":        {end.Format("20060102")},
		"format":     {"JSON"},
	}

	var resp nasaPowerResponse
	if err := n.client.GetJSON(ctx, n.baseURL+"?"+params.Encode(), &resp); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("nasa power daily point: %w", err)
	}

	series := resp.Properties.Parameter
	snap := domain.WeatherSnapshot{
		Temp:      latest(series[paramTemperature]),
		WindSpeed: latest(series[paramWindSpeed]),
	}
	if rain := latest(series[paramRainfall]); rain != nil {
		snap.Rain = &domain.Rainfall{OneHour: rain}
	}

	if snap.Temp == nil && snap.WindSpeed == nil && snap.Rain == nil {
		return domain.WeatherSnapshot{}, domain.ErrNoData
	}
	return snap, nil
}

// latest returns the most recent non-fill value of a date-keyed series.
// Keys are YYYYMMDD, so lexical order is chronological.
func latest(series map[string]float64) *float64 {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, k := range keys {
		if v := series[k]; v != fillValue {
			return &v
		}
	}
	return nil
}

// NASA POWER API response types.

type nasaPowerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}
