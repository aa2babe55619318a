package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/upstream"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
)

// OpenWeatherURL is the current weather endpoint.
const OpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeather implements domain.WeatherProvider using the OpenWeather
// current weather API in metric units.
type OpenWeather struct {
	client  *upstream.Client
	apiKey  string
	baseURL string
}

// NewOpenWeather creates an OpenWeather client.
func NewOpenWeather(client *upstream.Client, apiKey, baseURL string) *OpenWeather {
	if baseURL == "" {
		baseURL = OpenWeatherURL
	}
	return &OpenWeather{client: client, apiKey: apiKey, baseURL: baseURL}
}

// CurrentWeather returns the current reading at a location.
func (o *OpenWeather) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {o.apiKey},
		"units": {"metric"},
	}

	var resp openWeatherResponse
	if err := o.client.GetJSON(ctx, o.baseURL+"?"+params.Encode(), &resp); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("openweather current weather: %w", err)
	}

	return domain.WeatherSnapshot{
		Temp:      resp.Main.Temp,
		Humidity:  resp.Main.Humidity,
		Rain:      resp.Rain,
		WindSpeed: resp.Wind.Speed,
	}, nil
}

// OpenWeather API response types.

type openWeatherResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Rain *domain.Rainfall `json:"rain"`
}
