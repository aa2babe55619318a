package terrain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/upstream"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
)

// ElevationLookup returns the ground elevation in meters at a location.
type ElevationLookup interface {
	ElevationAt(ctx context.Context, lat, lon float64) (float64, error)
}

// ElevationClient implements ElevationLookup using an Open-Elevation
// compatible lookup endpoint.
type ElevationClient struct {
	client  *upstream.Client
	baseURL string
}

// NewElevationClient creates an elevation client.
func NewElevationClient(client *upstream.Client, baseURL string) *ElevationClient {
	return &ElevationClient{client: client, baseURL: baseURL}
}

// ElevationAt returns the elevation for a single point.
func (c *ElevationClient) ElevationAt(ctx context.Context, lat, lon float64) (float64, error) {
	loc := strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lon, 'f', 6, 64)
	params := url.Values{"locations": {loc}}

	var resp elevationResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return 0, fmt.Errorf("elevation lookup: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Elevation == nil {
		return 0, domain.ErrNoData
	}
	return *resp.Results[0].Elevation, nil
}

// Open-Elevation API response types.

type elevationResponse struct {
	Results []struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}
