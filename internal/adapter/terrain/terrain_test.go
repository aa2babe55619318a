package terrain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/upstream"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlopeTable_SlopeAt(t *testing.T) {
	table, err := DefaultSlopeTable()
	require.NoError(t, err)

	tests := []struct {
		name     string
		lat, lon float64
		want     float64
		wantErr  error
	}{
		{"exact site", 23.75, 86.42, 48, nil},
		{"nearest of overlapping sites", 23.80, 86.45, 22, nil},
		{"within radius", 23.66, 86.42, 48, nil},
		{"uncovered", 0, 0, 0, domain.ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.SlopeAt(context.Background(), tt.lat, tt.lon)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseSlopeTable_Invalid(t *testing.T) {
	_, err := ParseSlopeTable([]byte("sites:\n  - name: X\n    slope_deg: 10\n    radius_km: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius_km")

	_, err = ParseSlopeTable([]byte("sites:\n  - name: X\n    slope_deg: 120\n    radius_km: 1\n"))
	require.Error(t, err)

	_, err = ParseSlopeTable([]byte("sites: [unclosed"))
	require.Error(t, err)
}

func TestHaversineKm(t *testing.T) {
	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, haversineKm(0, 0, 1, 0), 0.1)
	assert.Zero(t, haversineKm(23, 86, 23, 86))
}

func newElevationClient(url string) *ElevationClient {
	return NewElevationClient(upstream.NewClient("open_elevation", 5*time.Second, observability.NewMetricsForTesting()), url)
}

func TestElevationClient_ElevationAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "23.750000,86.420000", r.URL.Query().Get("locations"))
		_, _ = w.Write([]byte(`{"results":[{"latitude":23.75,"longitude":86.42,"elevation":221.0}]}`))
	}))
	defer srv.Close()

	got, err := newElevationClient(srv.URL).ElevationAt(context.Background(), 23.75, 86.42)
	require.NoError(t, err)
	assert.InDelta(t, 221.0, got, 1e-9)
}

func TestElevationClient_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := newElevationClient(srv.URL).ElevationAt(context.Background(), 1, 1)
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestElevationClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newElevationClient(srv.URL).ElevationAt(context.Background(), 1, 1)
	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
}

// --- mock for cache tests ---

type countingElevation struct {
	calls int
	value float64
	err   error
}

func (m *countingElevation) ElevationAt(_ context.Context, _, _ float64) (float64, error) {
	m.calls++
	return m.value, m.err
}

// --- CachedElevation tests ---

func TestCachedElevation_CacheHit(t *testing.T) {
	inner := &countingElevation{value: 310}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedElevation(inner, 10, metrics)

	v1, err := cached.ElevationAt(context.Background(), 23.75, 86.42)
	require.NoError(t, err)
	v2, err := cached.ElevationAt(context.Background(), 23.75001, 86.42001)
	require.NoError(t, err)

	assert.InDelta(t, 310.0, v1, 1e-9)
	assert.InDelta(t, 310.0, v2, 1e-9)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ElevationCache.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ElevationCache.WithLabelValues("miss")), 1e-9)
}

func TestCachedElevation_ErrorsNotCached(t *testing.T) {
	inner := &countingElevation{err: errors.New("timeout")}
	cached := NewCachedElevation(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ElevationAt(context.Background(), 1, 1)
	require.Error(t, err)
	_, err = cached.ElevationAt(context.Background(), 1, 1)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[float64](2)

	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[float64](2)

	c.put("a", 1)
	c.put("b", 2)
	c.get("a")
	c.put("c", 3) // evicts "b", the least recently used

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[float64](2)

	c.put("a", 1)
	c.put("a", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)
}
