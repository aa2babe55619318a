package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
)

// --- mocks ---

type mockWeather struct {
	snap  domain.WeatherSnapshot
	err   error
	calls atomic.Int64
}

func (m *mockWeather) CurrentWeather(_ context.Context, _, _ float64) (domain.WeatherSnapshot, error) {
	m.calls.Add(1)
	return m.snap, m.err
}

type mockSlope struct {
	slope float64
	err   error
	calls atomic.Int64
}

func (m *mockSlope) SlopeAt(_ context.Context, _, _ float64) (float64, error) {
	m.calls.Add(1)
	return m.slope, m.err
}

type mockSensors struct {
	state domain.SensorState
	err   error
	calls atomic.Int64
}

func (m *mockSensors) LatestSensorState(_ context.Context) (domain.SensorState, error) {
	m.calls.Add(1)
	return m.state, m.err
}

type mockModel struct {
	p     float64
	err   error
	calls atomic.Int64
	last  []float64
}

func (m *mockModel) Probability(x []float64) (float64, error) {
	m.calls.Add(1)
	m.last = append([]float64(nil), x...)
	return m.p, m.err
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Assessment
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, a domain.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, a)
	return m.err
}

var errUpstream = errors.New("upstream down")

func ptr(v float64) *float64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}
