// Package sensors keeps the latest mine sensor readings and feeds them from
// a message source.
package sensors

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ErrStale is returned when the newest reading is older than the staleness
// window. It wraps domain.ErrNoData, so stale state reads as absent.
var ErrStale = fmt.Errorf("sensor state is stale: %w", domain.ErrNoData)

// Store holds the latest value per reading name. It implements
// domain.SensorStateReader.
type Store struct {
	mu         sync.RWMutex
	state      domain.SensorState
	updatedAt  time.Time
	staleAfter time.Duration
	clock      clockwork.Clock
}

// NewStore creates an empty store. A zero staleAfter disables the check.
func NewStore(staleAfter time.Duration, clock clockwork.Clock) *Store {
	return &Store{
		state:      domain.SensorState{},
		staleAfter: staleAfter,
		clock:      clock,
	}
}

// Update merges readings into the current state.
func (s *Store) Update(readings map[string]any) {
	if len(readings) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.state, readings)
	s.updatedAt = s.clock.Now()
}

// LatestSensorState returns a copy of the current state.
func (s *Store) LatestSensorState(_ context.Context) (domain.SensorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.state) == 0 {
		return nil, domain.ErrNoData
	}
	if s.staleAfter > 0 && s.clock.Since(s.updatedAt) > s.staleAfter {
		return nil, ErrStale
	}
	return maps.Clone(s.state), nil
}

// UpdatedAt returns when the state last changed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
