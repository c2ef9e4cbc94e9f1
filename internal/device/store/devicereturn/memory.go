// Package devicereturn provides DeviceReturnStore implementations.
//
// The store enforces the upsert key: at most one row per
// (participant, device) pair.
package devicereturn

import (
	"context"
	"sync"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

type key struct {
	participantID domain.ParticipantID
	deviceID      domain.DeviceID
}

// InMemory keeps device returns in a map keyed by (participant, device).
// Implements uow.Snapshotter for rollback under the memory unit of work.
type InMemory struct {
	mu      sync.RWMutex
	returns map[key]models.DeviceReturn
}

func NewInMemory() *InMemory {
	return &InMemory{returns: make(map[key]models.DeviceReturn)}
}

func (s *InMemory) Get(_ context.Context, participantID domain.ParticipantID, deviceID domain.DeviceID) (*models.DeviceReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.returns[key{participantID, deviceID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *InMemory) Insert(_ context.Context, r *models.DeviceReturn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{r.ParticipantID, r.DeviceID}
	if _, exists := s.returns[k]; exists {
		return sentinel.ErrConflict
	}
	s.returns[k] = *r
	return nil
}

func (s *InMemory) Update(_ context.Context, r *models.DeviceReturn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{r.ParticipantID, r.DeviceID}
	if _, exists := s.returns[k]; !exists {
		return sentinel.ErrNotFound
	}
	s.returns[k] = *r
	return nil
}

// Count reports the number of stored rows. Test helper for the
// one-row-per-pair invariant.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.returns)
}

// Snapshot captures store state for the memory unit of work.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	before := make(map[key]models.DeviceReturn, len(s.returns))
	for k, v := range s.returns {
		before[k] = v
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.returns = before
		s.mu.Unlock()
	}
}
