// Package participant provides ParticipantStore implementations.
package participant

import (
	"context"
	"sync"
	"time"

	"drivewise/internal/participant/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

// InMemory keeps participants in a map. Used by unit tests and single-process
// deployments; it implements uow.Snapshotter so a discarded unit of work
// rolls its writes back.
type InMemory struct {
	mu           sync.RWMutex
	participants map[domain.ParticipantID]models.Participant
}

func NewInMemory() *InMemory {
	return &InMemory{participants: make(map[domain.ParticipantID]models.Participant)}
}

// Seed inserts a participant directly, bypassing any transaction. Test setup
// helper.
func (s *InMemory) Seed(p models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
}

func (s *InMemory) Get(_ context.Context, id domain.ParticipantID) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, id domain.ParticipantID, status models.EnrollmentStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = now
	s.participants[id] = p
	return nil
}

func (s *InMemory) UpdateNickname(_ context.Context, id domain.ParticipantID, nickname string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Nickname = nickname
	p.UpdatedAt = now
	s.participants[id] = p
	return nil
}

// SwapAssignments atomically exchanges device and vehicle assignments between
// two participants. Nicknames are not part of the exchange: each follows its
// participant.
func (s *InMemory) SwapAssignments(_ context.Context, sourceID, destinationID domain.ParticipantID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.participants[sourceID]
	if !ok {
		return sentinel.ErrNotFound
	}
	destination, ok := s.participants[destinationID]
	if !ok {
		return sentinel.ErrNotFound
	}

	source.DeviceID, destination.DeviceID = destination.DeviceID, source.DeviceID
	source.VehicleID, destination.VehicleID = destination.VehicleID, source.VehicleID
	source.UpdatedAt = now
	destination.UpdatedAt = now

	s.participants[sourceID] = source
	s.participants[destinationID] = destination
	return nil
}

// Snapshot captures store state for the memory unit of work.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	before := make(map[domain.ParticipantID]models.Participant, len(s.participants))
	for k, v := range s.participants {
		before[k] = v
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.participants = before
		s.mu.Unlock()
	}
}
