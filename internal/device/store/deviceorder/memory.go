// Package deviceorder provides DeviceOrderStore implementations.
package deviceorder

import (
	"context"
	"sync"
	"time"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
)

// InMemory keeps device orders in a slice and assigns sequential ids.
// Implements uow.Snapshotter for rollback under the memory unit of work.
type InMemory struct {
	mu     sync.RWMutex
	nextID domain.OrderID
	orders []models.DeviceOrder
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1}
}

// Seed inserts an order directly with its given id. Test setup helper.
func (s *InMemory) Seed(o models.DeviceOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
}

// Create persists an order and assigns its id.
func (s *InMemory) Create(_ context.Context, o *models.DeviceOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID
	s.nextID++
	s.orders = append(s.orders, *o)
	return nil
}

// CancelNew flips every order still in New state for the participant to
// Cancelled and reports how many were touched.
func (s *InMemory) CancelNew(_ context.Context, participantID domain.ParticipantID, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled := 0
	for i := range s.orders {
		if s.orders[i].ParticipantID == participantID && s.orders[i].Status == models.OrderStatusNew {
			s.orders[i].Status = models.OrderStatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

// ListByParticipant returns the participant's orders. Test helper.
func (s *InMemory) ListByParticipant(_ context.Context, participantID domain.ParticipantID) ([]models.DeviceOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DeviceOrder
	for _, o := range s.orders {
		if o.ParticipantID == participantID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Snapshot captures store state for the memory unit of work.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	before := append([]models.DeviceOrder(nil), s.orders...)
	beforeID := s.nextID
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.orders = before
		s.nextID = beforeID
		s.mu.Unlock()
	}
}
