// Package account provides AccountStore implementations. Accounts are a
// derived projection; this service only reads them.
package account

import (
	"context"
	"sync"

	"drivewise/internal/participant/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	accounts map[domain.ParticipantID]models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[domain.ParticipantID]models.Account)}
}

// Seed inserts an account projection. Test setup helper.
func (s *InMemory) Seed(a models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ParticipantID] = a
}

func (s *InMemory) GetByParticipant(_ context.Context, id domain.ParticipantID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := a
	return &out, nil
}
