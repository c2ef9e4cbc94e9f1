// Package cacheddevice provides CachedDeviceStore implementations. The cache
// is populated by registry sync jobs outside this service; orchestration only
// reads it.
package cacheddevice

import (
	"context"
	"sync"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	byID     map[domain.DeviceID]models.CachedDevice
	bySerial map[string]domain.DeviceID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[domain.DeviceID]models.CachedDevice),
		bySerial: make(map[string]domain.DeviceID),
	}
}

// Seed inserts a cached device. Test setup helper.
func (s *InMemory) Seed(d models.CachedDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[d.DeviceID] = d
	if d.SerialNumber != "" {
		s.bySerial[d.SerialNumber] = d.DeviceID
	}
}

func (s *InMemory) Get(_ context.Context, id domain.DeviceID) (*models.CachedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := d
	return &out, nil
}

// GetBatch returns the cached details for every requested id that is present.
// Absent ids are simply missing from the result; callers decide whether that
// is an error.
func (s *InMemory) GetBatch(_ context.Context, ids []domain.DeviceID) (map[domain.DeviceID]models.CachedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.DeviceID]models.CachedDevice, len(ids))
	for _, id := range ids {
		if d, ok := s.byID[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (s *InMemory) GetBySerial(_ context.Context, serial string) (*models.CachedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySerial[serial]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	d := s.byID[id]
	return &d, nil
}
