// Package registry talks to the remote device registry: the system of record
// for device identity, status and location.
//
// Calls carry a bounded deadline; expiry surfaces like any other remote
// failure so the recovery saga's best-effort handling applies uniformly.
package registry

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
)

// Client is the registry contract consumed by orchestration.
type Client interface {
	// GetDeviceBySerialNumber resolves a device by serial. Returns
	// sentinel.ErrNotFound when the registry has no such device.
	GetDeviceBySerialNumber(ctx context.Context, serial string) (*models.Device, error)

	// UpdateStatus pushes a status and location change to the registry.
	// The registry applies both atomically or not at all.
	UpdateStatus(ctx context.Context, deviceID domain.DeviceID, status models.DeviceStatus, location models.DeviceLocation) error

	// DeviceFeatures probes device capabilities (legacy vs cloud-connected).
	DeviceFeatures(ctx context.Context, deviceID domain.DeviceID) (*models.DeviceFeatures, error)

	// Ping and Reset issue device commands through the registry path used by
	// legacy devices.
	Ping(ctx context.Context, deviceID domain.DeviceID) error
	Reset(ctx context.Context, deviceID domain.DeviceID) error

	// Audio control over the registry path, for legacy devices.
	GetAudio(ctx context.Context, deviceID domain.DeviceID) (*models.AudioState, error)
	SetAudio(ctx context.Context, deviceID domain.DeviceID, enabled bool) error
	UpdateAudio(ctx context.Context, deviceID domain.DeviceID, state models.AudioState) error
}
