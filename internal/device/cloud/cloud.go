// Package cloud talks to the cloud device API used by IoT-capable devices.
// Legacy devices take the registry path instead; the capability probe in the
// device orchestrator decides which path a command takes.
package cloud

//go:generate mockgen -source=cloud.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
)

// Client is the cloud device API contract.
type Client interface {
	Ping(ctx context.Context, deviceID domain.DeviceID) error
	Reset(ctx context.Context, deviceID domain.DeviceID) error
	GetAudio(ctx context.Context, deviceID domain.DeviceID) (*models.AudioState, error)
	SetAudio(ctx context.Context, deviceID domain.DeviceID, enabled bool) error
	UpdateAudio(ctx context.Context, deviceID domain.DeviceID, state models.AudioState) error
}
