// Package audio routes device commands to the control surface a device
// actually supports. IoT-capable devices take the cloud API; everything else
// goes through the registry's legacy command path.
package audio

import (
	"context"

	"drivewise/internal/device/cloud"
	"drivewise/internal/device/models"
	"drivewise/internal/device/registry"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
)

// Controller is the per-device command surface. Implementations are picked by
// the Selector once the device's capabilities are known.
type Controller interface {
	Ping(ctx context.Context, deviceID domain.DeviceID) error
	Reset(ctx context.Context, deviceID domain.DeviceID) error
	GetAudio(ctx context.Context, deviceID domain.DeviceID) (*models.AudioState, error)
	SetAudio(ctx context.Context, deviceID domain.DeviceID, enabled bool) error
	UpdateAudio(ctx context.Context, deviceID domain.DeviceID, state models.AudioState) error
}

// Selector probes device capabilities and returns the matching Controller.
type Selector struct {
	registry registry.Client
	cloud    cloud.Client
}

func NewSelector(reg registry.Client, cl cloud.Client) *Selector {
	return &Selector{registry: reg, cloud: cl}
}

// ControllerFor resolves the control surface for a device. The probe runs on
// every call so a device migrated to the cloud fleet picks up the new path
// without a restart.
func (s *Selector) ControllerFor(ctx context.Context, deviceID domain.DeviceID) (Controller, error) {
	features, err := s.registry.DeviceFeatures(ctx, deviceID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeRemoteFailure, "probe device features")
	}
	if features.IoTCapable {
		return cloudController{client: s.cloud}, nil
	}
	return legacyController{client: s.registry}, nil
}

// legacyController drives devices through the registry command path.
type legacyController struct {
	client registry.Client
}

func (c legacyController) Ping(ctx context.Context, id domain.DeviceID) error {
	return c.client.Ping(ctx, id)
}

func (c legacyController) Reset(ctx context.Context, id domain.DeviceID) error {
	return c.client.Reset(ctx, id)
}

func (c legacyController) GetAudio(ctx context.Context, id domain.DeviceID) (*models.AudioState, error) {
	return c.client.GetAudio(ctx, id)
}

func (c legacyController) SetAudio(ctx context.Context, id domain.DeviceID, enabled bool) error {
	return c.client.SetAudio(ctx, id, enabled)
}

func (c legacyController) UpdateAudio(ctx context.Context, id domain.DeviceID, state models.AudioState) error {
	return c.client.UpdateAudio(ctx, id, state)
}

// cloudController drives IoT-capable devices through the cloud API.
type cloudController struct {
	client cloud.Client
}

func (c cloudController) Ping(ctx context.Context, id domain.DeviceID) error {
	return c.client.Ping(ctx, id)
}

func (c cloudController) Reset(ctx context.Context, id domain.DeviceID) error {
	return c.client.Reset(ctx, id)
}

func (c cloudController) GetAudio(ctx context.Context, id domain.DeviceID) (*models.AudioState, error) {
	return c.client.GetAudio(ctx, id)
}

func (c cloudController) SetAudio(ctx context.Context, id domain.DeviceID, enabled bool) error {
	return c.client.SetAudio(ctx, id, enabled)
}

func (c cloudController) UpdateAudio(ctx context.Context, id domain.DeviceID, state models.AudioState) error {
	return c.client.UpdateAudio(ctx, id, state)
}
