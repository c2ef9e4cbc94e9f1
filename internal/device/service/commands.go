package service

import (
	"context"

	"drivewise/internal/device/audio"
	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
)

const CodeDeviceCommandFailed = "device_command_failed"

// AudioResult carries the device's audio state alongside the operation
// outcome.
type AudioResult struct {
	domain.Result
	Audio *models.AudioState `json:"audio,omitempty"`
}

// Ping asks the device to respond, over whichever control surface it
// supports.
func (s *Service) Ping(ctx context.Context, serial string) (domain.Result, error) {
	return s.runCommand(ctx, serial, "ping", func(ctx context.Context, c audio.Controller, id domain.DeviceID) error {
		return c.Ping(ctx, id)
	})
}

// Reset reboots the device.
func (s *Service) Reset(ctx context.Context, serial string) (domain.Result, error) {
	return s.runCommand(ctx, serial, "reset", func(ctx context.Context, c audio.Controller, id domain.DeviceID) error {
		return c.Reset(ctx, id)
	})
}

// GetAudio reads the device's current audio state.
func (s *Service) GetAudio(ctx context.Context, serial string) (AudioResult, error) {
	device, notFound, err := s.resolveBySerial(ctx, serial)
	if err != nil {
		return AudioResult{}, err
	}
	if notFound != nil {
		return AudioResult{Result: *notFound}, nil
	}

	controller, err := s.audio.ControllerFor(ctx, device.ID)
	if err != nil {
		return AudioResult{Result: domain.Failed(CodeDeviceCommandFailed, "device capabilities could not be determined")}, nil
	}
	state, err := controller.GetAudio(ctx, device.ID)
	if err != nil {
		return AudioResult{Result: domain.Failed(CodeDeviceCommandFailed, "audio state could not be read")}, nil
	}
	return AudioResult{Result: domain.OK("audio state read"), Audio: state}, nil
}

// SetAudio switches device audio on or off.
func (s *Service) SetAudio(ctx context.Context, serial string, enabled bool) (domain.Result, error) {
	return s.runCommand(ctx, serial, "set audio", func(ctx context.Context, c audio.Controller, id domain.DeviceID) error {
		return c.SetAudio(ctx, id, enabled)
	})
}

// UpdateAudio applies a full audio state to the device.
func (s *Service) UpdateAudio(ctx context.Context, serial string, state models.AudioState) (domain.Result, error) {
	return s.runCommand(ctx, serial, "update audio", func(ctx context.Context, c audio.Controller, id domain.DeviceID) error {
		return c.UpdateAudio(ctx, id, state)
	})
}

// runCommand resolves the device, picks its control surface and executes one
// command. Probe and command failures are renderable issues, not errors:
// commands coordinate nothing and have nothing to roll back.
func (s *Service) runCommand(ctx context.Context, serial, name string, cmd func(context.Context, audio.Controller, domain.DeviceID) error) (domain.Result, error) {
	device, notFound, err := s.resolveBySerial(ctx, serial)
	if err != nil {
		return domain.Result{}, err
	}
	if notFound != nil {
		return *notFound, nil
	}

	controller, err := s.audio.ControllerFor(ctx, device.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "capability probe failed",
			"serial_number", serial, "command", name, "error", err)
		return domain.Failed(CodeDeviceCommandFailed, "device capabilities could not be determined"), nil
	}
	if err := cmd(ctx, controller, device.ID); err != nil {
		s.logger.WarnContext(ctx, "device command failed",
			"serial_number", serial, "command", name, "error", err)
		return domain.Failed(CodeDeviceCommandFailed, "device did not accept the "+name+" command"), nil
	}
	return domain.OK("device " + name + " accepted"), nil
}
