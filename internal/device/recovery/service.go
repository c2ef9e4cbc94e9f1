// Package recovery executes the device recovery saga: push device state to
// the registry, deactivate the SIM, and upsert the return record. The two
// remote steps are best-effort; the local write belongs to the caller's
// transaction scope, so the caller commits only when the saga reports full
// success.
package recovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"drivewise/internal/device/metrics"
	"drivewise/internal/device/models"
	"drivewise/internal/device/registry"
	"drivewise/internal/device/sim"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/requestcontext"
)

// Issue codes recorded into the shared Result, one per failed remote system.
const (
	CodeRegistryUpdateFailed = "registry_update_failed"
	CodeSimDeactivateFailed  = "sim_deactivation_failed"
)

// DeviceReturnStore is the persistence facet the saga writes.
type DeviceReturnStore interface {
	Get(ctx context.Context, participantID domain.ParticipantID, deviceID domain.DeviceID) (*models.DeviceReturn, error)
	Insert(ctx context.Context, r *models.DeviceReturn) error
	Update(ctx context.Context, r *models.DeviceReturn) error
}

// Service runs the recovery saga on behalf of the orchestrators.
type Service struct {
	registry registry.Client
	sim      sim.Client
	returns  DeviceReturnStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(reg registry.Client, simClient sim.Client, returns DeviceReturnStore, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		sim:      simClient,
		returns:  returns,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecoverDevice pushes the device's new status and location to the registry,
// deactivates its SIM, and upserts the DeviceReturn row for the
// (participant, device) pair.
//
// Remote failures are appended to res and do not abort remaining steps; the
// returned success flag is true only when both remote calls succeeded.
// Callers discard their transaction when success is false, so the local write
// rolls back while the remote systems may already reflect the new state.
//
// A returned error means an invariant was violated (unset device fields or
// an unmapped status) or local persistence failed; those abort outright.
func (s *Service) RecoverDevice(ctx context.Context, device *models.Device, participantID domain.ParticipantID, override *models.ReturnReason, res *domain.Result) (bool, error) {
	if err := device.ReadyForRecovery(); err != nil {
		return false, err
	}

	start := time.Now()
	success := true

	if err := s.registry.UpdateStatus(ctx, device.ID, device.Status, device.Location); err != nil {
		s.logger.WarnContext(ctx, "registry status push failed",
			"device_id", device.ID,
			"status", device.Status,
			"error", err)
		res.AddError(CodeRegistryUpdateFailed, "device registry did not accept the status update")
		s.metrics.RecordStepFailure("registry")
		success = false
	}

	reason, err := s.resolveReason(device.Status, override)
	if err != nil {
		return false, err
	}

	req := sim.Request{
		Action:      sim.ActionDeactivate,
		SIMID:       device.SIMID,
		EffectiveAt: requestcontext.Now(ctx),
	}
	if err := s.sim.Add(ctx, req); err != nil {
		s.logger.WarnContext(ctx, "sim deactivation failed",
			"device_id", device.ID,
			"sim_id", device.SIMID,
			"error", err)
		res.AddError(CodeSimDeactivateFailed, "SIM deactivation was not accepted")
		s.metrics.RecordStepFailure("sim")
		success = false
	}

	if err := s.upsertReturn(ctx, participantID, device.ID, reason, override == nil); err != nil {
		return false, err
	}

	s.metrics.ObserveRecovery(success, time.Since(start))
	s.logger.InfoContext(ctx, "device recovery attempted",
		"participant_id", participantID,
		"device_id", device.ID,
		"reason", reason,
		"success", success)
	return success, nil
}

func (s *Service) resolveReason(status models.DeviceStatus, override *models.ReturnReason) (models.ReturnReason, error) {
	if override != nil {
		return *override, nil
	}
	return models.ReasonForStatus(status)
}

// upsertReturn keeps exactly one row per (participant, device), reflecting
// the latest reason. The abandoned timestamp is stamped only when the reason
// was derived and came out Abandoned.
func (s *Service) upsertReturn(ctx context.Context, participantID domain.ParticipantID, deviceID domain.DeviceID, reason models.ReturnReason, derived bool) error {
	now := requestcontext.Now(ctx)

	existing, err := s.returns.Get(ctx, participantID, deviceID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		row := &models.DeviceReturn{
			ParticipantID: participantID,
			DeviceID:      deviceID,
			Reason:        reason,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if derived && reason == models.ReasonAbandoned {
			row.AbandonedAt = &now
		}
		if err := s.returns.Insert(ctx, row); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "insert device return")
		}
		return nil
	case err != nil:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "load device return")
	}

	existing.Reason = reason
	existing.UpdatedAt = now
	if derived && reason == models.ReasonAbandoned {
		existing.AbandonedAt = &now
	}
	if err := s.returns.Update(ctx, existing); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "update device return")
	}
	return nil
}
