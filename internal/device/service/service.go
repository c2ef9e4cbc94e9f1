// Package service implements device-level orchestration: marking devices
// defective or abandoned, ordering replacements, swapping devices between
// participants, and pass-through device commands.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"drivewise/internal/device/audio"
	"drivewise/internal/device/metrics"
	"drivewise/internal/device/models"
	"drivewise/internal/device/registry"
	"drivewise/internal/platform/events"
	pmodels "drivewise/internal/participant/models"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/platform/uow"
	"drivewise/pkg/requestcontext"
)

// Operation-level issue codes.
const (
	CodeInvalidParticipantID  = "invalid_participant_id"
	CodeIdenticalParticipants = "identical_participants"
	CodeMissingSerialNumber   = "missing_serial_number"
	CodeParticipantNotFound   = "participant_not_found"
	CodeAccountNotFound       = "participant_account_not_found"
	CodeDeviceNotFound        = "device_not_found"
)

type ParticipantStore interface {
	Get(ctx context.Context, id domain.ParticipantID) (*pmodels.Participant, error)
	SwapAssignments(ctx context.Context, sourceID, destinationID domain.ParticipantID, now time.Time) error
}

type AccountStore interface {
	GetByParticipant(ctx context.Context, id domain.ParticipantID) (*pmodels.Account, error)
}

type DeviceOrderStore interface {
	Create(ctx context.Context, o *models.DeviceOrder) error
}

type CachedDeviceStore interface {
	Get(ctx context.Context, id domain.DeviceID) (*models.CachedDevice, error)
	GetBatch(ctx context.Context, ids []domain.DeviceID) (map[domain.DeviceID]models.CachedDevice, error)
}

// Recoverer runs the device recovery saga.
type Recoverer interface {
	RecoverDevice(ctx context.Context, device *models.Device, participantID domain.ParticipantID, override *models.ReturnReason, res *domain.Result) (bool, error)
}

// Service is the device orchestrator.
type Service struct {
	participants ParticipantStore
	accounts     AccountStore
	orders       DeviceOrderStore
	cache        CachedDeviceStore
	registry     registry.Client
	recovery     Recoverer
	audio        *audio.Selector
	uow          uow.UnitOfWork
	metrics      *metrics.Metrics
	publisher    events.Publisher
	logger       *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(participants ParticipantStore, accounts AccountStore, orders DeviceOrderStore, cache CachedDeviceStore, reg registry.Client, recovery Recoverer, selector *audio.Selector, unit uow.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		participants: participants,
		accounts:     accounts,
		orders:       orders,
		cache:        cache,
		registry:     reg,
		recovery:     recovery,
		audio:        selector,
		uow:          unit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkDefective records a device as defective and runs the recovery saga.
// The device keeps its registry location.
func (s *Service) MarkDefective(ctx context.Context, participantID domain.ParticipantID, serial string) (domain.Result, error) {
	return s.markDevice(ctx, participantID, serial, models.StatusDefective, false)
}

// MarkAbandoned records a device as abandoned by the participant. The
// registry location is cleared to Unknown alongside the status change.
func (s *Service) MarkAbandoned(ctx context.Context, participantID domain.ParticipantID, serial string) (domain.Result, error) {
	return s.markDevice(ctx, participantID, serial, models.StatusAbandoned, true)
}

func (s *Service) markDevice(ctx context.Context, participantID domain.ParticipantID, serial string, target models.DeviceStatus, clearLocation bool) (domain.Result, error) {
	if participantID <= 0 {
		return domain.Failed(CodeInvalidParticipantID, "participant id must be positive"), nil
	}
	if serial == "" {
		return domain.Failed(CodeMissingSerialNumber, "device serial number is required"), nil
	}

	if _, err := s.participants.Get(ctx, participantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Failed(CodeParticipantNotFound, "participant does not exist"), nil
		}
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "load participant")
	}

	device, notFound, err := s.resolveBySerial(ctx, serial)
	if err != nil {
		return domain.Result{}, err
	}
	if notFound != nil {
		return *notFound, nil
	}

	device.Status = target
	if clearLocation {
		device.Location = models.LocationUnknown
	}

	txCtx, tx, err := s.uow.Begin(ctx)
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "begin unit of work")
	}
	defer tx.Discard()

	var res domain.Result
	success, err := s.recovery.RecoverDevice(txCtx, device, participantID, nil, &res)
	if err != nil {
		return domain.Result{}, err
	}
	if !success {
		return res, nil
	}
	if err := tx.Commit(); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "commit recovery")
	}

	reason, _ := models.ReasonForStatus(target)
	events.Publish(ctx, s.logger, s.publisher, events.Event{
		Type:          events.TypeDeviceRecovered,
		ParticipantID: participantID,
		DeviceID:      device.ID,
		Reason:        string(reason),
		OccurredAt:    requestcontext.Now(ctx),
	})

	res.StatusDescription = "device marked " + string(target)
	return res, nil
}

// resolveBySerial looks a device up in the registry. A missing device yields
// a renderable not-found Result; any other registry failure aborts.
func (s *Service) resolveBySerial(ctx context.Context, serial string) (*models.Device, *domain.Result, error) {
	device, err := s.registry.GetDeviceBySerialNumber(ctx, serial)
	if errors.Is(err, sentinel.ErrNotFound) {
		res := domain.Failed(CodeDeviceNotFound, "no device with serial number "+serial)
		return nil, &res, nil
	}
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeRemoteFailure, "look up device by serial")
	}
	return device, nil, nil
}
