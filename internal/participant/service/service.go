// Package service implements participant-level orchestration: voluntary
// opt-out and the swap eligibility rules.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"drivewise/internal/device/metrics"
	devicemodels "drivewise/internal/device/models"
	"drivewise/internal/participant/models"
	"drivewise/internal/platform/events"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/platform/uow"
	"drivewise/pkg/requestcontext"
)

// Operation-level issue codes.
const (
	CodeInvalidParticipantID = "invalid_participant_id"
	CodeInvalidNickname      = "invalid_nickname"
	CodeParticipantNotFound  = "participant_not_found"
	CodeAccountNotFound      = "participant_account_not_found"
)

type ParticipantStore interface {
	Get(ctx context.Context, id domain.ParticipantID) (*models.Participant, error)
	UpdateStatus(ctx context.Context, id domain.ParticipantID, status models.EnrollmentStatus, now time.Time) error
	UpdateNickname(ctx context.Context, id domain.ParticipantID, nickname string, now time.Time) error
}

type AccountStore interface {
	GetByParticipant(ctx context.Context, id domain.ParticipantID) (*models.Account, error)
}

type DeviceOrderStore interface {
	CancelNew(ctx context.Context, participantID domain.ParticipantID, now time.Time) (int, error)
}

// DeviceResolver looks a device up in the registry by serial.
type DeviceResolver interface {
	GetDeviceBySerialNumber(ctx context.Context, serial string) (*devicemodels.Device, error)
}

// Recoverer runs the device recovery saga. Remote step failures land in res;
// the flag reports whether the attempt fully succeeded.
type Recoverer interface {
	RecoverDevice(ctx context.Context, device *devicemodels.Device, participantID domain.ParticipantID, override *devicemodels.ReturnReason, res *domain.Result) (bool, error)
}

// Service is the participant orchestrator.
type Service struct {
	participants ParticipantStore
	accounts     AccountStore
	orders       DeviceOrderStore
	resolver     DeviceResolver
	recovery     Recoverer
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

func New(participants ParticipantStore, accounts AccountStore, orders DeviceOrderStore, resolver DeviceResolver, recovery Recoverer, unit uow.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		participants: participants,
		accounts:     accounts,
		orders:       orders,
		resolver:     resolver,
		recovery:     recovery,
		uow:          unit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OptOut removes a participant from the program. Already-opted-out
// participants short-circuit to success. Plug-in participants with an
// assigned device get a best-effort device recovery first: a failed device
// lookup is only a warning and the opt-out proceeds, but a recovery saga
// that runs and fails aborts the whole opt-out. The status change and the
// cancellation of New orders commit together.
func (s *Service) OptOut(ctx context.Context, participantID domain.ParticipantID, serialOverride string) (domain.Result, error) {
	if participantID <= 0 {
		return domain.Failed(CodeInvalidParticipantID, "participant id must be positive"), nil
	}

	p, err := s.participants.Get(ctx, participantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Failed(CodeParticipantNotFound, "participant does not exist"), nil
	}
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "load participant")
	}
	if p.HasOptedOut() {
		return domain.OK("participant already opted out"), nil
	}

	account, err := s.accounts.GetByParticipant(ctx, participantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Failed(CodeAccountNotFound, "participant account does not exist"), nil
	}
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "load account")
	}

	txCtx, tx, err := s.uow.Begin(ctx)
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "begin unit of work")
	}
	defer tx.Discard()

	var res domain.Result
	if account.DeviceExperience == models.ExperiencePlugIn && account.DeviceID != nil {
		recovered, err := s.recoverAssignedDevice(txCtx, account, serialOverride, &res)
		if err != nil {
			return domain.Result{}, err
		}
		if !recovered {
			// The saga ran and failed; the opt-out is not applied.
			return res, nil
		}
	}

	now := requestcontext.Now(ctx)
	if err := s.participants.UpdateStatus(txCtx, participantID, models.StatusOptOut, now); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "update participant status")
	}
	cancelled, err := s.orders.CancelNew(txCtx, participantID, now)
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "cancel open device orders")
	}
	if err := tx.Commit(); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "commit opt out")
	}

	s.metrics.IncrementOptOuts()
	events.Publish(ctx, s.logger, s.publisher, events.Event{
		Type:          events.TypeParticipantOptOut,
		ParticipantID: participantID,
		OccurredAt:    now,
	})
	s.logger.InfoContext(ctx, "participant opted out",
		"participant_id", participantID,
		"orders_cancelled", cancelled)

	res.StatusDescription = "participant opted out"
	return res, nil
}

// UpdateNickname renames the participant's vehicle nickname. Nicknames are
// plain labels: they never move with a device swap, so this is the only
// write path that touches them.
func (s *Service) UpdateNickname(ctx context.Context, participantID domain.ParticipantID, nickname string) (domain.Result, error) {
	if participantID <= 0 {
		return domain.Failed(CodeInvalidParticipantID, "participant id must be positive"), nil
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return domain.Failed(CodeInvalidNickname, "nickname must not be blank"), nil
	}

	err := s.participants.UpdateNickname(ctx, participantID, nickname, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Failed(CodeParticipantNotFound, "participant does not exist"), nil
	}
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "update participant nickname")
	}
	return domain.OK("nickname updated"), nil
}

// recoverAssignedDevice runs the conditional recovery step of an opt-out.
// Returns true when the opt-out may proceed: either the recovery succeeded or
// the device could not be looked up at all.
func (s *Service) recoverAssignedDevice(ctx context.Context, account *models.Account, serialOverride string, res *domain.Result) (bool, error) {
	serial := account.SerialNumber
	if serialOverride != "" {
		serial = serialOverride
	}

	device, err := s.resolver.GetDeviceBySerialNumber(ctx, serial)
	if err != nil {
		s.logger.WarnContext(ctx, "device lookup failed during opt out, proceeding without recovery",
			"participant_id", account.ParticipantID,
			"serial_number", serial,
			"error", err)
		res.AddWarning("assigned device could not be looked up; it was not recovered")
		return true, nil
	}

	if device.Status == devicemodels.StatusAssigned {
		device.Status = devicemodels.StatusCustomerReturn
	}
	if device.Location == devicemodels.LocationShippedToCustomer || device.Location == devicemodels.LocationInVehicle {
		device.Location = devicemodels.LocationUnknown
	}

	reason := devicemodels.ReasonOptOut
	return s.recovery.RecoverDevice(ctx, device, account.ParticipantID, &reason, res)
}
