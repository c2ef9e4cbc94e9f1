package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"drivewise/internal/device/models"
	"drivewise/internal/platform/events"
	pservice "drivewise/internal/participant/service"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/requestcontext"
)

// ReplaceDevice orders a replacement for the participant's assigned device
// and recovers the old one in a single unit of work. The order and the
// recovery write commit together, and only when the recovery saga fully
// succeeded. If order creation itself fails the saga is never attempted.
func (s *Service) ReplaceDevice(ctx context.Context, participantID domain.ParticipantID) (domain.Result, error) {
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
	if p.DeviceID == nil {
		return domain.Failed(pservice.CodeParticipantNoDevice, "participant has no device to replace"), nil
	}

	account, err := s.accounts.GetByParticipant(ctx, participantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Failed(CodeAccountNotFound, "participant account does not exist"), nil
	}
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "load account")
	}

	// Cached details are an optional VIN source; a miss is not an error.
	var cached *models.CachedDevice
	if c, err := s.cache.Get(ctx, *p.DeviceID); err == nil {
		cached = c
	}

	device, notFound, err := s.resolveBySerial(ctx, account.SerialNumber)
	if err != nil {
		return domain.Result{}, err
	}
	if notFound != nil {
		return *notFound, nil
	}

	order := &models.DeviceOrder{
		ParticipantID: participantID,
		Type:          models.OrderTypeReplacement,
		Status:        models.OrderStatusNew,
		VIN:           pickVIN(account.VIN, account.ReportedVIN, cachedVIN(cached), device.ReportedVIN),
		VehicleMake:   normalizeText(account.VehicleMake),
		VehicleModel:  normalizeText(account.VehicleModel),
		VehicleYear:   normalizeYear(account.VehicleYear),
		CreatedAt:     requestcontext.Now(ctx),
	}

	txCtx, tx, err := s.uow.Begin(ctx)
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "begin unit of work")
	}
	defer tx.Discard()

	if err := s.orders.Create(txCtx, order); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "create replacement order")
	}

	var res domain.Result
	reason := models.ReasonDeviceReplaced
	success, err := s.recovery.RecoverDevice(txCtx, device, participantID, &reason, &res)
	if err != nil {
		return domain.Result{}, err
	}
	if !success {
		return res, nil
	}
	if err := tx.Commit(); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "commit replacement")
	}

	events.Publish(ctx, s.logger, s.publisher, events.Event{
		Type:          events.TypeReplacementOrdered,
		ParticipantID: participantID,
		DeviceID:      device.ID,
		Reason:        string(models.ReasonDeviceReplaced),
		OccurredAt:    requestcontext.Now(ctx),
	})

	res.StatusDescription = "replacement device ordered"
	return res, nil
}

// pickVIN returns the first non-blank candidate in precedence order.
func pickVIN(candidates ...string) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(c); v != "" {
			return v
		}
	}
	return ""
}

func cachedVIN(cached *models.CachedDevice) string {
	if cached == nil {
		return ""
	}
	return cached.ReportedVIN
}

func normalizeText(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}

// normalizeYear nulls years that do not fit the order schema's 16-bit signed
// column. Zero means no year was recorded.
func normalizeYear(year int) *int16 {
	if year == 0 || year < math.MinInt16 || year > math.MaxInt16 {
		return nil
	}
	y := int16(year)
	return &y
}
