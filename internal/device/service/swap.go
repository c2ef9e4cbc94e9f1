package service

import (
	"context"
	"errors"

	"drivewise/internal/device/models"
	"drivewise/internal/platform/events"
	pmodels "drivewise/internal/participant/models"
	pservice "drivewise/internal/participant/service"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/requestcontext"
)

const CodeParticipantsNotInSameGroup = "participants_not_in_same_group"

// SwapDevice exchanges device and vehicle assignments between two
// participants of the same policy group. Both sides must pass the ordered
// eligibility gates; the source side is checked first and each side reports
// its first violated gate. Only the logical linkage changes: no registry or
// SIM call is made and nicknames stay with their participants.
func (s *Service) SwapDevice(ctx context.Context, sourceID, destinationID domain.ParticipantID) (domain.Result, error) {
	if sourceID <= 0 || destinationID <= 0 {
		return domain.Failed(CodeInvalidParticipantID, "participant ids must be positive"), nil
	}
	if sourceID == destinationID {
		return domain.Failed(CodeIdenticalParticipants, "cannot swap a participant with itself"), nil
	}

	source, res, err := s.loadParticipant(ctx, sourceID, "source")
	if err != nil || res != nil {
		return deref(res), err
	}
	destination, res, err := s.loadParticipant(ctx, destinationID, "destination")
	if err != nil || res != nil {
		return deref(res), err
	}
	if source.GroupID != destination.GroupID {
		return domain.Failed(CodeParticipantsNotInSameGroup, "participants belong to different policy groups"), nil
	}

	sourceAccount, res, err := s.loadAccount(ctx, sourceID, "source")
	if err != nil || res != nil {
		return deref(res), err
	}
	destinationAccount, res, err := s.loadAccount(ctx, destinationID, "destination")
	if err != nil || res != nil {
		return deref(res), err
	}

	statuses, err := s.hydrateDeviceStatuses(ctx, sourceAccount, destinationAccount)
	if err != nil {
		return domain.Result{}, err
	}

	var eligibility domain.Result
	if issue := pservice.CheckSwapEligibility(source, sourceAccount, statuses[sourceID]); issue != nil {
		eligibility.AddError(issue.Code, "source participant: "+issue.Detail)
	}
	if issue := pservice.CheckSwapEligibility(destination, destinationAccount, statuses[destinationID]); issue != nil {
		eligibility.AddError(issue.Code, "destination participant: "+issue.Detail)
	}
	if !eligibility.Succeeded() {
		return eligibility, nil
	}

	now := requestcontext.Now(ctx)
	txCtx, tx, err := s.uow.Begin(ctx)
	if err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "begin unit of work")
	}
	defer tx.Discard()

	if err := s.participants.SwapAssignments(txCtx, sourceID, destinationID, now); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "swap assignments")
	}
	if err := tx.Commit(); err != nil {
		return domain.Result{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "commit swap")
	}

	s.metrics.IncrementSwaps()
	events.Publish(ctx, s.logger, s.publisher, events.Event{
		Type:          events.TypeDevicesSwapped,
		ParticipantID: sourceID,
		OccurredAt:    now,
	})
	s.logger.InfoContext(ctx, "device assignments swapped",
		"source_participant_id", sourceID,
		"destination_participant_id", destinationID)

	return domain.OK("device assignments swapped"), nil
}

func (s *Service) loadParticipant(ctx context.Context, id domain.ParticipantID, side string) (*pmodels.Participant, *domain.Result, error) {
	p, err := s.participants.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		res := domain.Failed(CodeParticipantNotFound, side+" participant does not exist")
		return nil, &res, nil
	}
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load "+side+" participant")
	}
	return p, nil, nil
}

func (s *Service) loadAccount(ctx context.Context, id domain.ParticipantID, side string) (*pmodels.Account, *domain.Result, error) {
	a, err := s.accounts.GetByParticipant(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		res := domain.Failed(CodeAccountNotFound, side+" participant account does not exist")
		return nil, &res, nil
	}
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load "+side+" account")
	}
	return a, nil, nil
}

// hydrateDeviceStatuses batch-loads cached device statuses for both sides,
// keyed back by participant. A side without a device simply has no entry.
func (s *Service) hydrateDeviceStatuses(ctx context.Context, accounts ...*pmodels.Account) (map[domain.ParticipantID]models.DeviceStatus, error) {
	ids := make([]domain.DeviceID, 0, len(accounts))
	for _, a := range accounts {
		if a.DeviceID != nil {
			ids = append(ids, *a.DeviceID)
		}
	}
	out := make(map[domain.ParticipantID]models.DeviceStatus, len(accounts))
	if len(ids) == 0 {
		return out, nil
	}

	cached, err := s.cache.GetBatch(ctx, ids)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "batch load cached devices")
	}
	for _, a := range accounts {
		if a.DeviceID == nil {
			continue
		}
		if d, ok := cached[*a.DeviceID]; ok {
			out[a.ParticipantID] = d.Status
		}
	}
	return out, nil
}

func deref(res *domain.Result) domain.Result {
	if res == nil {
		return domain.Result{}
	}
	return *res
}
