// Package events publishes device lifecycle events for downstream consumers.
package events

import (
	"context"
	"log/slog"
	"time"

	"drivewise/pkg/domain"
)

const (
	TypeDeviceRecovered    = "device_recovered"
	TypeDevicesSwapped     = "devices_swapped"
	TypeParticipantOptOut  = "participant_opted_out"
	TypeReplacementOrdered = "device_replacement_ordered"
)

// Event is a single lifecycle occurrence keyed by participant.
type Event struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participant_id"`
	DeviceID      domain.DeviceID      `json:"device_id,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// Publisher delivers lifecycle events to an external bus.
//
//go:generate mockgen -source=events.go -destination=mocks/mocks.go -package=mocks
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Publish emits the event best-effort. Delivery failures are logged and never
// surfaced to callers; a nil publisher is a no-op.
func Publish(ctx context.Context, logger *slog.Logger, pub Publisher, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "lifecycle event not delivered",
			"event_type", event.Type,
			"participant_id", event.ParticipantID,
			"error", err)
	}
}
