package models

import (
	"time"

	"drivewise/pkg/domain"
	dErrors "drivewise/pkg/domain-errors"
)

// ReturnReason records why a device left a participant's custody.
type ReturnReason string

const (
	ReasonDeviceProblem  ReturnReason = "DeviceProblem"
	ReasonAbandoned      ReturnReason = "Abandoned"
	ReasonDeviceReplaced ReturnReason = "DeviceReplaced"
	ReasonOptOut         ReturnReason = "OptOut"
)

// ReasonForStatus derives the return reason from the device status the
// recovery saga is about to push. The mapping is closed: any status outside
// it reaching recovery is a programming defect.
func ReasonForStatus(status DeviceStatus) (ReturnReason, error) {
	switch status {
	case StatusAbandoned:
		return ReasonAbandoned, nil
	case StatusDefective:
		return ReasonDeviceProblem, nil
	case StatusAssigned:
		return ReasonDeviceReplaced, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvariantViolation, "no return reason for device status %q", status)
	}
}

// DeviceReturn is the one row this core creates or updates as a direct side
// effect of recovery.
//
// Invariants:
//   - At most one row per (participant, device) pair
//   - Reason always reflects the most recent recovery cause
//   - Rows are never deleted by this core
type DeviceReturn struct {
	ParticipantID domain.ParticipantID `json:"participant_id"`
	DeviceID      domain.DeviceID      `json:"device_id"`
	Reason        ReturnReason         `json:"reason"`
	ReceivedAt    *time.Time           `json:"received_at,omitempty"`
	AbandonedAt   *time.Time           `json:"abandoned_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
