// Package models defines participant-side domain types: the mutable
// Participant row and the read-oriented Account projection used for
// eligibility checks.
package models

import (
	"time"

	devicemodels "drivewise/internal/device/models"
	"drivewise/pkg/domain"
)

// EnrollmentStatus is a participant's standing in the telematics program.
type EnrollmentStatus string

const (
	StatusPending  EnrollmentStatus = "Pending"
	StatusEnrolled EnrollmentStatus = "Enrolled"
	StatusOptOut   EnrollmentStatus = "OptOut"
)

// Participant is a policy member enrolled in the telematics program. Opt-out
// and swap are the only operations in this core that mutate it.
type Participant struct {
	ID        domain.ParticipantID `json:"id"`
	GroupID   domain.GroupID       `json:"group_id"`
	Status    EnrollmentStatus     `json:"status"`
	DeviceID  *domain.DeviceID     `json:"device_id,omitempty"`
	VehicleID *domain.VehicleID    `json:"vehicle_id,omitempty"`
	Nickname  string               `json:"nickname,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// IsEnrolled reports whether the participant is actively enrolled.
func (p *Participant) IsEnrolled() bool { return p.Status == StatusEnrolled }

// HasOptedOut reports whether the participant already left the program.
func (p *Participant) HasOptedOut() bool { return p.Status == StatusOptOut }

// DeviceExperience is how a participant's driving data is collected.
type DeviceExperience string

const (
	ExperiencePlugIn DeviceExperience = "PlugIn"
	ExperienceMobile DeviceExperience = "Mobile"
)

// Account is the denormalized participant+device+vehicle projection. It is
// derived, not independently owned; this core only reads it.
type Account struct {
	ParticipantID     domain.ParticipantID      `json:"participant_id"`
	GroupID           domain.GroupID            `json:"group_id"`
	DeviceExperience  DeviceExperience          `json:"device_experience"`
	DeviceID          *domain.DeviceID          `json:"device_id,omitempty"`
	DeviceStatus      devicemodels.DeviceStatus `json:"device_status,omitempty"`
	SerialNumber      string                    `json:"serial_number,omitempty"`
	VIN               string                    `json:"vin,omitempty"`
	ReportedVIN       string                    `json:"reported_vin,omitempty"`
	VehicleID         *domain.VehicleID         `json:"vehicle_id,omitempty"`
	VehicleMake       string                    `json:"vehicle_make,omitempty"`
	VehicleModel      string                    `json:"vehicle_model,omitempty"`
	VehicleYear       int                       `json:"vehicle_year,omitempty"`
	DeviceReceivedAt  *time.Time                `json:"device_received_at,omitempty"`
	DeviceAbandonedAt *time.Time                `json:"device_abandoned_at,omitempty"`
}
