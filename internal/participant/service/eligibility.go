package service

import (
	devicemodels "drivewise/internal/device/models"
	"drivewise/internal/participant/models"
	"drivewise/pkg/domain"
)

// Eligibility gate codes, one per gate. The gate order is a UX contract:
// callers always see the first violated gate, so the same participant state
// always produces the same error.
const (
	CodeNotEnrolled          = "participant_not_enrolled"
	CodeNotPlugInExperience  = "device_experience_not_plug_in"
	CodeParticipantNoDevice  = "participant_device_not_found"
	CodeDeviceNotAssigned    = "device_not_assigned"
	CodeParticipantNoVehicle = "participant_vehicle_not_found"
	CodeDeviceReturned       = "device_marked_as_returned"
	CodeDeviceAbandoned      = "device_marked_as_abandoned"
)

// CheckSwapEligibility evaluates the ordered swap gates against one side of a
// swap. deviceStatus is the hydrated status from the cached device store; it
// is only consulted after the device-present gate passes. Returns nil when
// every gate passes, otherwise the first violated gate.
func CheckSwapEligibility(p *models.Participant, a *models.Account, deviceStatus devicemodels.DeviceStatus) *domain.Issue {
	if !p.IsEnrolled() {
		return &domain.Issue{Code: CodeNotEnrolled, Detail: "participant is not enrolled"}
	}
	if a.DeviceExperience != models.ExperiencePlugIn {
		return &domain.Issue{Code: CodeNotPlugInExperience, Detail: "participant does not use a plug-in device"}
	}
	if a.DeviceID == nil {
		return &domain.Issue{Code: CodeParticipantNoDevice, Detail: "participant has no device assigned"}
	}
	if deviceStatus != devicemodels.StatusAssigned {
		return &domain.Issue{Code: CodeDeviceNotAssigned, Detail: "device is not in assigned status"}
	}
	if a.VehicleID == nil {
		return &domain.Issue{Code: CodeParticipantNoVehicle, Detail: "participant has no vehicle assigned"}
	}
	if a.DeviceReceivedAt != nil {
		return &domain.Issue{Code: CodeDeviceReturned, Detail: "device is marked as returned"}
	}
	if a.DeviceAbandonedAt != nil {
		return &domain.Issue{Code: CodeDeviceAbandoned, Detail: "device is marked as abandoned"}
	}
	return nil
}
