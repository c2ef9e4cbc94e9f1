// Package models defines the device-side domain types for lifecycle
// orchestration. The registry owns Device rows; this service reads them,
// computes target state, and pushes changes back.
package models

import (
	"drivewise/pkg/domain"
	dErrors "drivewise/pkg/domain-errors"
)

// DeviceStatus is the registry status code of a telematics device.
type DeviceStatus string

const (
	StatusAvailable      DeviceStatus = "Available"
	StatusAssigned       DeviceStatus = "Assigned"
	StatusDefective      DeviceStatus = "Defective"
	StatusAbandoned      DeviceStatus = "Abandoned"
	StatusCustomerReturn DeviceStatus = "CustomerReturn"
)

// DeviceLocation is the registry's last known physical location class.
type DeviceLocation string

const (
	LocationInVehicle         DeviceLocation = "InVehicle"
	LocationShippedToCustomer DeviceLocation = "ShippedToCustomer"
	LocationUnknown           DeviceLocation = "Unknown"
)

// Device is the registry's view of one telematics unit. Orchestration never
// creates or deletes devices; it only reads registry state and pushes status
// and location updates.
type Device struct {
	ID           domain.DeviceID `json:"id"`
	SerialNumber string          `json:"serial_number"`
	SIMID        string          `json:"sim_id"`
	Status       DeviceStatus    `json:"status"`
	Location     DeviceLocation  `json:"location"`
	ReportedVIN  string          `json:"reported_vin"`
}

// ReadyForRecovery checks the recovery saga's precondition: id, status and
// location must all be set before any remote state is pushed. A violation is
// a caller defect, not a user error.
func (d *Device) ReadyForRecovery() error {
	if d == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "device is required for recovery")
	}
	if d.ID.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "device id is not set")
	}
	if d.Status == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "device status is not set")
	}
	if d.Location == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "device location is not set")
	}
	return nil
}

// DeviceFeatures is the registry's capability probe result for one device.
// Cloud-connected devices take audio and command traffic through the cloud
// device API; legacy devices go through the registry directly.
type DeviceFeatures struct {
	DeviceID   domain.DeviceID `json:"device_id"`
	IoTCapable bool            `json:"iot_capable"`
}

// AudioState is the device audio payload returned by audio commands.
type AudioState struct {
	Enabled bool `json:"enabled"`
	Volume  int  `json:"volume"`
}
