// Package domain holds shared value types for the device lifecycle domain.
package domain

import (
	"strconv"

	dErrors "drivewise/pkg/domain-errors"
)

// Typed numeric identifiers. Distinct types keep a participant id from being
// passed where a device id belongs; the compiler enforces what the relational
// schema only documents.
type (
	ParticipantID int64
	DeviceID      int64
	VehicleID     int64
	GroupID       int64
	OrderID       int64
)

func (id ParticipantID) IsZero() bool { return id <= 0 }
func (id DeviceID) IsZero() bool      { return id <= 0 }
func (id VehicleID) IsZero() bool     { return id <= 0 }
func (id GroupID) IsZero() bool       { return id <= 0 }
func (id OrderID) IsZero() bool       { return id <= 0 }

func (id ParticipantID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id DeviceID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id VehicleID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id GroupID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id OrderID) String() string       { return strconv.FormatInt(int64(id), 10) }

// ParseParticipantID validates a positive numeric participant id from a
// transport boundary.
func ParseParticipantID(s string) (ParticipantID, error) {
	n, err := parsePositive(s, "participant id")
	return ParticipantID(n), err
}

// ParseDeviceID validates a positive numeric device id.
func ParseDeviceID(s string) (DeviceID, error) {
	n, err := parsePositive(s, "device id")
	return DeviceID(n), err
}

func parsePositive(s, what string) (int64, error) {
	if s == "" {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s is required", what)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a positive integer", what)
	}
	return n, nil
}
