package models

import "drivewise/pkg/domain"

// CachedDevice is the cached-device-details projection kept outside the
// registry so eligibility checks and swaps avoid a remote round trip per
// device. It is refreshed elsewhere; this core only reads it.
type CachedDevice struct {
	DeviceID     domain.DeviceID `json:"device_id"`
	SerialNumber string          `json:"serial_number"`
	Status       DeviceStatus    `json:"status"`
	Location     DeviceLocation  `json:"location"`
	ReportedVIN  string          `json:"reported_vin"`
}
