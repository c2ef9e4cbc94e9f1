package models

import (
	"time"

	"drivewise/pkg/domain"
)

// OrderStatus tracks a device order through fulfilment. This core only
// creates New orders and cancels orders still in New state.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "New"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderType distinguishes why a device was ordered.
type OrderType string

const (
	OrderTypeReplacement OrderType = "Replacement"
)

// DeviceOrder is a request for a new device to be shipped to a participant.
// Vehicle fields are normalized before persistence: blank make/model become
// nil, a year outside the 16-bit signed range becomes nil.
type DeviceOrder struct {
	ID            domain.OrderID       `json:"id"`
	ParticipantID domain.ParticipantID `json:"participant_id"`
	Type          OrderType            `json:"type"`
	Status        OrderStatus          `json:"status"`
	VIN           string               `json:"vin,omitempty"`
	VehicleMake   *string              `json:"vehicle_make,omitempty"`
	VehicleModel  *string              `json:"vehicle_model,omitempty"`
	VehicleYear   *int16               `json:"vehicle_year,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}
