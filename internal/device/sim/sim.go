// Package sim talks to the SIM provisioning service that activates and
// deactivates device SIMs.
package sim

//go:generate mockgen -source=sim.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"
	"time"
)

// Action is a provisioning operation on a SIM.
type Action string

const (
	ActionActivate   Action = "Activate"
	ActionDeactivate Action = "Deactivate"
)

// Request asks the carrier to change a SIM's provisioning state effective at
// a point in time.
type Request struct {
	Action      Action    `json:"action"`
	SIMID       string    `json:"sim_id"`
	EffectiveAt time.Time `json:"effective_at"`
}

// Client is the SIM provisioning contract consumed by orchestration.
type Client interface {
	Add(ctx context.Context, req Request) error
}
