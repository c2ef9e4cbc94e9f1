package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivewise/pkg/domain"
	dErrors "drivewise/pkg/domain-errors"
)

func TestReadyForRecovery(t *testing.T) {
	valid := func() *Device {
		return &Device{
			ID:           domain.DeviceID(55),
			SerialNumber: "SN-55",
			SIMID:        "8901-55",
			Status:       StatusAssigned,
			Location:     LocationInVehicle,
		}
	}

	t.Run("accepts fully populated device", func(t *testing.T) {
		require.NoError(t, valid().ReadyForRecovery())
	})

	t.Run("rejects missing fields as invariant violations", func(t *testing.T) {
		cases := map[string]func(*Device){
			"nil id":           func(d *Device) { d.ID = 0 },
			"missing status":   func(d *Device) { d.Status = "" },
			"missing location": func(d *Device) { d.Location = "" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				d := valid()
				mutate(d)
				err := d.ReadyForRecovery()
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			})
		}
	})

	t.Run("rejects nil device", func(t *testing.T) {
		var d *Device
		require.Error(t, d.ReadyForRecovery())
	})
}

func TestReasonForStatus(t *testing.T) {
	t.Run("maps recovery statuses to reasons", func(t *testing.T) {
		cases := map[DeviceStatus]ReturnReason{
			StatusAbandoned: ReasonAbandoned,
			StatusDefective: ReasonDeviceProblem,
			StatusAssigned:  ReasonDeviceReplaced,
		}
		for status, want := range cases {
			got, err := ReasonForStatus(status)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("any other status is a defect", func(t *testing.T) {
		for _, status := range []DeviceStatus{StatusAvailable, StatusCustomerReturn, ""} {
			_, err := ReasonForStatus(status)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		}
	})
}
