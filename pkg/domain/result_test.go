package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "drivewise/pkg/domain-errors"
)

func TestResult_IssueOrdering(t *testing.T) {
	t.Run("first code reflects first recorded issue", func(t *testing.T) {
		var r Result
		r.AddError("registry_push_failed", "registry unreachable")
		r.AddError("sim_deactivation_failed", "carrier timeout")

		assert.False(t, r.Succeeded())
		assert.Equal(t, "registry_push_failed", r.FirstCode())
		assert.Equal(t, "registry unreachable; carrier timeout", r.ErrorDetails())
	})

	t.Run("warnings do not fail the result", func(t *testing.T) {
		r := OK("device recovered")
		r.AddWarning("device lookup skipped")

		assert.True(t, r.Succeeded())
		assert.Empty(t, r.FirstCode())
		assert.Empty(t, r.ErrorDetails())
	})
}

func TestParseIDs_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseParticipantID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects zero and negative", func(t *testing.T) {
		for _, raw := range []string{"0", "-3"} {
			_, err := ParseParticipantID(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		_, err := ParseDeviceID("abc")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts positive id", func(t *testing.T) {
		id, err := ParseParticipantID("42")
		require.NoError(t, err)
		assert.Equal(t, ParticipantID(42), id)
		assert.False(t, id.IsZero())
	})
}
