// Package shared holds response helpers used by every handler package.
package shared

import (
	"net/http"
	"strings"

	"drivewise/internal/device/recovery"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/httputil"
)

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// WriteResult writes an orchestrator outcome. body is the full response
// payload (usually the Result itself, or a struct embedding it); res decides
// the status code from its first issue.
func WriteResult(w http.ResponseWriter, body any, res domain.Result) {
	httputil.WriteJSON(w, statusFor(res), body)
}

func statusFor(res domain.Result) int {
	if res.Succeeded() {
		return http.StatusOK
	}
	code := res.FirstCode()
	switch {
	case strings.HasSuffix(code, "_not_found"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "invalid_") ||
		code == "identical_participants" ||
		code == "missing_serial_number":
		return http.StatusBadRequest
	case code == recovery.CodeRegistryUpdateFailed ||
		code == recovery.CodeSimDeactivateFailed ||
		code == "device_command_failed":
		return http.StatusBadGateway
	default:
		// Eligibility gates and other business rejections.
		return http.StatusUnprocessableEntity
	}
}
