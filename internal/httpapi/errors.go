package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"excitond/internal/experiment"
	"excitond/internal/manager"
	"excitond/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case manager.IsPresetNotFound(err):
		return http.StatusNotFound
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case errors.As(err, &he):
		return he.StatusCode()
	case experiment.IsConfigError(err), experiment.IsDegenerateInput(err):
		return http.StatusBadRequest
	case errors.Is(err, errSimulateTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
