package admin

import (
	"encoding/json"
	"net/http"

	"github.com/arborview/enroll/internal/auth"
)

// Standard error codes for API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeUnauthorized indicates missing or invalid credentials.
	ErrCodeUnauthorized = "unauthorized"

	// ErrCodeForbidden indicates insufficient privilege.
	ErrCodeForbidden = "forbidden"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeConflict indicates an invariant violation (e.g. last super admin).
	ErrCodeConflict = "conflict"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for JSON APIs.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(APIError{Error: code, Message: message})
	if encErr != nil {
		// Response already started, nothing we can do
		_ = encErr
	}
}

// writeGuardError maps an error from the auth core to an HTTP response.
// Typed guard errors carry their status; anything else becomes a generic
// 500 with a fixed safe message so internals never leak to the client.
func (h *Handler) writeGuardError(w http.ResponseWriter, err error) {
	if ae := auth.AsError(err); ae != nil {
		WriteError(w, ae.Status, codeForStatus(ae.Status), ae.Message)
		return
	}
	h.logger.Error("internal error", "error", err)
	WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	default:
		return ErrCodeInternalError
	}
}

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(v)
	if encErr != nil {
		// Encoding errors are not critical once headers are sent
		_ = encErr
	}
}
