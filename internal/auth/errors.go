// Package auth implements the admin authentication and session lifecycle:
// password hashing, signed access tokens, rotating refresh tokens with reuse
// detection, and the route-level authentication state every protected
// endpoint depends on.
package auth

import (
	"errors"
	"net/http"
)

// Error is a guard failure carrying its HTTP mapping.
// Route handlers map it directly to a status and JSON body; anything that is
// not an *Error becomes a generic 500 with a fixed safe message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsError returns the typed guard error inside err, or nil.
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// ErrUnauthorized is the uniform authentication failure. The message never
// distinguishes a wrong password from a missing account or a dead session.
var ErrUnauthorized = &Error{Status: http.StatusUnauthorized, Message: "Unauthorized."}

// ErrInvalidCredentials is returned by login for both unknown email and
// wrong password, byte-identical in either case.
var ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password."}

// Forbidden builds a 403 guard error.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound builds a 404 guard error.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict builds a 409 guard error for invariant violations.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// BadRequest builds a 400 guard error.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// ErrInvalidToken marks an access token that failed verification: bad
// signature, malformed structure, or expiry. Callers branch to the refresh
// flow; it is never surfaced to the client directly.
var ErrInvalidToken = errors.New("invalid access token")
