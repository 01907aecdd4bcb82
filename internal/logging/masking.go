// Package logging provides utilities for secure logging with data masking.
package logging

import (
	"encoding/json"
	"strings"
)

// sensitiveFields are JSON body fields that never reach the logs.
// Credentials flow through login, setup, and password-change bodies.
var sensitiveFields = map[string]bool{
	"password":         true,
	"current_password": true,
	"new_password":     true,
}

// MaskHeader redacts sensitive header values based on header name.
// Returns the redacted value suitable for logging.
//
// Rules:
// - Cookie headers: "[REDACTED]" (they carry the session credentials)
// - Password/secret headers: "[REDACTED]"
// - Authorization: "****" + last 4 chars
// - Other headers: returned unchanged
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	if lowerName == "cookie" || lowerName == "set-cookie" {
		return "[REDACTED]"
	}

	if strings.Contains(lowerName, "password") || strings.Contains(lowerName, "secret") {
		return "[REDACTED]"
	}

	if lowerName == "authorization" {
		if len(value) < 4 {
			return "****"
		}
		return "****" + value[len(value)-4:]
	}

	return value
}

// MaskJSONBody redacts credential fields in a JSON body.
// Non-JSON bodies and nested structures are returned unchanged apart from
// top-level sensitive fields; the admin API only carries credentials at the
// top level of request bodies.
func MaskJSONBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		// Not a JSON object - return original
		return body
	}

	changed := false
	for field := range data {
		if sensitiveFields[strings.ToLower(field)] {
			data[field] = "[REDACTED]"
			changed = true
		}
	}
	if !changed {
		return body
	}

	masked, err := json.Marshal(data)
	if err != nil {
		return body
	}
	return masked
}
