// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

// Package httpapi exposes the public REST surface.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response message strings are part of the observable contract.
const (
	msgUnauthorized     = "Unauthorized"
	msgValidationFailed = "Validation failed"
	msgInternalError    = "Internal server error"
	msgUserExists       = "User already exists"
	msgUserNotFound     = "User not found"
	msgInvalidPassword  = "Invalid password"
	msgAccountLocked    = "Account locked"
	msgSpaceNotFound    = "Space not found"
	msgMapNotFound      = "Map not found"
	msgElementNotFound  = "Element not found"
	msgOutOfBounds      = "Point is outside of the boundary"
)

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeMessage writes a `{"message": ...}` body with the given status.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
