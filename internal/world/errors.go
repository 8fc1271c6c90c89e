// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is returned when the caller does not own the target entity.
var ErrPermissionDenied = errors.New("permission denied")

// ErrOutOfBounds is returned when a placement falls outside its space.
var ErrOutOfBounds = errors.New("point is outside of the boundary")
