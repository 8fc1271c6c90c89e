// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a signup collides with an existing username.
var ErrUsernameTaken = errors.New("username already exists")

// ErrInvalidCredentials is returned when a password does not verify.
var ErrInvalidCredentials = errors.New("invalid password")

// ErrAccountLocked is returned when signin hits a temporarily locked account.
var ErrAccountLocked = errors.New("account is temporarily locked")
