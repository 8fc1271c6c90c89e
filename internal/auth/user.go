// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain only
// letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User represents an account on the platform.
type User struct {
	ID             ulid.ULID
	Username       string
	PasswordHash   string
	Role           Role
	AvatarID       *ulid.ULID
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
}

// NewUser creates a User with a generated ID.
// The user is validated before being returned.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	u := &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks that the user has required fields.
func (u *User) Validate() error {
	if u.ID.IsZero() {
		return oops.Code("AUTH_INVALID_USER").Errorf("id cannot be zero")
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return oops.Code("AUTH_INVALID_USER").Errorf("password hash cannot be empty")
	}
	if !u.Role.Valid() {
		return oops.Code("AUTH_INVALID_USER").With("role", string(u.Role)).Errorf("unknown role")
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
func (u *User) IsLocked() bool {
	return IsLockedOut(u.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (u *User) RecordFailure() {
	u.FailedAttempts++
	u.LockedUntil = ComputeLockoutTime(u.FailedAttempts)
}

// RecordSuccess resets the failure counter and lockout.
func (u *User) RecordSuccess() {
	u.FailedAttempts = 0
	u.LockedUntil = nil
}

// ValidateUsername validates a username against account rules:
// MinUsernameLength to MaxUsernameLength characters, starting with a letter,
// containing only letters, numbers, and underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserAvatar pairs a user with their avatar's image reference.
// ImageURL is nil when the user has no avatar selected.
type UserAvatar struct {
	UserID   ulid.ULID
	ImageURL *string
}

// UserRepository manages account persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameTaken on a username
	// collision, leaving no partial record behind.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update updates an existing user's mutable state (failure counters,
	// lockout, password hash).
	Update(ctx context.Context, user *User) error

	// UpdateAvatar sets the user's avatar reference.
	UpdateAvatar(ctx context.Context, userID, avatarID ulid.ULID) error

	// GetAvatars returns the avatar image for each listed user that exists.
	// Unknown IDs are skipped, not errors.
	GetAvatars(ctx context.Context, userIDs []ulid.ULID) ([]UserAvatar, error)
}
