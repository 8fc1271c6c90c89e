// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Issue(userID ulid.ULID, role Role) (string, error)
}

// Service provides account operations: signup, signin, and metadata.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService creates a new account Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// Signin still runs password verification so response time stays consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup creates a new account. The accountType string follows the public
// contract: "admin" grants RoleAdmin, anything else RoleUser.
// Returns ErrUsernameTaken (wrapped) if the username is already registered;
// no partial record is created in that case.
func (s *Service) Signup(ctx context.Context, username, password, accountType string) (ulid.ULID, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ulid.ULID{}, err
	}

	user, err := NewUser(username, hash, RoleFromAccountType(accountType))
	if err != nil {
		return ulid.ULID{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return ulid.ULID{}, oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(err)
		}
		return ulid.ULID{}, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	return user.ID, nil
}

// Signin authenticates a user and issues a session token.
// Uses constant-time operations to prevent timing-based username enumeration:
// the password is always verified, against a dummy hash when the username is
// unknown.
func (s *Service) Signin(ctx context.Context, username, password string) (string, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code("AUTH_SIGNIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return "", oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrNotFound)
		}
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists {
		return "", oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrNotFound)
	}
	if !valid {
		user.RecordFailure()
		_ = s.users.Update(ctx, user) //nolint:errcheck // Best effort
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Lockout is checked after verification to keep timing flat.
	if user.IsLocked() {
		return "", oops.Code("AUTH_ACCOUNT_LOCKED").
			With("locked_until", user.LockedUntil).
			Wrap(ErrAccountLocked)
	}

	user.RecordSuccess()
	_ = s.users.Update(ctx, user) //nolint:errcheck // Best effort, signin succeeds regardless

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	return token, nil
}

// UpdateAvatar sets the caller's avatar reference.
func (s *Service) UpdateAvatar(ctx context.Context, userID, avatarID ulid.ULID) error {
	if err := s.users.UpdateAvatar(ctx, userID, avatarID); err != nil {
		return oops.Code("AUTH_METADATA_FAILED").
			With("user_id", userID.String()).
			With("avatar_id", avatarID.String()).
			Wrap(err)
	}
	return nil
}

// GetAvatars returns the avatar image for each listed user.
// An empty ID list yields an empty result, not an error.
func (s *Service) GetAvatars(ctx context.Context, userIDs []ulid.ULID) ([]UserAvatar, error) {
	if len(userIDs) == 0 {
		return []UserAvatar{}, nil
	}
	avatars, err := s.users.GetAvatars(ctx, userIDs)
	if err != nil {
		return nil, oops.Code("AUTH_BULK_METADATA_FAILED").Wrap(err)
	}
	return avatars, nil
}
