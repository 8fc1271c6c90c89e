// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

// Package postgres implements auth repositories backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/auth"
)

// poolIface abstracts the pgx pool so tests can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. A username collision maps to auth.ErrUsernameTaken;
// the insert is a single statement, so no partial record survives a conflict.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, avatar_id, failed_attempts, locked_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID.String(), user.Username, user.PasswordHash, string(user.Role),
		ulidToStringPtr(user.AvatarID), user.FailedAttempts, user.LockedUntil, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_USERNAME_TAKEN").
				With("username", user.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("USER_CREATE_FAILED").With("username", user.Username).Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, avatar_id, failed_attempts, locked_until, created_at
		FROM users WHERE id = $1
	`, id.String())
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, avatar_id, failed_attempts, locked_until, created_at
		FROM users WHERE username = $1
	`, username)
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("username", username).Wrap(err)
	}
	return user, nil
}

// Update modifies a user's mutable state.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, avatar_id = $3, failed_attempts = $4, locked_until = $5
		WHERE id = $1
	`, user.ID.String(), user.PasswordHash, ulidToStringPtr(user.AvatarID),
		user.FailedAttempts, user.LockedUntil)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("id", user.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateAvatar sets the user's avatar reference.
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, avatarID ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET avatar_id = $2 WHERE id = $1
	`, userID.String(), avatarID.String())
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("id", userID.String()).
			With("avatar_id", avatarID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", userID.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// GetAvatars returns the avatar image for each listed user that exists.
func (r *UserRepository) GetAvatars(ctx context.Context, userIDs []ulid.ULID) ([]auth.UserAvatar, error) {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, a.image_url
		FROM users u
		LEFT JOIN avatars a ON a.id = u.avatar_id
		WHERE u.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, oops.Code("USER_AVATARS_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	avatars := make([]auth.UserAvatar, 0, len(userIDs))
	for rows.Next() {
		var idStr string
		var imageURL *string
		if err := rows.Scan(&idStr, &imageURL); err != nil {
			return nil, oops.Code("USER_AVATARS_SCAN_FAILED").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("USER_AVATARS_PARSE_FAILED").With("id", idStr).Wrap(err)
		}
		avatars = append(avatars, auth.UserAvatar{UserID: id, ImageURL: imageURL})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_AVATARS_ITERATE_FAILED").Wrap(err)
	}

	return avatars, nil
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL parameters.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// scanUserRow scans a single user from a row.
func scanUserRow(row pgx.Row) (*auth.User, error) {
	var user auth.User
	var idStr, roleStr string
	var avatarIDStr *string

	err := row.Scan(
		&idStr, &user.Username, &user.PasswordHash, &roleStr,
		&avatarIDStr, &user.FailedAttempts, &user.LockedUntil, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_PARSE_FAILED").With("field", "id").With("value", idStr).Wrap(err)
	}
	user.Role = auth.Role(roleStr)
	if avatarIDStr != nil {
		avatarID, err := ulid.Parse(*avatarIDStr)
		if err != nil {
			return nil, oops.Code("USER_PARSE_FAILED").With("field", "avatar_id").With("value", *avatarIDStr).Wrap(err)
		}
		user.AvatarID = &avatarID
	}

	return &user, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
