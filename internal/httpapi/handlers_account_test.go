// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridverse/gridverse/internal/auth"
)

func TestHandleSignup(t *testing.T) {
	t.Run("returns the new user id", func(t *testing.T) {
		env := newTestEnv(t)
		id := ulid.Make()
		env.accounts.signupID = id

		status, body := env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
			"username": "timmy",
			"password": "hunter22",
			"type":     "admin",
		})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, id.String(), body["userId"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.signupErr = oops.Code("AUTH_USERNAME_TAKEN").Wrap(auth.ErrUsernameTaken)

		status, body := env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
			"username": "timmy",
			"password": "hunter22",
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "User already exists", body["message"])
	})

	t.Run("rejected username", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.signupErr = oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")

		status, body := env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
			"password": "hunter22",
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, http.MethodPost, "/api/v1/signup", "", "not an object")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["message"])
	})
}

func TestHandleSignin(t *testing.T) {
	t.Run("returns a token", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.token = "a.jwt.token"

		status, body := env.do(t, http.MethodPost, "/api/v1/signin", "", map[string]string{
			"username": "timmy",
			"password": "hunter22",
		})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "a.jwt.token", body["token"])
	})

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			"unknown user",
			oops.Code("AUTH_USER_NOT_FOUND").Wrap(auth.ErrNotFound),
			http.StatusForbidden,
			"User not found",
		},
		{
			"wrong password",
			oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(auth.ErrInvalidCredentials),
			http.StatusForbidden,
			"Invalid password",
		},
		{
			"locked account",
			oops.Code("AUTH_ACCOUNT_LOCKED").Wrap(auth.ErrAccountLocked),
			http.StatusForbidden,
			"Account locked",
		},
		{
			"infrastructure failure",
			oops.Code("AUTH_SIGNIN_FAILED").Errorf("connection refused"),
			http.StatusBadRequest,
			"Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.accounts.signinErr = tt.err

			status, body := env.do(t, http.MethodPost, "/api/v1/signin", "", map[string]string{
				"username": "timmy",
				"password": "hunter22",
			})

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestHandleUpdateMetadata(t *testing.T) {
	t.Run("updates the caller's avatar", func(t *testing.T) {
		env := newTestEnv(t)
		avatarID := ulid.Make()

		status, _ := env.do(t, http.MethodPost, "/api/v1/user/metadata", userToken, map[string]string{
			"avatarId": avatarID.String(),
		})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, avatarID, env.accounts.gotAvatar)
	})

	t.Run("malformed avatar id", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, http.MethodPost, "/api/v1/user/metadata", userToken, map[string]string{
			"avatarId": "not-a-ulid",
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["message"])
	})

	t.Run("requires a token", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.do(t, http.MethodPost, "/api/v1/user/metadata", "", map[string]string{})

		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestHandleBulkMetadata(t *testing.T) {
	t.Run("resolves bracketed ids and skips garbage", func(t *testing.T) {
		env := newTestEnv(t)
		imageURL := "https://img/timmy.png"
		env.accounts.avatars = []auth.UserAvatar{
			{UserID: testUserID, ImageURL: &imageURL},
			{UserID: testAdminID, ImageURL: nil},
		}

		query := "/api/v1/user/metadata/bulk?ids=[" + testUserID.String() + ",junk," + testAdminID.String() + "]"
		status, body := env.do(t, http.MethodGet, query, "", nil)

		assert.Equal(t, http.StatusOK, status)
		require.Len(t, env.accounts.gotUserIDs, 2)
		assert.Equal(t, testUserID, env.accounts.gotUserIDs[0])
		assert.Equal(t, testAdminID, env.accounts.gotUserIDs[1])

		avatars, ok := body["avatars"].([]any)
		require.True(t, ok)
		require.Len(t, avatars, 2)
		first, ok := avatars[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, testUserID.String(), first["userId"])
		assert.Equal(t, imageURL, first["imageUrl"])
		second, ok := avatars[1].(map[string]any)
		require.True(t, ok)
		assert.Nil(t, second["imageUrl"])
	})

	t.Run("empty ids yields empty list without a lookup", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, http.MethodGet, "/api/v1/user/metadata/bulk?ids=[]", "", nil)

		assert.Equal(t, http.StatusOK, status)
		avatars, ok := body["avatars"].([]any)
		require.True(t, ok)
		assert.Empty(t, avatars)
		assert.Nil(t, env.accounts.gotUserIDs)
	})
}
