// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/auth"
	"github.com/gridverse/gridverse/internal/world"
	"github.com/gridverse/gridverse/pkg/errutil"
)

// isValidationError reports whether err stems from rejected input rather
// than an infrastructure failure.
func isValidationError(err error) bool {
	var worldErr *world.ValidationError
	if errors.As(err, &worldErr) {
		return true
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	switch oopsErr.Code() {
	case "AUTH_INVALID_USERNAME", "AUTH_INVALID_USER", "AUTH_EMPTY_PASSWORD":
		return true
	}
	return false
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	userID, err := s.cfg.Accounts.Signup(r.Context(), req.Username, req.Password, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeMessage(w, http.StatusBadRequest, msgUserExists)
		case isValidationError(err):
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		default:
			errutil.LogError(s.logger, "signup failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"userId": userID.String()})
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusForbidden, msgValidationFailed)
		return
	}

	token, err := s.cfg.Accounts.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		s.observeSignin("failure")
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeMessage(w, http.StatusForbidden, msgUserNotFound)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeMessage(w, http.StatusForbidden, msgInvalidPassword)
		case errors.Is(err, auth.ErrAccountLocked):
			writeMessage(w, http.StatusForbidden, msgAccountLocked)
		default:
			errutil.LogError(s.logger, "signin failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	s.observeSignin("success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) observeSignin(result string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SigninsTotal.WithLabelValues(result).Inc()
	}
}

type updateMetadataRequest struct {
	AvatarID string `json:"avatarId"`
}

func (s *Server) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	var req updateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}
	avatarID, err := ulid.Parse(req.AvatarID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	if err := s.cfg.Accounts.UpdateAvatar(r.Context(), callerID, avatarID); err != nil {
		s.logger.Error("metadata update failed", "error", err, "user_id", callerID)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Metadata updated"})
}

type bulkAvatarResponse struct {
	UserID   string  `json:"userId"`
	ImageURL *string `json:"imageUrl"`
}

// handleBulkMetadata resolves avatar image URLs for a bracketed list of user
// IDs, e.g. ?ids=[01ABC...,01DEF...]. IDs that do not parse are skipped.
func (s *Server) handleBulkMetadata(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	var userIDs []ulid.ULID
	for _, part := range strings.Split(raw, ",") {
		id, err := ulid.Parse(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		userIDs = append(userIDs, id)
	}

	avatars := []bulkAvatarResponse{}
	if len(userIDs) > 0 {
		found, err := s.cfg.Accounts.GetAvatars(r.Context(), userIDs)
		if err != nil {
			errutil.LogError(s.logger, "bulk metadata lookup failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
			return
		}
		for _, a := range found {
			avatars = append(avatars, bulkAvatarResponse{
				UserID:   a.UserID.String(),
				ImageURL: a.ImageURL,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"avatars": avatars})
}
