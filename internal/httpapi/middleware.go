// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/gridverse/gridverse/internal/auth"
	"github.com/gridverse/gridverse/internal/observability"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.TokenClaims, error)
}

type contextKey int

const claimsKey contextKey = iota

// callerFromContext returns the authenticated caller's ID and role.
// Only set by the auth middleware; handlers behind a gate can rely on it.
func callerFromContext(ctx context.Context) (ulid.ULID, auth.Role, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.TokenClaims)
	if !ok {
		return ulid.ULID{}, "", false
	}
	id, err := ulid.Parse(claims.UserID)
	if err != nil {
		return ulid.ULID{}, "", false
	}
	return id, claims.Role, true
}

// requireRole builds the auth gate. A missing or malformed Authorization
// header fails with 403, a token that does not verify with 401, and a
// verified token lacking the required role with 403. All three respond with
// the same body so the gate does not leak which check failed.
func requireRole(verifier TokenVerifier, role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeMessage(w, http.StatusForbidden, msgUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			if role == auth.RoleAdmin && claims.Role != auth.RoleAdmin {
				writeMessage(w, http.StatusForbidden, msgUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser admits any verified token.
func RequireUser(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireRole(verifier, auth.RoleUser)
}

// RequireAdmin admits only verified Admin tokens.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireRole(verifier, auth.RoleAdmin)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// recordMetrics observes request counts and latency per chi route pattern.
func recordMetrics(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			metrics.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
