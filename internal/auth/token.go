// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenClaims is the payload embedded in every session token.
// Tokens carry identity and role only; validity is bounded by the signature,
// not by an expiry claim.
type TokenClaims struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed session tokens.
// The signing secret is process-wide configuration, loaded once at startup.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue produces a signed token embedding the user's ID and role.
func (s *TokenService) Issue(userID ulid.ULID, role Role) (string, error) {
	claims := &TokenClaims{
		UserID: userID.String(),
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return signed, nil
}

// Verify checks the token's signature and structure and returns its claims.
// Tokens signed with a different key, using a non-HMAC algorithm, or carrying
// an unknown role are rejected.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Code("AUTH_TOKEN_INVALID").
				With("alg", token.Header["alg"]).
				Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_INVALID").Wrap(err)
	}
	if !token.Valid {
		return nil, oops.Code("AUTH_TOKEN_INVALID").Errorf("token signature invalid")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, oops.Code("AUTH_TOKEN_INVALID").Errorf("unexpected claims type")
	}
	if _, err := ulid.Parse(claims.UserID); err != nil {
		return nil, oops.Code("AUTH_TOKEN_INVALID").With("user_id", claims.UserID).Wrap(err)
	}
	if !claims.Role.Valid() {
		return nil, oops.Code("AUTH_TOKEN_INVALID").With("role", string(claims.Role)).
			Errorf("unknown role")
	}

	return claims, nil
}
