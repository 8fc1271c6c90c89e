// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package auth

// Role determines which parts of the API an account may use.
type Role string

// The two account roles. Admin unlocks catalog management.
const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid returns true if r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleFromAccountType maps the public signup "type" field to a Role.
// Only the exact string "admin" grants RoleAdmin; anything else is RoleUser.
func RoleFromAccountType(accountType string) Role {
	if accountType == "admin" {
		return RoleAdmin
	}
	return RoleUser
}
