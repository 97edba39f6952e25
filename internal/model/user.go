// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleClient   = "client"
)

// ValidRoles lists all assignable user roles.
var ValidRoles = []string{RoleAdmin, RoleEmployee, RoleClient}

// IsValidRole reports whether role is an assignable user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an admin, employee or portal client.
type User struct {
	ID            int64          `json:"id"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"-"` // Never expose in JSON
	Role          string         `json:"role"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone,omitempty"`
	CompanyName   string         `json:"company_name,omitempty"`
	LoginCodeHash sql.NullString `json:"-"` // Portal login code, hashed like a password
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	LastLoginAt   sql.NullTime   `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsClient returns true if the user is a portal client.
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// CanManageContent returns true if the user may use the admin dashboard.
func (u *User) CanManageContent() bool {
	return u.Role == RoleAdmin || u.Role == RoleEmployee
}
