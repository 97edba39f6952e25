// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/model"
)

// First-boot admin credentials. The password is logged on creation and
// expected to be changed immediately.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates the default admin account so a fresh install can be logged
// into. It is idempotent: once an account exists under the default email,
// seeding is a no-op.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	switch _, err := queries.GetUserByEmail(ctx, DefaultAdminEmail); {
	case err == nil:
		slog.Info("admin user already exists, skipping seed")
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}
