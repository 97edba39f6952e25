// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const userColumns = `id, email, password_hash, role, name, phone, company_name,
	login_code_hash, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Phone,
		&u.CompanyName, &u.LoginCodeHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams filters and paginates the user list.
type ListUsersParams struct {
	Role   string // empty matches all roles
	Search string // matches name, email or company name
	Limit  int64
	Offset int64
}

// ListUsers returns a page of users ordered by creation time (newest first).
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]model.User, error) {
	search := escapeLike(arg.Search)
	query := `SELECT ` + userColumns + ` FROM users WHERE (? = '' OR role = ?)
		AND (? = '' OR name LIKE '%' || ? || '%' ESCAPE '\' OR email LIKE '%' || ? || '%' ESCAPE '\'
			OR company_name LIKE '%' || ? || '%' ESCAPE '\')
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.Role, arg.Role, search, search, search, search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers counts users matching the same filters as ListUsers.
func (q *Queries) CountUsers(ctx context.Context, arg ListUsersParams) (int64, error) {
	search := escapeLike(arg.Search)
	query := `SELECT COUNT(*) FROM users WHERE (? = '' OR role = ?)
		AND (? = '' OR name LIKE '%' || ? || '%' ESCAPE '\' OR email LIKE '%' || ? || '%' ESCAPE '\'
			OR company_name LIKE '%' || ? || '%' ESCAPE '\')`
	var count int64
	err := q.db.QueryRowContext(ctx, query,
		arg.Role, arg.Role, search, search, search, search).Scan(&count)
	return count, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Email         string
	PasswordHash  string
	Role          string
	Name          string
	Phone         string
	CompanyName   string
	LoginCodeHash sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateUser inserts a user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO users
		(email, password_hash, role, name, phone, company_name, login_code_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.Role, arg.Name, arg.Phone, arg.CompanyName,
		arg.LoginCodeHash, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// UpdateUserParams holds the fields for updating a user.
type UpdateUserParams struct {
	ID          int64
	Email       string
	Role        string
	Name        string
	Phone       string
	CompanyName string
	UpdatedAt   time.Time
}

// UpdateUser updates user profile fields and returns the stored row.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE users
		SET email = ?, role = ?, name = ?, phone = ?, company_name = ?, updated_at = ?
		WHERE id = ?`,
		arg.Email, arg.Role, arg.Name, arg.Phone, arg.CompanyName, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, arg.ID)
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, updatedAt, id)
	return err
}

// UpdateUserLoginCode replaces the stored portal login code hash.
func (q *Queries) UpdateUserLoginCode(ctx context.Context, id int64, codeHash sql.NullString, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET login_code_hash = ?, updated_at = ? WHERE id = ?`,
		codeHash, updatedAt, id)
	return err
}

// UpdateUserLastLogin records a successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// ListClientsWithLoginCodes returns all client users that have a login code set.
func (q *Queries) ListClientsWithLoginCodes(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE role = ? AND login_code_hash IS NOT NULL`, model.RoleClient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user. Owned projects cascade.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// CountUsersByEmail counts users with the given email, excluding one ID.
// Used for uniqueness checks on create (exclude 0) and update.
func (q *Queries) CountUsersByEmail(ctx context.Context, email string, excludeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, excludeID).Scan(&count)
	return count, err
}
