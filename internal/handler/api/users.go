// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// ListUsers handles GET /api/v1/admin/users with ?role and ?search filters.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	role := r.URL.Query().Get("role")
	if role != "" && !model.IsValidRole(role) {
		WriteValidationError(w, map[string]string{"role": i18n.T(lang, "validation.invalid_role", role)})
		return
	}

	arg := store.ListUsersParams{
		Role:   role,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	users, err := h.queries.ListUsers(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}
	total, err := h.queries.CountUsers(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}

	WriteSuccess(w, users, NewMeta(total, page, perPage))
}

// GetUser handles GET /api/v1/admin/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (model.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, user, nil)
}

// CreateUserRequest is the body for creating a user. Password applies to
// staff accounts; client accounts get a generated login code instead.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// CreatedUserResponse includes the one-time login code for new clients.
// The code is only shown here; the stored copy is hashed.
type CreatedUserResponse struct {
	User      model.User `json:"user"`
	LoginCode string     `json:"login_code,omitempty"`
}

func validateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CreateUser handles POST /api/v1/admin/users. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req CreateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = i18n.T(lang, "validation.required", "name")
	}
	if !validateEmail(req.Email) {
		fieldErrors["email"] = i18n.T(lang, "validation.email", "email")
	}
	if !model.IsValidRole(req.Role) {
		fieldErrors["role"] = i18n.T(lang, "validation.invalid_role", req.Role)
	}
	if req.Role != model.RoleClient && len(req.Password) < MinPasswordLength {
		fieldErrors["password"] = i18n.T(lang, "validation.min_length", "password", MinPasswordLength)
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if count, err := h.queries.CountUsersByEmail(r.Context(), req.Email, 0); err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	} else if count > 0 {
		WriteValidationError(w, map[string]string{"email": i18n.T(lang, "validation.email_taken")})
		return
	}

	params := store.CreateUserParams{
		Email:       req.Email,
		Role:        req.Role,
		Name:        req.Name,
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	var loginCode string
	if req.Role == model.RoleClient {
		code, err := auth.GenerateLoginCode()
		if err != nil {
			WriteInternalError(w, "Failed to create user")
			return
		}
		codeHash, err := auth.HashLoginCode(code)
		if err != nil {
			WriteInternalError(w, "Failed to create user")
			return
		}
		loginCode = code
		params.LoginCodeHash = sql.NullString{String: codeHash, Valid: true}
		// Clients never authenticate with a password. An unusable hash
		// placeholder keeps the column non-empty.
		params.PasswordHash = "!"
	} else {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			WriteInternalError(w, "Failed to create user")
			return
		}
		params.PasswordHash = hash
	}

	user, err := h.queries.CreateUser(r.Context(), params)
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User created: "+user.Email, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"created_user_id": user.ID, "role": user.Role})

	WriteCreated(w, CreatedUserResponse{User: user, LoginCode: loginCode})
}

// UpdateUserRequest is the body for updating a user's profile fields.
type UpdateUserRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// UpdateUser handles PUT /api/v1/admin/users/{id}. Admin only.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	existing, ok := requireEntityByID(w, r, "user", func(id int64) (model.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = i18n.T(lang, "validation.required", "name")
	}
	if !validateEmail(req.Email) {
		fieldErrors["email"] = i18n.T(lang, "validation.email", "email")
	}
	if !model.IsValidRole(req.Role) {
		fieldErrors["role"] = i18n.T(lang, "validation.invalid_role", req.Role)
	}
	// Switching between staff and client would strand the account's
	// credential (password vs login code).
	if (existing.Role == model.RoleClient) != (req.Role == model.RoleClient) {
		fieldErrors["role"] = i18n.T(lang, "validation.invalid_role", req.Role)
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if count, err := h.queries.CountUsersByEmail(r.Context(), req.Email, existing.ID); err != nil {
		WriteInternalError(w, "Failed to update user")
		return
	} else if count > 0 {
		WriteValidationError(w, map[string]string{"email": i18n.T(lang, "validation.email_taken")})
		return
	}

	user, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:          existing.ID,
		Email:       req.Email,
		Role:        req.Role,
		Name:        req.Name,
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update user")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User updated: "+user.Email, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"updated_user_id": user.ID})

	WriteSuccess(w, user, nil)
}

// ResetLoginCode handles POST /api/v1/admin/users/{id}/login-code.
// Generates a new portal login code for a client, invalidating the old one.
func (h *Handler) ResetLoginCode(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (model.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}
	if !user.IsClient() {
		WriteBadRequest(w, "Login codes only apply to client accounts", nil)
		return
	}

	code, err := auth.GenerateLoginCode()
	if err != nil {
		WriteInternalError(w, "Failed to reset login code")
		return
	}
	codeHash, err := auth.HashLoginCode(code)
	if err != nil {
		WriteInternalError(w, "Failed to reset login code")
		return
	}
	if err := h.queries.UpdateUserLoginCode(r.Context(), user.ID,
		sql.NullString{String: codeHash, Valid: true}, time.Now()); err != nil {
		WriteInternalError(w, "Failed to reset login code")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo,
		"Login code reset for "+user.Email, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"client_id": user.ID})

	WriteSuccess(w, CreatedUserResponse{User: user, LoginCode: code}, nil)
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}. Admin only.
// Users cannot delete themselves, and clients with projects must have their
// projects reassigned first.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	user, ok := requireEntityByID(w, r, "user", func(id int64) (model.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if user.ID == middleware.GetUserID(r) {
		WriteBadRequest(w, "You cannot delete your own account", nil)
		return
	}

	projectCount, err := h.queries.CountProjects(r.Context(), store.ListProjectsParams{UserID: user.ID})
	if err != nil {
		WriteInternalError(w, "Failed to delete user")
		return
	}
	if projectCount > 0 {
		WriteConflict(w, i18n.T(lang, "error.conflict"))
		return
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		WriteInternalError(w, "Failed to delete user")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User deleted: "+user.Email, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"deleted_user_id": user.ID})

	WriteNoContent(w)
}
