// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/geoip"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
)

// loginMetadata describes the client for auth audit events: email, country
// when GeoIP is configured, and the browser from the User-Agent header.
func (h *Handler) loginMetadata(r *http.Request, email, ip string) map[string]any {
	metadata := map[string]any{"email": email}
	if ua := useragent.Parse(r.UserAgent()); ua.Name != "" {
		metadata["browser"] = ua.Name
		if ua.OS != "" {
			metadata["os"] = ua.OS
		}
	}
	if h.geo != nil {
		if country := h.geo.LookupCountry(ip); country != "" {
			metadata["country"] = country
			metadata["country_name"] = geoip.CountryName(country)
		}
	}
	return metadata
}

// LoginRequest is the dashboard login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and its user.
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login handles POST /api/v1/auth/login for dashboard users.
// Portal clients sign in through the portal endpoints instead.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	ip := middleware.ClientIP(r)

	var req LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{
			"email":    i18n.T(lang, "validation.required", "email"),
			"password": i18n.T(lang, "validation.required", "password"),
		})
		return
	}

	if locked, remaining := h.loginShield.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			i18n.T(lang, "error.account_locked"),
			map[string]string{"retry_after": remaining.Round(time.Second).String()})
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Login failed")
			return
		}
		// Burn a verification on unknown accounts so response timing does
		// not reveal which emails exist.
		_, _ = auth.CheckPassword(req.Password, "")
		h.failLogin(w, r, req.Email, 0, lang, ip)
		return
	}

	if user.IsClient() {
		// Clients use login codes, not passwords.
		h.failLogin(w, r, req.Email, user.ID, lang, ip)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, r, req.Email, user.ID, lang, ip)
		return
	}

	h.loginShield.RecordSuccessfulLogin(req.Email)

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash, time.Now()); err != nil {
				slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		WriteInternalError(w, "Login failed")
		return
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged in: "+user.Email, user.ID, ip, h.loginMetadata(r, user.Email, ip))

	WriteSuccess(w, LoginResponse{Token: token, User: user}, nil)
}

// failLogin records a failed attempt and writes the uniform 401 response.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, email string, userID int64, lang, ip string) {
	lockedNow, lockDuration := h.loginShield.RecordFailedAttempt(email)

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
		"Failed login attempt for "+email, userID, ip, h.loginMetadata(r, email, ip))

	if lockedNow {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			i18n.T(lang, "error.account_locked"),
			map[string]string{"retry_after": lockDuration.Round(time.Second).String()})
		return
	}
	WriteUnauthorized(w, i18n.T(lang, "error.invalid_credentials"))
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, user, nil)
}

// ChangePasswordRequest is the body for POST /api/v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MinPasswordLength applies to dashboard user passwords.
const MinPasswordLength = 10

// ChangePassword handles POST /api/v1/auth/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if len(req.NewPassword) < MinPasswordLength {
		WriteValidationError(w, map[string]string{
			"new_password": i18n.T(lang, "validation.min_length", "password", MinPasswordLength),
		})
		return
	}

	ok, err := auth.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		WriteUnauthorized(w, i18n.T(lang, "error.invalid_credentials"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		WriteInternalError(w, "Failed to update password")
		return
	}
	if err := h.queries.UpdateUserPassword(r.Context(), user.ID, hash, time.Now()); err != nil {
		WriteInternalError(w, "Failed to update password")
		return
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"Password changed for "+user.Email, user.ID, middleware.ClientIP(r), nil)

	WriteNoContent(w)
}
