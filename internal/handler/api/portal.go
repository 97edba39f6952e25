// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
)

// PortalLoginRequest is the client portal login body. Clients authenticate
// with their login code and bind the session to one project via its access
// code.
type PortalLoginRequest struct {
	Email      string `json:"email"`
	LoginCode  string `json:"login_code"`
	AccessCode string `json:"access_code"`
}

// PortalLoginResponse confirms the session and names the bound project.
type PortalLoginResponse struct {
	User    model.User    `json:"user"`
	Project model.Project `json:"project"`
}

// PortalLogin handles POST /api/v1/portal/login.
func (h *Handler) PortalLogin(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	ip := middleware.ClientIP(r)

	var req PortalLoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.LoginCode = strings.TrimSpace(req.LoginCode)
	req.AccessCode = strings.ToUpper(strings.TrimSpace(req.AccessCode))
	if req.Email == "" || req.LoginCode == "" || req.AccessCode == "" {
		WriteValidationError(w, map[string]string{
			"email":       i18n.T(lang, "validation.required", "email"),
			"login_code":  i18n.T(lang, "validation.required", "login_code"),
			"access_code": i18n.T(lang, "validation.required", "access_code"),
		})
		return
	}

	if locked, remaining := h.loginShield.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			i18n.T(lang, "error.account_locked"),
			map[string]string{"retry_after": remaining.Round(time.Second).String()})
		return
	}

	if !auth.IsValidLoginCode(req.LoginCode) {
		h.failPortalLogin(w, r, req.Email, 0, lang, ip)
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
		_, _ = auth.CheckLoginCode(req.LoginCode, "")
		h.failPortalLogin(w, r, req.Email, 0, lang, ip)
		return
	}

	if !user.IsClient() || !user.LoginCodeHash.Valid {
		h.failPortalLogin(w, r, req.Email, user.ID, lang, ip)
		return
	}
	ok, err := auth.CheckLoginCode(req.LoginCode, user.LoginCodeHash.String)
	if err != nil || !ok {
		h.failPortalLogin(w, r, req.Email, user.ID, lang, ip)
		return
	}

	project, err := h.queries.GetProjectByAccessCode(r.Context(), req.AccessCode)
	if err != nil || project.UserID != user.ID {
		// An access code for someone else's project counts as a failed
		// attempt too.
		h.failPortalLogin(w, r, req.Email, user.ID, lang, ip)
		return
	}

	h.loginShield.RecordSuccessfulLogin(req.Email)

	// Fresh session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyPortalUserID, user.ID)
	h.sessions.Put(r.Context(), middleware.SessionKeyPortalProjectID, project.ID)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err == nil {
		user.LastLoginAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	metadata := h.loginMetadata(r, user.Email, ip)
	metadata["project_id"] = project.ID
	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"Portal login: "+user.Email, user.ID, ip, metadata)

	WriteSuccess(w, PortalLoginResponse{User: user, Project: project}, nil)
}

// failPortalLogin records a failed attempt and writes the uniform response.
func (h *Handler) failPortalLogin(w http.ResponseWriter, r *http.Request, email string, userID int64, lang, ip string) {
	lockedNow, lockDuration := h.loginShield.RecordFailedAttempt(email)

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
		"Failed portal login attempt for "+email, userID, ip,
		h.loginMetadata(r, email, ip))

	if lockedNow {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			i18n.T(lang, "error.account_locked"),
			map[string]string{"retry_after": lockDuration.Round(time.Second).String()})
		return
	}
	WriteUnauthorized(w, i18n.T(lang, "error.invalid_login_code"))
}

// PortalLogout handles POST /api/v1/portal/logout.
func (h *Handler) PortalLogout(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		WriteInternalError(w, "Logout failed")
		return
	}
	WriteSuccess(w, map[string]string{"message": i18n.T(lang, "portal.logged_out")}, nil)
}

// PortalProjectView is the project as clients see it: timeline, payments
// with due-date derived statuses, and shared files. Never the access code.
type PortalProjectView struct {
	model.Project
	Phases   []model.Phase       `json:"phases"`
	Payments []model.Payment     `json:"payments"`
	Files    []model.ProjectFile `json:"files"`
}

// portalProject loads the project bound to the portal session.
func (h *Handler) portalProject(w http.ResponseWriter, r *http.Request) (model.Project, bool) {
	projectID := middleware.GetPortalProjectID(h.sessions, r)
	if projectID == 0 {
		WriteUnauthorized(w, "Portal session required")
		return model.Project{}, false
	}
	user := middleware.GetUser(r)
	project, err := h.queries.GetProjectByID(r.Context(), projectID)
	if err != nil || user == nil || project.UserID != user.ID {
		WriteUnauthorized(w, "Portal session required")
		return model.Project{}, false
	}
	return project, true
}

// PortalProject handles GET /api/v1/portal/project.
func (h *Handler) PortalProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}

	view := PortalProjectView{Project: project}
	var err error
	if view.Phases, err = h.queries.ListProjectPhases(r.Context(), project.ID); err != nil {
		WriteInternalError(w, "Failed to retrieve project")
		return
	}
	if view.Payments, err = h.queries.ListProjectPayments(r.Context(), project.ID); err != nil {
		WriteInternalError(w, "Failed to retrieve project")
		return
	}
	now := time.Now()
	for i := range view.Payments {
		view.Payments[i].Status = view.Payments[i].ComputedStatus(now)
	}
	if view.Files, err = h.queries.ListProjectFiles(r.Context(), project.ID); err != nil {
		WriteInternalError(w, "Failed to retrieve project")
		return
	}

	WriteSuccess(w, view, nil)
}

// PortalUploadFile handles POST /api/v1/portal/project/files. The company
// is notified so client uploads do not sit unseen.
func (h *Handler) PortalUploadFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}

	if !h.storeProjectFile(w, r, project, model.FileUploaderClient) {
		return
	}

	if user := middleware.GetUser(r); user != nil {
		h.notify.NotifyProjectModification(r.Context(), project, user.Name, "uploaded a file")
	}
}

// PortalDeleteFile handles DELETE /api/v1/portal/project/files/{fileID}.
// Clients may only remove their own uploads.
func (h *Handler) PortalDeleteFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}

	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil || fileID < 1 {
		WriteBadRequest(w, "Invalid file ID", nil)
		return
	}

	files, err := h.queries.ListProjectFiles(r.Context(), project.ID)
	if err != nil {
		WriteInternalError(w, "Failed to delete file")
		return
	}
	var target *model.ProjectFile
	for i := range files {
		if files[i].ID == fileID {
			target = &files[i]
			break
		}
	}
	if target == nil || target.UploadedBy != model.FileUploaderClient {
		WriteNotFound(w, "File not found")
		return
	}

	if err := h.media.DeleteProjectFile(r.Context(), fileID, project.ID); err != nil {
		WriteInternalError(w, "Failed to delete file")
		return
	}

	if user := middleware.GetUser(r); user != nil {
		h.notify.NotifyProjectModification(r.Context(), project, user.Name, "removed a file")
		_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
			"Client removed a file from project "+project.Name.Resolve(model.LocaleEN),
			user.ID, middleware.ClientIP(r),
			map[string]any{"project_id": project.ID, "file_id": fileID})
	}

	WriteNoContent(w)
}

// PortalDownloadFile handles GET /api/v1/portal/project/files/{fileID}.
func (h *Handler) PortalDownloadFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}

	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil || fileID < 1 {
		WriteBadRequest(w, "Invalid file ID", nil)
		return
	}

	h.serveProjectFile(w, r, project.ID, fileID)
}

// PortalDownloadInvoice handles GET /api/v1/portal/project/payments/{paymentID}/invoice.
func (h *Handler) PortalDownloadInvoice(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}
	payment, ok := h.paymentForProject(w, r, project.ID)
	if !ok {
		return
	}

	h.serveInvoice(w, r, project, payment)
}

// PortalDownloadInvoiceArchive handles GET /api/v1/portal/project/invoices.
func (h *Handler) PortalDownloadInvoiceArchive(w http.ResponseWriter, r *http.Request) {
	project, ok := h.portalProject(w, r)
	if !ok {
		return
	}

	h.serveInvoiceArchive(w, r, project)
}
