// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/service"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/util"
)

// ProjectDetail is the admin project view with its related rows. Payments
// carry the status derived from the due date, not the stored one.
type ProjectDetail struct {
	model.Project
	AccessCode string              `json:"access_code"`
	ClientName string              `json:"client_name"`
	Phases     []model.Phase       `json:"phases"`
	Payments   []model.Payment     `json:"payments"`
	Files      []model.ProjectFile `json:"files"`
}

func (h *Handler) projectDetail(r *http.Request, project model.Project) (ProjectDetail, error) {
	detail := ProjectDetail{Project: project, AccessCode: project.AccessCode}

	owner, err := h.queries.GetUserByID(r.Context(), project.UserID)
	if err == nil {
		detail.ClientName = owner.Name
	}

	if detail.Phases, err = h.queries.ListProjectPhases(r.Context(), project.ID); err != nil {
		return detail, err
	}
	if detail.Payments, err = h.queries.ListProjectPayments(r.Context(), project.ID); err != nil {
		return detail, err
	}
	now := time.Now()
	for i := range detail.Payments {
		detail.Payments[i].Status = detail.Payments[i].ComputedStatus(now)
	}
	if detail.Files, err = h.queries.ListProjectFiles(r.Context(), project.ID); err != nil {
		return detail, err
	}
	return detail, nil
}

// ListProjects handles GET /api/v1/admin/projects with ?user_id and ?search.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			WriteBadRequest(w, "Invalid user_id filter", nil)
			return
		}
		userID = id
	}

	arg := store.ListProjectsParams{
		UserID: userID,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	projects, err := h.queries.ListProjects(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list projects")
		return
	}
	total, err := h.queries.CountProjects(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list projects")
		return
	}

	WriteSuccess(w, projects, NewMeta(total, page, perPage))
}

// GetProject handles GET /api/v1/admin/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	detail, err := h.projectDetail(r, project)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve project")
		return
	}
	WriteSuccess(w, detail, nil)
}

// ProjectRequest is the admin create/update project body.
type ProjectRequest struct {
	Name      model.LocalizedText `json:"name"`
	UserID    int64               `json:"user_id"`
	TotalCost float64             `json:"total_cost"`
}

func (h *Handler) validateProjectRequest(r *http.Request, req *ProjectRequest) map[string]string {
	lang := middleware.GetLanguage(r)
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(req.Name.EN) == "" {
		fieldErrors["name"] = i18n.T(lang, "validation.required", "name")
	}
	if req.UserID < 1 {
		fieldErrors["user_id"] = i18n.T(lang, "validation.required", "user_id")
	} else if owner, err := h.queries.GetUserByID(r.Context(), req.UserID); err != nil || owner.Role != model.RoleClient {
		fieldErrors["user_id"] = i18n.T(lang, "error.not_found")
	}
	if req.TotalCost < 0 {
		fieldErrors["total_cost"] = i18n.T(lang, "error.invalid_request")
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// CreateProject handles POST /api/v1/admin/projects. The generated access
// code is returned once in the detail payload.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := h.validateProjectRequest(r, &req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	accessCode, err := auth.GenerateAccessCode()
	if err != nil {
		WriteInternalError(w, "Failed to create project")
		return
	}

	now := time.Now()
	project, err := h.queries.CreateProject(r.Context(), store.CreateProjectParams{
		Name:       req.Name,
		UserID:     req.UserID,
		AccessCode: accessCode,
		TotalCost:  req.TotalCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create project")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Project created: "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "user_id": project.UserID})

	detail, err := h.projectDetail(r, project)
	if err != nil {
		WriteInternalError(w, "Failed to create project")
		return
	}
	WriteCreated(w, detail)
}

// UpdateProject handles PUT /api/v1/admin/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ProjectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := h.validateProjectRequest(r, &req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	project, err := h.queries.UpdateProject(r.Context(), store.UpdateProjectParams{
		ID:        existing.ID,
		Name:      req.Name,
		UserID:    req.UserID,
		TotalCost: req.TotalCost,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update project")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Project updated: "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID})

	detail, err := h.projectDetail(r, project)
	if err != nil {
		WriteInternalError(w, "Failed to update project")
		return
	}
	WriteSuccess(w, detail, nil)
}

// DeleteProject handles DELETE /api/v1/admin/projects/{id}. Attached files
// are removed from disk after the row cascade.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	files, err := h.queries.ListProjectFiles(r.Context(), project.ID)
	if err != nil {
		WriteInternalError(w, "Failed to delete project")
		return
	}

	if err := h.queries.DeleteProject(r.Context(), project.ID); err != nil {
		WriteInternalError(w, "Failed to delete project")
		return
	}
	for _, f := range files {
		_ = h.media.RemoveStoredFile(f)
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelWarning,
		"Project deleted: "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID})

	WriteNoContent(w)
}

// RegenerateAccessCode handles POST /api/v1/admin/projects/{id}/access-code.
// The old code stops working immediately.
func (h *Handler) RegenerateAccessCode(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	accessCode, err := auth.GenerateAccessCode()
	if err != nil {
		WriteInternalError(w, "Failed to regenerate access code")
		return
	}
	if err := h.queries.UpdateProjectAccessCode(r.Context(), project.ID, accessCode, time.Now()); err != nil {
		WriteInternalError(w, "Failed to regenerate access code")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Project access code regenerated: "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID})

	WriteSuccess(w, map[string]string{"access_code": accessCode}, nil)
}

// PhaseRequest is one timeline entry in a phase replacement.
type PhaseRequest struct {
	Title       model.LocalizedText `json:"title"`
	Description model.LocalizedText `json:"description"`
	Status      string              `json:"status"`
	Duration    string              `json:"duration,omitempty"`
	Progress    int64               `json:"progress"`
}

// ReplacePhasesRequest replaces a project's timeline wholesale.
type ReplacePhasesRequest struct {
	Phases []PhaseRequest `json:"phases"`
}

// ReplacePhases handles PUT /api/v1/admin/projects/{id}/phases. The project
// progress is recomputed from the new phase set.
func (h *Handler) ReplacePhases(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ReplacePhasesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	phases := make([]model.Phase, 0, len(req.Phases))
	for i, p := range req.Phases {
		field := "phases[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(p.Title.EN) == "" {
			WriteValidationError(w, map[string]string{field + ".title": i18n.T(lang, "validation.required", "title")})
			return
		}
		if !model.IsValidPhaseStatus(p.Status) {
			WriteValidationError(w, map[string]string{field + ".status": i18n.T(lang, "validation.invalid_status", p.Status)})
			return
		}
		if p.Progress < 0 || p.Progress > 100 {
			WriteValidationError(w, map[string]string{field + ".progress": i18n.T(lang, "validation.progress_range")})
			return
		}
		phases = append(phases, model.Phase{
			ProjectID:   project.ID,
			Title:       p.Title,
			Description: p.Description,
			Status:      p.Status,
			Duration:    p.Duration,
			Progress:    p.Progress,
			Position:    int64(i),
		})
	}

	// The old timeline is deleted before the new one is written, so the
	// whole swap runs in one transaction.
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}
	defer tx.Rollback()

	qtx := h.queries.WithTx(tx)
	if err := qtx.ReplaceProjectPhases(r.Context(), project.ID, phases); err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}
	if err := qtx.UpdateProjectProgress(r.Context(), project.ID, model.OverallProgress(phases), time.Now()); err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}
	if err := tx.Commit(); err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Project phases updated: "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "phases": len(phases)})

	project, err = h.queries.GetProjectByID(r.Context(), project.ID)
	if err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}
	detail, err := h.projectDetail(r, project)
	if err != nil {
		WriteInternalError(w, "Failed to update project phases")
		return
	}
	WriteSuccess(w, detail, nil)
}

// PaymentRequest is the admin create payment body.
type PaymentRequest struct {
	Title   model.LocalizedText `json:"title"`
	Amount  float64             `json:"amount"`
	DueDate time.Time           `json:"due_date"`
}

// CreatePayment handles POST /api/v1/admin/projects/{id}/payments. The
// initial status is derived from the due date.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req PaymentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Title.EN) == "" {
		fieldErrors["title"] = i18n.T(lang, "validation.required", "title")
	}
	if req.Amount <= 0 {
		fieldErrors["amount"] = i18n.T(lang, "validation.required", "amount")
	}
	if req.DueDate.IsZero() {
		fieldErrors["due_date"] = i18n.T(lang, "validation.required", "due_date")
	}
	if len(fieldErrors) != 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	seed := model.Payment{DueDate: req.DueDate}
	payment, err := h.queries.CreatePayment(r.Context(), store.CreatePaymentParams{
		ProjectID: project.ID,
		Title:     req.Title,
		Amount:    req.Amount,
		DueDate:   req.DueDate,
		Status:    seed.ComputedStatus(time.Now()),
	})
	if err != nil {
		WriteInternalError(w, "Failed to create payment")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Payment added to project "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "payment_id": payment.ID})

	WriteCreated(w, payment)
}

// UpdatePaymentStatusRequest marks a payment paid or reopens it.
type UpdatePaymentStatusRequest struct {
	Paid bool `json:"paid"`
}

// paymentForProject loads the {paymentID} route param and checks it belongs
// to the project from {id}.
func (h *Handler) paymentForProject(w http.ResponseWriter, r *http.Request, projectID int64) (model.Payment, bool) {
	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil || paymentID < 1 {
		WriteBadRequest(w, "Invalid payment ID", nil)
		return model.Payment{}, false
	}
	payment, err := h.queries.GetPaymentByID(r.Context(), paymentID)
	if err != nil || payment.ProjectID != projectID {
		WriteNotFound(w, "Payment not found")
		return model.Payment{}, false
	}
	return payment, true
}

// UpdatePaymentStatus handles PATCH /api/v1/admin/projects/{id}/payments/{paymentID}.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}
	payment, ok := h.paymentForProject(w, r, project.ID)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	now := time.Now()
	if req.Paid {
		payment.Status = model.PaymentStatusPaid
		payment.PaidAt = &now
		if err := h.queries.UpdatePaymentStatus(r.Context(), payment.ID, payment.Status,
			util.NullTimeFromPtr(payment.PaidAt)); err != nil {
			WriteInternalError(w, "Failed to update payment")
			return
		}
	} else {
		payment.PaidAt = nil
		// Clear paid so ComputedStatus falls through to the due-date rules.
		payment.Status = ""
		payment.Status = payment.ComputedStatus(now)
		if err := h.queries.UpdatePaymentStatus(r.Context(), payment.ID, payment.Status,
			util.NullTimeFromPtr(nil)); err != nil {
			WriteInternalError(w, "Failed to update payment")
			return
		}
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Payment "+payment.Status+" on project "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "payment_id": payment.ID, "status": payment.Status})

	WriteSuccess(w, payment, nil)
}

// DeletePayment handles DELETE /api/v1/admin/projects/{id}/payments/{paymentID}.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}
	payment, ok := h.paymentForProject(w, r, project.ID)
	if !ok {
		return
	}

	if err := h.queries.DeletePayment(r.Context(), payment.ID); err != nil {
		WriteInternalError(w, "Failed to delete payment")
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"Payment removed from project "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "payment_id": payment.ID})

	WriteNoContent(w)
}

// UploadProjectFile handles POST /api/v1/admin/projects/{id}/files.
func (h *Handler) UploadProjectFile(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	h.storeProjectFile(w, r, project, model.FileUploaderCompany)
}

// storeProjectFile reads the multipart "file" part and attaches it to the
// project. Shared between the admin and portal upload endpoints. Returns
// false with the response already written on failure.
func (h *Handler) storeProjectFile(w http.ResponseWriter, r *http.Request, project model.Project, uploadedBy string) bool {
	lang := middleware.GetLanguage(r)

	if err := r.ParseMultipartForm(service.MaxFileUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.required", "file")})
		return false
	}
	defer file.Close()

	stored, err := h.media.UploadProjectFile(r.Context(), file, header, project.ID, uploadedBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.file_too_large")})
		case errors.Is(err, service.ErrUnsupportedFileType):
			WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.file_type")})
		default:
			WriteInternalError(w, "Failed to store file")
		}
		return false
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"File attached to project "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "file_id": stored.ID, "uploaded_by": uploadedBy})

	WriteCreated(w, stored)
	return true
}

// DeleteProjectFile handles DELETE /api/v1/admin/projects/{id}/files/{fileID}.
func (h *Handler) DeleteProjectFile(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil || fileID < 1 {
		WriteBadRequest(w, "Invalid file ID", nil)
		return
	}

	if err := h.media.DeleteProjectFile(r.Context(), fileID, project.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "File not found")
		} else {
			WriteInternalError(w, "Failed to delete file")
		}
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo,
		"File removed from project "+project.Name.Resolve(model.LocaleEN),
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"project_id": project.ID, "file_id": fileID})

	WriteNoContent(w)
}

// DownloadProjectFile handles GET /api/v1/admin/projects/{id}/files/{fileID}.
func (h *Handler) DownloadProjectFile(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
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

// serveProjectFile streams a stored attachment. Shared between the admin and
// portal download endpoints.
func (h *Handler) serveProjectFile(w http.ResponseWriter, r *http.Request, projectID, fileID int64) {
	files, err := h.queries.ListProjectFiles(r.Context(), projectID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve file")
		return
	}
	var stored *model.ProjectFile
	for i := range files {
		if files[i].ID == fileID {
			stored = &files[i]
			break
		}
	}
	if stored == nil {
		WriteNotFound(w, "File not found")
		return
	}

	rc, err := h.media.OpenProjectFile(*stored)
	if err != nil {
		WriteNotFound(w, "File not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", stored.Type)
	w.Header().Set("Content-Length", strconv.FormatInt(stored.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+stored.Name+`"`)
	_, _ = io.Copy(w, rc)
}

// DownloadInvoice handles GET /api/v1/admin/projects/{id}/payments/{paymentID}/invoice.
func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}
	payment, ok := h.paymentForProject(w, r, project.ID)
	if !ok {
		return
	}

	h.serveInvoice(w, r, project, payment)
}

// serveInvoice renders one payment invoice as a PNG attachment.
func (h *Handler) serveInvoice(w http.ResponseWriter, r *http.Request, project model.Project, payment model.Payment) {
	payment.Status = payment.ComputedStatus(time.Now())

	clientName := ""
	if owner, err := h.queries.GetUserByID(r.Context(), project.UserID); err == nil {
		clientName = owner.Name
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.InvoiceFilename(payment)+`"`)
	if err := h.invoices.Render(w, project, payment, clientName); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// DownloadInvoiceArchive handles GET /api/v1/admin/projects/{id}/invoices,
// bundling the invoices of all paid payments into one zip.
func (h *Handler) DownloadInvoiceArchive(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (model.Project, error) {
		return h.queries.GetProjectByID(r.Context(), id)
	})
	if !ok {
		return
	}

	h.serveInvoiceArchive(w, r, project)
}

// serveInvoiceArchive streams the zip of paid-payment invoices for a project.
func (h *Handler) serveInvoiceArchive(w http.ResponseWriter, r *http.Request, project model.Project) {
	payments, err := h.queries.ListProjectPayments(r.Context(), project.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve payments")
		return
	}
	now := time.Now()
	for i := range payments {
		payments[i].Status = payments[i].ComputedStatus(now)
	}

	clientName := ""
	if owner, err := h.queries.GetUserByID(r.Context(), project.UserID); err == nil {
		clientName = owner.Name
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.zip"`)
	_ = h.invoices.RenderArchive(w, project, payments, clientName)
}
