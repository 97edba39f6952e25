// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/util"
)

// QuoteRequest is the public quotation request body.
type QuoteRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	CompanyName string     `json:"company_name,omitempty"`
	ServiceID   *int64     `json:"service_id,omitempty"`
	BudgetFrom  float64    `json:"budget_from"`
	BudgetTo    float64    `json:"budget_to"`
	Duration    string     `json:"duration,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description"`
}

func (req *QuoteRequest) validate(lang string) map[string]string {
	fieldErrors := make(map[string]string)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Description = strings.TrimSpace(req.Description)

	if req.Name == "" {
		fieldErrors["name"] = i18n.T(lang, "validation.required", "name")
	}
	if !validateEmail(req.Email) {
		fieldErrors["email"] = i18n.T(lang, "validation.email", "email")
	}
	if strings.TrimSpace(req.Phone) == "" {
		fieldErrors["phone"] = i18n.T(lang, "validation.required", "phone")
	}
	if req.Description == "" {
		fieldErrors["description"] = i18n.T(lang, "validation.required", "description")
	}
	if req.BudgetFrom < 0 || req.BudgetTo < req.BudgetFrom {
		fieldErrors["budget_to"] = i18n.T(lang, "validation.budget_range")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		fieldErrors["end_date"] = i18n.T(lang, "error.invalid_request")
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// SubmitQuote handles POST /api/v1/quotes: the public quotation form.
func (h *Handler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req QuoteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	var serviceName string
	if req.ServiceID != nil {
		svc, err := h.queries.GetServiceByID(r.Context(), *req.ServiceID)
		if err != nil {
			WriteValidationError(w, map[string]string{"service_id": i18n.T(lang, "error.not_found")})
			return
		}
		serviceName = svc.Title.Resolve(model.LocaleEN)
	}

	now := time.Now()
	quote, err := h.queries.CreateQuote(r.Context(), store.CreateQuoteParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		ServiceID:   util.NullInt64FromPtr(req.ServiceID),
		BudgetFrom:  req.BudgetFrom,
		BudgetTo:    req.BudgetTo,
		Duration:    strings.TrimSpace(req.Duration),
		StartDate:   util.NullTimeFromPtr(req.StartDate),
		EndDate:     util.NullTimeFromPtr(req.EndDate),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to submit quotation request")
		return
	}

	h.notify.NotifyQuoteSubmitted(r.Context(), quote, serviceName)
	_ = h.events.LogQuoteEvent(r.Context(), model.EventLevelInfo,
		"Quotation request submitted by "+quote.Email, 0, middleware.ClientIP(r),
		map[string]any{"quote_id": quote.ID})

	WriteCreated(w, map[string]any{
		"id":      quote.ID,
		"message": i18n.T(lang, "quote.submitted"),
	})
}

// ---- Admin endpoints ----

// ListQuotes handles GET /api/v1/admin/quotes with ?status and ?search.
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	status := r.URL.Query().Get("status")
	if status != "" && !model.IsValidQuoteStatus(status) {
		WriteValidationError(w, map[string]string{"status": i18n.T(lang, "validation.invalid_status", status)})
		return
	}

	arg := store.ListQuotesParams{
		Status: status,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	quotes, err := h.queries.ListQuotes(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list quotation requests")
		return
	}
	total, err := h.queries.CountQuotes(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list quotation requests")
		return
	}

	WriteSuccess(w, quotes, NewMeta(total, page, perPage))
}

// GetQuote handles GET /api/v1/admin/quotes/{id}.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, ok := requireEntityByID(w, r, "quote", func(id int64) (model.Quote, error) {
		return h.queries.GetQuoteByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, quote, nil)
}

// UpdateQuoteStatusRequest moves a quotation request through its workflow.
type UpdateQuoteStatusRequest struct {
	Status string `json:"status"`
}

// UpdateQuoteStatus handles PATCH /api/v1/admin/quotes/{id}.
func (h *Handler) UpdateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	existing, ok := requireEntityByID(w, r, "quote", func(id int64) (model.Quote, error) {
		return h.queries.GetQuoteByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req UpdateQuoteStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !model.IsValidQuoteStatus(req.Status) {
		WriteValidationError(w, map[string]string{"status": i18n.T(lang, "validation.invalid_status", req.Status)})
		return
	}

	quote, err := h.queries.UpdateQuoteStatus(r.Context(), existing.ID, req.Status, time.Now())
	if err != nil {
		WriteInternalError(w, "Failed to update quotation request")
		return
	}

	_ = h.events.LogQuoteEvent(r.Context(), model.EventLevelInfo,
		"Quotation request "+quote.Status+": "+quote.Email,
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"quote_id": quote.ID, "status": quote.Status})

	WriteSuccess(w, quote, nil)
}

// DeleteQuote handles DELETE /api/v1/admin/quotes/{id}.
func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	quote, ok := requireEntityByID(w, r, "quote", func(id int64) (model.Quote, error) {
		return h.queries.GetQuoteByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteQuote(r.Context(), quote.ID); err != nil {
		WriteInternalError(w, "Failed to delete quotation request")
		return
	}

	_ = h.events.LogQuoteEvent(r.Context(), model.EventLevelInfo,
		"Quotation request deleted: "+quote.Email,
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"quote_id": quote.ID})

	WriteNoContent(w)
}
