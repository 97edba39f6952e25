// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the site, dashboard and
// client portal.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/cache"
	"github.com/awasec/awa-cms/internal/geoip"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/service"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/translate"
)

// Pagination defaults.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db          *sql.DB
	queries     *store.Queries
	tokens      *auth.TokenManager
	sessions    *scs.SessionManager
	cache       *cache.Manager
	media       *service.MediaService
	notify      *service.NotifyService
	events      *service.EventService
	invoices    *service.InvoiceRenderer
	translator  *translate.Translator
	geo         *geoip.Lookup
	loginShield *middleware.LoginProtection
}

// Deps bundles the services the handlers depend on.
type Deps struct {
	DB          *sql.DB
	Tokens      *auth.TokenManager
	Sessions    *scs.SessionManager
	Cache       *cache.Manager
	Media       *service.MediaService
	Notify      *service.NotifyService
	Events      *service.EventService
	Invoices    *service.InvoiceRenderer
	Translator  *translate.Translator
	Geo         *geoip.Lookup
	LoginShield *middleware.LoginProtection
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		db:          deps.DB,
		queries:     store.New(deps.DB),
		tokens:      deps.Tokens,
		sessions:    deps.Sessions,
		cache:       deps.Cache,
		media:       deps.Media,
		notify:      deps.Notify,
		events:      deps.Events,
		invoices:    deps.Invoices,
		translator:  deps.Translator,
		geo:         deps.Geo,
		loginShield: deps.LoginShield,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int64 `json:"page"`
	PerPage int64 `json:"per_page"`
	Pages   int64 `json:"pages"`
}

// NewMeta computes pagination metadata from a total row count.
func NewMeta(total, page, perPage int64) *Meta {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error JSON response in the shared envelope.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// Writes a 400 response and returns false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// ParseIDParam parses the {id} URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// ParsePageParam parses the ?page query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int64 {
	page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam parses the ?per_page query parameter within bounds.
func ParsePerPageParam(r *http.Request) int64 {
	perPage, err := strconv.ParseInt(r.URL.Query().Get("per_page"), 10, 64)
	if err != nil || perPage < 1 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// requireEntityByID parses an ID from the URL and fetches the entity.
// Returns the zero value and false with the response already written on error.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch func(id int64) (T, error)) (T, bool) {
	var zero T

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, capitalizeFirst(entityName)+" not found")
		} else {
			WriteInternalError(w, "Failed to retrieve "+entityName)
		}
		return zero, false
	}

	return entity, true
}

// checkSlugUnique verifies no other row holds the slug. Writes the response
// and returns false on duplicate or error.
func checkSlugUnique(w http.ResponseWriter, lang string, slugCount func() (int64, error)) bool {
	count, err := slugCount()
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return false
	}
	if count != 0 {
		WriteValidationError(w, map[string]string{"slug": i18n.T(lang, "validation.slug_taken")})
		return false
	}
	return true
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status. Used as a health check.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}
