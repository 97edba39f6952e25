// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/util"
)

// FeatureView is a localized feature entry.
type FeatureView struct {
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServiceView is the localized service payload for the public site.
type ServiceView struct {
	ID          int64         `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Features    []FeatureView `json:"features"`
	Images      []string      `json:"images"`
}

func serviceToView(s model.Service, lang string) ServiceView {
	features := make([]FeatureView, 0, len(s.Features))
	for _, f := range s.Features {
		features = append(features, FeatureView{
			Icon:        f.Icon,
			Name:        f.Name.Resolve(lang),
			Description: f.Description.Resolve(lang),
		})
	}
	images := s.Images
	if images == nil {
		images = model.ImageList{}
	}
	return ServiceView{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title.Resolve(lang),
		Description: s.Description.Resolve(lang),
		Features:    features,
		Images:      images,
	}
}

// ListPublicServices handles GET /api/v1/services: all services, localized.
// The catalog is small enough to return unpaginated.
func (h *Handler) ListPublicServices(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	key := h.cache.ServicesKey(lang)
	if cached, err := h.cache.Get(r.Context(), key); err == nil {
		writeCachedJSON(w, cached)
		return
	}

	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list services")
		return
	}

	views := make([]ServiceView, 0, len(services))
	for _, s := range services {
		views = append(views, serviceToView(s, lang))
	}

	h.cacheAndWrite(w, r, key, Response{Data: views})
}

// GetPublicService handles GET /api/v1/services/{slug}.
func (h *Handler) GetPublicService(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	slug := chi.URLParam(r, "slug")

	key := h.cache.ServiceKey(slug, lang)
	if cached, err := h.cache.Get(r.Context(), key); err == nil {
		writeCachedJSON(w, cached)
		return
	}

	svc, err := h.queries.GetServiceBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, i18n.T(lang, "error.not_found"))
		} else {
			WriteInternalError(w, "Failed to retrieve service")
		}
		return
	}

	h.cacheAndWrite(w, r, key, Response{Data: serviceToView(svc, lang)})
}

// ---- Admin endpoints ----

// ListServices handles GET /api/v1/admin/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list services")
		return
	}
	WriteSuccess(w, services, nil)
}

// GetService handles GET /api/v1/admin/services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, ok := requireEntityByID(w, r, "service", func(id int64) (model.Service, error) {
		return h.queries.GetServiceByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, svc, nil)
}

// ServiceRequest is the create/update body for a service.
type ServiceRequest struct {
	Slug        string              `json:"slug"`
	Title       model.LocalizedText `json:"title"`
	Description model.LocalizedText `json:"description"`
	Features    model.FeatureList   `json:"features"`
	Images      model.ImageList     `json:"images"`
}

func (req *ServiceRequest) validate(lang string) map[string]string {
	fieldErrors := make(map[string]string)

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Title.EN)
	}
	if !util.IsValidSlug(req.Slug) {
		fieldErrors["slug"] = i18n.T(lang, "validation.slug", "slug")
	}
	if req.Title.IsEmpty() {
		fieldErrors["title"] = i18n.T(lang, "validation.required", "title")
	} else if !req.Title.IsComplete() {
		fieldErrors["title"] = i18n.T(lang, "validation.missing_locale", "title",
			strings.Join(req.Title.MissingLocales(), ", "))
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// invalidateServiceCaches drops service payloads and the article feed, which
// embeds service names.
func (h *Handler) invalidateServiceCaches(r *http.Request) {
	h.cache.InvalidateServices(r.Context())
	h.cache.InvalidateArticles(r.Context())
}

// CreateService handles POST /api/v1/admin/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req ServiceRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !checkSlugUnique(w, lang, func() (int64, error) {
		return h.queries.CountServicesBySlug(r.Context(), req.Slug, 0)
	}) {
		return
	}

	now := time.Now()
	svc, err := h.queries.CreateService(r.Context(), store.CreateServiceParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Features:    req.Features,
		Images:      req.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create service")
		return
	}

	h.invalidateServiceCaches(r)
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Service created: "+svc.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"service_id": svc.ID})

	WriteCreated(w, svc)
}

// UpdateService handles PUT /api/v1/admin/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	existing, ok := requireEntityByID(w, r, "service", func(id int64) (model.Service, error) {
		return h.queries.GetServiceByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ServiceRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !checkSlugUnique(w, lang, func() (int64, error) {
		return h.queries.CountServicesBySlug(r.Context(), req.Slug, existing.ID)
	}) {
		return
	}

	svc, err := h.queries.UpdateService(r.Context(), store.UpdateServiceParams{
		ID:          existing.ID,
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Features:    req.Features,
		Images:      req.Images,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update service")
		return
	}

	h.invalidateServiceCaches(r)
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Service updated: "+svc.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"service_id": svc.ID})

	WriteSuccess(w, svc, nil)
}

// DeleteService handles DELETE /api/v1/admin/services/{id}.
// A service with attached articles cannot be deleted.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	svc, ok := requireEntityByID(w, r, "service", func(id int64) (model.Service, error) {
		return h.queries.GetServiceByID(r.Context(), id)
	})
	if !ok {
		return
	}

	articleCount, err := h.queries.CountArticles(r.Context(), store.ListArticlesParams{ServiceID: svc.ID})
	if err != nil {
		WriteInternalError(w, "Failed to delete service")
		return
	}
	if articleCount > 0 {
		WriteConflict(w, i18n.T(lang, "error.conflict"))
		return
	}

	if err := h.queries.DeleteService(r.Context(), svc.ID); err != nil {
		WriteInternalError(w, "Failed to delete service")
		return
	}

	h.invalidateServiceCaches(r)
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Service deleted: "+svc.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"service_id": svc.ID})

	WriteNoContent(w)
}
