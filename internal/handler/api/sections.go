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

// SectionView is the localized section payload for the public site.
type SectionView struct {
	ID          int64         `json:"id"`
	Page        string        `json:"page"`
	Kind        string        `json:"kind"`
	ServiceID   *int64        `json:"service_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Images      []string      `json:"images"`
	Features    []FeatureView `json:"features"`
	VideoURL    string        `json:"video_url,omitempty"`
	Order       int64         `json:"order"`
}

func sectionToView(s model.Section, lang string) SectionView {
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
	view := SectionView{
		ID:          s.ID,
		Page:        s.Page,
		Kind:        s.Kind,
		Title:       s.Title.Resolve(lang),
		Description: s.Description.Resolve(lang),
		Images:      images,
		Features:    features,
		Order:       s.Order,
	}
	if s.ServiceID.Valid {
		view.ServiceID = &s.ServiceID.Int64
	}
	if s.VideoURL.Valid {
		view.VideoURL = s.VideoURL.String
	}
	return view
}

// ListPublicSections handles GET /api/v1/pages/{page}/sections: the content
// blocks of one site page, localized and in display order.
func (h *Handler) ListPublicSections(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := chi.URLParam(r, "page")

	if !model.IsValidSectionPage(page) {
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
		return
	}

	key := h.cache.SectionsKey(page, lang)
	if cached, err := h.cache.Get(r.Context(), key); err == nil {
		writeCachedJSON(w, cached)
		return
	}

	sections, err := h.queries.ListSections(r.Context(), store.ListSectionsParams{Page: page})
	if err != nil {
		WriteInternalError(w, "Failed to list sections")
		return
	}

	views := make([]SectionView, 0, len(sections))
	for _, s := range sections {
		views = append(views, sectionToView(s, lang))
	}

	h.cacheAndWrite(w, r, key, Response{Data: views})
}

// GetPublicSectionByKind handles GET /api/v1/pages/{page}/sections/{kind}.
// An unknown kind is a 404, not an empty list: consumers select blocks by
// type and must notice a missing one.
func (h *Handler) GetPublicSectionByKind(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := chi.URLParam(r, "page")
	kind := chi.URLParam(r, "kind")

	if !model.IsValidSectionPage(page) {
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
		return
	}
	if !model.IsValidSectionKind(kind) {
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
		return
	}

	section, err := h.queries.GetSectionByKind(r.Context(), page, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, i18n.T(lang, "error.not_found"))
		} else {
			WriteInternalError(w, "Failed to retrieve section")
		}
		return
	}

	WriteSuccess(w, sectionToView(section, lang), nil)
}

// ---- Admin endpoints ----

// ListSections handles GET /api/v1/admin/sections with optional ?page and
// ?kind filters.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.queries.ListSections(r.Context(), store.ListSectionsParams{
		Page: r.URL.Query().Get("page"),
		Kind: r.URL.Query().Get("kind"),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list sections")
		return
	}
	WriteSuccess(w, sections, nil)
}

// GetSection handles GET /api/v1/admin/sections/{id}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	section, ok := requireEntityByID(w, r, "section", func(id int64) (model.Section, error) {
		return h.queries.GetSectionByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, section, nil)
}

// SectionRequest is the create/update body for a section.
type SectionRequest struct {
	Page        string              `json:"page"`
	Kind        string              `json:"kind"`
	ServiceID   *int64              `json:"service_id,omitempty"`
	Title       model.LocalizedText `json:"title"`
	Description model.LocalizedText `json:"description"`
	Images      model.ImageList     `json:"images"`
	Features    model.FeatureList   `json:"features"`
	VideoURL    *string             `json:"video_url,omitempty"`
	Order       int64               `json:"order"`
}

func (req *SectionRequest) validate(lang string) map[string]string {
	fieldErrors := make(map[string]string)

	if !model.IsValidSectionPage(req.Page) {
		fieldErrors["page"] = i18n.T(lang, "validation.invalid_page", req.Page)
	}
	if !model.IsValidSectionKind(req.Kind) {
		fieldErrors["kind"] = i18n.T(lang, "validation.invalid_kind", req.Kind)
	}
	if req.Title.IsEmpty() {
		fieldErrors["title"] = i18n.T(lang, "validation.required", "title")
	} else if !req.Title.IsComplete() {
		fieldErrors["title"] = i18n.T(lang, "validation.missing_locale", "title",
			strings.Join(req.Title.MissingLocales(), ", "))
	}
	if req.Kind == model.SectionKindVideo && (req.VideoURL == nil || *req.VideoURL == "") {
		fieldErrors["video_url"] = i18n.T(lang, "validation.required", "video_url")
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// CreateSection handles POST /api/v1/admin/sections.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req SectionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	section, err := h.queries.CreateSection(r.Context(), store.CreateSectionParams{
		Page:        req.Page,
		Kind:        req.Kind,
		ServiceID:   util.NullInt64FromPtr(req.ServiceID),
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Features:    req.Features,
		VideoURL:    util.NullStringFromPtr(req.VideoURL),
		Position:    req.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create section")
		return
	}

	h.cache.InvalidateSections(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section created: "+section.Page+"/"+section.Kind,
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"section_id": section.ID})

	WriteCreated(w, section)
}

// UpdateSection handles PUT /api/v1/admin/sections/{id}.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	existing, ok := requireEntityByID(w, r, "section", func(id int64) (model.Section, error) {
		return h.queries.GetSectionByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req SectionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	section, err := h.queries.UpdateSection(r.Context(), store.UpdateSectionParams{
		ID:          existing.ID,
		Page:        req.Page,
		Kind:        req.Kind,
		ServiceID:   util.NullInt64FromPtr(req.ServiceID),
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Features:    req.Features,
		VideoURL:    util.NullStringFromPtr(req.VideoURL),
		Position:    req.Order,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update section")
		return
	}

	h.cache.InvalidateSections(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section updated: "+section.Page+"/"+section.Kind,
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"section_id": section.ID})

	WriteSuccess(w, section, nil)
}

// DeleteSection handles DELETE /api/v1/admin/sections/{id}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	section, ok := requireEntityByID(w, r, "section", func(id int64) (model.Section, error) {
		return h.queries.GetSectionByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteSection(r.Context(), section.ID); err != nil {
		WriteInternalError(w, "Failed to delete section")
		return
	}

	h.cache.InvalidateSections(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section deleted: "+section.Page+"/"+section.Kind,
		middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"section_id": section.ID})

	WriteNoContent(w)
}
