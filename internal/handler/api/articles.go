// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/service"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/util"
)

// ArticleView is the localized article payload for the public site.
type ArticleView struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body,omitempty"`
	MainImage   string     `json:"main_image"`
	ServiceID   int64      `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// articleToView localizes an article. Body is only included when withBody is
// set; the feed omits it to keep list payloads small.
func articleToView(a model.Article, serviceName, lang string, withBody bool) ArticleView {
	view := ArticleView{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title.Resolve(lang),
		Description: a.Description.Resolve(lang),
		MainImage:   a.MainImage,
		ServiceID:   a.ServiceID,
		ServiceName: serviceName,
	}
	if withBody {
		view.Body = a.Body.Resolve(lang)
	}
	if a.PublishedAt.Valid {
		view.PublishedAt = &a.PublishedAt.Time
	}
	return view
}

// serviceNames builds an id-to-name map for article annotation.
func (h *Handler) serviceNames(r *http.Request, lang string) map[int64]string {
	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		return nil
	}
	names := make(map[int64]string, len(services))
	for _, s := range services {
		names[s.ID] = s.Title.Resolve(lang)
	}
	return names
}

// ListPublicArticles handles GET /api/v1/articles: the published feed,
// localized, newest first, optionally filtered by ?service.
func (h *Handler) ListPublicArticles(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	var serviceID int64
	if s := r.URL.Query().Get("service"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid service ID", nil)
			return
		}
		serviceID = id
	}

	key := h.cache.ArticlesKey(lang, page, perPage, serviceID)
	if cached, err := h.cache.Get(r.Context(), key); err == nil {
		writeCachedJSON(w, cached)
		return
	}

	arg := store.ListPublishedArticlesParams{
		ServiceID: serviceID,
		Before:    time.Now(),
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	}
	articles, err := h.queries.ListPublishedArticles(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list articles")
		return
	}
	total, err := h.queries.CountPublishedArticles(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list articles")
		return
	}

	names := h.serviceNames(r, lang)
	views := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleToView(a, names[a.ServiceID], lang, false))
	}

	resp := Response{Data: views, Meta: NewMeta(total, page, perPage)}
	h.cacheAndWrite(w, r, key, resp)
}

// GetPublicArticle handles GET /api/v1/articles/{slug}.
func (h *Handler) GetPublicArticle(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	slug := chi.URLParam(r, "slug")

	key := h.cache.ArticleKey(slug, lang)
	if cached, err := h.cache.Get(r.Context(), key); err == nil {
		writeCachedJSON(w, cached)
		return
	}

	article, err := h.queries.GetArticleBySlug(r.Context(), slug)
	if err != nil || !article.IsPublished() {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Failed to retrieve article")
			return
		}
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
		return
	}

	names := h.serviceNames(r, lang)
	resp := Response{Data: articleToView(article, names[article.ServiceID], lang, true)}
	h.cacheAndWrite(w, r, key, resp)
}

// writeCachedJSON writes a previously marshaled envelope.
func writeCachedJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	_, _ = w.Write(payload)
}

// cacheAndWrite marshals the envelope once, stores it and writes it.
func (h *Handler) cacheAndWrite(w http.ResponseWriter, r *http.Request, key string, resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		WriteInternalError(w, "Failed to encode response")
		return
	}
	_ = h.cache.Set(r.Context(), key, payload)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

// ---- Admin endpoints ----

// AdminArticleView is the full bilingual article payload for the dashboard.
// Nullable columns are flattened to pointers so the wire shape matches the
// rest of the API.
type AdminArticleView struct {
	ID          int64               `json:"id"`
	Slug        string              `json:"slug"`
	Title       model.LocalizedText `json:"title"`
	Description model.LocalizedText `json:"description"`
	Body        model.LocalizedText `json:"body"`
	MainImage   string              `json:"main_image"`
	ServiceID   int64               `json:"service_id"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func articleToAdminView(a model.Article) AdminArticleView {
	view := AdminArticleView{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Body:        a.Body,
		MainImage:   a.MainImage,
		ServiceID:   a.ServiceID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.PublishedAt.Valid {
		view.PublishedAt = &a.PublishedAt.Time
	}
	return view
}

// ListArticles handles GET /api/v1/admin/articles.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	var serviceID int64
	if s := r.URL.Query().Get("service"); s != "" {
		serviceID, _ = strconv.ParseInt(s, 10, 64)
	}

	arg := store.ListArticlesParams{
		ServiceID: serviceID,
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	}
	articles, err := h.queries.ListArticles(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list articles")
		return
	}
	total, err := h.queries.CountArticles(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list articles")
		return
	}

	views := make([]AdminArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleToAdminView(a))
	}
	WriteSuccess(w, views, NewMeta(total, page, perPage))
}

// GetArticle handles GET /api/v1/admin/articles/{id}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, articleToAdminView(article), nil)
}

// ArticleRequest is the create/update body for an article.
type ArticleRequest struct {
	Slug        string              `json:"slug"`
	Title       model.LocalizedText `json:"title"`
	Description model.LocalizedText `json:"description"`
	Body        model.LocalizedText `json:"body"`
	BodyFormat  string              `json:"body_format,omitempty"` // markdown (default) or html
	MainImage   string              `json:"main_image"`
	ServiceID   int64               `json:"service_id"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
}

// validate normalizes the request and returns field errors.
func (req *ArticleRequest) validate(lang string) map[string]string {
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
	if strings.TrimSpace(req.MainImage) == "" {
		fieldErrors["main_image"] = i18n.T(lang, "validation.required", "main_image")
	}
	if req.ServiceID < 1 {
		fieldErrors["service_id"] = i18n.T(lang, "validation.required", "service_id")
	}
	if req.BodyFormat != "" && req.BodyFormat != "markdown" && req.BodyFormat != "html" {
		fieldErrors["body_format"] = i18n.T(lang, "error.invalid_request")
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// CreateArticle handles POST /api/v1/admin/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req ArticleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !checkSlugUnique(w, lang, func() (int64, error) {
		return h.queries.CountArticlesBySlug(r.Context(), req.Slug, 0)
	}) {
		return
	}
	if _, err := h.queries.GetServiceByID(r.Context(), req.ServiceID); err != nil {
		WriteValidationError(w, map[string]string{"service_id": i18n.T(lang, "error.not_found")})
		return
	}

	body, err := service.RenderLocalizedBody(req.Body, req.BodyFormat)
	if err != nil {
		WriteBadRequest(w, "Invalid article body", nil)
		return
	}

	now := time.Now()
	publishedAt := util.NullTimeFromPtr(req.PublishedAt)
	if req.PublishedAt == nil {
		// Omitting the publish time means publish immediately.
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}
	article, err := h.queries.CreateArticle(r.Context(), store.CreateArticleParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Body:        body,
		MainImage:   req.MainImage,
		ServiceID:   req.ServiceID,
		PublishedAt: publishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create article")
		return
	}

	h.cache.InvalidateArticles(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Article created: "+article.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"article_id": article.ID})

	WriteCreated(w, articleToAdminView(article))
}

// UpdateArticle handles PUT /api/v1/admin/articles/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	existing, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ArticleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(lang); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !checkSlugUnique(w, lang, func() (int64, error) {
		return h.queries.CountArticlesBySlug(r.Context(), req.Slug, existing.ID)
	}) {
		return
	}

	body, err := service.RenderLocalizedBody(req.Body, req.BodyFormat)
	if err != nil {
		WriteBadRequest(w, "Invalid article body", nil)
		return
	}

	article, err := h.queries.UpdateArticle(r.Context(), store.UpdateArticleParams{
		ID:          existing.ID,
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Body:        body,
		MainImage:   req.MainImage,
		ServiceID:   req.ServiceID,
		PublishedAt: util.NullTimeFromPtr(req.PublishedAt),
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update article")
		return
	}

	h.cache.InvalidateArticles(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Article updated: "+article.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"article_id": article.ID})

	WriteSuccess(w, articleToAdminView(article), nil)
}

// DeleteArticle handles DELETE /api/v1/admin/articles/{id}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := requireEntityByID(w, r, "article", func(id int64) (model.Article, error) {
		return h.queries.GetArticleByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteArticle(r.Context(), article.ID); err != nil {
		WriteInternalError(w, "Failed to delete article")
		return
	}

	h.cache.InvalidateArticles(r.Context())
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Article deleted: "+article.Slug, middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"article_id": article.ID})

	WriteNoContent(w)
}
