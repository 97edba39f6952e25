// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/cache"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/service"
	"github.com/awasec/awa-cms/internal/store"
)

const testTokenSecret = "test-secret-key-for-api-tests-only"

type testEnv struct {
	handler  *Handler
	db       *sql.DB
	queries  *store.Queries
	tokens   *auth.TokenManager
	sessions *scs.SessionManager
}

func newTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	if err := i18n.Init(nil); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	f, err := os.CreateTemp("", "awacms-api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	tokens := auth.NewTokenManager(testTokenSecret)
	sessions := scs.New()
	cacheManager := cache.NewManager(cache.NewMemoryCache(cache.MemoryCacheOptions{
		DefaultTTL: time.Minute,
	}))

	handler := NewHandler(Deps{
		DB:          db,
		Tokens:      tokens,
		Sessions:    sessions,
		Cache:       cacheManager,
		Media:       service.NewMediaService(db, t.TempDir()),
		Notify:      service.NewNotifyService(db),
		Events:      service.NewEventService(db),
		Invoices:    service.NewInvoiceRenderer(""),
		LoginShield: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
	})

	env := &testEnv{
		handler:  handler,
		db:       db,
		queries:  store.New(db),
		tokens:   tokens,
		sessions: sessions,
	}
	cleanup := func() {
		cacheManager.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

// router mounts the handlers under the paths the real server uses, without
// the rate limiters so tests can hammer endpoints freely.
func (env *testEnv) router() chi.Router {
	h := env.handler
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Language())
		r.Get("/status", h.Status)
		r.Get("/articles", h.ListPublicArticles)
		r.Get("/articles/{slug}", h.GetPublicArticle)
		r.Get("/services", h.ListPublicServices)
		r.Get("/services/{slug}", h.GetPublicService)
		r.Get("/pages/{page}/sections", h.ListPublicSections)
		r.Get("/pages/{page}/sections/{kind}", h.GetPublicSectionByKind)
		r.Post("/quotes", h.SubmitQuote)
		r.Post("/auth/login", h.Login)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.BearerAuth(env.tokens, env.db), middleware.RequireStaff())
			r.Post("/articles", h.CreateArticle)
			r.Put("/articles/{id}", h.UpdateArticle)
			r.Delete("/articles/{id}", h.DeleteArticle)
			r.Patch("/quotes/{id}", h.UpdateQuoteStatus)
			r.Post("/sections", h.CreateSection)
		})
	})
	return r
}

func (env *testEnv) createStaff(t *testing.T, email, password, role string) (model.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now()
	user, err := env.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         "Staff",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := env.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return user, token
}

func (env *testEnv) createService(t *testing.T, slug string) model.Service {
	t.Helper()
	now := time.Now()
	svc, err := env.queries.CreateService(context.Background(), store.CreateServiceParams{
		Slug:        slug,
		Title:       model.LocalizedText{EN: "Penetration Testing", AR: "اختبار الاختراق"},
		Description: model.LocalizedText{EN: "Desc", AR: "وصف"},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	return svc
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	var apiErr middleware.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decoding error envelope: %v (body %s)", err, rec.Body.String())
	}
	return apiErr
}

func TestStatus(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	rec := doJSON(t, env.router(), http.MethodGet, "/api/v1/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Data.Status != "ok" || resp.Data.Version != "v1" {
		t.Errorf("resp = %+v", resp.Data)
	}
}

func TestSubmitQuote(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	svc := env.createService(t, "pentest")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/quotes", "", map[string]any{
		"name":        "Prospect",
		"email":       "Prospect@Example.com",
		"phone":       "+9665xxxxxxx",
		"service_id":  svc.ID,
		"budget_from": 10000,
		"budget_to":   25000,
		"description": "Need an assessment",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	quotes, err := env.queries.ListQuotes(ctx, store.ListQuotesParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListQuotes: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes))
	}
	q := quotes[0]
	if q.Status != model.QuoteStatusPending {
		t.Errorf("Status = %q, want pending", q.Status)
	}
	if q.Email != "prospect@example.com" {
		t.Errorf("Email = %q, want lowercased", q.Email)
	}

	// A notification for the staff dashboard comes with it.
	unread, err := env.queries.CountUnreadNotifications(ctx)
	if err != nil {
		t.Fatalf("CountUnreadNotifications: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread notifications = %d, want 1", unread)
	}
}

func TestSubmitQuoteValidation(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/quotes", "", map[string]any{
		"name":        "",
		"email":       "not-an-email",
		"phone":       "",
		"budget_from": 500,
		"budget_to":   100,
		"description": "",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	apiErr := decodeError(t, rec)
	if apiErr.Error.Code != "validation_error" {
		t.Errorf("code = %q", apiErr.Error.Code)
	}
	for _, field := range []string{"name", "email", "phone", "description", "budget_to"} {
		if apiErr.Error.Details[field] == "" {
			t.Errorf("missing field error for %q: %v", field, apiErr.Error.Details)
		}
	}
}

func TestSubmitQuoteUnknownService(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	rec := doJSON(t, env.router(), http.MethodPost, "/api/v1/quotes", "", map[string]any{
		"name":        "Prospect",
		"email":       "p@example.com",
		"phone":       "123",
		"service_id":  999,
		"description": "Hi",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	user, _ := env.createStaff(t, "staff@example.com", "correct-horse-battery", model.RoleEmployee)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "Staff@Example.com",
		"password": "correct-horse-battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("response has no token")
	}
	claims, err := env.tokens.Validate(resp.Data.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token UserID = %d, want %d", claims.UserID, user.ID)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("argon2")) {
		t.Error("response leaks the password hash")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	env.createStaff(t, "staff@example.com", "correct-horse-battery", model.RoleEmployee)

	rec := doJSON(t, env.router(), http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "staff@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	rec := doJSON(t, env.router(), http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginRejectsClients(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	// Clients carry no password; even if one were set, the dashboard login
	// must not accept the client role.
	hash, _ := auth.HashPassword("some-password")
	now := time.Now()
	if _, err := env.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email: "client@example.com", PasswordHash: hash, Role: model.RoleClient,
		Name: "Client", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	rec := doJSON(t, env.router(), http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "client@example.com",
		"password": "some-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestPublicArticles(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	svc := env.createService(t, "pentest")
	ctx := context.Background()
	now := time.Now()

	mk := func(slug string, publishedAt sql.NullTime) {
		t.Helper()
		if _, err := env.queries.CreateArticle(ctx, store.CreateArticleParams{
			Slug:      slug,
			Title:     model.LocalizedText{EN: "Title " + slug, AR: "عنوان"},
			Body:      model.LocalizedText{EN: "<p>Body</p>", AR: "<p>نص</p>"},
			ServiceID: svc.ID, PublishedAt: publishedAt,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("CreateArticle(%s): %v", slug, err)
		}
	}
	mk("visible", sql.NullTime{Time: now.Add(-time.Hour), Valid: true})
	mk("draft", sql.NullTime{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/articles", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data []ArticleView `json:"data"`
		Meta *Meta         `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Slug != "visible" {
		t.Fatalf("feed = %+v, want only the published article", resp.Data)
	}
	if resp.Data[0].Body != "" {
		t.Error("feed must omit article bodies")
	}
	if resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("meta = %+v", resp.Meta)
	}

	// Second read is served from cache.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/articles", "", nil)
	if rec.Header().Get("X-Cache") != "hit" {
		t.Error("second read should hit the cache")
	}

	// Drafts are invisible by slug too.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/articles/draft", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft fetch status = %d, want 404", rec.Code)
	}

	// Detail view includes the body, localized.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/articles/visible", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var detail struct {
		Data ArticleView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if detail.Data.Body == "" {
		t.Error("detail view must include the body")
	}
	if detail.Data.ServiceName == "" {
		t.Error("detail view must name the service")
	}
}

func TestPublicArticlesLocalized(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	svc := env.createService(t, "pentest")
	now := time.Now()
	if _, err := env.queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Slug:        "bilingual",
		Title:       model.LocalizedText{EN: "English Title", AR: "عنوان عربي"},
		ServiceID:   svc.ID,
		PublishedAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		CreatedAt:   now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles/bilingual", nil)
	req.Header.Set("x-lang", "ar")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var detail struct {
		Data ArticleView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if detail.Data.Title != "عنوان عربي" {
		t.Errorf("Title = %q, want the Arabic localization", detail.Data.Title)
	}
}

func TestAdminArticleLifecycle(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	_, token := env.createStaff(t, "editor@example.com", "editor-password-1", model.RoleEmployee)
	svc := env.createService(t, "pentest")

	// Unauthenticated writes are rejected.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", "", map[string]any{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	// Markdown bodies are rendered and sanitized on write.
	body := map[string]any{
		"slug":  "first-post",
		"title": map[string]string{"en": "First Post", "ar": "الأولى"},
		"body": map[string]string{
			"en": "Some **bold** text.\n\n<script>alert(1)</script>",
			"ar": "نص",
		},
		"main_image": "/uploads/first-post.webp",
		"service_id": svc.ID,
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data AdminArticleView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !bytes.Contains([]byte(created.Data.Body.EN), []byte("<strong>bold</strong>")) {
		t.Errorf("body not rendered: %q", created.Data.Body.EN)
	}
	if bytes.Contains([]byte(created.Data.Body.EN), []byte("<script>")) {
		t.Errorf("body not sanitized: %q", created.Data.Body.EN)
	}

	// Duplicate slugs are rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate slug status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Missing title is a field error.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, map[string]any{
		"slug":       "no-title",
		"service_id": svc.ID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing title status = %d", rec.Code)
	}
	if decodeError(t, rec).Error.Details["title"] == "" {
		t.Error("missing field error for title")
	}
}

func TestCreateArticleRequiresMainImage(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	_, token := env.createStaff(t, "editor@example.com", "editor-password-1", model.RoleEmployee)
	svc := env.createService(t, "pentest")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, map[string]any{
		"slug":       "no-image",
		"title":      map[string]string{"en": "No Image", "ar": "بدون صورة"},
		"main_image": "",
		"service_id": svc.ID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
	if decodeError(t, rec).Error.Details["main_image"] == "" {
		t.Error("missing field error for main_image")
	}

	// Nothing was written.
	if _, err := env.queries.GetArticleBySlug(context.Background(), "no-image"); err == nil {
		t.Error("rejected article was persisted")
	}
}

func TestCreateArticleRequiresBothTitleLocales(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	_, token := env.createStaff(t, "editor@example.com", "editor-password-1", model.RoleEmployee)
	svc := env.createService(t, "pentest")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, map[string]any{
		"slug":       "english-only",
		"title":      map[string]string{"en": "English Only"},
		"main_image": "/uploads/cover.webp",
		"service_id": svc.ID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
	if decodeError(t, rec).Error.Details["title"] == "" {
		t.Error("missing field error for the incomplete title")
	}
}

func TestCreateArticleDefaultsPublishTime(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	_, token := env.createStaff(t, "editor@example.com", "editor-password-1", model.RoleEmployee)
	svc := env.createService(t, "pentest")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/articles", token, map[string]any{
		"slug":       "fresh",
		"title":      map[string]string{"en": "Fresh", "ar": "جديد"},
		"main_image": "/uploads/fresh.webp",
		"service_id": svc.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data AdminArticleView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if created.Data.PublishedAt == nil {
		t.Fatal("article created without published_at must publish immediately")
	}

	// It shows up in the public feed right away.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/articles", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	var feed struct {
		Data []ArticleView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(feed.Data) != 1 || feed.Data[0].Slug != "fresh" {
		t.Errorf("public feed = %+v, want the fresh article", feed.Data)
	}
}

func TestAdminQuoteStatus(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	_, token := env.createStaff(t, "sales@example.com", "sales-password-1", model.RoleAdmin)

	now := time.Now()
	quote, err := env.queries.CreateQuote(context.Background(), store.CreateQuoteParams{
		Name: "Prospect", Email: "p@example.com", Phone: "123",
		Description: "x", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/admin/quotes/"+itoa(quote.ID), token,
		map[string]string{"status": "bogus"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/admin/quotes/"+itoa(quote.ID), token,
		map[string]string{"status": model.QuoteStatusQuoted})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data model.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Data.Status != model.QuoteStatusQuoted {
		t.Errorf("Status = %q", resp.Data.Status)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestNewMeta(t *testing.T) {
	cases := []struct {
		total, page, perPage, pages int64
	}{
		{0, 1, 10, 0},
		{10, 1, 10, 1},
		{11, 2, 10, 2},
		{100, 1, 10, 10},
	}
	for _, tc := range cases {
		meta := NewMeta(tc.total, tc.page, tc.perPage)
		if meta.Pages != tc.pages {
			t.Errorf("NewMeta(%d, _, %d).Pages = %d, want %d", tc.total, tc.perPage, meta.Pages, tc.pages)
		}
	}
}

func TestParsePerPageParam(t *testing.T) {
	cases := []struct {
		query string
		want  int64
	}{
		{"", DefaultPerPage},
		{"per_page=5", 5},
		{"per_page=0", DefaultPerPage},
		{"per_page=-3", DefaultPerPage},
		{"per_page=1000", MaxPerPage},
		{"per_page=abc", DefaultPerPage},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		if got := ParsePerPageParam(r); got != tc.want {
			t.Errorf("ParsePerPageParam(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

func TestMe(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	user := model.User{ID: 5, Email: "me@example.com", Role: model.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, user))
	rec := httptest.NewRecorder()
	env.handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data model.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Data.ID != 5 {
		t.Errorf("ID = %d", resp.Data.ID)
	}
}
