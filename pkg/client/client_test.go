// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"status": "ok", "version": "1.0.0"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/v1")
	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Status != "ok" || status.Version != "1.0.0" {
		t.Errorf("status = %+v", status)
	}
}

func TestRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("x-lang"); got != "ar" {
			t.Errorf("x-lang = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []Article{}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok-123"), WithLanguage("ar"))
	if _, err := c.ListArticles(context.Background(), ListArticlesParams{}); err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
}

func TestListQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "3" || q.Get("per_page") != "10" {
			t.Errorf("pagination params = %v", q)
		}
		if q.Get("status") != "pending" || q.Get("search") != "acme" {
			t.Errorf("filter params = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []Quote{},
			"meta": Meta{Total: 0, Page: 3, PerPage: 10, Pages: 0},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListQuotes(context.Background(), ListQuotesParams{
		Page: 3, PerPage: 10, Status: "pending", Search: "acme",
	})
	if err != nil {
		t.Fatalf("ListQuotes: %v", err)
	}
}

func TestErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    "validation_error",
				"message": "Validation failed",
				"details": map[string]string{"email": "Invalid email address"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SubmitQuote(context.Background(), QuoteRequest{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Code != "validation_error" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["email"] != "Invalid email address" {
		t.Errorf("Details = %v", apiErr.Details)
	}
	if !IsValidation(err) {
		t.Error("IsValidation = false")
	}
	if IsNotFound(err) {
		t.Error("IsNotFound = true for a validation error")
	}
}

func TestErrorNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "not_found", "message": "Article not found"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetArticle(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false, err = %v", err)
	}
}

func TestErrorNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Status(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Code != "unknown" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "admin@example.com" {
				t.Errorf("email = %q", body["email"])
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": LoginResponse{Token: "fresh-token", User: User{ID: 1, Role: "admin"}},
			})
		case "/auth/me":
			if got := r.Header.Get("Authorization"); got != "Bearer fresh-token" {
				t.Errorf("Authorization after login = %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": User{ID: 1, Role: "admin"}})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "fresh-token" {
		t.Errorf("Token = %q", resp.Token)
	}
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
}

func TestPageHasMore(t *testing.T) {
	tests := []struct {
		name string
		page Page[Article]
		want bool
	}{
		{
			name: "middle page",
			page: Page[Article]{Meta: Meta{Total: 50, Page: 2, PerPage: 20, Pages: 3}},
			want: true,
		},
		{
			name: "last page",
			page: Page[Article]{Meta: Meta{Total: 50, Page: 3, PerPage: 20, Pages: 3}},
			want: false,
		},
		{
			name: "only page",
			page: Page[Article]{Meta: Meta{Total: 5, Page: 1, PerPage: 20, Pages: 1}},
			want: false,
		},
		{
			name: "no meta full page",
			page: Page[Article]{
				Items: make([]Article, 20),
				Meta:  Meta{PerPage: 20},
			},
			want: true,
		},
		{
			name: "no meta short page",
			page: Page[Article]{
				Items: make([]Article, 7),
				Meta:  Meta{PerPage: 20},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.HasMore(); got != tt.want {
				t.Errorf("HasMore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListArticlesPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []Article{
				{ID: 2, Slug: "second", Title: "Second"},
				{ID: 1, Slug: "first", Title: "First"},
			},
			"meta": Meta{Total: 5, Page: 1, PerPage: 2, Pages: 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.ListArticles(context.Background(), ListArticlesParams{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d", len(page.Items))
	}
	if page.Items[0].Slug != "second" {
		t.Errorf("first item slug = %q", page.Items[0].Slug)
	}
	if page.Meta.Total != 5 || page.Meta.Pages != 3 {
		t.Errorf("meta = %+v", page.Meta)
	}
	if !page.HasMore() {
		t.Error("HasMore() = false on page 1 of 3")
	}
}

func TestDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteQuote(context.Background(), 42); err != nil {
		t.Fatalf("DeleteQuote: %v", err)
	}
}

func TestPageSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pages/home/sections":
			json.NewEncoder(w).Encode(map[string]any{
				"data": []Section{
					{ID: 1, Page: "home", Kind: "hero", Title: "We secure things"},
					{ID: 2, Page: "home", Kind: "video", VideoURL: "https://cdn.example.com/reel.mp4"},
				},
			})
		case "/pages/home/sections/hero":
			json.NewEncoder(w).Encode(map[string]any{
				"data": Section{ID: 1, Page: "home", Kind: "hero", Title: "We secure things"},
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	sections, err := c.ListSections(context.Background(), "home")
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 2 || sections[1].Kind != "video" {
		t.Errorf("sections = %+v", sections)
	}

	hero, err := c.GetSectionByKind(context.Background(), "home", "hero")
	if err != nil {
		t.Fatalf("GetSectionByKind: %v", err)
	}
	if hero.ID != 1 || hero.Title != "We secure things" {
		t.Errorf("hero = %+v", hero)
	}
}

func TestListProjectsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/projects" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "5" {
			t.Errorf("pagination params = %v", q)
		}
		if q.Get("user_id") != "9" || q.Get("search") != "soc" {
			t.Errorf("filter params = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []Project{
				{ID: 3, Name: LocalizedText{EN: "SOC Rollout", AR: "نشر"}, UserID: 9, Progress: 40},
			},
			"meta": Meta{Total: 6, Page: 2, PerPage: 5, Pages: 2},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	page, err := c.ListProjects(context.Background(), ListProjectsParams{
		Page: 2, PerPage: 5, UserID: 9, Search: "soc",
	})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name.EN != "SOC Rollout" {
		t.Errorf("items = %+v", page.Items)
	}
	if page.Meta.Total != 6 {
		t.Errorf("meta = %+v", page.Meta)
	}
}

func TestGetProjectDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/projects/3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":          3,
				"name":        LocalizedText{EN: "SOC Rollout", AR: "نشر"},
				"user_id":     9,
				"total_cost":  50000,
				"progress":    40,
				"access_code": "ABCDEF2345",
				"client_name": "Acme Corp",
				"phases": []map[string]any{
					{"id": 1, "title": LocalizedText{EN: "Discovery"}, "status": "completed", "progress": 100},
				},
				"payments": []map[string]any{
					{"id": 1, "title": LocalizedText{EN: "Deposit"}, "amount": 12500.5, "status": "paid"},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	detail, err := c.GetProject(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if detail.AccessCode != "ABCDEF2345" || detail.ClientName != "Acme Corp" {
		t.Errorf("detail = %+v", detail)
	}
	if len(detail.Phases) != 1 || detail.Phases[0].Status != "completed" {
		t.Errorf("phases = %+v", detail.Phases)
	}
	if len(detail.Payments) != 1 || detail.Payments[0].Amount != 12500.5 {
		t.Errorf("payments = %+v", detail.Payments)
	}
}

func TestRegenerateProjectAccessCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/projects/3/access-code" {
			t.Errorf("request = %s %q", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"access_code": "XYZXYZ7890"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	code, err := c.RegenerateProjectAccessCode(context.Background(), 3)
	if err != nil {
		t.Fatalf("RegenerateProjectAccessCode: %v", err)
	}
	if code != "XYZXYZ7890" {
		t.Errorf("code = %q", code)
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/notifications/unread-count" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]int64{"unread": 4},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	count, err := c.UnreadNotificationCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadNotificationCount: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
