// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/awasec/awa-cms/internal/model"
)

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		user := GetUser(req)
		if user != nil {
			t.Errorf("GetUser() = %v, want nil", user)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		testUser := model.User{
			ID:    123,
			Email: "staff@example.com",
			Role:  model.RoleAdmin,
			Name:  "Test User",
		}
		ctx := context.WithValue(req.Context(), ContextKeyUser, testUser)
		req = req.WithContext(ctx)

		user := GetUser(req)
		if user == nil {
			t.Fatal("GetUser() = nil, want user")
		}
		if user.ID != 123 {
			t.Errorf("GetUser().ID = %d, want 123", user.ID)
		}
		if user.Email != "staff@example.com" {
			t.Errorf("GetUser().Email = %q, want %q", user.Email, "staff@example.com")
		}
	})
}

func TestGetUserID(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id := GetUserID(req); id != 0 {
			t.Errorf("GetUserID() = %d, want 0", id)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyUser, model.User{ID: 456})
		req = req.WithContext(ctx)

		if id := GetUserID(req); id != 456 {
			t.Errorf("GetUserID() = %d, want 456", id)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"missing header", "", "", false},
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer tok", "tok", true},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", false},
		{"scheme only", "Bearer", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, ok := bearerToken(req)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("bearerToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		minRole  string
		userRole string
		want     int
	}{
		{"admin passes admin check", model.RoleAdmin, model.RoleAdmin, http.StatusOK},
		{"employee fails admin check", model.RoleAdmin, model.RoleEmployee, http.StatusForbidden},
		{"client fails admin check", model.RoleAdmin, model.RoleClient, http.StatusForbidden},
		{"admin passes staff check", model.RoleEmployee, model.RoleAdmin, http.StatusOK},
		{"employee passes staff check", model.RoleEmployee, model.RoleEmployee, http.StatusOK},
		{"client fails staff check", model.RoleEmployee, model.RoleClient, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := RequireRole(tt.minRole)(handler)

			req := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)
			ctx := context.WithValue(req.Context(), ContextKeyUser, model.User{ID: 1, Role: tt.userRole})
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			wrapped.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	t.Run("no user in context", func(t *testing.T) {
		wrapped := RequireAdmin()(handler)
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
	})
}

func TestRequestPath(t *testing.T) {
	var captured string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestPath(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	rr := httptest.NewRecorder()
	RequestPath(handler).ServeHTTP(rr, req)

	if captured != "/api/v1/articles" {
		t.Errorf("GetRequestPath() = %q, want %q", captured, "/api/v1/articles")
	}

	if got := GetRequestPath(context.Background()); got != "" {
		t.Errorf("GetRequestPath(empty ctx) = %q, want empty", got)
	}
}
