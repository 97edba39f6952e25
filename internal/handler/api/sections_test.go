// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

func (env *testEnv) createSection(t *testing.T, page, kind string) model.Section {
	t.Helper()
	now := time.Now()
	section, err := env.queries.CreateSection(context.Background(), store.CreateSectionParams{
		Page:        page,
		Kind:        kind,
		Title:       model.LocalizedText{EN: "Who We Are", AR: "من نحن"},
		Description: model.LocalizedText{EN: "About the team", AR: "عن الفريق"},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	return section
}

func TestPublicSectionByKind(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	env.createSection(t, model.SectionPageAbout, model.SectionKindWhoWeAre)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/pages/about/sections/who_we_are", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data SectionView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Kind != model.SectionKindWhoWeAre {
		t.Errorf("Kind = %q, want who_we_are", resp.Data.Kind)
	}
	if resp.Data.Title != "Who We Are" {
		t.Errorf("Title = %q, want English fallback", resp.Data.Title)
	}
}

func TestPublicSectionByKindMissing(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	// The home page exists but carries no who_we_are block.
	env.createSection(t, model.SectionPageHome, model.SectionKindHero)

	tests := []struct {
		name string
		path string
	}{
		{"valid kind absent from page", "/api/v1/pages/home/sections/who_we_are"},
		{"unknown kind", "/api/v1/pages/home/sections/sidebar"},
		{"unknown page", "/api/v1/pages/careers/sections/hero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodGet, tt.path, "", nil)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
			}
			apiErr := decodeError(t, rec)
			if apiErr.Error.Code != "not_found" {
				t.Errorf("error code = %q, want not_found", apiErr.Error.Code)
			}
		})
	}
}

func TestListPublicSections(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()

	env.createSection(t, model.SectionPageHome, model.SectionKindHero)
	env.createSection(t, model.SectionPageHome, model.SectionKindCallToAction)
	env.createSection(t, model.SectionPageAbout, model.SectionKindWhoWeAre)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/pages/home/sections", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []SectionView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("home sections = %d, want 2", len(resp.Data))
	}
	for _, s := range resp.Data {
		if s.Page != model.SectionPageHome {
			t.Errorf("section %d belongs to page %q", s.ID, s.Page)
		}
	}
}

func TestCreateSectionValidation(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	router := env.router()
	_, token := env.createStaff(t, "editor@awasec.example", "s3cureP@ss", model.RoleAdmin)

	// A video section must carry a video URL.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/sections", token, SectionRequest{
		Page:  model.SectionPageHome,
		Kind:  model.SectionKindVideo,
		Title: model.LocalizedText{EN: "Showreel"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
	apiErr := decodeError(t, rec)
	if _, ok := apiErr.Error.Details["video_url"]; !ok {
		t.Errorf("Details = %v, want video_url entry", apiErr.Error.Details)
	}
}
