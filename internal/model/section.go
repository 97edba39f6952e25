// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Section pages
const (
	SectionPageHome     = "home"
	SectionPageAbout    = "about"
	SectionPageServices = "services"
)

// Section kinds. Each section carries an explicit kind so consumers select
// content blocks by type rather than by position in the sorted list.
const (
	SectionKindHero           = "hero"
	SectionKindWhoWeAre       = "who_we_are"
	SectionKindCallToAction   = "cta"
	SectionKindVideo          = "video"
	SectionKindTrustedClients = "trusted_clients"
)

// ValidSectionPages lists the pages a section can belong to.
var ValidSectionPages = []string{SectionPageHome, SectionPageAbout, SectionPageServices}

// ValidSectionKinds lists the recognized section kinds.
var ValidSectionKinds = []string{
	SectionKindHero,
	SectionKindWhoWeAre,
	SectionKindCallToAction,
	SectionKindVideo,
	SectionKindTrustedClients,
}

// IsValidSectionPage reports whether page is a known section page.
func IsValidSectionPage(page string) bool {
	for _, p := range ValidSectionPages {
		if p == page {
			return true
		}
	}
	return false
}

// IsValidSectionKind reports whether kind is a known section kind.
func IsValidSectionKind(kind string) bool {
	for _, k := range ValidSectionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Section is a CMS content block tied to a page. Order only controls sorting
// within the page; the kind field identifies what the block is.
type Section struct {
	ID          int64          `json:"id"`
	Page        string         `json:"page"`
	Kind        string         `json:"kind"`
	ServiceID   sql.NullInt64  `json:"service_id,omitempty"`
	Title       LocalizedText  `json:"title"`
	Description LocalizedText  `json:"description"`
	Images      ImageList      `json:"images"`
	Features    FeatureList    `json:"features"`
	VideoURL    sql.NullString `json:"video_url,omitempty"`
	Order       int64          `json:"order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
