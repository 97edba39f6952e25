// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Article represents a bilingual blog article attached to a service.
type Article struct {
	ID          int64         `json:"id"`
	Slug        string        `json:"slug"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Body        LocalizedText `json:"body"` // Sanitized HTML
	MainImage   string        `json:"main_image"`
	ServiceID   int64         `json:"service_id"`
	PublishedAt sql.NullTime  `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article's publish time has passed.
func (a *Article) IsPublished() bool {
	return a.PublishedAt.Valid && !a.PublishedAt.Time.After(time.Now())
}
