// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Feature is a single entry in a service or section feature list.
type Feature struct {
	Icon        string        `json:"icon"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
}

// FeatureList is an ordered list of features stored as a JSON array.
type FeatureList []Feature

// Value implements driver.Valuer.
func (l FeatureList) Value() (driver.Value, error) {
	if l == nil {
		l = FeatureList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshaling feature list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *FeatureList) Scan(src any) error {
	return scanJSON(src, l, "feature list")
}

// ImageList is an ordered list of image URLs stored as a JSON array.
type ImageList []string

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshaling image list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src any) error {
	return scanJSON(src, l, "image list")
}

// scanJSON decodes a JSON column into dst, tolerating NULL.
func scanJSON(src, dst any, what string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("unsupported type for %s: %T", what, src)
	}
}

// Service represents a cybersecurity service offered on the site.
type Service struct {
	ID          int64         `json:"id"`
	Slug        string        `json:"slug"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Features    FeatureList   `json:"features"`
	Images      ImageList     `json:"images"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
