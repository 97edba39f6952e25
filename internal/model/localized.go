// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including bilingual content, users, projects, and notification structures.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Supported locales. The site is strictly bilingual.
const (
	LocaleEN = "en"
	LocaleAR = "ar"
)

// Locale text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Locales lists the supported locale codes in display order.
var Locales = []string{LocaleEN, LocaleAR}

// IsValidLocale reports whether code is a supported locale.
func IsValidLocale(code string) bool {
	return code == LocaleEN || code == LocaleAR
}

// LocaleDirection returns the text direction for a locale.
func LocaleDirection(code string) string {
	if code == LocaleAR {
		return DirectionRTL
	}
	return DirectionLTR
}

// LocalizedText is a bilingual string with required en and ar values.
// It is stored in the database as a JSON object {"en": ..., "ar": ...}.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// Resolve returns the value for the given locale, falling back to English
// when the Arabic translation is missing.
func (t LocalizedText) Resolve(locale string) string {
	if locale == LocaleAR && t.AR != "" {
		return t.AR
	}
	return t.EN
}

// IsComplete reports whether both translations are present and non-blank.
func (t LocalizedText) IsComplete() bool {
	return strings.TrimSpace(t.EN) != "" && strings.TrimSpace(t.AR) != ""
}

// IsEmpty reports whether neither translation is present.
func (t LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.AR) == ""
}

// MissingLocales returns the locale codes that have no value.
func (t LocalizedText) MissingLocales() []string {
	var missing []string
	if strings.TrimSpace(t.EN) == "" {
		missing = append(missing, LocaleEN)
	}
	if strings.TrimSpace(t.AR) == "" {
		missing = append(missing, LocaleAR)
	}
	return missing
}

// Value implements driver.Valuer, encoding the text as JSON for storage.
func (t LocalizedText) Value() (driver.Value, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling localized text: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner, decoding the stored JSON object.
func (t *LocalizedText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = LocalizedText{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), t)
	case []byte:
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("unsupported type for localized text: %T", src)
	}
}
