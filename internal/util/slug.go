// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode normalization support.
package util

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes characters and drops the combining marks, turning
// "café" into "cafe".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a title to a URL slug: accents are stripped, remaining
// non-ASCII runes (Arabic titles in particular) are transliterated, and the
// result is lowercased with hyphen separators. Both locales of a bilingual
// title therefore produce usable slugs.
func Slugify(s string) string {
	s, _, _ = transform.String(stripAccents, s)
	s = strings.ToLower(unidecode.Unidecode(s))

	// Spaces and existing hyphens become single separators; any other
	// punctuation drops out entirely ("What's" -> "whats").
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress leading separators
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case (r == ' ' || r == '-') && !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValidSlug reports whether s is lowercase alphanumeric with single
// hyphen separators and no hyphens at the edges.
func IsValidSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
