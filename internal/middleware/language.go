// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/model"
)

// Context key for the resolved content language.
const ContextKeyLanguage ContextKey = "language"

// LanguageHeader is the request header the frontends send to select
// the content language.
const LanguageHeader = "x-lang"

// Language creates middleware that resolves the content language of a request.
// Priority order:
//  1. x-lang header (what the SPA sends on every call)
//  2. Query parameter ?lang=XX (explicit switch, handy for testing)
//  3. Accept-Language header
//  4. English
func Language() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLanguage(r)
			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(r *http.Request) string {
	if lang := strings.ToLower(strings.TrimSpace(r.Header.Get(LanguageHeader))); lang != "" {
		if i18n.IsSupported(lang) {
			return lang
		}
	}
	if lang := strings.ToLower(r.URL.Query().Get("lang")); lang != "" {
		if i18n.IsSupported(lang) {
			return lang
		}
	}
	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		return i18n.MatchLanguage(acceptLang)
	}
	return model.LocaleEN
}

// GetLanguage retrieves the resolved content language from the request
// context. Returns English if no language was resolved.
func GetLanguage(r *http.Request) string {
	lang, ok := r.Context().Value(ContextKeyLanguage).(string)
	if !ok || lang == "" {
		return model.LocaleEN
	}
	return lang
}
