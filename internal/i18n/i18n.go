// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides localized API messages for English and Arabic.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// SupportedLanguages lists the content languages the API serves. English is
// first and doubles as the fallback.
var SupportedLanguages = []string{"en", "ar"}

// messageFile is the on-disk shape of locales/<lang>/messages.json.
type messageFile struct {
	Language string `json:"language"`
	Messages []struct {
		ID          string `json:"id"`
		Message     string `json:"message"`
		Translation string `json:"translation"`
	} `json:"messages"`
}

// Catalog holds the loaded translations for every supported language.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> text
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// Init loads the embedded message catalogs. It must run before any T call;
// T degrades to returning keys otherwise.
func Init(logger *slog.Logger) error {
	c := &Catalog{
		translations: make(map[string]map[string]string, len(SupportedLanguages)),
		defaultLang:  SupportedLanguages[0],
		logger:       logger,
	}

	for _, lang := range SupportedLanguages {
		c.supported = append(c.supported, language.MustParse(lang))

		data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s/messages.json", lang))
		if err != nil {
			return fmt.Errorf("reading %s catalog: %w", lang, err)
		}
		var mf messageFile
		if err := json.Unmarshal(data, &mf); err != nil {
			return fmt.Errorf("parsing %s catalog: %w", lang, err)
		}

		messages := make(map[string]string, len(mf.Messages))
		for _, m := range mf.Messages {
			messages[m.ID] = m.Translation
		}
		c.translations[lang] = messages
	}
	c.matcher = language.NewMatcher(c.supported)

	catalog = c
	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

// T translates a message key into lang, falling back to English and then
// to the key itself. Extra arguments are applied with fmt.Sprintf.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	text, ok := catalog.translations[lang][key]
	if !ok && lang != catalog.defaultLang {
		text, ok = catalog.translations[catalog.defaultLang][key]
		if ok && catalog.logger != nil {
			catalog.logger.Debug("missing translation", "key", key, "lang", lang)
		}
	}
	catalog.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// MatchLanguage resolves a bare language code or an Accept-Language header
// value to the closest supported language.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return SupportedLanguages[0]
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	if _, idx, _ := catalog.matcher.Match(tags...); idx >= 0 && idx < len(catalog.supported) {
		return catalog.supported[idx].String()
	}
	return catalog.defaultLang
}

// IsSupported reports whether lang is a supported content language,
// case-insensitively.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, s := range SupportedLanguages {
		if s == lang {
			return true
		}
	}
	return false
}

// TranslationCount returns how many messages are loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}
