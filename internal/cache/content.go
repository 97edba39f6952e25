// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
)

// Key prefixes for public content. Localized responses embed the language
// in the key, so an Arabic reader never sees a cached English payload.
const (
	prefixSections = "sections:"
	prefixServices = "services:"
	prefixArticles = "articles:"
)

// Manager wraps a Cacher with key builders and invalidation helpers for
// the public content endpoints. Admin writes call the Invalidate* methods
// so public reads never serve stale content past a write.
type Manager struct {
	cache Cacher
}

// NewManager creates a content cache manager over the given backend.
func NewManager(cache Cacher) *Manager {
	return &Manager{cache: cache}
}

// SectionsKey builds the cache key for a page's section list.
func (m *Manager) SectionsKey(page, lang string) string {
	return fmt.Sprintf("%s%s:%s", prefixSections, page, lang)
}

// ServicesKey builds the cache key for the service list.
func (m *Manager) ServicesKey(lang string) string {
	return prefixServices + "list:" + lang
}

// ServiceKey builds the cache key for a single service by slug.
func (m *Manager) ServiceKey(slug, lang string) string {
	return fmt.Sprintf("%sslug:%s:%s", prefixServices, slug, lang)
}

// ArticlesKey builds the cache key for a page of the public article list.
func (m *Manager) ArticlesKey(lang string, page, perPage, serviceID int64) string {
	return fmt.Sprintf("%slist:%s:%d:%d:%d", prefixArticles, lang, page, perPage, serviceID)
}

// ArticleKey builds the cache key for a single article by slug.
func (m *Manager) ArticleKey(slug, lang string) string {
	return fmt.Sprintf("%sslug:%s:%s", prefixArticles, slug, lang)
}

// Get retrieves a cached payload.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	return m.cache.Get(ctx, key)
}

// Set stores a payload with the backend's default TTL.
func (m *Manager) Set(ctx context.Context, key string, value []byte) error {
	return m.cache.Set(ctx, key, value, 0)
}

// InvalidateSections drops all cached section lists.
func (m *Manager) InvalidateSections(ctx context.Context) {
	_ = m.cache.DeleteByPrefix(ctx, prefixSections)
}

// InvalidateServices drops all cached service payloads. Articles embed
// service names, so article payloads go too.
func (m *Manager) InvalidateServices(ctx context.Context) {
	_ = m.cache.DeleteByPrefix(ctx, prefixServices)
	_ = m.cache.DeleteByPrefix(ctx, prefixArticles)
}

// InvalidateArticles drops all cached article payloads.
func (m *Manager) InvalidateArticles(ctx context.Context) {
	_ = m.cache.DeleteByPrefix(ctx, prefixArticles)
}

// Clear drops every cached payload.
func (m *Manager) Clear(ctx context.Context) {
	_ = m.cache.Clear(ctx)
}

// Stats reports backend statistics when the backend provides them.
func (m *Manager) Stats() (CacheStats, bool) {
	if sp, ok := m.cache.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return CacheStats{}, false
}

// Close releases the underlying cache.
func (m *Manager) Close() error {
	return m.cache.Close()
}
