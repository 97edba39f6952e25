// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache() *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	if _, err := c.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "fleeting", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "fleeting"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry err = %v, want ErrCacheMiss", err)
	}
	ok, err := c.Has(ctx, "fleeting")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if ok {
		t.Error("Has should be false for an expired entry")
	}
}

func TestMemoryCacheReturnsCopy(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("abc"), 0)
	got, _ := c.Get(ctx, "key")
	got[0] = 'X'

	again, _ := c.Get(ctx, "key")
	if string(again) != "abc" {
		t.Errorf("cached value mutated: %q", again)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "articles:list:en", []byte("a"), 0)
	_ = c.Set(ctx, "articles:slug:x:en", []byte("b"), 0)
	_ = c.Set(ctx, "services:list:en", []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, "articles:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, "articles:list:en"); !errors.Is(err, ErrCacheMiss) {
		t.Error("prefixed entry survived")
	}
	if _, err := c.Get(ctx, "services:list:en"); err != nil {
		t.Errorf("unrelated entry dropped: %v", err)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := newTestCache()
	c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after close err = %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after close err = %v", err)
	}
	// Close is idempotent.
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("value"), 0)
	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
	if stats.Items != 1 {
		t.Errorf("Items = %d", stats.Items)
	}
}

func TestManagerKeysEmbedLanguage(t *testing.T) {
	m := NewManager(newTestCache())
	defer m.Close()

	if m.ArticleKey("slug", "en") == m.ArticleKey("slug", "ar") {
		t.Error("article keys must differ per language")
	}
	if m.ServicesKey("en") == m.ServicesKey("ar") {
		t.Error("service keys must differ per language")
	}
	if m.SectionsKey("home", "en") == m.SectionsKey("about", "en") {
		t.Error("section keys must differ per page")
	}
	if m.ArticlesKey("en", 1, 10, 0) == m.ArticlesKey("en", 2, 10, 0) {
		t.Error("article list keys must differ per page")
	}
}

func TestManagerInvalidation(t *testing.T) {
	m := NewManager(newTestCache())
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, m.ArticleKey("post", "en"), []byte("a"))
	_ = m.Set(ctx, m.ServiceKey("pentest", "en"), []byte("s"))
	_ = m.Set(ctx, m.SectionsKey("home", "en"), []byte("h"))

	// Service invalidation cascades to articles, which embed service names.
	m.InvalidateServices(ctx)

	if _, err := m.Get(ctx, m.ArticleKey("post", "en")); !errors.Is(err, ErrCacheMiss) {
		t.Error("article entry survived service invalidation")
	}
	if _, err := m.Get(ctx, m.ServiceKey("pentest", "en")); !errors.Is(err, ErrCacheMiss) {
		t.Error("service entry survived invalidation")
	}
	if _, err := m.Get(ctx, m.SectionsKey("home", "en")); err != nil {
		t.Errorf("section entry dropped by service invalidation: %v", err)
	}
}
