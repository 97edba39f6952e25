package i18n

import (
	"testing"
)

func initTest(t *testing.T) {
	t.Helper()
	if err := Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestT(t *testing.T) {
	initTest(t)

	if got := T("en", "error.not_found"); got != "Resource not found" {
		t.Errorf("T(en, error.not_found) = %q", got)
	}

	// Arabic must come back translated, not as the English fallback.
	if got := T("ar", "error.not_found"); got == "error.not_found" || got == "Resource not found" {
		t.Errorf("T(ar, error.not_found) = %q, want arabic translation", got)
	}
}

func TestT_Formatting(t *testing.T) {
	initTest(t)

	if got := T("en", "validation.required", "email"); got != "email is required" {
		t.Errorf("T(en, validation.required, email) = %q", got)
	}
	if got := T("en", "validation.min_length", "password", 8); got != "password must be at least 8 characters" {
		t.Errorf("T(en, validation.min_length) = %q", got)
	}
}

func TestT_UnknownKey(t *testing.T) {
	initTest(t)

	if got := T("en", "no.such.key"); got != "no.such.key" {
		t.Errorf("T with unknown key = %q, want the key itself", got)
	}
}

func TestT_UnknownLanguageFallsBack(t *testing.T) {
	initTest(t)

	if got := T("fr", "error.not_found"); got != "Resource not found" {
		t.Errorf("T(fr, error.not_found) = %q, want english fallback", got)
	}
}

func TestT_Uninitialized(t *testing.T) {
	saved := catalog
	catalog = nil
	defer func() { catalog = saved }()

	if got := T("en", "error.not_found"); got != "error.not_found" {
		t.Errorf("T before Init = %q, want the key", got)
	}
}

func TestCatalogsStayInSync(t *testing.T) {
	initTest(t)

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	en := catalog.translations["en"]
	ar := catalog.translations["ar"]

	for key := range en {
		if _, ok := ar[key]; !ok {
			t.Errorf("key %q missing from arabic catalog", key)
		}
	}
	for key := range ar {
		if _, ok := en[key]; !ok {
			t.Errorf("key %q missing from english catalog", key)
		}
	}
}

func TestMatchLanguage(t *testing.T) {
	initTest(t)

	tests := []struct {
		accept string
		want   string
	}{
		{"en", "en"},
		{"ar", "ar"},
		{"ar-SA", "ar"},
		{"en-US,en;q=0.9", "en"},
		{"ar,en;q=0.8", "ar"},
		{"fr", "en"},
		{"", "en"},
		{"garbage;;;", "en"},
	}

	for _, tt := range tests {
		if got := MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	initTest(t)

	if !IsSupported("en") || !IsSupported("ar") || !IsSupported("AR") {
		t.Error("en/ar should be supported, case-insensitively")
	}
	if IsSupported("fr") || IsSupported("") {
		t.Error("unsupported codes reported as supported")
	}
}

func TestTranslationCount(t *testing.T) {
	initTest(t)

	if n := TranslationCount("en"); n == 0 {
		t.Error("no english translations loaded")
	}
	if n := TranslationCount("xx"); n != 0 {
		t.Errorf("TranslationCount(xx) = %d, want 0", n)
	}
}
