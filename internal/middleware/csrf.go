// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig covers the portal routes, which authenticate with a session
// cookie and therefore need cross-site request protection; the token-based
// dashboard API does not. filippo.io/csrf/gorilla validates Fetch metadata
// headers rather than a double-submit cookie, so there are no cookie
// options here.
type CSRFConfig struct {
	// AuthKey is the 32-byte token-authentication key; the app reuses the
	// token secret.
	AuthKey []byte

	// ErrorHandler replaces the default JSON 403 on validation failure.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to make cross-origin
	// requests, typically the SPA origins.
	TrustedOrigins []string
}

// DefaultCSRFConfig builds the portal CSRF configuration. In development
// the local origins are trusted so the SPA dev server can talk to the API.
func DefaultCSRFConfig(authKey []byte, trustedOrigins []string, isDev bool) CSRFConfig {
	cfg := CSRFConfig{
		AuthKey:        authKey,
		TrustedOrigins: trustedOrigins,
	}
	if isDev {
		// The csrf library wants host-only values, not full URLs.
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, "localhost:8080", "127.0.0.1:8080")
	}
	return cfg
}

// CSRF builds the protection middleware from a config.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = http.HandlerFunc(rejectCSRF)
	}

	opts := []csrf.Option{csrf.ErrorHandler(errorHandler)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

// rejectCSRF logs the failure with enough context to debug origin
// misconfigurations, then answers 403.
func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Error("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "forbidden", "CSRF validation failed", nil)
}
