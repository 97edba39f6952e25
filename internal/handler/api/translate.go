// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/translate"
)

// TranslateRequest asks for an Arabic draft of English copy.
type TranslateRequest struct {
	Text string `json:"text"`
}

// TranslateResponse carries the drafted translation. Editors are expected
// to review it before saving.
type TranslateResponse struct {
	Translation string `json:"translation"`
}

// Translate handles POST /api/v1/admin/translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	if h.translator == nil || !h.translator.Enabled() {
		WriteError(w, http.StatusServiceUnavailable, "translation_disabled",
			"Translation assistance is not configured", nil)
		return
	}

	var req TranslateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		WriteValidationError(w, map[string]string{"text": i18n.T(lang, "validation.required", "text")})
		return
	}

	translation, err := h.translator.ToArabic(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, translate.ErrDisabled) {
			WriteError(w, http.StatusServiceUnavailable, "translation_disabled",
				"Translation assistance is not configured", nil)
			return
		}
		WriteError(w, http.StatusBadGateway, "translation_failed",
			"Translation service request failed", nil)
		return
	}

	WriteSuccess(w, TranslateResponse{Translation: translation}, nil)
}
