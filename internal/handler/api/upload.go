// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/service"
)

// UploadImage handles POST /api/v1/admin/uploads/images. The processed
// original and its thumbnail are served from /uploads/.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	if err := r.ParseMultipartForm(service.MaxImageUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.required", "file")})
		return
	}
	defer file.Close()

	result, err := h.media.UploadImage(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.file_too_large")})
		case errors.Is(err, service.ErrUnsupportedFileType):
			WriteValidationError(w, map[string]string{"file": i18n.T(lang, "validation.file_type")})
		default:
			WriteInternalError(w, "Failed to process image")
		}
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Image uploaded", middleware.GetUserID(r), middleware.ClientIP(r),
		map[string]any{"url": result.URL, "size": result.Size})

	WriteCreated(w, result)
}
