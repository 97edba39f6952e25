// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/awasec/awa-cms/internal/model"
)

// htmlSanitizer strips scripts, event handlers and other dangerous markup
// from article bodies before they are stored.
var htmlSanitizer = bluemonday.UGCPolicy()

// markdown renders article bodies written in Markdown. GFM covers the tables
// and strikethrough the editors actually use.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderBody converts an article body to sanitized HTML. Markdown input is
// rendered first; HTML input is sanitized as-is.
func RenderBody(input, format string) (string, error) {
	switch format {
	case "markdown", "":
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(input), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		return htmlSanitizer.Sanitize(buf.String()), nil
	case "html":
		return htmlSanitizer.Sanitize(input), nil
	default:
		return "", fmt.Errorf("unknown body format %q", format)
	}
}

// RenderLocalizedBody renders both locales of an article body.
func RenderLocalizedBody(body model.LocalizedText, format string) (model.LocalizedText, error) {
	en, err := RenderBody(body.EN, format)
	if err != nil {
		return model.LocalizedText{}, err
	}
	ar, err := RenderBody(body.AR, format)
	if err != nil {
		return model.LocalizedText{}, err
	}
	return model.LocalizedText{EN: strings.TrimSpace(en), AR: strings.TrimSpace(ar)}, nil
}
