// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate drafts Arabic translations of English content through an
// OpenAI-compatible chat completions endpoint. It is an editor assist: the
// dashboard offers the draft, a human reviews it before publishing.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	httpTimeout = 120 * time.Second

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = "You are a professional English to Arabic translator for a " +
		"cybersecurity company. Translate the user's text to Modern Standard " +
		"Arabic. Keep technical terms, product names and acronyms in English " +
		"where Arabic usage does. Reply with the translation only, no commentary."
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("translation assist is not configured")

// chatMessage is one turn of an OpenAI-compatible conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Translator calls an OpenAI-compatible endpoint for EN to AR drafts.
type Translator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Options configures a Translator. Zero values use OpenAI defaults; BaseURL
// may point at any compatible server (Groq, a local Ollama proxy).
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
}

// New creates a Translator. An empty API key yields a disabled translator
// whose methods return ErrDisabled.
func New(opts Options) *Translator {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	return &Translator{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// Enabled reports whether translation assist can be used.
func (t *Translator) Enabled() bool {
	return t != nil && t.apiKey != ""
}

// ToArabic translates English text to Arabic. The result is a draft and must
// be reviewed before publishing.
func (t *Translator) ToArabic(ctx context.Context, text string) (string, error) {
	if !t.Enabled() {
		return "", ErrDisabled
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	body := map[string]any{
		"model": t.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		"temperature": 0.2,
	}

	respBody, err := t.doJSONRequest(ctx, t.baseURL+"/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("translate chat: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("translate decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("translate: no choices returned")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// doJSONRequest performs a JSON HTTP request with Bearer token auth.
func (t *Translator) doJSONRequest(ctx context.Context, url string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
