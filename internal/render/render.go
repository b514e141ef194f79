// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render produces the public body of a post. Stored content is
// either HTML or Markdown depending on how the source system delivered
// it; both paths end in a sanitization pass before the body leaves the
// server.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Content formats accepted by New.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// htmlSanitizer allows safe HTML tags for user-generated content while
// stripping potentially dangerous elements like <script> and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// Renderer converts stored post bodies to sanitized HTML.
type Renderer struct {
	format string
}

// New creates a Renderer for the given content format.
func New(format string) (*Renderer, error) {
	switch format {
	case FormatHTML, FormatMarkdown:
		return &Renderer{format: format}, nil
	default:
		return nil, fmt.Errorf("render: unknown content format %q", format)
	}
}

// Render converts a stored body to sanitized HTML. In markdown mode the
// body is converted first; in HTML mode it is sanitized as-is.
func (r *Renderer) Render(body string) (string, error) {
	if r.format == FormatMarkdown {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("render: convert markdown: %w", err)
		}
		body = buf.String()
	}
	return htmlSanitizer.Sanitize(body), nil
}
