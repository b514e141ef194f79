// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New("asciidoc"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderHTMLSanitizes(t *testing.T) {
	r, err := New(FormatHTML)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := r.Render(`<p>hello</p><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<p>hello</p>") {
		t.Errorf("expected paragraph preserved, got %q", out)
	}
	if strings.Contains(out, "script") {
		t.Errorf("expected script stripped, got %q", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	r, err := New(FormatMarkdown)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := r.Render("# Title\n\nSome *emphasis* here.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("expected heading, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("expected emphasis, got %q", out)
	}
}
