// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"regexp"
	"testing"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	keyPattern := regexp.MustCompile(`^[a-zA-Z0-9]{7}-[a-zA-Z0-9]{7}-[a-zA-Z0-9]{7}-[a-zA-Z0-9]{7}$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey: %v", err)
		}
		if !keyPattern.MatchString(key) {
			t.Fatalf("key %q does not match expected shape", key)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestAuthorFingerprint(t *testing.T) {
	a := AuthorFingerprint("jane@example.com", "Jane Doe")
	b := AuthorFingerprint("jane@example.com", "Jane Doe")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %q vs %q", a, b)
	}

	if AuthorFingerprint("jane@example.com", "Jane Doe") == AuthorFingerprint("john@example.com", "Jane Doe") {
		t.Error("different emails must produce different fingerprints")
	}
	if AuthorFingerprint("jane@example.com", "Jane Doe") == AuthorFingerprint("jane@example.com", "Jane Smith") {
		t.Error("different names must produce different fingerprints")
	}
}

func TestUserRoles(t *testing.T) {
	u := User{Roles: `["editor","author"]`}
	if got := u.JoinedRoles(); got != "editor, author" {
		t.Errorf("JoinedRoles() = %q, want %q", got, "editor, author")
	}

	empty := User{Roles: "[]"}
	if got := empty.JoinedRoles(); got != "" {
		t.Errorf("JoinedRoles() on empty = %q, want empty", got)
	}

	if got := RolesToJSON([]string{"editor"}); got != `["editor"]` {
		t.Errorf("RolesToJSON = %q", got)
	}
	if got := RolesToJSON(nil); got != "[]" {
		t.Errorf("RolesToJSON(nil) = %q, want []", got)
	}
}

func TestAttachmentIsImage(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeGIF, true},
		{MimeTypeWebP, true},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		a := Attachment{MimeType: tt.mime}
		if got := a.IsImage(); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
