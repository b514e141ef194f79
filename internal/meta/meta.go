// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package meta resolves SEO fields from a post's metadata bag. Source
// systems store these under different plugin-specific keys; each field
// is resolved through an ordered chain where the first non-empty value
// wins and an all-empty chain yields nothing at all.
package meta

// Metadata keys written by the SEO tooling of source systems.
const (
	KeyKeyword = "keyword"

	KeyYoastFocusKeyword = "_yoast_wpseo_focuskw"
	KeyYoastTitle        = "_yoast_wpseo_title"
	KeyYoastDescription  = "_yoast_wpseo_metadesc"

	KeyAIOTitle       = "_aioseop_title"
	KeyAIODescription = "_aioseop_description"

	KeyWPSEOTitle       = "_wpseo_edit_title"
	KeyWPSEODescription = "_wpseo_edit_description"
)

// Source chains per resolved field, highest priority first.
var (
	KeywordSources     = []string{KeyKeyword, KeyYoastFocusKeyword}
	TitleSources       = []string{KeyYoastTitle, KeyAIOTitle, KeyWPSEOTitle}
	DescriptionSources = []string{KeyYoastDescription, KeyAIODescription, KeyWPSEODescription}
)

// Getter looks up a single metadata value. A missing key reports ok=false.
type Getter func(key string) (value string, ok bool)

// Resolve walks the source keys in order and returns the first non-empty
// value found. ok is false when every source is absent or empty, which
// callers translate to omitting the field entirely.
func Resolve(get Getter, sources []string) (string, bool) {
	for _, key := range sources {
		if value, ok := get(key); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

// Fields holds the resolved SEO fields of a post. Empty strings mean
// the field is absent and must not be serialized.
type Fields struct {
	Keyword     string
	Title       string
	Description string
}

// ResolveFields resolves all three SEO fields against a metadata bag.
func ResolveFields(get Getter) Fields {
	var f Fields
	f.Keyword, _ = Resolve(get, KeywordSources)
	f.Title, _ = Resolve(get, TitleSources)
	f.Description, _ = Resolve(get, DescriptionSources)
	return f
}

// MapGetter adapts a plain map to a Getter, mostly for tests.
func MapGetter(m map[string]string) Getter {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
