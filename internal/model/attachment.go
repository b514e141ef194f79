// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Supported image variant types
const (
	VariantThumbnail = "thumbnail"
	VariantMedium    = "medium"
	VariantLarge     = "large"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// ImageVariantConfig defines settings for generating image variants.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool // true = crop to exact size, false = fit within bounds
}

// ImageVariants defines the default image variant configurations.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 150, Height: 150, Quality: 80, Crop: true},
	VariantMedium:    {Width: 800, Height: 600, Quality: 85, Crop: false},
	VariantLarge:     {Width: 1920, Height: 1080, Quality: 90, Crop: false},
}

// Attachment represents a migrated media file.
type Attachment struct {
	ID           int64
	MimeType     string
	Title        string
	FilePath     string // absolute path on disk
	URL          string // canonical public URL
	Width        int64  // 0 for non-image files
	Height       int64
	ParentPostID sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsImage returns true if the attachment is a processable image.
func (a *Attachment) IsImage() bool {
	switch a.MimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// AttachmentVariant represents a generated size variant of an attachment.
type AttachmentVariant struct {
	ID           int64
	AttachmentID int64
	Name         string
	File         string // filename relative to the attachment's directory
	Width        int64
	Height       int64
	CreatedAt    time.Time
}
