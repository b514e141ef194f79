// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/bridge-go/internal/model"
)

// writeTestPNG writes a width x height PNG and returns its path.
func writeTestPNG(t *testing.T, dir string, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test image: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return path
}

func TestVariantFilename(t *testing.T) {
	tests := []struct {
		original string
		w, h     int
		want     string
	}{
		{"photo.jpg", 150, 150, "photo-150x150.jpg"},
		{"a.b.png", 800, 600, "a.b-800x600.png"},
		{"noext", 10, 10, "noext-10x10"},
	}
	for _, tt := range tests {
		if got := VariantFilename(tt.original, tt.w, tt.h); got != tt.want {
			t.Errorf("VariantFilename(%q) = %q, want %q", tt.original, got, tt.want)
		}
	}
}

func TestCreateVariantCropsThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, "photo.png", 400, 300)
	p := NewProcessor()

	res, err := p.CreateVariant(src, model.ImageVariants[model.VariantThumbnail], model.VariantThumbnail)
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if res == nil {
		t.Fatal("thumbnail variant skipped, crop variants must always generate")
	}
	if res.Width != 150 || res.Height != 150 {
		t.Errorf("dimensions = %dx%d, want 150x150", res.Width, res.Height)
	}
	if res.File != "photo-150x150.png" {
		t.Errorf("File = %q", res.File)
	}
	if _, err := os.Stat(filepath.Join(dir, res.File)); err != nil {
		t.Errorf("variant file not written next to original: %v", err)
	}

	// Variant must itself be a readable image of the reported size.
	w, h, err := p.GetImageDimensions(res.FilePath)
	if err != nil {
		t.Fatalf("GetImageDimensions: %v", err)
	}
	if w != 150 || h != 150 {
		t.Errorf("written variant is %dx%d", w, h)
	}
}

func TestCreateVariantSkipsWhenSourceFits(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, "small.png", 400, 300)
	p := NewProcessor()

	// Source is smaller than the medium fit target, so no variant.
	res, err := p.CreateVariant(src, model.ImageVariants[model.VariantMedium], model.VariantMedium)
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if res != nil {
		t.Errorf("expected skip, got %+v", res)
	}
}

func TestCreateAllVariants(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, "big.png", 1000, 900)
	p := NewProcessor()

	results, err := p.CreateAllVariants(src)
	if err != nil {
		t.Fatalf("CreateAllVariants: %v", err)
	}

	// 1000x900 exceeds thumbnail and medium targets but fits within large.
	byType := make(map[string]*VariantResult)
	for _, r := range results {
		byType[r.Type] = r
	}
	if byType[model.VariantThumbnail] == nil {
		t.Error("thumbnail missing")
	}
	if byType[model.VariantMedium] == nil {
		t.Error("medium missing")
	}
	if byType[model.VariantLarge] != nil {
		t.Error("large should be skipped for a 1000x900 source")
	}

	if m := byType[model.VariantMedium]; m != nil {
		// Fit preserves aspect ratio within 800x600.
		if m.Width > 800 || m.Height > 600 {
			t.Errorf("medium = %dx%d exceeds bounds", m.Width, m.Height)
		}
	}
}

func TestCreateVariantRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-image.png")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := NewProcessor()
	if _, err := p.CreateVariant(path, model.ImageVariants[model.VariantThumbnail], model.VariantThumbnail); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestDetectMimeType(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, "x.png", 4, 4)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	p := NewProcessor()
	if got := p.DetectMimeType(data); got != model.MimeTypePNG {
		t.Errorf("DetectMimeType = %q", got)
	}
}
