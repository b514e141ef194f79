// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ingest stores uploaded media files and stitches them into the
// content that arrived before them. A migration pushes posts first and
// files later, so every ingested file resolves pending featured-image
// markers and rewrites source-site URLs inside post bodies to their new
// local address.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/bridge-go/internal/imaging"
	"github.com/olegiv/bridge-go/internal/model"
	"github.com/olegiv/bridge-go/internal/store"
	"github.com/olegiv/bridge-go/internal/util"
)

// Payload carries the form fields of an attachment upload.
type Payload struct {
	Path         string // destination path relative to the uploads dir
	URL          string // the file's URL on the source site
	PathAbsolute string // the file's absolute path on the source site
}

// Result reports what an ingestion run did. Errors are non-fatal: the
// run keeps going past individual step failures and reports them all.
type Result struct {
	AttachmentID int64
	LinkedPosts  []int64
	RewrittenIn  []int64
	Errors       []string
}

// Ingestor moves uploaded files into the uploads tree and links them to
// previously imported content.
type Ingestor struct {
	db         *sql.DB
	queries    *store.Queries
	processor  *imaging.Processor
	logger     *slog.Logger
	uploadsDir string
	uploadsURL string
}

// New creates an Ingestor rooted at uploadsDir, serving files under
// uploadsURL.
func New(db *sql.DB, logger *slog.Logger, uploadsDir, uploadsURL string) *Ingestor {
	return &Ingestor{
		db:         db,
		queries:    store.New(db),
		processor:  imaging.NewProcessor(),
		logger:     logger,
		uploadsDir: uploadsDir,
		uploadsURL: strings.TrimRight(uploadsURL, "/"),
	}
}

// Ingest stores one uploaded file and runs the linking passes. A request
// without a file or destination path is a no-op, mirroring how partial
// migration pushes are tolerated everywhere else. Step failures are
// collected in the result rather than aborting the run.
func (in *Ingestor) Ingest(ctx context.Context, file io.Reader, p Payload) *Result {
	res := &Result{Errors: []string{}}

	if file == nil || p.Path == "" {
		return res
	}

	target, err := util.SafeJoinPath(in.uploadsDir, strings.TrimLeft(p.Path, "/"))
	if err != nil {
		in.fail(res, "attachment path rejected", "path", p.Path, "error", err)
		return res
	}

	if err := in.saveFile(file, target); err != nil {
		in.fail(res, "attachment save failed", "path", p.Path, "error", err)
		return res
	}

	attachment, err := in.record(ctx, target, p)
	if err != nil {
		in.fail(res, "attachment record failed", "path", p.Path, "error", err)
		return res
	}
	res.AttachmentID = attachment.ID

	if attachment.IsImage() {
		in.createVariants(ctx, res, attachment)
	}

	in.linkFeaturedImages(ctx, res, attachment, p.Path)

	// The URL pass runs first so that parent assignment from the
	// absolute-path pass wins when both match the same posts.
	in.rewriteBodies(ctx, res, attachment, p.URL)
	in.rewriteBodies(ctx, res, attachment, p.PathAbsolute)

	return res
}

// saveFile writes the uploaded stream to its destination, creating the
// directory tree on the way.
func (in *Ingestor) saveFile(file io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return out.Close()
}

// record creates the attachment row for a stored file.
func (in *Ingestor) record(ctx context.Context, target string, p Payload) (model.Attachment, error) {
	base := filepath.Base(target)
	mimeType := mime.TypeByExtension(filepath.Ext(base))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}

	var width, height int64
	if in.processor.IsImage(mimeType) {
		if w, h, err := in.processor.GetImageDimensions(target); err == nil {
			width, height = int64(w), int64(h)
		}
	}

	now := time.Now().UTC()
	return in.queries.CreateAttachment(ctx, store.CreateAttachmentParams{
		MimeType:  mimeType,
		Title:     strings.TrimSuffix(base, filepath.Ext(base)),
		FilePath:  target,
		URL:       in.uploadsURL + "/" + strings.TrimLeft(filepath.ToSlash(p.Path), "/"),
		Width:     width,
		Height:    height,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// createVariants generates size variants next to the original file and
// records them.
func (in *Ingestor) createVariants(ctx context.Context, res *Result, a model.Attachment) {
	variants, err := in.processor.CreateAllVariants(a.FilePath)
	if err != nil {
		in.fail(res, "variant generation failed", "attachment", a.ID, "error", err)
		return
	}
	for _, v := range variants {
		err := in.queries.CreateAttachmentVariant(ctx, store.CreateAttachmentVariantParams{
			AttachmentID: a.ID,
			Name:         v.Type,
			File:         v.File,
			Width:        int64(v.Width),
			Height:       int64(v.Height),
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			in.fail(res, "variant record failed", "attachment", a.ID, "variant", v.Type, "error", err)
		}
	}
}

// linkFeaturedImages sets the attachment as featured image on every post
// whose metadata declared this file as its image.
func (in *Ingestor) linkFeaturedImages(ctx context.Context, res *Result, a model.Attachment, path string) {
	postIDs, err := in.queries.FindPostIDsByMeta(ctx, model.MetaKeyPostImage, path)
	if err != nil {
		in.fail(res, "featured image lookup failed", "attachment", a.ID, "error", err)
		return
	}
	for _, postID := range postIDs {
		if err := in.queries.SetPostFeaturedImage(ctx, postID, a.ID); err != nil {
			in.fail(res, "featured image link failed", "attachment", a.ID, "post", postID, "error", err)
			continue
		}
		res.LinkedPosts = append(res.LinkedPosts, postID)
	}
}

// rewriteBodies replaces every case-insensitive occurrence of needle in
// post bodies with the attachment's local URL. Each rewritten post also
// becomes the attachment's parent, so the last match of the last pass
// wins.
func (in *Ingestor) rewriteBodies(ctx context.Context, res *Result, a model.Attachment, needle string) {
	if needle == "" {
		return
	}

	posts, err := in.queries.SearchPostsByBody(ctx, needle)
	if err != nil {
		in.fail(res, "body search failed", "attachment", a.ID, "needle", needle, "error", err)
		return
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
	if err != nil {
		in.fail(res, "needle rejected", "attachment", a.ID, "needle", needle, "error", err)
		return
	}

	for _, post := range posts {
		body := re.ReplaceAllLiteralString(post.Body, a.URL)
		if body == post.Body {
			continue
		}
		if err := in.queries.UpdatePostBody(ctx, post.ID, body, time.Now().UTC()); err != nil {
			in.fail(res, "body rewrite failed", "attachment", a.ID, "post", post.ID, "error", err)
			continue
		}
		if err := in.queries.SetAttachmentParent(ctx, a.ID, post.ID); err != nil {
			in.fail(res, "parent assignment failed", "attachment", a.ID, "post", post.ID, "error", err)
			continue
		}
		res.RewrittenIn = append(res.RewrittenIn, post.ID)
	}
}

// fail logs a step failure and appends it to the result.
func (in *Ingestor) fail(res *Result, msg string, args ...any) {
	in.logger.Warn(msg, append([]any{"category", model.EventCategoryMedia}, args...)...)
	parts := make([]string, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", args[i], args[i+1]))
	}
	res.Errors = append(res.Errors, msg+": "+strings.Join(parts, " "))
}
