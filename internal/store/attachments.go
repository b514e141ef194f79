// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/bridge-go/internal/model"
)

const attachmentColumns = `id, mime_type, title, file_path, url,
	width, height, parent_post_id, created_at, updated_at`

// CreateAttachmentParams holds the fields for creating an attachment.
type CreateAttachmentParams struct {
	MimeType  string
	Title     string
	FilePath  string
	URL       string
	Width     int64
	Height    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAttachment inserts an attachment record with no parent post and
// returns the stored record.
func (q *Queries) CreateAttachment(ctx context.Context, arg CreateAttachmentParams) (model.Attachment, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO attachments (mime_type, title, file_path, url, width, height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.MimeType, arg.Title, arg.FilePath, arg.URL, arg.Width, arg.Height,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Attachment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Attachment{}, err
	}
	return q.GetAttachmentByID(ctx, id)
}

// GetAttachmentByID returns the attachment with the given ID.
func (q *Queries) GetAttachmentByID(ctx context.Context, id int64) (model.Attachment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id)
	return scanAttachment(row)
}

// SetAttachmentParent reassigns the attachment's parent post reference.
func (q *Queries) SetAttachmentParent(ctx context.Context, attachmentID, postID int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE attachments SET parent_post_id = ?, updated_at = ? WHERE id = ?`,
		postID, time.Now(), attachmentID)
	return err
}

// ListAttachments returns a page of attachments ordered by ID.
func (q *Queries) ListAttachments(ctx context.Context, limit, offset int64) ([]model.Attachment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var attachments []model.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// CountAttachments returns the total number of attachments.
func (q *Queries) CountAttachments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attachments`).Scan(&n)
	return n, err
}

// CreateAttachmentVariantParams holds the fields for recording a size variant.
type CreateAttachmentVariantParams struct {
	AttachmentID int64
	Name         string
	File         string
	Width        int64
	Height       int64
	CreatedAt    time.Time
}

// CreateAttachmentVariant records a generated size variant, replacing any
// prior variant of the same name.
func (q *Queries) CreateAttachmentVariant(ctx context.Context, arg CreateAttachmentVariantParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO attachment_variants (attachment_id, name, file, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (attachment_id, name) DO UPDATE SET
			file = excluded.file, width = excluded.width, height = excluded.height`,
		arg.AttachmentID, arg.Name, arg.File, arg.Width, arg.Height, arg.CreatedAt)
	return err
}

// ListAttachmentVariants returns an attachment's size variants ordered by name.
func (q *Queries) ListAttachmentVariants(ctx context.Context, attachmentID int64) ([]model.AttachmentVariant, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, attachment_id, name, file, width, height, created_at
		FROM attachment_variants WHERE attachment_id = ? ORDER BY name`, attachmentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var variants []model.AttachmentVariant
	for rows.Next() {
		var v model.AttachmentVariant
		if err := rows.Scan(&v.ID, &v.AttachmentID, &v.Name, &v.File, &v.Width,
			&v.Height, &v.CreatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func scanAttachment(row rowScanner) (model.Attachment, error) {
	var a model.Attachment
	err := row.Scan(&a.ID, &a.MimeType, &a.Title, &a.FilePath, &a.URL,
		&a.Width, &a.Height, &a.ParentPostID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
