// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/bridge-go/internal/model"
)

const postColumns = `id, title, body, excerpt, status, type, slug, guid,
	comment_status, ping_status, parent_id, author_id, featured_image_id,
	created_at, modified_at`

// CreatePostParams holds the fields for creating a post.
type CreatePostParams struct {
	Title           string
	Body            string
	Excerpt         string
	Status          string
	Type            string
	Slug            string
	GUID            string
	CommentStatus   string
	PingStatus      string
	ParentID        sql.NullInt64
	AuthorID        sql.NullInt64
	FeaturedImageID sql.NullInt64
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// CreatePost inserts a post and returns the stored record.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (title, body, excerpt, status, type, slug, guid,
			comment_status, ping_status, parent_id, author_id, featured_image_id,
			created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Body, arg.Excerpt, arg.Status, arg.Type, arg.Slug, arg.GUID,
		arg.CommentStatus, arg.PingStatus, arg.ParentID, arg.AuthorID,
		arg.FeaturedImageID, arg.CreatedAt, arg.ModifiedAt)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

// UpdatePostParams holds the fields for updating a post in place.
type UpdatePostParams struct {
	ID            int64
	Title         string
	Body          string
	Excerpt       string
	Status        string
	Type          string
	Slug          string
	CommentStatus string
	PingStatus    string
	AuthorID      sql.NullInt64
	ModifiedAt    time.Time
}

// UpdatePost overwrites the mutable fields of an existing post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, body = ?, excerpt = ?, status = ?, type = ?,
			slug = ?, comment_status = ?, ping_status = ?, author_id = ?, modified_at = ?
		WHERE id = ?`,
		arg.Title, arg.Body, arg.Excerpt, arg.Status, arg.Type, arg.Slug,
		arg.CommentStatus, arg.PingStatus, arg.AuthorID, arg.ModifiedAt, arg.ID)
	return err
}

// GetPostByID returns the post with the given ID.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// SetPostGUID stores the post's globally-unique identifier string.
func (q *Queries) SetPostGUID(ctx context.Context, id int64, guid string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET guid = ? WHERE id = ?`, guid, id)
	return err
}

// UpdatePostBody replaces a post's body and bumps its modification time.
func (q *Queries) UpdatePostBody(ctx context.Context, id int64, body string, modifiedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET body = ?, modified_at = ? WHERE id = ?`, body, modifiedAt, id)
	return err
}

// SetPostFeaturedImage points a post's featured image at an attachment.
func (q *Queries) SetPostFeaturedImage(ctx context.Context, postID, attachmentID int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET featured_image_id = ? WHERE id = ?`, attachmentID, postID)
	return err
}

// ListPublishedPosts returns a page of published posts and pages,
// newest first.
func (q *Queries) ListPublishedPosts(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = ? AND type IN (?, ?)
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		model.PostStatusPublish, model.PostTypePost, model.PostTypePage, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectPosts(rows)
}

// CountPublishedPosts returns the total number of published posts and pages.
func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status = ? AND type IN (?, ?)`,
		model.PostStatusPublish, model.PostTypePost, model.PostTypePage).Scan(&n)
	return n, err
}

// SearchPostsByBody returns all posts whose body contains term,
// case-insensitively, ordered by ID.
func (q *Queries) SearchPostsByBody(ctx context.Context, term string) ([]model.Post, error) {
	escaped := escapeLike(term)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE body LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY id`, escaped)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectPosts(rows)
}

// escapeLike escapes the LIKE wildcard characters in a literal search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func collectPosts(rows *sql.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Excerpt, &p.Status, &p.Type,
		&p.Slug, &p.GUID, &p.CommentStatus, &p.PingStatus, &p.ParentID,
		&p.AuthorID, &p.FeaturedImageID, &p.CreatedAt, &p.ModifiedAt)
	return p, err
}

// SetPostMeta stores a metadata entry for a post, replacing any prior value.
func (q *Queries) SetPostMeta(ctx context.Context, postID int64, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO post_meta (post_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (post_id, key) DO UPDATE SET value = excluded.value`,
		postID, key, value)
	return err
}

// GetPostMeta returns the metadata value stored for a post under key.
// sql.ErrNoRows when unset.
func (q *Queries) GetPostMeta(ctx context.Context, postID int64, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx,
		`SELECT value FROM post_meta WHERE post_id = ? AND key = ?`, postID, key).Scan(&value)
	return value, err
}

// FindPostIDsByMeta returns the IDs of posts that carry the given
// metadata key/value pair.
func (q *Queries) FindPostIDsByMeta(ctx context.Context, key, value string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT post_id FROM post_meta WHERE key = ? AND value = ? ORDER BY post_id`, key, value)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
