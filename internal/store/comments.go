// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/bridge-go/internal/model"
)

const commentColumns = `id, post_id, author_name, author_email, author_url,
	body, type, parent_id, user_id, agent, approved, created_at`

// CreateCommentParams holds the fields for creating a comment.
type CreateCommentParams struct {
	PostID      int64
	AuthorName  string
	AuthorEmail string
	AuthorURL   string
	Body        string
	Type        string
	ParentID    sql.NullInt64
	UserID      sql.NullInt64
	Agent       string
	Approved    string
	CreatedAt   time.Time
}

// CreateComment inserts a comment and returns the stored record.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, author_name, author_email, author_url,
			body, type, parent_id, user_id, agent, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.PostID, arg.AuthorName, arg.AuthorEmail, arg.AuthorURL, arg.Body,
		arg.Type, arg.ParentID, arg.UserID, arg.Agent, arg.Approved, arg.CreatedAt)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return q.GetCommentByID(ctx, id)
}

// GetCommentByID returns the comment with the given ID.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row)
}

// ListComments returns a page of comments ordered by creation time ascending.
func (q *Queries) ListComments(ctx context.Context, limit, offset int64) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountComments returns the total number of comments.
func (q *Queries) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n)
	return n, err
}

func scanComment(row rowScanner) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.AuthorURL,
		&c.Body, &c.Type, &c.ParentID, &c.UserID, &c.Agent, &c.Approved, &c.CreatedAt)
	return c, err
}
