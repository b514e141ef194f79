// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/bridge-go/internal/model"
)

// CreateCategory inserts a category and returns the stored record.
func (q *Queries) CreateCategory(ctx context.Context, name, slug string) (model.Category, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return model.Category{ID: id, Name: name, Slug: slug}, nil
}

// GetCategoryBySlug returns the category with the given slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE slug = ?`, slug).Scan(&c.ID, &c.Name, &c.Slug)
	return c, err
}

// AddPostCategory associates a category with a post. Repeats are ignored
// so association order stays that of first insertion.
func (q *Queries) AddPostCategory(ctx context.Context, postID, categoryID int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)
		ON CONFLICT (post_id, category_id) DO NOTHING`, postID, categoryID)
	return err
}

// GetCategoriesForPost returns a post's categories in association
// insertion order.
func (q *Queries) GetCategoriesForPost(ctx context.Context, postID int64) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ? ORDER BY pc.id`, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateTag inserts a tag and returns the stored record.
func (q *Queries) CreateTag(ctx context.Context, name, slug string) (model.Tag, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO tags (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return model.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{ID: id, Name: name, Slug: slug}, nil
}

// GetTagBySlug returns the tag with the given slug.
func (q *Queries) GetTagBySlug(ctx context.Context, slug string) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM tags WHERE slug = ?`, slug).Scan(&t.ID, &t.Name, &t.Slug)
	return t, err
}

// AddPostTag associates a tag with a post. Repeats are ignored.
func (q *Queries) AddPostTag(ctx context.Context, postID, tagID int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
		ON CONFLICT (post_id, tag_id) DO NOTHING`, postID, tagID)
	return err
}

// GetTagsForPost returns a post's tags in association insertion order.
func (q *Queries) GetTagsForPost(ctx context.Context, postID int64) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ? ORDER BY pt.id`, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
