// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

// Post types
const (
	PostTypePost = "post"
	PostTypePage = "page"
)

// Comment and ping policy flags
const (
	PolicyOpen   = "open"
	PolicyClosed = "closed"
)

// MetaKeyPostImage marks a post's metadata entry that stores the logical
// path of its featured image as declared by the migration source. The
// attachment ingestor resolves these markers once the file arrives.
const MetaKeyPostImage = "bridge_post_image"

// Post represents a content item (post or page).
type Post struct {
	ID              int64
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

// IsPublished returns true if the post is published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublish
}

// Category represents a post category.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Tag represents a post tag.
type Tag struct {
	ID   int64
	Name string
	Slug string
}
