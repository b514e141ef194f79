// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mapper assembles the wire representations served by the
// listing endpoints. Stored records are joined with their author,
// taxonomy and media relations and shaped the way migration clients
// expect to read them.
package mapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/olegiv/bridge-go/internal/meta"
	"github.com/olegiv/bridge-go/internal/model"
	"github.com/olegiv/bridge-go/internal/render"
	"github.com/olegiv/bridge-go/internal/store"
	"github.com/olegiv/bridge-go/internal/util"
)

// timeLayout is the datetime format of the wire protocol.
const timeLayout = "2006-01-02 15:04:05"

// UserResource is the wire shape of an author.
type UserResource struct {
	ID          int64  `json:"ID"`
	Login       string `json:"login"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Description string `json:"description"`
	Roles       string `json:"roles"`
}

// TermResource is the wire shape of a category or tag.
type TermResource struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MediaSize describes one generated size variant of a media file.
type MediaSize struct {
	File   string `json:"file"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
	URL    string `json:"url"`
}

// MediaMeta describes a media file and its size variants.
type MediaMeta struct {
	Width  int64                `json:"width"`
	Height int64                `json:"height"`
	File   string               `json:"file"`
	Sizes  map[string]MediaSize `json:"sizes,omitempty"`
}

// PostImage is the featured image block of a post resource.
type PostImage struct {
	ID     int64      `json:"ID"`
	Source string     `json:"source"`
	Meta   *MediaMeta `json:"meta"`
}

// PostResource is the wire shape of a published post.
type PostResource struct {
	ID              int64          `json:"ID"`
	Title           string         `json:"title"`
	Status          string         `json:"status"`
	Type            string         `json:"type"`
	Date            string         `json:"date"`
	Modified        string         `json:"modified"`
	Author          *UserResource  `json:"author"`
	Content         string         `json:"content"`
	Parent          int64          `json:"parent"`
	Link            string         `json:"link"`
	Slug            string         `json:"slug"`
	GUID            string         `json:"guid"`
	Excerpt         string         `json:"excerpt"`
	CommentStatus   string         `json:"comment_status"`
	PingStatus      string         `json:"ping_status"`
	PostImage       *PostImage     `json:"post_image"`
	Categories      []TermResource `json:"categories"`
	Tags            []TermResource `json:"tags"`
	Keyword         string         `json:"keyword,omitempty"`
	MetaTitle       string         `json:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
}

// CommentResource is the wire shape of a comment.
type CommentResource struct {
	ID          int64  `json:"ID"`
	PostID      int64  `json:"post_id"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	AuthorURL   string `json:"author_url"`
	Date        string `json:"date"`
	Content     string `json:"content"`
	Agent       string `json:"agent"`
	Type        string `json:"type"`
	Parent      int64  `json:"parent"`
	UserID      int64  `json:"user_id"`
	Approved    string `json:"approved"`
}

// MediaResource is the wire shape of a media file.
type MediaResource struct {
	Title    string        `json:"title"`
	Date     string        `json:"date"`
	Modified string        `json:"modified"`
	Author   *UserResource `json:"author"`
	Source   string        `json:"source"`
	Slug     string        `json:"slug"`
	GUID     string        `json:"guid"`
	MimeType string        `json:"mime_type"`
	Meta     *MediaMeta    `json:"meta"`
}

// Mapper builds wire resources from stored records.
type Mapper struct {
	queries  *store.Queries
	renderer *render.Renderer
	siteURL  string
}

// New creates a Mapper.
func New(db *sql.DB, renderer *render.Renderer, siteURL string) *Mapper {
	return &Mapper{
		queries:  store.New(db),
		renderer: renderer,
		siteURL:  siteURL,
	}
}

// User maps a stored user to its wire shape.
func (m *Mapper) User(u model.User) UserResource {
	return UserResource{
		ID:          u.ID,
		Login:       u.Login,
		LastName:    u.LastName,
		FirstName:   u.FirstName,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Description: u.Description,
		Roles:       u.JoinedRoles(),
	}
}

// Comment maps a stored comment to its wire shape.
func (m *Mapper) Comment(c model.Comment) CommentResource {
	return CommentResource{
		ID:          c.ID,
		PostID:      c.PostID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		AuthorURL:   c.AuthorURL,
		Date:        c.CreatedAt.Format(timeLayout),
		Content:     c.Body,
		Agent:       c.Agent,
		Type:        c.Type,
		Parent:      c.ParentID.Int64,
		UserID:      c.UserID.Int64,
		Approved:    c.Approved,
	}
}

// Post maps a stored post to its wire shape, joining the author, the
// featured image, taxonomy terms and resolved SEO fields.
func (m *Mapper) Post(ctx context.Context, p model.Post) (PostResource, error) {
	res := PostResource{
		ID:            p.ID,
		Title:         p.Title,
		Status:        p.Status,
		Type:          p.Type,
		Date:          p.CreatedAt.Format(timeLayout),
		Modified:      p.ModifiedAt.Format(timeLayout),
		Parent:        p.ParentID.Int64,
		Link:          m.siteURL + "/" + p.Slug,
		Slug:          p.Slug,
		GUID:          p.GUID,
		Excerpt:       p.Excerpt,
		CommentStatus: p.CommentStatus,
		PingStatus:    p.PingStatus,
		Categories:    []TermResource{},
		Tags:          []TermResource{},
	}

	content, err := m.renderer.Render(p.Body)
	if err != nil {
		return PostResource{}, fmt.Errorf("render post %d: %w", p.ID, err)
	}
	res.Content = content

	if p.AuthorID.Valid {
		user, err := m.queries.GetUserByID(ctx, p.AuthorID.Int64)
		switch {
		case err == nil:
			u := m.User(user)
			res.Author = &u
		case errors.Is(err, sql.ErrNoRows):
			// dangling author reference, serialize as null
		default:
			return PostResource{}, fmt.Errorf("author of post %d: %w", p.ID, err)
		}
	}

	if p.FeaturedImageID.Valid {
		img, err := m.postImage(ctx, p.FeaturedImageID.Int64)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return PostResource{}, fmt.Errorf("featured image of post %d: %w", p.ID, err)
		}
		res.PostImage = img
	}

	categories, err := m.queries.GetCategoriesForPost(ctx, p.ID)
	if err != nil {
		return PostResource{}, fmt.Errorf("categories of post %d: %w", p.ID, err)
	}
	for _, c := range categories {
		res.Categories = append(res.Categories, TermResource{Name: c.Name, Slug: c.Slug})
	}

	tags, err := m.queries.GetTagsForPost(ctx, p.ID)
	if err != nil {
		return PostResource{}, fmt.Errorf("tags of post %d: %w", p.ID, err)
	}
	for _, t := range tags {
		res.Tags = append(res.Tags, TermResource{Name: t.Name, Slug: t.Slug})
	}

	fields := meta.ResolveFields(m.metaGetter(ctx, p.ID))
	res.Keyword = fields.Keyword
	res.MetaTitle = fields.Title
	res.MetaDescription = fields.Description

	return res, nil
}

// Media maps a stored attachment to its wire shape.
func (m *Mapper) Media(ctx context.Context, a model.Attachment) (MediaResource, error) {
	mm, err := m.mediaMeta(ctx, a)
	if err != nil {
		return MediaResource{}, fmt.Errorf("meta of attachment %d: %w", a.ID, err)
	}
	return MediaResource{
		Title:    a.Title,
		Date:     a.CreatedAt.Format(timeLayout),
		Modified: a.UpdatedAt.Format(timeLayout),
		Source:   a.URL,
		Slug:     util.Slugify(a.Title),
		GUID:     a.URL,
		MimeType: a.MimeType,
		Meta:     mm,
	}, nil
}

// postImage builds the featured image block for a post.
func (m *Mapper) postImage(ctx context.Context, attachmentID int64) (*PostImage, error) {
	a, err := m.queries.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	mm, err := m.mediaMeta(ctx, a)
	if err != nil {
		return nil, err
	}
	return &PostImage{
		ID:     a.ID,
		Source: a.URL,
		Meta:   mm,
	}, nil
}

// mediaMeta builds the metadata block of an attachment. Variant URLs are
// derived from the attachment's canonical URL because variants live next
// to the original file.
func (m *Mapper) mediaMeta(ctx context.Context, a model.Attachment) (*MediaMeta, error) {
	mm := &MediaMeta{
		Width:  a.Width,
		Height: a.Height,
		File:   filepath.Base(a.FilePath),
	}

	variants, err := m.queries.ListAttachmentVariants(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if len(variants) > 0 {
		mm.Sizes = make(map[string]MediaSize, len(variants))
		dir := path.Dir(a.URL)
		for _, v := range variants {
			mm.Sizes[v.Name] = MediaSize{
				File:   v.File,
				Width:  v.Width,
				Height: v.Height,
				URL:    dir + "/" + v.File,
			}
		}
	}
	return mm, nil
}

// metaGetter adapts post metadata lookup to the SEO resolver.
func (m *Mapper) metaGetter(ctx context.Context, postID int64) meta.Getter {
	return func(key string) (string, bool) {
		value, err := m.queries.GetPostMeta(ctx, postID, key)
		if err != nil {
			return "", false
		}
		return value, true
	}
}
