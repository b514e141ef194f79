// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/olegiv/bridge-go/internal/model"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "bridge-store-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestConfigRoundTrip(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	if _, err := q.GetConfig(ctx, ConfigKeyAPIKey); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for missing key, got %v", err)
	}

	if err := q.SetConfig(ctx, ConfigKeyAPIKey, "first"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := q.SetConfig(ctx, ConfigKeyAPIKey, "second"); err != nil {
		t.Fatalf("SetConfig upsert: %v", err)
	}

	got, err := q.GetConfig(ctx, ConfigKeyAPIKey)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got != "second" {
		t.Errorf("GetConfig = %q, want %q", got, "second")
	}

	if err := q.DeleteConfig(ctx, ConfigKeyAPIKey); err != nil {
		t.Fatalf("DeleteConfig: %v", err)
	}
	if _, err := q.GetConfig(ctx, ConfigKeyAPIKey); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows after delete, got %v", err)
	}
}

func newTestPost(t *testing.T, q *Queries, title, body, status, postType string, created time.Time) model.Post {
	t.Helper()
	post, err := q.CreatePost(context.Background(), CreatePostParams{
		Title:         title,
		Body:          body,
		Status:        status,
		Type:          postType,
		Slug:          title,
		CommentStatus: model.PolicyOpen,
		PingStatus:    model.PolicyOpen,
		CreatedAt:     created,
		ModifiedAt:    created,
	})
	if err != nil {
		t.Fatalf("CreatePost(%q): %v", title, err)
	}
	return post
}

func TestListPublishedPostsFiltersAndOrders(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	base := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	newTestPost(t, q, "old-published", "", model.PostStatusPublish, model.PostTypePost, base)
	newTestPost(t, q, "draft", "", model.PostStatusDraft, model.PostTypePost, base.Add(time.Hour))
	newTestPost(t, q, "published-page", "", model.PostStatusPublish, model.PostTypePage, base.Add(2*time.Hour))
	newTestPost(t, q, "attachment-like", "", model.PostStatusPublish, "attachment", base.Add(3*time.Hour))
	newTestPost(t, q, "new-published", "", model.PostStatusPublish, model.PostTypePost, base.Add(4*time.Hour))

	count, err := q.CountPublishedPosts(ctx)
	if err != nil {
		t.Fatalf("CountPublishedPosts: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	posts, err := q.ListPublishedPosts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPublishedPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	// Newest first
	if posts[0].Title != "new-published" || posts[2].Title != "old-published" {
		t.Errorf("unexpected order: %q ... %q", posts[0].Title, posts[2].Title)
	}
}

func TestSearchPostsByBodyEscapesWildcards(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	now := time.Now().UTC()
	newTestPost(t, q, "a", "see http://old.example.com/img.png here", model.PostStatusPublish, model.PostTypePost, now)
	newTestPost(t, q, "b", "nothing relevant", model.PostStatusPublish, model.PostTypePost, now)
	newTestPost(t, q, "c", "100% literal percent", model.PostStatusPublish, model.PostTypePost, now)

	posts, err := q.SearchPostsByBody(ctx, "http://old.example.com/img.png")
	if err != nil {
		t.Fatalf("SearchPostsByBody: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "a" {
		t.Fatalf("got %d posts, want the single match", len(posts))
	}

	// A literal % must not act as a wildcard
	posts, err = q.SearchPostsByBody(ctx, "100% literal")
	if err != nil {
		t.Fatalf("SearchPostsByBody: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "c" {
		t.Fatalf("wildcard escape broken, got %d posts", len(posts))
	}
}

func TestPostMeta(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := newTestPost(t, q, "p", "", model.PostStatusPublish, model.PostTypePost, time.Now().UTC())

	if err := q.SetPostMeta(ctx, post.ID, model.MetaKeyPostImage, "/2020/01/img.png"); err != nil {
		t.Fatalf("SetPostMeta: %v", err)
	}
	// Upsert replaces
	if err := q.SetPostMeta(ctx, post.ID, model.MetaKeyPostImage, "/2020/02/img.png"); err != nil {
		t.Fatalf("SetPostMeta upsert: %v", err)
	}

	value, err := q.GetPostMeta(ctx, post.ID, model.MetaKeyPostImage)
	if err != nil {
		t.Fatalf("GetPostMeta: %v", err)
	}
	if value != "/2020/02/img.png" {
		t.Errorf("GetPostMeta = %q", value)
	}

	ids, err := q.FindPostIDsByMeta(ctx, model.MetaKeyPostImage, "/2020/02/img.png")
	if err != nil {
		t.Fatalf("FindPostIDsByMeta: %v", err)
	}
	if len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("FindPostIDsByMeta = %v, want [%d]", ids, post.ID)
	}
}

func TestTaxonomyInsertionOrder(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := newTestPost(t, q, "p", "", model.PostStatusPublish, model.PostTypePost, time.Now().UTC())

	// Associate in non-alphabetical order; listing must preserve it.
	names := []string{"zebra", "alpha", "middle"}
	for _, name := range names {
		tag, err := q.CreateTag(ctx, name, name)
		if err != nil {
			t.Fatalf("CreateTag(%q): %v", name, err)
		}
		if err := q.AddPostTag(ctx, post.ID, tag.ID); err != nil {
			t.Fatalf("AddPostTag(%q): %v", name, err)
		}
	}

	tags, err := q.GetTagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetTagsForPost: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("got %d tags, want 3", len(tags))
	}
	for i, name := range names {
		if tags[i].Name != name {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, name)
		}
	}

	// Duplicate association is a no-op
	tag, _ := q.GetTagBySlug(ctx, "zebra")
	if err := q.AddPostTag(ctx, post.ID, tag.ID); err != nil {
		t.Fatalf("duplicate AddPostTag: %v", err)
	}
	tags, _ = q.GetTagsForPost(ctx, post.ID)
	if len(tags) != 3 {
		t.Errorf("duplicate association changed count to %d", len(tags))
	}

	// Categories follow the same contract.
	for _, name := range names {
		cat, err := q.CreateCategory(ctx, name, name)
		if err != nil {
			t.Fatalf("CreateCategory(%q): %v", name, err)
		}
		if err := q.AddPostCategory(ctx, post.ID, cat.ID); err != nil {
			t.Fatalf("AddPostCategory(%q): %v", name, err)
		}
	}

	categories, err := q.GetCategoriesForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetCategoriesForPost: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(categories))
	}
	for i, name := range names {
		if categories[i].Name != name {
			t.Errorf("categories[%d] = %q, want %q", i, categories[i].Name, name)
		}
	}

	cat, err := q.GetCategoryBySlug(ctx, "zebra")
	if err != nil {
		t.Fatalf("GetCategoryBySlug: %v", err)
	}
	if err := q.AddPostCategory(ctx, post.ID, cat.ID); err != nil {
		t.Fatalf("duplicate AddPostCategory: %v", err)
	}
	categories, _ = q.GetCategoriesForPost(ctx, post.ID)
	if len(categories) != 3 {
		t.Errorf("duplicate association changed count to %d", len(categories))
	}
}

func TestCommentsOrderedAscending(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := newTestPost(t, q, "p", "", model.PostStatusPublish, model.PostTypePost, time.Now().UTC())

	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := q.CreateComment(ctx, CreateCommentParams{
			PostID:     post.ID,
			AuthorName: "c",
			Body:       "body",
			Approved:   model.CommentApproved,
			CreatedAt:  base.Add(offset),
		})
		if err != nil {
			t.Fatalf("CreateComment %d: %v", i, err)
		}
	}

	comments, err := q.ListComments(ctx, 50, 0)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].CreatedAt.Before(comments[i-1].CreatedAt) {
			t.Errorf("comments out of order at %d", i)
		}
	}

	count, err := q.CountComments(ctx)
	if err != nil {
		t.Fatalf("CountComments: %v", err)
	}
	if count != 3 {
		t.Errorf("CountComments = %d, want 3", count)
	}
}

func TestAttachmentLifecycle(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a, err := q.CreateAttachment(ctx, CreateAttachmentParams{
		MimeType:  model.MimeTypePNG,
		Title:     "img",
		FilePath:  "/tmp/uploads/2020/01/img.png",
		URL:       "http://example.com/uploads/2020/01/img.png",
		Width:     640,
		Height:    480,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	if a.ParentPostID.Valid {
		t.Error("fresh attachment must have no parent")
	}
	if a.Width != 640 || a.Height != 480 {
		t.Errorf("dimensions = %dx%d", a.Width, a.Height)
	}

	post := newTestPost(t, q, "p", "", model.PostStatusPublish, model.PostTypePost, now)
	if err := q.SetAttachmentParent(ctx, a.ID, post.ID); err != nil {
		t.Fatalf("SetAttachmentParent: %v", err)
	}
	a, _ = q.GetAttachmentByID(ctx, a.ID)
	if !a.ParentPostID.Valid || a.ParentPostID.Int64 != post.ID {
		t.Errorf("parent = %+v, want %d", a.ParentPostID, post.ID)
	}

	// Variant upsert by (attachment, name)
	for _, width := range []int64{150, 160} {
		err := q.CreateAttachmentVariant(ctx, CreateAttachmentVariantParams{
			AttachmentID: a.ID,
			Name:         model.VariantThumbnail,
			File:         "img-150x150.png",
			Width:        width,
			Height:       150,
			CreatedAt:    now,
		})
		if err != nil {
			t.Fatalf("CreateAttachmentVariant: %v", err)
		}
	}
	variants, err := q.ListAttachmentVariants(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListAttachmentVariants: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want 1 after upsert", len(variants))
	}
	if variants[0].Width != 160 {
		t.Errorf("variant width = %d, want replacement 160", variants[0].Width)
	}
}

func TestUsersPaging(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, login := range []string{"u1", "u2", "u3"} {
		_, err := q.CreateUser(ctx, CreateUserParams{
			Login:       login,
			Email:       login + "@example.com",
			DisplayName: login,
			Roles:       "[]",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			t.Fatalf("CreateUser(%q): %v", login, err)
		}
	}

	count, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 3 {
		t.Errorf("CountUsers = %d", count)
	}

	users, err := q.ListUsers(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Login != "u3" {
		t.Errorf("second page = %+v", users)
	}
}
