// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/bridge-go/internal/identity"
	"github.com/olegiv/bridge-go/internal/ingest"
	"github.com/olegiv/bridge-go/internal/model"
	"github.com/olegiv/bridge-go/internal/store"
	"github.com/olegiv/bridge-go/internal/util"
)

// wireTimeLayout is the datetime format import payloads carry.
const wireTimeLayout = "2006-01-02 15:04:05"

// maxUploadMemory caps how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxUploadMemory = 32 << 20

// flexInt64 decodes a JSON number or a numeric string. Source systems
// export IDs both ways.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

// approval decodes the tri-state approval flag, which arrives as a
// string ("1", "0", "spam") or a bare number.
type approval string

func (a *approval) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch s {
	case "", "null", "0", "false":
		*a = approval(model.CommentPending)
	case "1", "true":
		*a = approval(model.CommentApproved)
	default:
		*a = approval(s)
	}
	return nil
}

// postPayload is the post block of an import/post request.
type postPayload struct {
	ID       flexInt64        `json:"ID"`
	Date     string           `json:"post_date"`
	Content  string           `json:"post_content"`
	Title    string           `json:"post_title"`
	Excerpt  string           `json:"post_excerpt"`
	Status   string           `json:"post_status"`
	Type     string           `json:"post_type"`
	Name     string           `json:"post_name"`
	Modified string           `json:"post_modified"`
	Meta     map[string]any   `json:"meta_input"`
	AuthorID flexInt64        `json:"post_author_id"`
	Author   *identity.Author `json:"post_author"`
	Tags     []string         `json:"tags"`
}

// commentPayload is the comment block of an import/comment request.
type commentPayload struct {
	PostID      flexInt64 `json:"post_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	AuthorURL   string    `json:"author_url"`
	Comment     string    `json:"comment"`
	Type        string    `json:"type"`
	Parent      flexInt64 `json:"parent"`
	Datetime    string    `json:"datetime"`
	Approved    approval  `json:"approved"`
}

// postImportResponse is the envelope of import/post. user_id is null
// when the post landed without an author.
type postImportResponse struct {
	Status string   `json:"status"`
	ID     int64    `json:"id"`
	UserID *int64   `json:"user_id"`
	Errors []string `json:"errors"`
}

// commentImportResponse is the envelope of import/comment.
type commentImportResponse struct {
	Status string   `json:"status"`
	ID     int64    `json:"id"`
	Errors []string `json:"errors"`
}

// importResponse is the generic envelope of import requests that carry
// no payload to act on, and of import/attachment.
type importResponse struct {
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// decodeImport reads and unmarshals an import body into dst. A body
// that does not decode terminates the request with 400 and an empty
// body; the return value reports whether processing may continue.
func (h *Handler) decodeImport(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, dst)
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

// parseWireTime parses a payload datetime, falling back to now.
func parseWireTime(s string) time.Time {
	if t, err := time.Parse(wireTimeLayout, s); err == nil {
		return t
	}
	return time.Now().UTC()
}

// ImportPost creates or updates a post from an import payload. Author
// creation, taxonomy and metadata failures are collected as non-fatal
// errors; the post itself still lands.
func (h *Handler) ImportPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var envelope struct {
		Post *postPayload `json:"post"`
	}
	if !h.decodeImport(w, r, &envelope) {
		return
	}
	if envelope.Post == nil {
		h.writeJSON(w, importResponse{Status: "ok", Errors: []string{}})
		return
	}

	p := envelope.Post
	errs := []string{}

	resolver := identity.NewResolver(h.db)
	authorID, err := resolver.Resolve(ctx, int64(p.AuthorID), p.Author)
	if err != nil {
		h.logger.Warn("author resolution failed", "category", model.EventCategoryImport, "error", err)
		errs = append(errs, err.Error())
		authorID = 0
	}

	slug := p.Name
	if slug == "" {
		slug = util.Slugify(p.Title)
	}

	postID, err := h.upsertPost(ctx, p, slug, authorID)
	if err != nil {
		h.logger.Warn("post import failed", "category", model.EventCategoryImport,
			"title", p.Title, "error", err)
		errs = append(errs, err.Error())
	}

	if postID != 0 {
		errs = append(errs, h.storePostMeta(ctx, postID, p.Meta)...)
		errs = append(errs, h.storePostTags(ctx, postID, p.Tags)...)
	}

	resp := postImportResponse{Status: "ok", ID: postID, Errors: errs}
	if authorID > 0 {
		resp.UserID = &authorID
	}
	h.writeJSON(w, resp)
}

// upsertPost updates the post named by the payload's ID when it already
// exists, and creates a fresh one otherwise.
func (h *Handler) upsertPost(ctx context.Context, p *postPayload, slug string, authorID int64) (int64, error) {
	created := parseWireTime(p.Date)
	modified := parseWireTime(p.Modified)

	if id := int64(p.ID); id > 0 {
		if _, err := h.queries.GetPostByID(ctx, id); err == nil {
			err := h.queries.UpdatePost(ctx, store.UpdatePostParams{
				ID:            id,
				Title:         p.Title,
				Body:          p.Content,
				Excerpt:       p.Excerpt,
				Status:        p.Status,
				Type:          p.Type,
				Slug:          slug,
				CommentStatus: model.PolicyOpen,
				PingStatus:    model.PolicyOpen,
				AuthorID:      util.NullInt64Positive(authorID),
				ModifiedAt:    modified,
			})
			if err != nil {
				return 0, err
			}
			return id, nil
		}
	}

	// The guid embeds the generated ID, so the row and its guid are
	// written in one transaction rather than leaving a guid-less post
	// behind on failure.
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)
	post, err := qtx.CreatePost(ctx, store.CreatePostParams{
		Title:         p.Title,
		Body:          p.Content,
		Excerpt:       p.Excerpt,
		Status:        p.Status,
		Type:          p.Type,
		Slug:          slug,
		CommentStatus: model.PolicyOpen,
		PingStatus:    model.PolicyOpen,
		AuthorID:      util.NullInt64Positive(authorID),
		CreatedAt:     created,
		ModifiedAt:    modified,
	})
	if err != nil {
		return 0, err
	}

	guid := h.siteURL + "/?p=" + strconv.FormatInt(post.ID, 10)
	if err := qtx.SetPostGUID(ctx, post.ID, guid); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return post.ID, nil
}

// storePostMeta persists the payload's metadata bag. Non-string values
// are stored as their JSON encoding.
func (h *Handler) storePostMeta(ctx context.Context, postID int64, meta map[string]any) []string {
	errs := []string{}
	for key, value := range meta {
		str, ok := value.(string)
		if !ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				errs = append(errs, "meta "+key+": "+err.Error())
				continue
			}
			str = string(encoded)
		}
		if err := h.queries.SetPostMeta(ctx, postID, key, str); err != nil {
			errs = append(errs, "meta "+key+": "+err.Error())
		}
	}
	return errs
}

// storePostTags creates missing tags and associates them with the post
// in payload order.
func (h *Handler) storePostTags(ctx context.Context, postID int64, tags []string) []string {
	errs := []string{}
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := util.Slugify(name)
		tag, err := h.queries.GetTagBySlug(ctx, slug)
		if err != nil {
			tag, err = h.queries.CreateTag(ctx, name, slug)
		}
		if err != nil {
			errs = append(errs, "tag "+name+": "+err.Error())
			continue
		}
		if err := h.queries.AddPostTag(ctx, postID, tag.ID); err != nil {
			errs = append(errs, "tag "+name+": "+err.Error())
		}
	}
	return errs
}

// ImportComment creates a comment from an import payload.
func (h *Handler) ImportComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var envelope struct {
		Comment *commentPayload `json:"comment"`
	}
	if !h.decodeImport(w, r, &envelope) {
		return
	}
	if envelope.Comment == nil {
		h.writeJSON(w, importResponse{Status: "ok", Errors: []string{}})
		return
	}

	c := envelope.Comment
	errs := []string{}

	approved := string(c.Approved)
	if approved == "" {
		approved = model.CommentPending
	}

	var commentID int64
	comment, err := h.queries.CreateComment(ctx, store.CreateCommentParams{
		PostID:      int64(c.PostID),
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		AuthorURL:   c.AuthorURL,
		Body:        c.Comment,
		Type:        c.Type,
		ParentID:    util.NullInt64Positive(int64(c.Parent)),
		Approved:    approved,
		CreatedAt:   parseWireTime(c.Datetime),
	})
	if err != nil {
		h.logger.Warn("comment import failed", "category", model.EventCategoryImport,
			"post", int64(c.PostID), "error", err)
		errs = append(errs, err.Error())
	} else {
		commentID = comment.ID
	}

	h.writeJSON(w, commentImportResponse{Status: "ok", ID: commentID, Errors: errs})
}

// ImportAttachment ingests one uploaded file. The file travels in
// multipart field "0" alongside path, url and path_absolute form
// fields. Requests without a usable file are acknowledged as a no-op.
func (h *Handler) ImportAttachment(w http.ResponseWriter, r *http.Request) {
	errs := []string{}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeJSON(w, importResponse{Status: "ok", Errors: errs})
		return
	}

	var file io.Reader
	if f, _, err := r.FormFile("0"); err == nil {
		defer func() { _ = f.Close() }()
		file = f
	}

	res := h.ingestor.Ingest(r.Context(), file, ingest.Payload{
		Path:         r.FormValue("path"),
		URL:          r.FormValue("url"),
		PathAbsolute: r.FormValue("path_absolute"),
	})
	errs = append(errs, res.Errors...)

	h.writeJSON(w, importResponse{Status: "ok", Errors: errs})
}
