// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/olegiv/bridge-go/internal/mapper"
	"github.com/olegiv/bridge-go/internal/version"
)

// siteInfo is the index route payload a migration client reads first to
// discover the site it is talking to.
type siteInfo struct {
	URL           string `json:"url"`
	Self          string `json:"self"`
	Version       string `json:"version"`
	Charset       string `json:"charset"`
	PingbackURL   string `json:"pingback_url"`
	RSSURL        string `json:"rss_url"`
	RSS2URL       string `json:"rss2_url"`
	BridgeVersion string `json:"bridge_version"`
}

// Info serves the index route.
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, siteInfo{
		URL:           h.siteURL,
		Self:          h.siteURL + "/bridge-api/",
		Version:       version.Bridge,
		Charset:       "UTF-8",
		PingbackURL:   h.siteURL + "/xmlrpc",
		RSSURL:        h.siteURL + "/feed",
		RSS2URL:       h.siteURL + "/feed/rss2",
		BridgeVersion: version.Bridge,
	})
}

// pageParam returns the 1-indexed page number of a listing request.
// Absent, unparseable or non-positive values coerce to page 1.
func pageParam(r *http.Request) int64 {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page <= 0 {
		page = 1
	}
	return page
}

// writeListingHeaders emits the pagination headers. They must land
// before the body is written.
func writeListingHeaders(w http.ResponseWriter, count, perPage int64) {
	pages := count / perPage
	if count%perPage != 0 {
		pages++
	}
	w.Header().Set(HeaderCount, strconv.FormatInt(count, 10))
	w.Header().Set(HeaderPages, strconv.FormatInt(pages, 10))
}

// ListPosts serves published posts and pages, 10 per page.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)

	count, err := h.queries.CountPublishedPosts(ctx)
	if err != nil {
		h.logger.Error("failed to count posts", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	posts, err := h.queries.ListPublishedPosts(ctx, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		h.logger.Error("failed to list posts", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	results := make([]mapper.PostResource, 0, len(posts))
	for _, p := range posts {
		res, err := h.mapper.Post(ctx, p)
		if err != nil {
			h.logger.Error("failed to map post", "post", p.ID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		results = append(results, res)
	}

	writeListingHeaders(w, count, PostsPerPage)
	h.writeJSON(w, results)
}

// ListUsers serves users, 50 per page.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)

	count, err := h.queries.CountUsers(ctx)
	if err != nil {
		h.logger.Error("failed to count users", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	users, err := h.queries.ListUsers(ctx, UsersPerPage, (page-1)*UsersPerPage)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	results := make([]mapper.UserResource, 0, len(users))
	for _, u := range users {
		results = append(results, h.mapper.User(u))
	}

	writeListingHeaders(w, count, UsersPerPage)
	h.writeJSON(w, results)
}

// ListComments serves comments ordered by creation time ascending,
// 50 per page.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)

	count, err := h.queries.CountComments(ctx)
	if err != nil {
		h.logger.Error("failed to count comments", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	comments, err := h.queries.ListComments(ctx, UsersPerPage, (page-1)*UsersPerPage)
	if err != nil {
		h.logger.Error("failed to list comments", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	results := make([]mapper.CommentResource, 0, len(comments))
	for _, c := range comments {
		results = append(results, h.mapper.Comment(c))
	}

	writeListingHeaders(w, count, UsersPerPage)
	h.writeJSON(w, results)
}

// ListMedia serves attachment records, 50 per page.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)

	count, err := h.queries.CountAttachments(ctx)
	if err != nil {
		h.logger.Error("failed to count attachments", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	attachments, err := h.queries.ListAttachments(ctx, UsersPerPage, (page-1)*UsersPerPage)
	if err != nil {
		h.logger.Error("failed to list attachments", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	results := make([]mapper.MediaResource, 0, len(attachments))
	for _, a := range attachments {
		res, err := h.mapper.Media(ctx, a)
		if err != nil {
			h.logger.Error("failed to map attachment", "attachment", a.ID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		results = append(results, res)
	}

	writeListingHeaders(w, count, UsersPerPage)
	h.writeJSON(w, results)
}
