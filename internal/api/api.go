// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api implements the migration bridge HTTP surface: key-gated
// paginated listings over local content and the import endpoints a
// migration client pushes posts, comments and files into.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/bridge-go/internal/config"
	"github.com/olegiv/bridge-go/internal/ingest"
	"github.com/olegiv/bridge-go/internal/mapper"
	"github.com/olegiv/bridge-go/internal/render"
	"github.com/olegiv/bridge-go/internal/store"
)

// Listing page sizes. Posts carry the heaviest join chain, so their
// pages are smaller.
const (
	PostsPerPage = 10
	UsersPerPage = 50
)

// Pagination headers emitted on every listing response.
const (
	HeaderCount = "X-Bridge-Count"
	HeaderPages = "X-Bridge-Pages"
)

// Handler holds shared dependencies for all bridge API handlers.
type Handler struct {
	db       *sql.DB
	queries  *store.Queries
	logger   *slog.Logger
	mapper   *mapper.Mapper
	ingestor *ingest.Ingestor
	keys     KeySource
	siteURL  string
}

// NewHandler creates the bridge API handler.
func NewHandler(db *sql.DB, logger *slog.Logger, cfg *config.Config) (*Handler, error) {
	renderer, err := render.New(cfg.ContentFormat)
	if err != nil {
		return nil, err
	}
	return &Handler{
		db:       db,
		queries:  store.New(db),
		logger:   logger,
		mapper:   mapper.New(db, renderer, cfg.SiteURL),
		ingestor: ingest.New(db, logger, cfg.UploadsDir, cfg.UploadsURL),
		keys:     NewConfigKeySource(db),
		siteURL:  cfg.SiteURL,
	}, nil
}

// Routes builds the bridge API router. Authentication wraps every route,
// including the fallback, so unknown paths still require a valid key.
func (h *Handler) Routes(limiter *IPRateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	if limiter != nil {
		r.Use(limiter.Middleware())
	}
	r.Use(RequireAPIKey(h.keys, h.logger))

	r.Get("/", h.Info)
	r.Get("/posts", h.ListPosts)
	r.Get("/users", h.ListUsers)
	r.Get("/comments", h.ListComments)
	r.Get("/media", h.ListMedia)

	r.Post("/import/post", h.ImportPost)
	r.Post("/import/comment", h.ImportComment)
	r.Post("/import/attachment", h.ImportAttachment)

	r.NotFound(h.notProvided)
	r.MethodNotAllowed(h.notProvided)

	return r
}

// writeJSON writes a JSON response body with status 200.
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// notProvided answers any route the protocol does not define.
func (h *Handler) notProvided(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Not provided."))
}
