// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/bridge-go/internal/model"
	"github.com/olegiv/bridge-go/internal/store"
)

// accessDeniedBody is the exact denial body of the wire protocol.
// Clients match it literally, so it is written as-is rather than
// through the JSON encoder.
const accessDeniedBody = `{"error": "Access denied"}`

// KeySource yields the currently valid API key. The bridge holds one
// process-wide key; rotating it invalidates the prior value immediately.
type KeySource interface {
	Current(ctx context.Context) (string, error)
}

// ConfigKeySource reads the API key from the configuration table.
type ConfigKeySource struct {
	queries *store.Queries
}

// NewConfigKeySource creates a KeySource backed by the given database.
func NewConfigKeySource(db *sql.DB) *ConfigKeySource {
	return &ConfigKeySource{queries: store.New(db)}
}

// Current returns the stored API key. An absent key returns empty with
// no error; the auth middleware treats an empty stored key as
// unauthorizable.
func (s *ConfigKeySource) Current(ctx context.Context) (string, error) {
	key, err := s.queries.GetConfig(ctx, store.ConfigKeyAPIKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return key, err
}

// Rotate generates a fresh API key, stores it and returns it. The old
// key stops validating as soon as the write lands.
func (s *ConfigKeySource) Rotate(ctx context.Context) (string, error) {
	key, err := model.GenerateAPIKey()
	if err != nil {
		return "", err
	}
	if err := s.queries.SetConfig(ctx, store.ConfigKeyAPIKey, key); err != nil {
		return "", err
	}
	return key, nil
}

// Bootstrap returns the stored API key, generating and storing one if
// none exists yet.
func (s *ConfigKeySource) Bootstrap(ctx context.Context) (key string, created bool, err error) {
	key, err = s.Current(ctx)
	if err != nil {
		return "", false, err
	}
	if key != "" {
		return key, false, nil
	}
	key, err = s.Rotate(ctx)
	return key, true, err
}

// RequireAPIKey creates middleware that gates every request on the
// api_key query parameter. A missing parameter, an unset stored key or
// a mismatch all yield the same denial body before any resource access.
func RequireAPIKey(keys KeySource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.URL.Query().Get("api_key")

			stored, err := keys.Current(r.Context())
			if err != nil {
				logger.Error("failed to load API key", "category", model.EventCategoryAuth, "error", err)
				denyAccess(w)
				return
			}

			if supplied == "" || stored == "" ||
				subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) != 1 {
				logger.Warn("access denied", "category", model.EventCategoryAuth,
					"path", r.URL.Path, "ip", clientIP(r))
				denyAccess(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(accessDeniedBody))
}
