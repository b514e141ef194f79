// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package identity resolves post authors during an import run. A payload
// either names an existing user by ID, which is trusted verbatim, or
// carries an author profile that is deduplicated by fingerprint so the
// same person arriving in many payloads maps to one local account.
package identity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/bridge-go/internal/model"
	"github.com/olegiv/bridge-go/internal/store"
)

// Author is the author profile carried inside an import payload.
type Author struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	FirstName   string `json:"firstname"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Role        string `json:"role"`
	Facebook    string `json:"facebook"`
	Twitter     string `json:"twitter"`
	GooglePlus  string `json:"googleplus"`
}

// Resolver maps import payload authors to local user IDs. The fingerprint
// cache is scoped to one resolver, so callers create a fresh one per
// request and discard it afterwards.
type Resolver struct {
	queries *store.Queries
	seen    map[string]int64
}

// NewResolver creates a Resolver backed by the given database.
func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{
		queries: store.New(db),
		seen:    make(map[string]int64),
	}
}

// Resolve returns the local user ID for a payload. An explicit ID wins
// and is passed through without lookup. Otherwise the author profile is
// fingerprinted: a fingerprint seen earlier in this run reuses the same
// user, a new one creates an account. A profile missing either the full
// name or the email is not enough to identify a person, so the post
// imports with no author.
func (r *Resolver) Resolve(ctx context.Context, explicitID int64, author *Author) (int64, error) {
	if explicitID > 0 {
		return explicitID, nil
	}
	if author == nil || author.Email == "" || author.FullName == "" {
		return 0, nil
	}

	fp := model.AuthorFingerprint(author.Email, author.FullName)
	if id, ok := r.seen[fp]; ok {
		return id, nil
	}

	user, err := r.createUser(ctx, author)
	if err != nil {
		return 0, fmt.Errorf("create author %q: %w", author.FullName, err)
	}
	r.seen[fp] = user.ID
	return user.ID, nil
}

// createUser creates a local account for an imported author. The password
// is random; migrated users are expected to reset it.
func (r *Resolver) createUser(ctx context.Context, author *Author) (model.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate password hash: %w", err)
	}

	roles := "[]"
	if author.Role != "" {
		roles = model.RolesToJSON([]string{author.Role})
	}

	now := time.Now().UTC()
	return r.queries.CreateUser(ctx, store.CreateUserParams{
		Login:        author.FullName,
		Email:        author.Email,
		PasswordHash: string(passwordHash),
		DisplayName:  author.FullName,
		FirstName:    author.FirstName,
		LastName:     author.Name,
		Description:  author.Description,
		Roles:        roles,
		Facebook:     author.Facebook,
		Twitter:      author.Twitter,
		GooglePlus:   author.GooglePlus,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
