// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Comment approval states. Stored as text so the spam marker fits the
// same column as the approved/pending flags.
const (
	CommentApproved = "1"
	CommentPending  = "0"
	CommentSpam     = "spam"
)

// Comment represents a reader comment on a post. The author fields are
// free text and do not have to match a registered User.
type Comment struct {
	ID          int64
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
