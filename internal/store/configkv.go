// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Well-known config keys.
const (
	ConfigKeyAPIKey           = "api_key"
	ConfigKeyInstalledVersion = "installed_version"
)

// GetConfig returns the value stored under key. sql.ErrNoRows when unset.
func (q *Queries) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	return value, err
}

// SetConfig stores value under key, replacing any prior value.
func (q *Queries) SetConfig(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	return err
}

// DeleteConfig removes the value stored under key.
func (q *Queries) DeleteConfig(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM config WHERE key = ?`, key)
	return err
}
