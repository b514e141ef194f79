// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions.
package util

import "database/sql"

// NullInt64Positive wraps val in a sql.NullInt64 that is only valid when
// val is greater than zero. Zero is how absent references arrive on the
// wire, so it maps to NULL rather than an ID of 0.
func NullInt64Positive(val int64) sql.NullInt64 {
	if val > 0 {
		return sql.NullInt64{Int64: val, Valid: true}
	}
	return sql.NullInt64{}
}

// PtrFromNullInt64 converts a sql.NullInt64 into a pointer, nil when invalid.
func PtrFromNullInt64(n sql.NullInt64) *int64 {
	if n.Valid {
		v := n.Int64
		return &v
	}
	return nil
}
