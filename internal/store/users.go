// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/bridge-go/internal/model"
)

const userColumns = `id, login, email, password_hash, display_name, first_name,
	last_name, description, roles, facebook, twitter, googleplus, created_at, updated_at`

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Login        string
	Email        string
	PasswordHash string
	DisplayName  string
	FirstName    string
	LastName     string
	Description  string
	Roles        string
	Facebook     string
	Twitter      string
	GooglePlus   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a user and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (login, email, password_hash, display_name, first_name,
			last_name, description, roles, facebook, twitter, googleplus, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Login, arg.Email, arg.PasswordHash, arg.DisplayName, arg.FirstName,
		arg.LastName, arg.Description, arg.Roles, arg.Facebook, arg.Twitter,
		arg.GooglePlus, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns a page of users ordered by ID.
func (q *Queries) ListUsers(ctx context.Context, limit, offset int64) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.FirstName, &u.LastName, &u.Description, &u.Roles, &u.Facebook,
		&u.Twitter, &u.GooglePlus, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
