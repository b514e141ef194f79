// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Post, User, Comment and Attachment structures.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// User represents a content author.
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	DisplayName  string    `json:"display_name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Description  string    `json:"description"`
	Roles        string    `json:"-"` // JSON array stored as string
	Facebook     string    `json:"facebook,omitempty"`
	Twitter      string    `json:"twitter,omitempty"`
	GooglePlus   string    `json:"googleplus,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleList parses the JSON roles string into a slice.
func (u *User) RoleList() []string {
	var roles []string
	if u.Roles == "" || u.Roles == "[]" {
		return roles
	}
	_ = json.Unmarshal([]byte(u.Roles), &roles)
	return roles
}

// JoinedRoles returns the user's roles as a comma-joined string,
// the form the wire format uses.
func (u *User) JoinedRoles() string {
	return strings.Join(u.RoleList(), ", ")
}

// RolesToJSON converts a slice of role labels to a JSON string for storage.
func RolesToJSON(roles []string) string {
	if len(roles) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(roles)
	return string(data)
}
