// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the identity database.
// Repositories build SQL from these values instead of repeating literals.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table         string
	ID            string
	Email         string
	Name          string
	Image         string
	Password      string
	Role          string
	EmailVerified string
	LastLoginAt   string
	CreatedAt     string
	UpdatedAt     string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Email:         "email",
	Name:          "name",
	Image:         "image",
	Password:      "passwordhash",
	Role:          "role",
	EmailVerified: "emailverified",
	LastLoginAt:   "lastloginat",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Name, t.Image, t.Password, t.Role,
		t.EmailVerified, t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}

// Select returns the comma separated column list.
func (t UserAccountTable) Select() string {
	return strings.Join(t.Columns(), ", ")
}
