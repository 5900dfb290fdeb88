// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// UserIdentityTable represents the 'users.identity' table (linked social accounts)
type UserIdentityTable struct {
	Table     string
	ID        string
	UserID    string
	Provider  string
	Subject   string
	Email     string
	CreatedAt string
}

// UserIdentity is the schema definition for users.identity
var UserIdentity = UserIdentityTable{
	Table:     "users.identity",
	ID:        "id",
	UserID:    "userid",
	Provider:  "provider",
	Subject:   "subject",
	Email:     "email",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t UserIdentityTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Provider, t.Subject, t.Email, t.CreatedAt}
}

// Select returns the comma separated column list.
func (t UserIdentityTable) Select() string {
	return strings.Join(t.Columns(), ", ")
}
