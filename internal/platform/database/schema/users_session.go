// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table      string
	ID         string
	UserID     string
	TokenHash  string
	IPAddress  string
	UserAgent  string
	Persistent string
	IsRevoked  string
	ExpiresAt  string
	RevokedAt  string
	CreatedAt  string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:      "users.session",
	ID:         "id",
	UserID:     "userid",
	TokenHash:  "tokenhash",
	IPAddress:  "ipaddress",
	UserAgent:  "useragent",
	Persistent: "persistent",
	IsRevoked:  "isrevoked",
	ExpiresAt:  "expiresat",
	RevokedAt:  "revokedat",
	CreatedAt:  "createdat",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.TokenHash, t.IPAddress, t.UserAgent,
		t.Persistent, t.IsRevoked, t.ExpiresAt, t.RevokedAt, t.CreatedAt,
	}
}

// Select returns the comma separated column list.
func (t UserSessionTable) Select() string {
	return strings.Join(t.Columns(), ", ")
}
