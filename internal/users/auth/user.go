// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity and session management layer of Yomira ID.

It owns credentials, sessions and the single-use tokens that drive the
credential-change confirmation flow:

	requested → link dispatched → confirmed (applied) | expired/invalid (rejected)

Password reset, email verification and email change all follow it. Tokens are
minted here, mailed as links, and consumed at most once.

# Architecture

  - Service: Orchestrates the use cases (sign-up, sign-in, reset, change).
  - Repository: Postgres for accounts, sessions and linked identities;
    Redis for single-use tokens and the session read-through cache.
  - Handler: The JSON API under /api/v1/auth.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	Image         *string      `json:"image"`
	PasswordHash  string       `json:"-"` // Explicitly omitted from JSON for security.
	Role          sec.UserRole `json:"role"`
	EmailVerified bool         `json:"email_verified"`
	LastLoginAt   *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
// Accounts created through a social provider start without one.
func (user *User) HasPassword() bool {
	return user.PasswordHash != ""
}

// Session is a server-issued sign-in. Only the hash of its token is stored.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TokenHash  string     `json:"-"`
	UserAgent  string     `json:"user_agent"`
	IPAddress  string     `json:"ip_address"`
	Persistent bool       `json:"persistent"`
	IsRevoked  bool       `json:"is_revoked"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Active reports whether the session can still authenticate requests at now.
func (session *Session) Active(now time.Time) bool {
	return !session.IsRevoked && now.Before(session.ExpiresAt)
}

// Identity links an external provider account to a [User].
type Identity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SocialProfile is what a provider tells us about the person signing in.
type SocialProfile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Image         string
}

// emailChange is the payload bound to an email-change confirmation token.
type emailChange struct {
	UserID      string `json:"user_id"`
	NewEmail    string `json:"new_email"`
	CallbackURL string `json:"callback_url"`
}

// NormalizeEmail lowercases and trims an address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Field Identifiers

// Field names shared by validation errors and JSON payloads.
const (
	FieldName                = "name"
	FieldEmail               = "email"
	FieldImage               = "image"
	FieldPassword            = "password"
	FieldRememberMe          = "remember_me"
	FieldToken               = "token"
	FieldCurrentPassword     = "current_password"
	FieldNewPassword         = "new_password"
	FieldNewEmail            = "new_email"
	FieldCallbackURL         = "callback_url"
	FieldRedirectTo          = "redirect_to"
	FieldRevokeOtherSessions = "revoke_other_sessions"
)
