// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/yomira-id/internal/platform/constants"
)

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 15 * time.Minute

	// PersistentSessionTTL applies when "remember me" is checked; the cookie
	// survives browser restarts for the same period.
	PersistentSessionTTL = 30 * 24 * time.Hour

	// BrowserSessionTTL applies otherwise; the cookie dies with the browser.
	BrowserSessionTTL = 24 * time.Hour

	// SessionCacheTTL bounds how long a resolved session stays in Redis.
	SessionCacheTTL = 5 * time.Minute

	// ResetTokenTTL is the duration a password reset token remains valid.
	ResetTokenTTL = 1 * time.Hour

	// VerificationTokenTTL is the duration an email verification token remains valid.
	VerificationTokenTTL = 24 * time.Hour

	// EmailChangeTokenTTL is the duration an email-change confirmation token remains valid.
	EmailChangeTokenTTL = 1 * time.Hour
)

// # Link Targets

const (
	// DefaultResetRedirect is the page that receives "?token=" for password resets.
	DefaultResetRedirect = constants.RouteResetPassword

	// DefaultEmailChangeCallback is where the confirmation link lands.
	DefaultEmailChangeCallback = constants.RouteEmailVerified

	// DefaultVerifyCallback is where the verification link lands.
	DefaultVerifyCallback = constants.RouteDashboard

	// APIPrefix is the mount point of [Handler.Routes].
	APIPrefix = "/api/v1/auth"
)

// PasswordFields maps each endpoint carrying a new password to its body field.
// The server-side password gate is configured from it.
var PasswordFields = map[string]string{
	APIPrefix + "/sign-up":         FieldPassword,
	APIPrefix + "/reset-password":  FieldNewPassword,
	APIPrefix + "/change-password": FieldNewPassword,
}
