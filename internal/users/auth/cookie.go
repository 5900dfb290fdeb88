// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/yomira-id/internal/platform/constants"
)

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	// Secure marks the cookie HTTPS-only; off for local development.
	Secure bool

	// Domain lets the web forms and the API share the cookie.
	Domain string
}

// SetSessionCookie writes the session cookie for result.
//
// Persistent sessions get an explicit expiry; the others are browser-session
// cookies that disappear when the browser closes.
func SetSessionCookie(writer http.ResponseWriter, config CookieConfig, result *SessionResult) {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    result.Token,
		Path:     constants.SessionCookiePath,
		Domain:   config.Domain,
		Secure:   config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if result.Persistent {
		cookie.Expires = result.ExpiresAt
		cookie.MaxAge = int(time.Until(result.ExpiresAt).Seconds())
	}
	http.SetCookie(writer, cookie)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(writer http.ResponseWriter, config CookieConfig) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		Domain:   config.Domain,
		MaxAge:   -1,
		Secure:   config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
