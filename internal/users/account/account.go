// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management and session transparency.

It lets a signed-in user view and update their display name and avatar, and
review or revoke the devices signed into their account.

# Architecture

  - Entities: SessionInfo (DTO); the User entity belongs to the auth package.
  - Storage: Profile rows through [auth.UserRepository]; uploaded avatars in
    object storage through [AvatarStore].
  - Security: Session listing and revocation are delegated to the auth
    service so the session cache stays coherent.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # Domain Entities

// SessionInfo provides a safety-mapped view of an active user session.
// It omits sensitive token hashes for transport.
type SessionInfo struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"` // e.g. "Chrome on Windows"
	IPAddress  string    `json:"ip_address"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsCurrent  bool      `json:"is_current"` // True if this session belongs to the current request
}

// # Contracts

// ProfileRepository is the subset of [auth.UserRepository] this package needs.
type ProfileRepository interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	UpdateProfile(context context.Context, userID, name string, image *string) error
}

// SessionManager lists and revokes sessions. Implemented by [auth.Service].
type SessionManager interface {
	ListSessions(context context.Context, userID string) ([]*auth.Session, error)
	RevokeSession(context context.Context, userID, sessionID string) error
	RevokeOtherSessions(context context.Context, userID, currentSessionID string) error
}

// AvatarStore keeps uploaded profile pictures. Implemented by [storage.AvatarStore].
type AvatarStore interface {
	/*
		Put uploads data under key.

		Returns:
		  - string: The public URL of the stored object
		  - error: Upload failures
	*/
	Put(context context.Context, key, contentType string, data []byte) (string, error)

	// Delete removes the object stored under key.
	Delete(context context.Context, key string) error

	// KeyFromURL reports whether url points into this store and returns its key.
	KeyFromURL(url string) (string, bool)
}
