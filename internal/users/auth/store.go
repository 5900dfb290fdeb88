// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr NOT_FOUND or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given (normalized) email.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr NOT_FOUND or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account.

		Returns:
		  - error: apperr CONFLICT when the email is taken, or persistence failures
	*/
	Create(context context.Context, user *User) error

	// UpdateProfile replaces the display name and avatar URL.
	UpdateProfile(context context.Context, userID, name string, image *string) error

	// UpdatePassword replaces only the user's password hash.
	UpdatePassword(context context.Context, userID, newHash string) error

	// UpdateEmail replaces the address and marks it unverified.
	UpdateEmail(context context.Context, userID, email string) error

	// MarkVerified flags the current address as verified.
	MarkVerified(context context.Context, userID string) error

	// TouchLastLogin records a successful sign-in.
	TouchLastLogin(context context.Context, userID string, at time.Time) error
}

// # Session Data Access

// SessionRepository defines the data access contract for sign-in sessions.
type SessionRepository interface {

	// Create persists a new session.
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the given token hash,
		whether or not it is still active. Callers check [Session.Active].

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr NOT_FOUND or database failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// ListActive returns the user's unrevoked, unexpired sessions, newest first.
	ListActive(context context.Context, userID string) ([]*Session, error)

	/*
		Revoke invalidates one session owned by userID.

		Returns:
		  - string: The revoked session's token hash (for cache eviction)
		  - error: apperr NOT_FOUND when no such active session belongs to the user
	*/
	Revoke(context context.Context, userID, sessionID string) (string, error)

	// RevokeAll revokes every active session of the user and returns their token hashes.
	RevokeAll(context context.Context, userID string) ([]string, error)

	// RevokeOthers revokes every active session except keepSessionID.
	RevokeOthers(context context.Context, userID, keepSessionID string) ([]string, error)

	// DeleteExpired physically removes sessions whose ExpiresAt is in the past.
	DeleteExpired(context context.Context) (int64, error)
}

// # Identity Data Access

// IdentityRepository stores links between users and social provider accounts.
type IdentityRepository interface {
	// FindByProviderSubject returns the link for a provider account, or NOT_FOUND.
	FindByProviderSubject(context context.Context, provider, subject string) (*Identity, error)

	// Create persists a new link.
	Create(context context.Context, identity *Identity) error
}

// # Volatile Data Access

// TokenRepository stores single-use tokens with a TTL.
type TokenRepository interface {

	/*
		Set stores value under token for ttl.

		Parameters:
		  - context: context.Context
		  - token: string (raw token; implementations store its hash)
		  - value: string
		  - ttl: time.Duration
	*/
	Set(context context.Context, token, value string, ttl time.Duration) error

	/*
		Consume atomically reads and deletes the value under token.

		Returns:
		  - string: The stored value
		  - error: apperr INVALID_TOKEN when unknown, already used or expired
	*/
	Consume(context context.Context, token string) (string, error)
}

// CachedSession is the denormalized view kept in the session cache.
type CachedSession struct {
	SessionID string    `json:"sid"`
	UserID    string    `json:"uid"`
	Email     string    `json:"eml"`
	Role      string    `json:"rol"`
	ExpiresAt time.Time `json:"exp"`
}

// SessionCache is a read-through cache in front of [SessionRepository].
type SessionCache interface {
	// Get returns (nil, nil) on a miss.
	Get(context context.Context, tokenHash string) (*CachedSession, error)
	Set(context context.Context, tokenHash string, session *CachedSession, ttl time.Duration) error
	Delete(context context.Context, tokenHashes ...string) error
}
