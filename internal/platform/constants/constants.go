// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Web Routes: Paths the route guards redirect to.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-id"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// ClientTimeout bounds a single call made by the auth client SDK.
	ClientTimeout = 10 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "id.yomira.app"

	// SessionCookieName is the cookie that carries the opaque session token,
	// shared by the JSON API and the web forms.
	SessionCookieName = "yomira_session"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// OAuthStateCookieName holds the social sign-in state parameter.
	OAuthStateCookieName = "yomira_oauth_state"

	// OAuthVerifierCookieName holds the PKCE code verifier.
	OAuthVerifierCookieName = "yomira_oauth_pkce"

	// OAuthCallbackCookieName remembers where to land after social sign-in.
	OAuthCallbackCookieName = "yomira_oauth_callback"

	// OAuthCookieTTL bounds the social sign-in handshake.
	OAuthCookieTTL = 5 * time.Minute

	// SessionPurgeInterval is how often expired session rows are deleted.
	SessionPurgeInterval = 1 * time.Hour
)

// # Web Routes

const (
	RouteDashboard      = "/dashboard"
	RouteSignIn         = "/sign-in"
	RouteSignUp         = "/sign-up"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteProfile        = "/profile"
	RouteEmailVerified  = "/email-verified"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken       = "auth:reset_token:"
	RedisPrefixVerifyToken      = "auth:verify_token:"
	RedisPrefixEmailChangeToken = "auth:email_change_token:"
	RedisPrefixSession          = "auth:session:"
)
