// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

// TokenVerifier verifies bearer access tokens.
//
// Defining it here decouples the middleware from [sec.TokenService] so tests
// can inject fakes.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// SessionResolver resolves a raw session cookie value into claims.
// It returns a NOT_FOUND or UNAUTHORIZED [apperr.AppError] for unknown,
// revoked or expired sessions.
type SessionResolver interface {
	ResolveSession(context context.Context, token string) (*sec.AuthClaims, error)
}

// Authenticate identifies the caller from a bearer token or the session cookie.
//
// # Flow
//  1. 'Authorization: Bearer <token>' wins when present; a bad token is a 401.
//  2. Otherwise the session cookie is resolved. A stale cookie leaves the
//     request anonymous instead of failing it, so sign-in pages still load.
//  3. The resolved [*sec.AuthClaims] are injected into the request context.
//
// The session lookup is memoised per request through [ctxutil.SessionOnce].
func Authenticate(verifier TokenVerifier, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithSessionMemo(request.Context())

			// ── 1. Bearer Token ───────────────────────────────────────────────
			if authHeader := request.Header.Get("Authorization"); authHeader != "" {
				scheme, token, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				claims, err := verifier.VerifyToken(token)
				if err != nil {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}

				next.ServeHTTP(writer, request.WithContext(withPrincipal(ctx, claims)))
				return
			}

			// ── 2. Session Cookie ─────────────────────────────────────────────
			token := requestutil.SessionToken(request)
			if token == "" || sessions == nil {
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			claims, err := ctxutil.SessionOnce(ctx, func() (*sec.AuthClaims, error) {
				return sessions.ResolveSession(ctx, token)
			})
			if err != nil {
				if !apperr.IsNotFound(err) && !apperr.IsCode(err, apperr.CodeUnauthorized) {
					respond.Error(writer, request, err)
					return
				}
				ctxutil.GetLogger(ctx).DebugContext(ctx, "session_cookie_ignored", slog.String("reason", err.Error()))
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(withPrincipal(ctx, claims)))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
// It implies [RequireAuth].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// withPrincipal stores claims and tags the request logger with the user.
func withPrincipal(ctx context.Context, claims *sec.AuthClaims) context.Context {
	logger := ctxutil.GetLogger(ctx).With(slog.String("user_id", claims.UserID))
	return ctxutil.WithAuthUser(ctxutil.WithLogger(ctx, logger), claims)
}
