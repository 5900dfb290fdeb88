// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # Session Lookup

// loadSession prepares the per-request session cache and tags outgoing API
// calls with the visitor's browser details.
func loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := ctxutil.WithSessionMemo(request.Context())
		ctx = authclient.WithVisitor(ctx, request)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// currentSession returns the visitor's session, or nil when anonymous.
//
// The API is asked at most once per request however many guards and
// handlers call this.
func (handler *Handler) currentSession(request *http.Request) *auth.SessionView {
	token := requestutil.SessionToken(request)
	if token == "" {
		return nil
	}

	ctx := request.Context()
	view, err := ctxutil.SessionOnce(ctx, func() (*auth.SessionView, error) {
		return handler.client.GetSession(ctx, token)
	})
	if err != nil {
		if !apperr.IsCode(err, apperr.CodeUnauthorized) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "web_session_lookup_failed", slog.Any("error", err))
		}
		return nil
	}
	return view
}

// # Route Guards

// redirectIfAuthenticated keeps signed-in visitors off the auth pages.
func (handler *Handler) redirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if handler.currentSession(request) != nil {
			http.Redirect(writer, request, constants.RouteDashboard, http.StatusFound)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// requireSession sends anonymous visitors to the sign-in page.
func (handler *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if handler.currentSession(request) == nil {
			target := constants.RouteSignIn + "?" + url.Values{FieldCallbackURL: {request.URL.RequestURI()}}.Encode()
			http.Redirect(writer, request, target, http.StatusFound)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
