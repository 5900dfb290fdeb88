// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

type fakeVerifier struct {
	claims *sec.AuthClaims
}

func (verifier fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return verifier.claims, nil
}

type fakeSessions struct {
	calls  int
	claims *sec.AuthClaims
	err    error
}

func (sessions *fakeSessions) ResolveSession(_ context.Context, token string) (*sec.AuthClaims, error) {
	sessions.calls++
	if sessions.err != nil {
		return nil, sessions.err
	}
	return sessions.claims, nil
}

// whoAmI writes the authenticated user ID, or "anonymous".
var whoAmI = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		_, _ = writer.Write([]byte("anonymous"))
		return
	}
	_, _ = writer.Write([]byte(claims.UserID))
})

/*
TestAuthenticate_Sources covers bearer, cookie and anonymous requests.
*/
func TestAuthenticate_Sources(t *testing.T) {
	verifier := fakeVerifier{claims: &sec.AuthClaims{UserID: "bearer-user"}}

	tests := []struct {
		name     string
		header   string
		cookie   string
		sessions *fakeSessions
		status   int
		body     string
	}{
		{"anonymous", "", "", &fakeSessions{}, http.StatusOK, "anonymous"},
		{"bearer", "Bearer good", "", &fakeSessions{}, http.StatusOK, "bearer-user"},
		{"bad_bearer", "Bearer nope", "", &fakeSessions{}, http.StatusUnauthorized, ""},
		{"bad_scheme", "Basic abc", "", &fakeSessions{}, http.StatusUnauthorized, ""},
		{"cookie", "", "tok", &fakeSessions{claims: &sec.AuthClaims{UserID: "cookie-user"}}, http.StatusOK, "cookie-user"},
		{"stale_cookie", "", "tok", &fakeSessions{err: apperr.NotFound("Session")}, http.StatusOK, "anonymous"},
		{"backend_down", "", "tok", &fakeSessions{err: apperr.ServiceUnavailable("down")}, http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			middleware.Authenticate(verifier, tt.sessions)(whoAmI).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, recorder.Body.String())
			}
		})
	}
}

/*
TestRequireRole enforces the role hierarchy.
*/
func TestRequireRole(t *testing.T) {
	handler := middleware.RequireRole(sec.RoleAdmin)(whoAmI)

	tests := []struct {
		name   string
		claims *sec.AuthClaims
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &sec.AuthClaims{UserID: "u", Role: string(sec.RoleUser)}, http.StatusForbidden},
		{"admin", &sec.AuthClaims{UserID: "a", Role: string(sec.RoleAdmin)}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), tt.claims))
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}
