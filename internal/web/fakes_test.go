// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/users/auth"
	"github.com/taibuivan/yomira-id/internal/web"
)

// fakeClient records every call the forms make to the auth service.
type fakeClient struct {
	view         *auth.SessionView
	sessionCalls int

	calls []string
	err   error

	signIn       authclient.SignInInput
	resetEmail   string
	resetTarget  string
	resetToken   string
	newPassword  string
	changedEmail string
	emailTarget  string
	update       authclient.UpdateUserInput
}

func (f *fakeClient) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeClient) session() *auth.SessionResponse {
	return &auth.SessionResponse{Token: "new-session", Persistent: true, ExpiresAt: time.Now().Add(auth.PersistentSessionTTL)}
}

func (f *fakeClient) SignUp(_ context.Context, _ authclient.SignUpInput) (*auth.SessionResponse, error) {
	if err := f.record("sign_up"); err != nil {
		return nil, err
	}
	return f.session(), nil
}

func (f *fakeClient) SignIn(_ context.Context, input authclient.SignInInput) (*auth.SessionResponse, error) {
	f.signIn = input
	if err := f.record("sign_in"); err != nil {
		return nil, err
	}
	result := f.session()
	result.Persistent = input.RememberMe
	return result, nil
}

func (f *fakeClient) SignOut(_ context.Context, _ string) error {
	return f.record("sign_out")
}

func (f *fakeClient) GetSession(_ context.Context, token string) (*auth.SessionView, error) {
	f.sessionCalls++
	if f.view == nil || token != "valid" {
		return nil, apperr.Unauthorized("Session expired")
	}
	return f.view, nil
}

func (f *fakeClient) RequestPasswordReset(_ context.Context, email, redirectTo string) error {
	f.resetEmail, f.resetTarget = email, redirectTo
	return f.record("request_password_reset")
}

func (f *fakeClient) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resetToken, f.newPassword = token, newPassword
	return f.record("reset_password")
}

func (f *fakeClient) ChangePassword(_ context.Context, _ string, _ authclient.ChangePasswordInput) error {
	return f.record("change_password")
}

func (f *fakeClient) ChangeEmail(_ context.Context, _, newEmail, callbackURL string) error {
	f.changedEmail, f.emailTarget = newEmail, callbackURL
	return f.record("change_email")
}

func (f *fakeClient) UpdateUser(_ context.Context, _ string, input authclient.UpdateUserInput) (*auth.User, error) {
	f.update = input
	if err := f.record("update_user"); err != nil {
		return nil, err
	}
	updated := *f.view.User
	updated.Name = input.Name
	return &updated, nil
}

func (f *fakeClient) SocialSignInURL(provider, callbackURL string) string {
	return "http://localhost:8080/api/v1/auth/sign-in/social/" + provider + "?callback_url=" + url.QueryEscape(callbackURL)
}

// # Fixture

func signedIn() *fakeClient {
	return &fakeClient{view: &auth.SessionView{
		Session: &auth.Session{ID: "s-1", UserID: "u-1"},
		User:    &auth.User{ID: "u-1", Name: "Tai Bui", Email: "tai@example.com"},
	}}
}

func newRouter(client *fakeClient) http.Handler {
	handler := web.NewHandler(client, auth.CookieConfig{}, []string{"google", "github"})
	return web.NewRouter(handler, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// visit issues a GET, optionally carrying the session cookie.
func visit(router http.Handler, path, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// post submits a urlencoded form, optionally carrying the session cookie.
func post(router http.Handler, path, token string, values url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func cookieNamed(t *testing.T, recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
