// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	"github.com/taibuivan/yomira-id/internal/platform/password"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.PasswordGate(auth.PasswordRules()...))
	router.Use(middleware.Authenticate(nil, f.service))
	router.Mount(auth.APIPrefix, auth.NewHandler(f.service, auth.CookieConfig{}, testPublicURL).Routes())
	return router
}

func call(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope
}

func sessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

/*
TestHTTP_SignUp_WeakPasswordRejectedByGate checks the server-side gate.
*/
func TestHTTP_SignUp_WeakPasswordRejectedByGate(t *testing.T) {
	f := newFixture()
	router := newRouter(f)

	recorder := call(t, router, http.MethodPost, auth.APIPrefix+"/sign-up",
		`{"name":"Tai","email":"tai@example.com","password":"abcdefgh"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeError(t, recorder)
	assert.Equal(t, apperr.CodeWeakPassword, envelope.Code)
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, auth.FieldPassword, envelope.Details[0].Field)
	assert.Equal(t, string(password.ReasonMissingUppercase), envelope.Details[0].Reason)

	_, err := f.users.FindByEmail(t.Context(), "tai@example.com")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestHTTP_SignUp_SetsPersistentCookie defaults sign-up to remember-me.
*/
func TestHTTP_SignUp_SetsPersistentCookie(t *testing.T) {
	f := newFixture()
	router := newRouter(f)

	recorder := call(t, router, http.MethodPost, auth.APIPrefix+"/sign-up",
		`{"name":"Tai","email":"tai@example.com","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	cookie := sessionCookie(t, recorder)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	var envelope struct {
		Data auth.SessionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, cookie.Value, envelope.Data.Token)
	assert.Equal(t, "tai@example.com", envelope.Data.User.Email)
}

/*
TestHTTP_SignUp_ValidatesName reports a missing name.
*/
func TestHTTP_SignUp_ValidatesName(t *testing.T) {
	router := newRouter(newFixture())

	recorder := call(t, router, http.MethodPost, auth.APIPrefix+"/sign-up",
		`{"name":"  ","email":"tai@example.com","password":"`+testPassword+`"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeError(t, recorder)
	assert.Equal(t, apperr.CodeValidation, envelope.Code)
	assert.Equal(t, auth.FieldName, envelope.Details[0].Field)
}

/*
TestHTTP_SignIn_BrowserSessionCookie omits the expiry without remember-me.
*/
func TestHTTP_SignIn_BrowserSessionCookie(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	router := newRouter(f)

	recorder := call(t, router, http.MethodPost, auth.APIPrefix+"/sign-in",
		`{"email":"tai@example.com","password":"`+testPassword+`","remember_me":false}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	cookie := sessionCookie(t, recorder)
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())

	session := call(t, router, http.MethodGet, auth.APIPrefix+"/session", "", cookie)
	assert.Equal(t, http.StatusOK, session.Code)

	signOut := call(t, router, http.MethodPost, auth.APIPrefix+"/sign-out", "", cookie)
	assert.Equal(t, http.StatusNoContent, signOut.Code)
	assert.Negative(t, sessionCookie(t, signOut).MaxAge)

	after := call(t, router, http.MethodGet, auth.APIPrefix+"/session", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

/*
TestHTTP_SignIn_InvalidCredentials returns a generic 401.
*/
func TestHTTP_SignIn_InvalidCredentials(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")

	recorder := call(t, newRouter(f), http.MethodPost, auth.APIPrefix+"/sign-in",
		`{"email":"tai@example.com","password":"Wr0ng!pass"}`)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, recorder).Error)
}

/*
TestHTTP_VerifyEmailLink redirects to the callback.
*/
func TestHTTP_VerifyEmailLink(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	router := newRouter(f)

	link := f.mailer.last(t, "verify").Link
	path := strings.TrimPrefix(link, testAPIURL)

	recorder := call(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, testPublicURL+constants.RouteDashboard, recorder.Header().Get("Location"))

	again := call(t, router, http.MethodGet, path, "")
	assert.Equal(t, testPublicURL+constants.RouteDashboard+"?error=INVALID_TOKEN", again.Header().Get("Location"))
}

/*
TestHTTP_RequestPasswordReset answers the same for unknown addresses.
*/
func TestHTTP_RequestPasswordReset(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	router := newRouter(f)

	known := call(t, router, http.MethodPost, auth.APIPrefix+"/request-password-reset", `{"email":"tai@example.com"}`)
	unknown := call(t, router, http.MethodPost, auth.APIPrefix+"/request-password-reset", `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	external := call(t, router, http.MethodPost, auth.APIPrefix+"/request-password-reset",
		`{"email":"tai@example.com","redirect_to":"https://evil.example"}`)
	assert.Equal(t, http.StatusBadRequest, external.Code)
}

/*
TestHTTP_ResetPassword gates the new password and consumes the token.
*/
func TestHTTP_ResetPassword(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	router := newRouter(f)

	require.NoError(t, f.service.RequestPasswordReset(t.Context(), "tai@example.com", ""))
	token := tokenFrom(t, f.mailer.last(t, "reset").Link)

	weak := call(t, router, http.MethodPost, auth.APIPrefix+"/reset-password",
		`{"token":"`+token+`","new_password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, weak.Code)
	envelope := decodeError(t, weak)
	assert.Equal(t, apperr.CodeWeakPassword, envelope.Code)
	assert.Equal(t, auth.FieldNewPassword, envelope.Details[0].Field)

	ok := call(t, router, http.MethodPost, auth.APIPrefix+"/reset-password",
		`{"token":"`+token+`","new_password":"N3w!password"}`)
	assert.Equal(t, http.StatusOK, ok.Code)

	replay := call(t, router, http.MethodPost, auth.APIPrefix+"/reset-password",
		`{"token":"`+token+`","new_password":"N3w!password"}`)
	assert.Equal(t, apperr.CodeInvalidToken, decodeError(t, replay).Code)
}

/*
TestHTTP_ChangePassword requires a session and checks the current password.
*/
func TestHTTP_ChangePassword(t *testing.T) {
	f := newFixture()
	router := newRouter(f)

	anonymous := call(t, router, http.MethodPost, auth.APIPrefix+"/change-password",
		`{"current_password":"x","new_password":"N3w!password"}`)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	result := f.signUp(t, "tai@example.com")
	cookie := &http.Cookie{Name: constants.SessionCookieName, Value: result.Token}

	wrong := call(t, router, http.MethodPost, auth.APIPrefix+"/change-password",
		`{"current_password":"Wr0ng!pass","new_password":"N3w!password"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	envelope := decodeError(t, wrong)
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, auth.FieldCurrentPassword, envelope.Details[0].Field)

	ok := call(t, router, http.MethodPost, auth.APIPrefix+"/change-password",
		`{"current_password":"`+testPassword+`","new_password":"N3w!password"}`, cookie)
	assert.Equal(t, http.StatusOK, ok.Code)
}

/*
TestHTTP_ChangeEmail_ConfirmLink lands on the email-verified page.
*/
func TestHTTP_ChangeEmail_ConfirmLink(t *testing.T) {
	f := newFixture()
	router := newRouter(f)
	result := f.signUp(t, "tai@example.com")
	cookie := &http.Cookie{Name: constants.SessionCookieName, Value: result.Token}

	recorder := call(t, router, http.MethodPost, auth.APIPrefix+"/change-email", `{"new_email":"new@example.com"}`, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	path := strings.TrimPrefix(f.mailer.last(t, "change").Link, testAPIURL)
	confirm := call(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusFound, confirm.Code)
	assert.Equal(t, testPublicURL+constants.RouteEmailVerified, confirm.Header().Get("Location"))

	replay := call(t, router, http.MethodGet, path, "")
	assert.Equal(t, testPublicURL+constants.RouteEmailVerified+"?error=INVALID_TOKEN", replay.Header().Get("Location"))
}

/*
TestHTTP_AdminPurgeSessions is reserved for admins.
*/
func TestHTTP_AdminPurgeSessions(t *testing.T) {
	f := newFixture()

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(nil, f.service))
	router.Mount("/api/v1/admin", auth.NewHandler(f.service, auth.CookieConfig{}, testPublicURL).AdminRoutes())

	member := f.signUp(t, "member@example.com")
	admin := f.signUp(t, "admin@example.com")
	require.NoError(t, f.users.update(admin.User.ID, func(user *auth.User) { user.Role = sec.RoleAdmin }))

	require.NoError(t, f.sessions.Create(context.Background(), &auth.Session{
		ID:        "expired",
		UserID:    member.User.ID,
		TokenHash: "expired-hash",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	const path = "/api/v1/admin/sessions/purge"

	recorder := call(t, router, http.MethodPost, path, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = call(t, router, http.MethodPost, path, "", &http.Cookie{Name: constants.SessionCookieName, Value: member.Token})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, apperr.CodeForbidden, decodeError(t, recorder).Code)

	recorder = call(t, router, http.MethodPost, path, "", &http.Cookie{Name: constants.SessionCookieName, Value: admin.Token})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"removed":1}}`, recorder.Body.String())
}
