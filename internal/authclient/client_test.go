// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

/*
TestSignIn_DecodesSession reads the data envelope.
*/
func TestSignIn_DecodesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/auth/sign-in", request.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "tai@example.com", body["email"])
		assert.Equal(t, true, body["remember_me"])

		respond.OK(writer, auth.SessionResponse{Token: "tok", Persistent: true, User: &auth.User{ID: "u-1"}})
	}))
	defer server.Close()

	client := authclient.New(server.URL, "", server.Client())
	result, err := client.SignIn(context.Background(), authclient.SignInInput{Email: "tai@example.com", Password: "x", RememberMe: true})
	require.NoError(t, err)

	assert.Equal(t, "tok", result.Token)
	assert.True(t, result.Persistent)
	assert.Equal(t, "u-1", result.User.ID)
}

/*
TestErrors_RebuildAppError keeps the server's message, code and details.
*/
func TestErrors_RebuildAppError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.WeakPassword(apperr.FieldError{
			Field:   "new_password",
			Message: "Password must contain an uppercase letter",
			Reason:  "missing_uppercase",
		}))
	}))
	defer server.Close()

	client := authclient.New(server.URL, "", server.Client())
	err := client.ResetPassword(context.Background(), "token", "weakpass1!")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeWeakPassword, appError.Code)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)

	detail, ok := appError.Field("new_password")
	require.True(t, ok)
	assert.Equal(t, "missing_uppercase", detail.Reason)
}

/*
TestErrors_Unreachable reports the service as unavailable.
*/
func TestErrors_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := authclient.New(url, "", nil).SignOut(context.Background(), "tok")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnavailable))
}

/*
TestSession_ForwardsCookieAndVisitor sends the token as the session cookie.
*/
func TestSession_ForwardsCookieAndVisitor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		cookie, err := request.Cookie(constants.SessionCookieName)
		require.NoError(t, err)
		assert.Equal(t, "tok", cookie.Value)
		assert.Equal(t, "Browser/1.0", request.UserAgent())
		assert.Equal(t, "203.0.113.7", request.Header.Get(constants.HeaderXRealIP))

		respond.OK(writer, auth.SessionView{User: &auth.User{ID: "u-1"}, Session: &auth.Session{ID: "s-1"}})
	}))
	defer server.Close()

	browser := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	browser.Header.Set("User-Agent", "Browser/1.0")
	browser.RemoteAddr = "203.0.113.7:5555"
	ctx := authclient.WithVisitor(context.Background(), browser)

	view, err := authclient.New(server.URL, "", server.Client()).GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "s-1", view.Session.ID)
}

/*
TestUpdateUser_ImageField distinguishes keep, replace and remove.
*/
func TestUpdateUser_ImageField(t *testing.T) {
	var received []string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPatch, request.Method)
		assert.Equal(t, "/api/v1/account/me", request.URL.Path)
		body, _ := io.ReadAll(request.Body)
		received = append(received, string(body))
		respond.OK(writer, auth.User{ID: "u-1", Name: "Tai"})
	}))
	defer server.Close()

	client := authclient.New(server.URL, "", server.Client())
	link := "https://example.com/a.png"

	for _, input := range []authclient.UpdateUserInput{
		{Name: "Tai"},
		{Name: "Tai", Image: &link},
		{Name: "Tai", RemoveImage: true},
	} {
		_, err := client.UpdateUser(context.Background(), "tok", input)
		require.NoError(t, err)
	}

	require.Len(t, received, 3)
	assert.JSONEq(t, `{"name":"Tai"}`, received[0])
	assert.JSONEq(t, `{"name":"Tai","image":"https://example.com/a.png"}`, received[1])
	assert.JSONEq(t, `{"name":"Tai","image":null}`, received[2])
}

/*
TestSocialSignInURL points the browser at the public API address.
*/
func TestSocialSignInURL(t *testing.T) {
	client := authclient.New("http://api:8080", "http://localhost:8080", nil)

	assert.Equal(t,
		"http://localhost:8080/api/v1/auth/sign-in/social/github?callback_url=%2Fprofile",
		client.SocialSignInURL("github", "/profile"),
	)
}
