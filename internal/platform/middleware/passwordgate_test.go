// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	"github.com/taibuivan/yomira-id/internal/platform/password"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
)

var gateRules = []middleware.PasswordRule{
	{Path: "/api/v1/auth/sign-up", Field: "password"},
	{Path: "/api/v1/auth/reset-password", Field: "new_password"},
	{Path: "/api/v1/auth/change-password", Field: "new_password"},
}

// echoHandler records that it ran and echoes the body it received.
func echoHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*called = true
		body, _ := io.ReadAll(request.Body)
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write(body)
	})
}

/*
TestPasswordGate_SameReasonAsPredicate rejects every weak candidate with the
reason the shared predicate produces, on every guarded endpoint.
*/
func TestPasswordGate_SameReasonAsPredicate(t *testing.T) {
	candidates := []string{
		"",
		"Ab1!",
		"abcdefg1!",
		"ABCDEFG1!",
		"Abcdefgh!",
		"Abcdefgh1",
		"Aa1!" + strings.Repeat("x", 80),
	}

	for _, rule := range gateRules {
		for _, candidate := range candidates {
			called := false
			handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

			body, _ := json.Marshal(map[string]string{rule.Field: candidate})
			request := httptest.NewRequest(http.MethodPost, rule.Path, strings.NewReader(string(body)))
			request.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			expected := password.Check(candidate)
			require.False(t, expected.Valid)
			assert.False(t, called, "handler must not run for %q", candidate)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, apperr.CodeWeakPassword, envelope.Code)
			require.Len(t, envelope.Details, 1)
			assert.Equal(t, rule.Field, envelope.Details[0].Field)
			assert.Equal(t, string(expected.Reason), envelope.Details[0].Reason)
			assert.Equal(t, expected.Message, envelope.Error)
		}
	}
}

/*
TestPasswordGate_StrongPasswordRestoresBody lets a strong password through
with the body intact.
*/
func TestPasswordGate_StrongPasswordRestoresBody(t *testing.T) {
	called := false
	handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

	body := `{"email":"jo@example.com","password":"Abcdefg1!"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-up", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, body, recorder.Body.String())
}

/*
TestPasswordGate_FormEncoded reads the field from a form body.
*/
func TestPasswordGate_FormEncoded(t *testing.T) {
	called := false
	handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

	form := url.Values{"new_password": {"short"}}
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/reset-password", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), string(password.ReasonTooShort))
}

/*
TestPasswordGate_UnguardedPaths passes other endpoints straight through.
*/
func TestPasswordGate_UnguardedPaths(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"sign_in_is_not_gated", http.MethodPost, "/api/v1/auth/sign-in"},
		{"get_is_not_gated", http.MethodGet, "/api/v1/auth/sign-up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"password":"weak"}`))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.True(t, called)
		})
	}
}

/*
TestPasswordGate_PathVariants applies the rule to every spelling the router accepts.
*/
func TestPasswordGate_PathVariants(t *testing.T) {
	for _, target := range []string{
		"/api/v1/auth//sign-up",
		"/api/v1/auth/sign-up/",
		"/api/v1/auth/./reset-password",
		"/api/v1/account/../auth/change-password",
	} {
		t.Run(target, func(t *testing.T) {
			called := false
			handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

			request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"password":"weak","new_password":"weak"}`))
			request.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.False(t, called)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), apperr.CodeWeakPassword)
		})
	}
}

/*
TestPasswordGate_MalformedJSON rejects a body that cannot be parsed.
*/
func TestPasswordGate_MalformedJSON(t *testing.T) {
	called := false
	handler := middleware.PasswordGate(gateRules...)(echoHandler(&called))

	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-up", strings.NewReader(`{"password":`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeValidation)
}
