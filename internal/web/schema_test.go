// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	"github.com/taibuivan/yomira-id/internal/platform/password"
	"github.com/taibuivan/yomira-id/internal/users/auth"
	"github.com/taibuivan/yomira-id/internal/web"
)

var weakPasswords = []string{
	"",
	"Ab1!",
	"alllowercase1!",
	"ALLUPPERCASE1!",
	"NoDigitsHere!",
	"NoSymbols123",
	"Ünïcödé1",
	strings.Repeat("Aa1!", 19),
}

// gateReason posts candidate to the server-side gate and returns the reason
// it rejected with, or "" when the request reached the handler.
func gateReason(t *testing.T, path, field, candidate string) string {
	t.Helper()

	router := chi.NewRouter()
	router.Use(middleware.PasswordGate(auth.PasswordRules()...))
	router.Post(path, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	body, err := json.Marshal(map[string]string{field: candidate, "token": "t"})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code == http.StatusOK {
		return ""
	}

	var envelope struct {
		Code    string              `json:"code"`
		Details []apperr.FieldError `json:"details"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	require.Equal(t, apperr.CodeWeakPassword, envelope.Code)
	require.Len(t, envelope.Details, 1)
	return envelope.Details[0].Reason
}

// formReason runs a web schema and returns the reason recorded on field.
func formReason(t *testing.T, validateForm func(*web.Form) error, values map[string]string, field string) string {
	t.Helper()

	err := validateForm(web.NewForm(values))
	detail, ok := apperr.As(err).Field(field)
	require.True(t, ok, "expected an error on %s", field)
	return detail.Reason
}

/*
TestPasswordParity checks that every form with a new password and the
server-side gate reject the same candidates for the same reason.
*/
func TestPasswordParity(t *testing.T) {
	for _, candidate := range weakPasswords {
		expected := string(password.Check(candidate).Reason)
		require.NotEmpty(t, expected, "candidate %q should be weak", candidate)

		t.Run(expected, func(t *testing.T) {
			signUp := formReason(t, web.ValidateSignUp, map[string]string{
				web.FieldName: "Tai", web.FieldEmail: "tai@example.com",
				web.FieldPassword: candidate, web.FieldPasswordConfirmation: candidate,
			}, web.FieldPassword)
			reset := formReason(t, web.ValidateResetPassword, map[string]string{web.FieldNewPassword: candidate}, web.FieldNewPassword)
			change := formReason(t, web.ValidatePassword, map[string]string{
				web.FieldCurrentPassword: "old", web.FieldNewPassword: candidate,
			}, web.FieldNewPassword)

			assert.Equal(t, expected, signUp)
			assert.Equal(t, expected, reset)
			assert.Equal(t, expected, change)

			assert.Equal(t, expected, gateReason(t, auth.APIPrefix+"/sign-up", auth.FieldPassword, candidate))
			assert.Equal(t, expected, gateReason(t, auth.APIPrefix+"/reset-password", auth.FieldNewPassword, candidate))
			assert.Equal(t, expected, gateReason(t, auth.APIPrefix+"/change-password", auth.FieldNewPassword, candidate))
		})
	}

	t.Run("strong_password_passes_both", func(t *testing.T) {
		assert.NoError(t, web.ValidateResetPassword(web.NewForm(map[string]string{web.FieldNewPassword: "Str0ng!pass"})))
		assert.Empty(t, gateReason(t, auth.APIPrefix+"/reset-password", auth.FieldNewPassword, "Str0ng!pass"))
	})
}

/*
TestValidateSignUp_Confirmation always reports on the confirmation field.
*/
func TestValidateSignUp_Confirmation(t *testing.T) {
	tests := []struct {
		name         string
		password     string
		confirmation string
		message      string
	}{
		{"mismatch", "Str0ng!pass", "Str0ng!pasS", "Passwords do not match"},
		{"mismatch_with_weak_password", "weak", "weaker", "Passwords do not match"},
		{"missing", "Str0ng!pass", "", "Please confirm password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := web.NewForm(map[string]string{
				web.FieldName:                 "Tai",
				web.FieldEmail:                "tai@example.com",
				web.FieldPassword:             tt.password,
				web.FieldPasswordConfirmation: tt.confirmation,
			})

			assert.Error(t, web.ValidateSignUp(form))
			assert.Equal(t, tt.message, form.Error(web.FieldPasswordConfirmation))
		})
	}
}

/*
TestValidate_Messages mirrors the form messages.
*/
func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name     string
		validate func(*web.Form) error
		values   map[string]string
		field    string
		message  string
	}{
		{"sign_in_email", web.ValidateSignIn, map[string]string{web.FieldEmail: "nope", web.FieldPassword: "x"}, web.FieldEmail, "Please enter a valid email"},
		{"sign_in_password", web.ValidateSignIn, map[string]string{web.FieldEmail: "tai@example.com"}, web.FieldPassword, "Password is required"},
		{"sign_up_name", web.ValidateSignUp, map[string]string{web.FieldName: "  "}, web.FieldName, "Name is required"},
		{"forgot_email", web.ValidateForgotPassword, map[string]string{web.FieldEmail: "tai@"}, web.FieldEmail, "Please enter a valid email"},
		{"profile_name", web.ValidateProfileDetails, map[string]string{web.FieldName: " "}, web.FieldName, "Name is required"},
		{"new_email", web.ValidateEmail, map[string]string{web.FieldNewEmail: "tai"}, web.FieldNewEmail, "Enter a valid email"},
		{"current_password", web.ValidatePassword, map[string]string{web.FieldNewPassword: "Str0ng!pass"}, web.FieldCurrentPassword, "Current password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := web.NewForm(tt.values)
			assert.Error(t, tt.validate(form))
			assert.Equal(t, tt.message, form.Error(tt.field))
		})
	}
}
