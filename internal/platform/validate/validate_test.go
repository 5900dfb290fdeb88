// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/password"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Yomira", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeValidation, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"display_name_form", "Test <test@example.com>", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			assert.Equal(t, !tt.isValid, v.Err() != nil)
		})
	}
}

/*
TestValidator_Password checks that the predicate's reason reaches the field error.
*/
func TestValidator_Password(t *testing.T) {
	v := &validate.Validator{}
	err := v.Password("password", "abcdefgh").Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)

	detail, ok := ae.Field("password")
	require.True(t, ok)
	assert.Equal(t, string(password.ReasonMissingUppercase), detail.Reason)
	assert.Equal(t, password.Message(password.ReasonMissingUppercase), detail.Message)

	assert.NoError(t, (&validate.Validator{}).Password("password", "Abcdefg1!").Err())
}

/*
TestValidator_Matches checks the confirmation rule.
*/
func TestValidator_Matches(t *testing.T) {
	v := &validate.Validator{}
	ae := apperr.As(v.Matches("password_confirmation", "a", "b", "Passwords do not match").Err())
	require.NotNil(t, ae)

	detail, ok := ae.Field("password_confirmation")
	require.True(t, ok)
	assert.Equal(t, "Passwords do not match", detail.Message)
}

/*
TestValidator_RelativePath rejects open-redirect shaped values.
*/
func TestValidator_RelativePath(t *testing.T) {
	assert.True(t, validate.IsRelativePath("/reset-password"))
	assert.False(t, validate.IsRelativePath("//evil.example"))
	assert.False(t, validate.IsRelativePath("https://evil.example"))
	assert.False(t, validate.IsRelativePath("/\\evil.example"))
	assert.False(t, validate.IsRelativePath(""))

	// Browsers strip these, leaving "//evil.example".
	assert.False(t, validate.IsRelativePath("/\t/evil.example"))
	assert.False(t, validate.IsRelativePath("/\r\n/evil.example"))
	assert.False(t, validate.IsRelativePath("/\x7f/evil.example"))

	assert.True(t, validate.IsRelativePath("/profile?tab=security"))
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "tai").
		MaxLen("name", "tai", 10).
		Email("email", "tai@yomira.app").
		Err()

	assert.NoError(t, err)
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").           // Fails
		MaxLen("name", "abcdef", 5).    // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)

	detail, ok := ae.Field("name")
	require.True(t, ok)
	assert.Equal(t, "This field is required", detail.Message)
}
