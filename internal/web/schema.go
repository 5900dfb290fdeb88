// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/validate"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # Field Names

// Form fields share the API's names so server errors land on the right input.
const (
	FieldName                 = auth.FieldName
	FieldEmail                = auth.FieldEmail
	FieldImage                = auth.FieldImage
	FieldPassword             = auth.FieldPassword
	FieldPasswordConfirmation = "password_confirmation"
	FieldRememberMe           = auth.FieldRememberMe
	FieldToken                = auth.FieldToken
	FieldCurrentPassword      = auth.FieldCurrentPassword
	FieldNewPassword          = auth.FieldNewPassword
	FieldNewEmail             = auth.FieldNewEmail
	FieldRevokeOtherSessions  = auth.FieldRevokeOtherSessions
	FieldRemoveImage          = "remove_image"
	FieldCallbackURL          = auth.FieldCallbackURL
)

// # Schemas
//
// Each schema returns the VALIDATION_ERROR the API would return for the same
// values, so the form and the server agree on every message and reason.

// ValidateSignIn checks the sign-in form.
func ValidateSignIn(form *Form) error {
	return apply(form, (&validate.Validator{}).
		Email(FieldEmail, strings.TrimSpace(form.Get(FieldEmail))).
		RequiredMsg(FieldPassword, form.Get(FieldPassword), "Password is required"))
}

// ValidateSignUp checks the sign-up form, including the confirmation match.
func ValidateSignUp(form *Form) error {
	confirmation := form.Get(FieldPasswordConfirmation)

	validator := &validate.Validator{}
	validator.RequiredMsg(FieldName, form.Get(FieldName), "Name is required").
		MaxLen(FieldName, auth.NormalizeName(form.Get(FieldName)), auth.NameMaxLength).
		Email(FieldEmail, strings.TrimSpace(form.Get(FieldEmail))).
		Password(FieldPassword, form.Get(FieldPassword)).
		RequiredMsg(FieldPasswordConfirmation, confirmation, "Please confirm password")
	if confirmation != "" {
		validator.Matches(FieldPasswordConfirmation, confirmation, form.Get(FieldPassword), "Passwords do not match")
	}

	return apply(form, validator)
}

// ValidateForgotPassword checks the forgot-password form.
func ValidateForgotPassword(form *Form) error {
	return apply(form, (&validate.Validator{}).
		Email(FieldEmail, strings.TrimSpace(form.Get(FieldEmail))))
}

// ValidateResetPassword checks the reset-password form.
func ValidateResetPassword(form *Form) error {
	return apply(form, (&validate.Validator{}).
		Password(FieldNewPassword, form.Get(FieldNewPassword)))
}

// ValidateProfileDetails checks the profile details form.
func ValidateProfileDetails(form *Form) error {
	name := auth.NormalizeName(form.Get(FieldName))
	return apply(form, (&validate.Validator{}).
		RequiredMsg(FieldName, name, "Name is required").
		MaxLen(FieldName, name, auth.NameMaxLength))
}

// ValidateEmail checks the email change form.
func ValidateEmail(form *Form) error {
	return apply(form, (&validate.Validator{}).
		EmailMsg(FieldNewEmail, strings.TrimSpace(form.Get(FieldNewEmail)), "Enter a valid email"))
}

// ValidatePassword checks the password change form.
func ValidatePassword(form *Form) error {
	return apply(form, (&validate.Validator{}).
		RequiredMsg(FieldCurrentPassword, form.Get(FieldCurrentPassword), "Current password is required").
		Password(FieldNewPassword, form.Get(FieldNewPassword)))
}

// apply records the validator's failures on form and returns them.
func apply(form *Form, validator *validate.Validator) error {
	err := validator.Err()
	if err != nil {
		form.Reject(err)
	}
	return err
}
