// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package web serves the server-rendered account forms: sign-in, sign-up,
forgot-password, reset-password and the profile page (details, email and
password).

Each submission follows the same cycle:

 1. Parse the posted values into a [Form] and clear any previous outcome.
 2. Validate against the form's schema. Failures are rendered next to the
    field and no API call is made.
 3. Call the auth service through the client SDK.
 4. Render the success message, or the error the service returned.

Route guards send signed-in visitors away from the auth pages and anonymous
visitors away from the account pages. The session is looked up at most once
per request.
*/
package web

import (
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
)

// Form is the state of one form on one render.
type Form struct {
	// Values holds the submitted (or default) field values.
	Values map[string]string

	// Errors holds at most one message per field.
	Errors map[string]string

	// Success is the status line shown after a successful submission.
	Success string

	// Alert is the page-level error.
	Alert string

	// Redirect, when set, sends the browser elsewhere after a pause.
	Redirect *DelayedRedirect
}

// DelayedRedirect is a client-side redirect rendered with the page.
type DelayedRedirect struct {
	To    string
	After time.Duration
}

// NewForm creates a form pre-filled with defaults.
func NewForm(defaults map[string]string) *Form {
	form := &Form{Values: make(map[string]string), Errors: make(map[string]string)}
	for field, value := range defaults {
		form.Values[field] = value
	}
	return form
}

// FormFromValues reads the named fields from posted values.
func FormFromValues(values url.Values, fields ...string) *Form {
	form := NewForm(nil)
	for _, field := range fields {
		form.Values[field] = values.Get(field)
	}
	return form
}

// Get returns the value of field.
func (form *Form) Get(field string) string {
	return form.Values[field]
}

// Checked reports whether a checkbox field was ticked.
func (form *Form) Checked(field string) bool {
	switch strings.ToLower(form.Values[field]) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}

// Error returns the message recorded for field.
func (form *Form) Error(field string) string {
	return form.Errors[field]
}

// Begin clears the outcome of any previous submission.
func (form *Form) Begin() {
	form.Errors = make(map[string]string)
	form.Success = ""
	form.Alert = ""
	form.Redirect = nil
}

// Invalid reports whether any field error is recorded.
func (form *Form) Invalid() bool {
	return len(form.Errors) > 0
}

// Reject records the field errors carried by err, if any.
// It reports whether err was a validation failure.
func (form *Form) Reject(err error) bool {
	appError := apperr.As(err)
	if appError == nil || len(appError.Details) == 0 {
		return false
	}
	for _, detail := range appError.Details {
		if _, seen := form.Errors[detail.Field]; !seen {
			form.Errors[detail.Field] = detail.Message
		}
	}
	return true
}

// Fail records a service error. Field details go next to their fields;
// anything else becomes the page alert, falling back to fallback when the
// error carries no usable message.
func (form *Form) Fail(err error, fallback string) {
	if form.Reject(err) {
		if appError := apperr.As(err); appError.Code != apperr.CodeValidation && appError.Code != apperr.CodeWeakPassword {
			form.Alert = appError.Message
		}
		return
	}

	form.Alert = fallback
	if appError := apperr.As(err); appError != nil && appError.Message != "" && appError.HTTPStatus < 500 {
		form.Alert = appError.Message
	}
}

// Succeed records a success message. With reset, the submitted values are
// dropped so the form renders empty.
func (form *Form) Succeed(message string, reset bool) {
	form.Begin()
	form.Success = message
	if reset {
		form.Values = make(map[string]string)
	}
}

// Clear drops the value of the given fields (passwords are never echoed back).
func (form *Form) Clear(fields ...string) {
	for _, field := range fields {
		delete(form.Values, field)
	}
}
