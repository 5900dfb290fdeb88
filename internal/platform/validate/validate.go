// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// The same Validator runs on both sides of the wire: the web forms use it to
// produce field errors before any request is sent, and the API handlers use it
// again on the decoded payload. Password rules are delegated to the shared
// [password.Check] predicate so both sides classify failures identically.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/password"
)

var (
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	return v.RequiredMsg(field, value, "This field is required")
}

// RequiredMsg is [Validator.Required] with a caller supplied message.
func (v *Validator) RequiredMsg(field, value, message string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, message, "")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max), "")
	}
	return v
}

// Email fails if the value is not a bare RFC 5322 address.
// Display-name forms such as "Jo <jo@example.com>" are rejected.
func (v *Validator) Email(field, value string) *Validator {
	return v.EmailMsg(field, value, "Please enter a valid email")
}

// EmailMsg is [Validator.Email] with a caller supplied message.
func (v *Validator) EmailMsg(field, value, message string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, message, "")
	}
	return v
}

// Password fails if the value does not satisfy the shared strength predicate.
// The predicate's reason is recorded on the field error.
func (v *Validator) Password(field, value string) *Validator {
	if result := password.Check(value); !result.Valid {
		v.add(field, result.Message, string(result.Reason))
	}
	return v
}

// Matches fails if value differs from other.
func (v *Validator) Matches(field, value, other, message string) *Validator {
	if value != other {
		v.add(field, message, "")
	}
	return v
}

// URL fails if the value is not an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		v.add(field, "Must be a valid URL", "")
	}
	return v
}

// RelativePath fails unless value is a same-site absolute path ("/x", not "//x").
// Used for redirect targets supplied by clients.
func (v *Validator) RelativePath(field, value string) *Validator {
	if !IsRelativePath(value) {
		v.add(field, "Must be a relative path", "")
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID", "")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("image", len(raw) > limit, "Image is too large")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message, "")
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message, reason string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message, Reason: reason})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// IsRelativePath reports whether value is a path on this site.
//
// Control characters are refused outright: browsers drop tab, CR and LF
// from URLs, which would turn "/\t/host" into the protocol-relative "//host".
func IsRelativePath(value string) bool {
	if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return false
	}

	for i := 0; i < len(value); i++ {
		if c := value[i]; c < 0x20 || c == 0x7f || c == '\\' {
			return false
		}
	}

	parsed, err := url.Parse(value)
	return err == nil && parsed.Scheme == "" && parsed.Host == ""
}
