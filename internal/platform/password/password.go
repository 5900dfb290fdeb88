// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package password holds the single password strength predicate shared by the
web forms, the API validators and the server-side password gate.

There is exactly one rule set. Callers never re-implement a rule: they call
[Check] and act on the [Result]. Two callers that reject the same candidate
therefore always agree on the [Reason].
*/
package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// # Rule Set

const (
	// MinLength is the minimum number of characters (runes).
	MinLength = 8

	// MaxBytes is the bcrypt input limit; longer inputs are rejected rather
	// than silently truncated.
	MaxBytes = 72
)

// Reason classifies why a candidate was rejected.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonRequired         Reason = "required"
	ReasonTooShort         Reason = "too_short"
	ReasonTooLong          Reason = "too_long"
	ReasonMissingLowercase Reason = "missing_lowercase"
	ReasonMissingUppercase Reason = "missing_uppercase"
	ReasonMissingDigit     Reason = "missing_digit"
	ReasonMissingSymbol    Reason = "missing_symbol"
)

// Result is the outcome of [Check].
type Result struct {
	Valid   bool
	Reason  Reason
	Message string
}

// Err returns nil for a valid result, or an error carrying the message.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%s", r.Message)
}

// Check evaluates candidate against the rule set. Rules run in a fixed order
// and the first failing rule decides the result.
func Check(candidate string) Result {
	if candidate == "" {
		return reject(ReasonRequired)
	}

	if utf8.RuneCountInString(candidate) < MinLength {
		return reject(ReasonTooShort)
	}

	if len(candidate) > MaxBytes {
		return reject(ReasonTooLong)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range candidate {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSymbol = true
		}
	}

	switch {
	case !hasLower:
		return reject(ReasonMissingLowercase)
	case !hasUpper:
		return reject(ReasonMissingUppercase)
	case !hasDigit:
		return reject(ReasonMissingDigit)
	case !hasSymbol:
		return reject(ReasonMissingSymbol)
	}

	return Result{Valid: true}
}

// Message returns the human-readable text for a reason.
func Message(reason Reason) string {
	switch reason {
	case ReasonRequired:
		return "Password is required"
	case ReasonTooShort:
		return fmt.Sprintf("Password must be at least %d characters", MinLength)
	case ReasonTooLong:
		return fmt.Sprintf("Password must be at most %d bytes", MaxBytes)
	case ReasonMissingLowercase:
		return "Password must contain at least one lowercase letter"
	case ReasonMissingUppercase:
		return "Password must contain at least one uppercase letter"
	case ReasonMissingDigit:
		return "Password must contain at least one number"
	case ReasonMissingSymbol:
		return "Password must contain at least one special character"
	default:
		return ""
	}
}

func reject(reason Reason) Result {
	return Result{Reason: reason, Message: Message(reason)}
}
