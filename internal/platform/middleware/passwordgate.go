// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-id/internal/platform/password"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
)

// # Password Strength Gate

// PasswordRule names an endpoint whose body carries a new password.
type PasswordRule struct {
	// Path is the canonical request path, e.g. "/api/v1/auth/sign-up".
	// Requests are matched after cleaning, so "//", "/./" and a trailing
	// slash cannot route around the rule.
	Path string
	// Field is the body field holding the candidate password.
	Field string
}

// PasswordGate re-checks password strength at the server boundary.
//
// For a POST matching one of rules, the body is read (JSON or form-encoded),
// the configured field is run through [password.Check], and a failing
// candidate is rejected with 400 WEAK_PASSWORD before the handler runs.
// Accepted bodies are restored so the handler can decode them again.
func PasswordGate(rules ...PasswordRule) func(http.Handler) http.Handler {
	fields := make(map[string]string, len(rules))
	for _, rule := range rules {
		fields[rule.Path] = rule.Field
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			field, guarded := fields[path.Clean(request.URL.Path)]
			if !guarded || request.Method != http.MethodPost {
				next.ServeHTTP(writer, request)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, requestutil.MaxBodyBytes))
			_ = request.Body.Close()
			if err != nil {
				respond.Error(writer, request, validate.ErrInvalidJSON)
				return
			}

			candidate, err := extractField(request.Header.Get("Content-Type"), body, field)
			if err != nil {
				respond.Error(writer, request, validate.ErrInvalidJSON)
				return
			}

			if result := password.Check(candidate); !result.Valid {
				ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "weak_password_rejected",
					slog.String("path", request.URL.Path),
					slog.String("reason", string(result.Reason)),
				)
				respond.Error(writer, request, apperr.WeakPassword(apperr.FieldError{
					Field:   field,
					Message: result.Message,
					Reason:  string(result.Reason),
				}))
				return
			}

			request.Body = io.NopCloser(bytes.NewReader(body))
			request.ContentLength = int64(len(body))
			next.ServeHTTP(writer, request)
		})
	}
}

// extractField pulls a string field out of a JSON or form-encoded body.
// A missing or non-string field yields the empty string.
func extractField(contentType string, body []byte, field string) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", err
		}
		return values.Get(field), nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}

	var value string
	if raw, ok := payload[field]; ok {
		_ = json.Unmarshal(raw, &value)
	}
	return value, nil
}
