// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authclient is the Go SDK for the Yomira ID JSON API.

The web forms never talk to the auth service directly; every submission goes
through a [Client] call. Failures come back as [*apperr.AppError] values rebuilt
from the error envelope, so a form can show exactly the message, code and
field details the server produced.

Sessions:

  - The opaque session token is forwarded as the session cookie.
  - The browser's user agent and address are forwarded via [WithVisitor] so
    sessions are labelled with the real device rather than the web server.
*/
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

const accountPrefix = "/api/v1/account"

// Client calls the auth service on behalf of the web forms.
type Client struct {
	baseURL   string
	publicURL string
	client    *http.Client
}

// New creates a [Client].
//
// baseURL is where this process reaches the API; publicURL is where browsers
// reach it (used for social sign-in redirects). A nil httpClient falls back to
// one bounded by [constants.ClientTimeout].
func New(baseURL, publicURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ClientTimeout}
	}
	if publicURL == "" {
		publicURL = baseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		client:    httpClient,
	}
}

// # Inputs

// SignUpInput is the sign-up form as sent to the API.
type SignUpInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RememberMe  bool   `json:"remember_me"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// SignInInput is the sign-in form as sent to the API.
type SignInInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// ChangePasswordInput is the password form as sent to the API.
type ChangePasswordInput struct {
	CurrentPassword     string `json:"current_password"`
	NewPassword         string `json:"new_password"`
	RevokeOtherSessions bool   `json:"revoke_other_sessions"`
}

// UpdateUserInput is the profile form.
type UpdateUserInput struct {
	Name string

	// Image replaces the avatar when set; RemoveImage clears it.
	Image       *string
	RemoveImage bool
}

// # Session

// SignUp creates an account and opens a session.
func (client *Client) SignUp(ctx context.Context, input SignUpInput) (*auth.SessionResponse, error) {
	var result auth.SessionResponse
	if err := client.do(ctx, http.MethodPost, auth.APIPrefix+"/sign-up", "", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignIn authenticates with email and password.
func (client *Client) SignIn(ctx context.Context, input SignInInput) (*auth.SessionResponse, error) {
	var result auth.SessionResponse
	if err := client.do(ctx, http.MethodPost, auth.APIPrefix+"/sign-in", "", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignOut revokes the session behind token.
func (client *Client) SignOut(ctx context.Context, token string) error {
	return client.do(ctx, http.MethodPost, auth.APIPrefix+"/sign-out", token, nil, nil)
}

// GetSession resolves token to its session and user.
//
// An expired or unknown token yields an UNAUTHORIZED [*apperr.AppError].
func (client *Client) GetSession(ctx context.Context, token string) (*auth.SessionView, error) {
	var view auth.SessionView
	if err := client.do(ctx, http.MethodGet, auth.APIPrefix+"/session", token, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// # Credential Changes

// RequestPasswordReset asks for a reset link to be mailed to email.
// redirectTo is the web page the link lands on.
func (client *Client) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email, "redirect_to": redirectTo}
	return client.do(ctx, http.MethodPost, auth.APIPrefix+"/request-password-reset", "", body, nil)
}

// ResetPassword completes a reset with the mailed token.
func (client *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return client.do(ctx, http.MethodPost, auth.APIPrefix+"/reset-password", "", body, nil)
}

// ChangePassword updates the password of the user signed in with sessionToken.
func (client *Client) ChangePassword(ctx context.Context, sessionToken string, input ChangePasswordInput) error {
	return client.do(ctx, http.MethodPost, auth.APIPrefix+"/change-password", sessionToken, input, nil)
}

// ChangeEmail requests an address change; the confirmation goes to the current address.
func (client *Client) ChangeEmail(ctx context.Context, sessionToken, newEmail, callbackURL string) error {
	body := map[string]string{"new_email": newEmail, "callback_url": callbackURL}
	return client.do(ctx, http.MethodPost, auth.APIPrefix+"/change-email", sessionToken, body, nil)
}

// UpdateUser saves the profile form and returns the updated user.
func (client *Client) UpdateUser(ctx context.Context, sessionToken string, input UpdateUserInput) (*auth.User, error) {
	body := map[string]any{"name": input.Name}
	switch {
	case input.RemoveImage:
		body["image"] = nil
	case input.Image != nil:
		body["image"] = *input.Image
	}

	var user auth.User
	if err := client.do(ctx, http.MethodPatch, accountPrefix+"/me", sessionToken, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SocialSignInURL is where the browser starts a social sign-in.
func (client *Client) SocialSignInURL(provider, callbackURL string) string {
	target := client.publicURL + auth.APIPrefix + "/sign-in/social/" + url.PathEscape(provider)
	if callbackURL != "" {
		target += "?" + url.Values{auth.FieldCallbackURL: {callbackURL}}.Encode()
	}
	return target
}

// # Transport

// do sends one JSON request and decodes the data envelope into out.
func (client *Client) do(ctx context.Context, method, path, sessionToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("authclient_encode_failed: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("authclient_build_request_failed: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if in != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: sessionToken})
	}
	applyVisitor(ctx, request)

	response, err := client.client.Do(request)
	if err != nil {
		return &apperr.AppError{
			Code:       apperr.CodeUnavailable,
			Message:    "Authentication service is unavailable",
			HTTPStatus: http.StatusServiceUnavailable,
			Cause:      err,
		}
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return decodeError(response)
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("authclient_decode_failed: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("authclient_decode_data_failed: %w", err)
	}
	return nil
}

// decodeError rebuilds the server's [*apperr.AppError] from the error envelope.
func decodeError(response *http.Response) error {
	var envelope struct {
		Error   string              `json:"error"`
		Code    string              `json:"code"`
		Details []apperr.FieldError `json:"details"`
	}

	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil || envelope.Code == "" {
		return &apperr.AppError{
			Code:       apperr.CodeInternal,
			Message:    "An unexpected error occurred",
			HTTPStatus: response.StatusCode,
			Cause:      fmt.Errorf("authclient_unexpected_response: %s", response.Status),
		}
	}

	return &apperr.AppError{
		Code:       envelope.Code,
		Message:    envelope.Error,
		HTTPStatus: response.StatusCode,
		Details:    envelope.Details,
	}
}
