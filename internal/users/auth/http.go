// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/platform/respond"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication JSON API.
//
// # Scope
//
// Sign-up, sign-in, session lifecycle and every step of the confirmation
// flow. Password-bearing endpoints sit behind the password gate configured
// from [PasswordFields]; the validators here run the same predicate again.
type Handler struct {
	authService *Service
	cookies     CookieConfig
	publicURL   string
}

// NewHandler constructs a new [Handler] with its service dependency.
// publicURL is the web origin link targets redirect back to.
func NewHandler(service *Service, cookies CookieConfig, publicURL string) *Handler {
	return &Handler{authService: service, cookies: cookies, publicURL: publicURL}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /sign-up, /sign-in, /sign-out, /refresh
//   - GET  /session
//   - POST /verify-email, GET /verify-email (mailed link)
//   - POST /send-verification-email
//   - POST /request-password-reset, /reset-password
//   - POST /change-password, /change-email (authenticated)
//   - GET  /confirm-email-change (mailed link)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/sign-up", handler.signUp)
	router.Post("/sign-in", handler.signIn)
	router.Post("/sign-out", handler.signOut)
	router.Post("/refresh", handler.refresh)
	router.Get("/session", handler.getSession)
	router.Post("/verify-email", handler.verifyEmail)
	router.Get("/verify-email", handler.verifyEmailLink)
	router.Post("/send-verification-email", handler.sendVerificationEmail)
	router.Post("/request-password-reset", handler.requestPasswordReset)
	router.Post("/reset-password", handler.resetPassword)
	router.Get("/confirm-email-change", handler.confirmEmailChangeLink)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/change-password", handler.changePassword)
		r.Post("/change-email", handler.changeEmail)
	})

	return router
}

// AdminRoutes returns the operator endpoints. Every route requires [sec.RoleAdmin].
//
// # Endpoints
//   - POST /sessions/purge
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))
	router.Post("/sessions/purge", handler.purgeSessions)
	return router
}

// PasswordRules returns the password gate configuration for [PasswordFields].
func PasswordRules() []middleware.PasswordRule {
	rules := make([]middleware.PasswordRule, 0, len(PasswordFields))
	for path, field := range PasswordFields {
		rules = append(rules, middleware.PasswordRule{Path: path, Field: field})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Path < rules[j].Path })
	return rules
}

// # Request Payloads

type signUpRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RememberMe  *bool  `json:"remember_me"`
	CallbackURL string `json:"callback_url"`
}

type signInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type sendVerificationRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callback_url"`
}

type requestPasswordResetRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type changePasswordRequest struct {
	CurrentPassword     string `json:"current_password"`
	NewPassword         string `json:"new_password"`
	RevokeOtherSessions bool   `json:"revoke_other_sessions"`
}

type changeEmailRequest struct {
	NewEmail    string `json:"new_email"`
	CallbackURL string `json:"callback_url"`
}

// # Response Payloads

// SessionResponse is returned by every endpoint that opens a session.
// The raw token lets server-side clients set the cookie on their own origin.
type SessionResponse struct {
	Token       string    `json:"token"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Persistent  bool      `json:"persistent"`
	User        *User     `json:"user"`
}

// StatusResponse acknowledges an operation without a body of its own.
type StatusResponse struct {
	Status bool `json:"status"`
}

// NewSessionResponse converts a [SessionResult] for the wire.
func NewSessionResponse(result *SessionResult) SessionResponse {
	return SessionResponse{
		Token:       result.Token,
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		Persistent:  result.Persistent,
		User:        result.User,
	}
}

func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: request.UserAgent(),
		IPAddress: requestutil.ClientIP(request),
	}
}

// # Registration & Sign-in

/*
SignUp creates an account and opens a session.

POST /api/v1/auth/sign-up

Request:
  - Body: signUpRequest (Name, Email, Password, RememberMe, CallbackURL)

Response:
  - 201: SessionResponse
  - 400: WEAK_PASSWORD (gate) or VALIDATION_ERROR
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := NormalizeName(input.Name)

	validator := &validate.Validator{}
	validator.RequiredMsg(FieldName, name, "Name is required").
		MaxLen(FieldName, name, NameMaxLength).
		Email(FieldEmail, NormalizeEmail(input.Email)).
		Password(FieldPassword, input.Password)
	if input.CallbackURL != "" {
		validator.RelativePath(FieldCallbackURL, input.CallbackURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Sign-up keeps the visitor signed in across restarts unless told otherwise.
	rememberMe := input.RememberMe == nil || *input.RememberMe

	result, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Name:        name,
		Email:       input.Email,
		Password:    input.Password,
		RememberMe:  rememberMe,
		CallbackURL: input.CallbackURL,
		Client:      clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, handler.cookies, result)
	respond.Created(writer, NewSessionResponse(result))
}

/*
SignIn authenticates with email and password.

POST /api/v1/auth/sign-in

Response:
  - 200: SessionResponse
  - 401: UNAUTHORIZED: Invalid email or password
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, NormalizeEmail(input.Email)).
		RequiredMsg(FieldPassword, input.Password, "Password is required")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.SignIn(request.Context(), SignInInput{
		Email:      input.Email,
		Password:   input.Password,
		RememberMe: input.RememberMe,
		Client:     clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, handler.cookies, result)
	respond.OK(writer, NewSessionResponse(result))
}

/*
SignOut terminates the current session.

POST /api/v1/auth/sign-out

Response:
  - 204: No Content (also when no session was present)
*/
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	if token := requestutil.SessionToken(request); token != "" {
		if err := handler.authService.SignOut(request.Context(), token); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	ClearSessionCookie(writer, handler.cookies)
	respond.NoContent(writer)
}

/*
Refresh rotates the session token and issues a fresh access token.

POST /api/v1/auth/refresh

Response:
  - 200: SessionResponse
  - 401: UNAUTHORIZED: Missing, revoked or expired session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.SessionToken(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	result, err := handler.authService.RefreshSession(request.Context(), token, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, handler.cookies, result)
	respond.OK(writer, NewSessionResponse(result))
}

/*
GetSession returns the current session and its user.

GET /api/v1/auth/session

Response:
  - 200: SessionView
  - 401: UNAUTHORIZED: No active session
*/
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.SessionToken(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	view, err := handler.authService.GetSession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

// # Email Verification

/*
VerifyEmail consumes a verification token.

POST /api/v1/auth/verify-email

Response:
  - 200: StatusResponse
  - 400: INVALID_TOKEN
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

/*
VerifyEmailLink is the target of the mailed verification link.

GET /api/v1/auth/verify-email?token=...&callback_url=...

Response:
  - 302: To PUBLIC_URL + callback_url, with "?error=INVALID_TOKEN" on failure
*/
func (handler *Handler) verifyEmailLink(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	callback := safeCallback(query.Get(FieldCallbackURL), DefaultVerifyCallback)

	err := handler.authService.VerifyEmail(request.Context(), query.Get(FieldToken))
	handler.redirectOutcome(writer, request, callback, err)
}

/*
SendVerificationEmail mails a fresh verification link.

POST /api/v1/auth/send-verification-email

Response:
  - 200: StatusResponse (also for unknown or verified addresses)
*/
func (handler *Handler) sendVerificationEmail(writer http.ResponseWriter, request *http.Request) {
	var input sendVerificationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, NormalizeEmail(input.Email))
	if input.CallbackURL != "" {
		validator.RelativePath(FieldCallbackURL, input.CallbackURL)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SendVerificationEmail(request.Context(), input.Email, input.CallbackURL); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

// # Password Recovery

/*
RequestPasswordReset mails a reset link if the account exists.

POST /api/v1/auth/request-password-reset

Request:
  - Body: requestPasswordResetRequest (Email, RedirectTo)

Response:
  - 200: StatusResponse (identical for unknown addresses)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input requestPasswordResetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, NormalizeEmail(input.Email))
	if input.RedirectTo != "" {
		validator.RelativePath(FieldRedirectTo, input.RedirectTo)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email, input.RedirectTo); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

/*
ResetPassword completes a reset with the mailed token.

POST /api/v1/auth/reset-password

Response:
  - 200: StatusResponse
  - 400: WEAK_PASSWORD (gate), VALIDATION_ERROR or INVALID_TOKEN
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Token == "" {
		input.Token = request.URL.Query().Get(FieldToken)
	}

	validator := &validate.Validator{}
	validator.RequiredMsg(FieldToken, input.Token, "Reset token is missing").
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

/*
ChangePassword updates the password of the signed-in user.

POST /api/v1/auth/change-password

Response:
  - 200: StatusResponse
  - 400: WEAK_PASSWORD (gate) or VALIDATION_ERROR (wrong current password)
  - 401: UNAUTHORIZED
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.RequiredMsg(FieldCurrentPassword, input.CurrentPassword, "Current password is required").
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		UserID:              claims.UserID,
		SessionID:           claims.SessionID,
		CurrentPassword:     input.CurrentPassword,
		NewPassword:         input.NewPassword,
		RevokeOtherSessions: input.RevokeOtherSessions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

// # Email Change

/*
ChangeEmail requests an address change, confirmed from the current address.

POST /api/v1/auth/change-email

Response:
  - 200: StatusResponse
  - 400: VALIDATION_ERROR (same address, address in use)
*/
func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldNewEmail, NormalizeEmail(input.NewEmail))
	if input.CallbackURL != "" {
		validator.RelativePath(FieldCallbackURL, input.CallbackURL)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangeEmail(request.Context(), userID, input.NewEmail, input.CallbackURL); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, StatusResponse{Status: true})
}

/*
ConfirmEmailChangeLink is the target of the mailed confirmation link.

GET /api/v1/auth/confirm-email-change?token=...

Response:
  - 302: To PUBLIC_URL + the requested callback, or the default callback
    with "?error=INVALID_TOKEN" on failure
*/
func (handler *Handler) confirmEmailChangeLink(writer http.ResponseWriter, request *http.Request) {
	callback, err := handler.authService.ConfirmEmailChange(request.Context(), request.URL.Query().Get(FieldToken))
	handler.redirectOutcome(writer, request, safeCallback(callback, DefaultEmailChangeCallback), err)
}

// # Helpers

// redirectOutcome sends the browser back to the web app, tagging failures.
func (handler *Handler) redirectOutcome(writer http.ResponseWriter, request *http.Request, callback string, err error) {
	target := handler.publicURL + callback
	if err != nil {
		appError := respond.Resolve(request, err)
		target = appendQuery(target, "error", appError.Code)
	}
	http.Redirect(writer, request, target, http.StatusFound)
}

// safeCallback keeps redirects on our own origin.
func safeCallback(callback, fallback string) string {
	if callback == "" || !validate.IsRelativePath(callback) {
		return fallback
	}
	if parsed, err := url.Parse(callback); err != nil || parsed.Host != "" {
		return fallback
	}
	return callback
}

// # Administration

/*
purgeSessions handles POST /admin/sessions/purge.

Deletes expired session rows now instead of waiting for the background sweep.

Response:
  - 200: {"data": {"removed": 3}}
  - 403: FORBIDDEN for non-admin callers
*/
func (handler *Handler) purgeSessions(writer http.ResponseWriter, request *http.Request) {
	removed, err := handler.authService.PurgeExpiredSessions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int64{"removed": removed})
}
