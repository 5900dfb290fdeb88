// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # Messages

const (
	messageGenericFailure = "Something went wrong. Please try again."
	messageResetRequested = "If an account with that email exists, a reset link has been sent."
	messageResetDone      = "Your password has been reset successfully. You can now sign in."
	messageResetLinkBad   = "Reset link is invalid or has expired."
)

// ResetRedirectDelay is how long the reset confirmation stays on screen.
const ResetRedirectDelay = 3 * time.Second

// signInAlerts translates error codes handed back by the social sign-in flow.
var signInAlerts = map[string]string{
	apperr.CodeUnauthorized:    "Sign-in failed or was cancelled. Please try again.",
	apperr.CodeConflict:        "An account with this email already exists. Sign in with your password.",
	apperr.CodeUnknownProvider: "That sign-in provider is not available.",
}

// # Sign In

func (handler *Handler) signInPage(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	form := NewForm(map[string]string{FieldCallbackURL: callbackFrom(query.Get(FieldCallbackURL))})
	if code := query.Get("error"); code != "" {
		form.Alert = signInAlerts[code]
		if form.Alert == "" {
			form.Alert = messageGenericFailure
		}
	}

	render(writer, request, http.StatusOK, signInView(form, handler.socialLinks(form.Get(FieldCallbackURL))))
}

func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	form, ok := parseForm(writer, request, FieldEmail, FieldPassword, FieldRememberMe)
	if !ok {
		return
	}
	form.Values[FieldCallbackURL] = callbackFrom(request.URL.Query().Get(FieldCallbackURL))
	socials := handler.socialLinks(form.Get(FieldCallbackURL))

	if ValidateSignIn(form) != nil {
		form.Clear(FieldPassword)
		render(writer, request, http.StatusUnprocessableEntity, signInView(form, socials))
		return
	}

	result, err := handler.client.SignIn(request.Context(), authclient.SignInInput{
		Email:      strings.TrimSpace(form.Get(FieldEmail)),
		Password:   form.Get(FieldPassword),
		RememberMe: form.Checked(FieldRememberMe),
	})
	if err != nil {
		form.Fail(err, messageGenericFailure)
		form.Clear(FieldPassword)
		render(writer, request, failureStatus(err), signInView(form, socials))
		return
	}

	handler.startSession(writer, result)
	http.Redirect(writer, request, form.Get(FieldCallbackURL), http.StatusSeeOther)
}

// # Sign Up

func (handler *Handler) signUpPage(writer http.ResponseWriter, request *http.Request) {
	render(writer, request, http.StatusOK, signUpView(NewForm(nil)))
}

func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	form, ok := parseForm(writer, request, FieldName, FieldEmail, FieldPassword, FieldPasswordConfirmation)
	if !ok {
		return
	}

	if ValidateSignUp(form) != nil {
		form.Clear(FieldPassword, FieldPasswordConfirmation)
		render(writer, request, http.StatusUnprocessableEntity, signUpView(form))
		return
	}

	result, err := handler.client.SignUp(request.Context(), authclient.SignUpInput{
		Name:       auth.NormalizeName(form.Get(FieldName)),
		Email:      strings.TrimSpace(form.Get(FieldEmail)),
		Password:   form.Get(FieldPassword),
		RememberMe: true,
	})
	if err != nil {
		form.Fail(err, messageGenericFailure)
		form.Clear(FieldPassword, FieldPasswordConfirmation)
		render(writer, request, failureStatus(err), signUpView(form))
		return
	}

	handler.startSession(writer, result)
	http.Redirect(writer, request, constants.RouteDashboard, http.StatusSeeOther)
}

// # Password Recovery

func (handler *Handler) forgotPasswordPage(writer http.ResponseWriter, request *http.Request) {
	render(writer, request, http.StatusOK, forgotPasswordView(NewForm(nil)))
}

func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	form, ok := parseForm(writer, request, FieldEmail)
	if !ok {
		return
	}

	if ValidateForgotPassword(form) != nil {
		render(writer, request, http.StatusUnprocessableEntity, forgotPasswordView(form))
		return
	}

	err := handler.client.RequestPasswordReset(request.Context(), strings.TrimSpace(form.Get(FieldEmail)), constants.RouteResetPassword)
	if err != nil {
		form.Fail(err, messageGenericFailure)
		render(writer, request, failureStatus(err), forgotPasswordView(form))
		return
	}

	form.Succeed(messageResetRequested, true)
	render(writer, request, http.StatusOK, forgotPasswordView(form))
}

func (handler *Handler) resetPasswordPage(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(FieldToken)

	form := NewForm(nil)
	if token == "" {
		form.Alert = messageResetLinkBad
	}
	render(writer, request, http.StatusOK, resetPasswordView(form, token))
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	form, ok := parseForm(writer, request, FieldToken, FieldNewPassword)
	if !ok {
		return
	}

	token := form.Get(FieldToken)
	if token == "" {
		form.Alert = messageResetLinkBad
		render(writer, request, http.StatusBadRequest, resetPasswordView(form, ""))
		return
	}

	if ValidateResetPassword(form) != nil {
		render(writer, request, http.StatusUnprocessableEntity, resetPasswordView(form, token))
		return
	}

	if err := handler.client.ResetPassword(request.Context(), token, form.Get(FieldNewPassword)); err != nil {
		form.Fail(err, messageGenericFailure)
		render(writer, request, failureStatus(err), resetPasswordView(form, token))
		return
	}

	form.Succeed(messageResetDone, true)
	form.Redirect = &DelayedRedirect{To: constants.RouteSignIn, After: ResetRedirectDelay}
	render(writer, request, http.StatusOK, resetPasswordView(form, token))
}

// # Sign Out

func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	if token := requestutil.SessionToken(request); token != "" {
		if err := handler.client.SignOut(ctx, token); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "web_sign_out_failed", slog.Any("error", err))
		}
	}

	auth.ClearSessionCookie(writer, handler.cookies)
	http.Redirect(writer, request, constants.RouteSignIn, http.StatusSeeOther)
}

// # Email Verification

func (handler *Handler) emailVerified(writer http.ResponseWriter, request *http.Request) {
	render(writer, request, http.StatusOK, emailVerifiedView(verificationOutcome(request.URL.Query().Get("error") != "")))
}

// # Helpers

// parseForm reads a urlencoded or multipart body into a [Form].
func parseForm(writer http.ResponseWriter, request *http.Request, fields ...string) (*Form, bool) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxFormBytes)
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}

	form := FormFromValues(request.PostForm, fields...)
	form.Begin()
	return form, true
}

// startSession stores the session cookie issued by the API.
func (handler *Handler) startSession(writer http.ResponseWriter, result *auth.SessionResponse) {
	auth.SetSessionCookie(writer, handler.cookies, &auth.SessionResult{
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt,
		Persistent: result.Persistent,
	})
}

// callbackFrom keeps same-site paths and falls back to the dashboard.
func callbackFrom(value string) string {
	if !validate.IsRelativePath(value) {
		return constants.RouteDashboard
	}
	return value
}
