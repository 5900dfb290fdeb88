// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-id/internal/platform/middleware"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// AuthClient is the part of the client SDK the forms use.
// Implemented by [authclient.Client].
type AuthClient interface {
	SignUp(ctx context.Context, input authclient.SignUpInput) (*auth.SessionResponse, error)
	SignIn(ctx context.Context, input authclient.SignInInput) (*auth.SessionResponse, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*auth.SessionView, error)
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, sessionToken string, input authclient.ChangePasswordInput) error
	ChangeEmail(ctx context.Context, sessionToken, newEmail, callbackURL string) error
	UpdateUser(ctx context.Context, sessionToken string, input authclient.UpdateUserInput) (*auth.User, error)
	SocialSignInURL(provider, callbackURL string) string
}

// Handler serves the account forms.
type Handler struct {
	client    AuthClient
	cookies   auth.CookieConfig
	providers []string
}

// NewHandler constructs a new web [Handler]. providers names the social
// sign-in buttons to show.
func NewHandler(client AuthClient, cookies auth.CookieConfig, providers []string) *Handler {
	return &Handler{client: client, cookies: cookies, providers: providers}
}

// Routes returns the page routes with their guards.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(loadSession)

	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, constants.RouteDashboard, http.StatusFound)
	})
	router.Get(constants.RouteEmailVerified, handler.emailVerified)

	// Auth-only
	router.Group(func(r chi.Router) {
		r.Use(handler.redirectIfAuthenticated)

		r.Get(constants.RouteSignIn, handler.signInPage)
		r.Post(constants.RouteSignIn, handler.signIn)
		r.Get(constants.RouteSignUp, handler.signUpPage)
		r.Post(constants.RouteSignUp, handler.signUp)
		r.Get(constants.RouteForgotPassword, handler.forgotPasswordPage)
		r.Post(constants.RouteForgotPassword, handler.forgotPassword)
		r.Get(constants.RouteResetPassword, handler.resetPasswordPage)
		r.Post(constants.RouteResetPassword, handler.resetPassword)
	})

	// Signed-in
	router.Group(func(r chi.Router) {
		r.Use(handler.requireSession)

		r.Get(constants.RouteDashboard, handler.dashboard)
		r.Get(constants.RouteProfile, handler.profilePage)
		r.Post(constants.RouteProfile+"/details", handler.updateDetails)
		r.Post(constants.RouteProfile+"/email", handler.changeEmail)
		r.Post(constants.RouteProfile+"/password", handler.changePassword)
		r.Post("/sign-out", handler.signOut)
	})

	return router
}

// NewRouter wraps the page routes in the shared middleware chain.
func NewRouter(handler *Handler, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))

	router.Mount("/", handler.Routes())
	return router
}

// # Rendering

// render writes a full page. The page is buffered so a template failure
// still produces a clean 500.
func render(writer http.ResponseWriter, request *http.Request, status int, page templ.Component) {
	var buffer bytes.Buffer
	if err := page.Render(request.Context(), &buffer); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "web_render_failed", slog.Any("error", err))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = writer.Write(buffer.Bytes())
}

// failureStatus is the response status for a form rendered after err.
func failureStatus(err error) int {
	if appError := apperr.As(err); appError != nil && appError.HTTPStatus >= http.StatusBadRequest {
		return appError.HTTPStatus
	}
	return http.StatusInternalServerError
}

// socialLinks builds the sign-in buttons for the configured providers.
func (handler *Handler) socialLinks(callback string) []SocialLink {
	title := cases.Title(language.English)

	links := make([]SocialLink, 0, len(handler.providers))
	for _, provider := range handler.providers {
		label := title.String(provider)
		if provider == "github" {
			label = "GitHub"
		}
		links = append(links, SocialLink{Label: label, URL: handler.client.SocialSignInURL(provider, callback)})
	}
	return links
}
