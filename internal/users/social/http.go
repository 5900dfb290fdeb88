// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// Signer opens a session for an external identity. Implemented by [auth.Service].
type Signer interface {
	SignInSocial(context context.Context, profile auth.SocialProfile, client auth.ClientInfo) (*auth.SessionResult, error)
}

// Handler runs the browser side of the OAuth handshake.
type Handler struct {
	registry  *Registry
	signer    Signer
	cookies   auth.CookieConfig
	publicURL string
}

// NewHandler constructs a new social sign-in [Handler].
func NewHandler(registry *Registry, signer Signer, cookies auth.CookieConfig, publicURL string) *Handler {
	return &Handler{registry: registry, signer: signer, cookies: cookies, publicURL: publicURL}
}

// Register adds the social routes to the auth router.
func (handler *Handler) Register(router chi.Router) {
	router.Get("/sign-in/social/{provider}", handler.start)
	router.Get("/callback/{provider}", handler.callback)
}

// CallbackURL is the redirect URI to register with a provider.
func CallbackURL(apiURL, provider string) string {
	return apiURL + auth.APIPrefix + "/callback/" + provider
}

/*
Start begins a social sign-in.

GET /api/v1/auth/sign-in/social/{provider}?callback_url=/dashboard

Response:
  - 302: To the provider's consent page, with state and PKCE cookies set
  - 302: To /sign-in?error=UNKNOWN_PROVIDER for unregistered providers
*/
func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	provider, err := handler.registry.Get(requestutil.Param(request, "provider"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	callback := request.URL.Query().Get(auth.FieldCallbackURL)
	if !validate.IsRelativePath(callback) {
		callback = constants.RouteDashboard
	}

	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()

	handler.setCookie(writer, constants.OAuthStateCookieName, state)
	handler.setCookie(writer, constants.OAuthVerifierCookieName, verifier)
	handler.setCookie(writer, constants.OAuthCallbackCookieName, callback)

	http.Redirect(writer, request, provider.AuthCodeURL(state, verifier), http.StatusFound)
}

/*
Callback completes a social sign-in.

GET /api/v1/auth/callback/{provider}?code=...&state=...

Response:
  - 302: To PUBLIC_URL + the remembered callback, with the session cookie set
  - 302: To /sign-in?error=<CODE> when the handshake or account linking fails
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	provider, err := handler.registry.Get(requestutil.Param(request, "provider"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	query := request.URL.Query()
	state := readCookie(request, constants.OAuthStateCookieName)
	verifier := readCookie(request, constants.OAuthVerifierCookieName)
	callback := readCookie(request, constants.OAuthCallbackCookieName)
	handler.clearHandshake(writer)

	if state == "" || query.Get("state") != state || verifier == "" {
		handler.fail(writer, request, apperr.Unauthorized("Sign-in request expired, please try again"))
		return
	}

	if providerError := query.Get("error"); providerError != "" {
		logger.WarnContext(ctx, "social_provider_denied",
			slog.String("provider", provider.Name()),
			slog.String("error", providerError),
		)
		handler.fail(writer, request, apperr.Unauthorized("Sign-in was cancelled"))
		return
	}

	profile, err := provider.Exchange(ctx, query.Get("code"), verifier)
	if err != nil {
		logger.WarnContext(ctx, "social_exchange_failed",
			slog.String("provider", provider.Name()),
			slog.Any("error", err),
		)
		handler.fail(writer, request, apperr.Unauthorized("Sign-in failed"))
		return
	}

	result, err := handler.signer.SignInSocial(ctx, *profile, auth.ClientInfo{
		UserAgent: request.UserAgent(),
		IPAddress: requestutil.ClientIP(request),
	})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	if !validate.IsRelativePath(callback) {
		callback = constants.RouteDashboard
	}

	auth.SetSessionCookie(writer, handler.cookies, result)
	http.Redirect(writer, request, handler.publicURL+callback, http.StatusFound)
}

// # Helpers

// fail sends the browser back to the sign-in page with the error code.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	code := apperr.CodeInternal
	if appError := apperr.As(err); appError != nil {
		code = appError.Code
	} else {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "social_sign_in_failed", slog.Any("error", err))
	}

	target := handler.publicURL + constants.RouteSignIn + "?" + url.Values{"error": {code}}.Encode()
	http.Redirect(writer, request, target, http.StatusFound)
}

func (handler *Handler) setCookie(writer http.ResponseWriter, name, value string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     auth.APIPrefix,
		MaxAge:   int(constants.OAuthCookieTTL.Seconds()),
		Secure:   handler.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearHandshake(writer http.ResponseWriter) {
	for _, name := range []string{
		constants.OAuthStateCookieName,
		constants.OAuthVerifierCookieName,
		constants.OAuthCallbackCookieName,
	} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Path:     auth.APIPrefix,
			MaxAge:   -1,
			Secure:   handler.cookies.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func readCookie(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
