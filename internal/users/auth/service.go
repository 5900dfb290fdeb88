// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(principal sec.AuthClaims, timeToLive time.Duration) (string, error)
}

// Mailer dispatches the links of the confirmation flow.
type Mailer interface {
	SendVerification(context context.Context, to, name, link string) error
	SendPasswordReset(context context.Context, to, name, link string) error
	SendEmailChange(context context.Context, to, name, newEmail, link string) error
}

// Links holds the public origins mailed links are built from.
type Links struct {
	// PublicURL is the web forms origin (reset links land there).
	PublicURL string
	// APIURL is this API's public origin (verification and email-change links).
	APIURL string
}

// Dependencies groups everything [NewService] needs.
type Dependencies struct {
	Users             UserRepository
	Sessions          SessionRepository
	Identities        IdentityRepository
	SessionCache      SessionCache
	ResetTokens       TokenRepository
	VerifyTokens      TokenRepository
	EmailChangeTokens TokenRepository
	Tokens            TokenProvider
	Mailer            Mailer
	Links             Links
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, sign-in
// or token handling must be reviewed by the security team.
type Service struct {
	users             UserRepository
	sessions          SessionRepository
	identities        IdentityRepository
	sessionCache      SessionCache
	resetTokens       TokenRepository
	verifyTokens      TokenRepository
	emailChangeTokens TokenRepository
	tokens            TokenProvider
	mailer            Mailer
	links             Links
	now               func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(deps Dependencies) *Service {
	return &Service{
		users:             deps.Users,
		sessions:          deps.Sessions,
		identities:        deps.Identities,
		sessionCache:      deps.SessionCache,
		resetTokens:       deps.ResetTokens,
		verifyTokens:      deps.VerifyTokens,
		emailChangeTokens: deps.EmailChangeTokens,
		tokens:            deps.Tokens,
		mailer:            deps.Mailer,
		links:             deps.Links,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ClientInfo describes the device a session is opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// SessionResult is a freshly opened session.
type SessionResult struct {
	Token       string
	AccessToken string
	ExpiresAt   time.Time
	Persistent  bool
	Session     *Session
	User        *User
}

// SessionView is what GET /session returns.
type SessionView struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}

// NameMaxLength bounds display names, in characters.
const NameMaxLength = 50

// NormalizeName trims a display name and applies Unicode NFC.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// # Registration Flow

// SignUpInput holds the data required to enroll a new account.
type SignUpInput struct {
	Name        string
	Email       string
	Password    string
	RememberMe  bool
	CallbackURL string
	Client      ClientInfo
}

/*
SignUp creates a password account, mails a verification link and opens a session.

Parameters:
  - context: context.Context
  - input: SignUpInput (validated by the handler)

Returns:
  - *SessionResult: The new session
  - error: Conflict if the email is registered, or storage errors
*/
func (service *Service) SignUp(context context.Context, input SignUpInput) (*SessionResult, error) {
	email := NormalizeEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict err.
	if _, err := service.users.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("An account with this email already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         NormalizeName(input.Name),
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	// A mail outage must not block registration; the user can ask for a new link.
	if err := service.sendVerification(context, user, input.CallbackURL); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verification_mail_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return service.openSession(context, user, input.RememberMe, input.Client)
}

// # Authentication Flow

// SignInInput defines credentials for an authentication attempt.
type SignInInput struct {
	Email      string
	Password   string
	RememberMe bool
	Client     ClientInfo
}

/*
SignIn validates credentials and opens a session.

Remember-me selects a persistent 30-day session; otherwise the session lasts
a day and its cookie ends with the browser.

Returns:
  - *SessionResult: The new session
  - error: Unauthorized with a generic message to prevent enumeration
*/
func (service *Service) SignIn(context context.Context, input SignInInput) (*SessionResult, error) {
	invalid := apperr.Unauthorized("Invalid email or password")

	user, err := service.users.FindByEmail(context, NormalizeEmail(input.Email))
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		// Same cost as a wrong password.
		sec.CheckPasswordHash(input.Password, "")
		return nil, invalid
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, invalid
	}

	return service.openSession(context, user, input.RememberMe, input.Client)
}

// SignOut revokes the session behind token. Unknown tokens succeed (idempotent).
func (service *Service) SignOut(context context.Context, token string) error {
	tokenHash := sec.HashToken(token)

	current, err := service.sessions.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	if _, err := service.sessions.Revoke(context, current.UserID, current.ID); err != nil && !apperr.IsNotFound(err) {
		return fmt.Errorf("auth_service_sign_out_failed: %w", err)
	}

	service.evict(context, tokenHash)
	return nil
}

/*
RefreshSession rotates a session token and issues a fresh access token.

The old session is revoked before the new one is opened so a stolen token
cannot be replayed after the owner refreshes.
*/
func (service *Service) RefreshSession(context context.Context, token string, client ClientInfo) (*SessionResult, error) {
	tokenHash := sec.HashToken(token)

	current, err := service.sessions.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Session expired")
		}
		return nil, err
	}
	if !current.Active(service.now()) {
		return nil, apperr.Unauthorized("Session expired")
	}

	if _, err := service.sessions.Revoke(context, current.UserID, current.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}
	service.evict(context, tokenHash)

	user, err := service.users.FindByID(context, current.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Session expired")
	}

	return service.openSession(context, user, current.Persistent, client)
}

// GetSession returns the active session behind token and its user.
func (service *Service) GetSession(context context.Context, token string) (*SessionView, error) {
	current, err := service.sessions.FindByTokenHash(context, sec.HashToken(token))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Session expired")
		}
		return nil, err
	}
	if !current.Active(service.now()) {
		return nil, apperr.Unauthorized("Session expired")
	}

	user, err := service.users.FindByID(context, current.UserID)
	if err != nil {
		return nil, err
	}

	return &SessionView{Session: current, User: user}, nil
}

/*
ResolveSession turns a session cookie into request claims.

Lookups go through the Redis cache first; a miss reads Postgres and fills the
cache for at most [SessionCacheTTL]. Cache failures degrade to the database.
*/
func (service *Service) ResolveSession(context context.Context, token string) (*sec.AuthClaims, error) {
	tokenHash := sec.HashToken(token)
	now := service.now()
	logger := ctxutil.GetLogger(context)

	cached, err := service.sessionCache.Get(context, tokenHash)
	if err != nil {
		logger.WarnContext(context, "session_cache_read_failed", slog.Any("error", err))
	}
	if cached != nil && now.Before(cached.ExpiresAt) {
		return cached.claims(), nil
	}

	current, err := service.sessions.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Session expired")
		}
		return nil, err
	}
	if !current.Active(now) {
		return nil, apperr.Unauthorized("Session expired")
	}

	user, err := service.users.FindByID(context, current.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Session expired")
		}
		return nil, err
	}

	entry := &CachedSession{
		SessionID: current.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		ExpiresAt: current.ExpiresAt,
	}

	ttl := min(SessionCacheTTL, current.ExpiresAt.Sub(now))
	if err := service.sessionCache.Set(context, tokenHash, entry, ttl); err != nil {
		logger.WarnContext(context, "session_cache_write_failed", slog.Any("error", err))
	}

	return entry.claims(), nil
}

func (entry *CachedSession) claims() *sec.AuthClaims {
	return &sec.AuthClaims{
		UserID:    entry.UserID,
		Email:     entry.Email,
		Role:      entry.Role,
		SessionID: entry.SessionID,
	}
}

// # Email Verification

type verificationPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

/*
VerifyEmail consumes a verification token and marks the address verified.

The token is bound to the address it was mailed to; after an email change
an older link no longer verifies anything.
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	raw, err := service.verifyTokens.Consume(context, token)
	if err != nil {
		return err
	}

	var payload verificationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return apperr.InvalidToken("Verification link is invalid or has expired")
	}

	user, err := service.users.FindByID(context, payload.UserID)
	if err != nil {
		return err
	}
	if user.Email != payload.Email {
		return apperr.InvalidToken("Verification link is invalid or has expired")
	}

	if err := service.users.MarkVerified(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}
	return nil
}

// SendVerificationEmail mails a fresh link to an unverified account.
// Unknown and already verified addresses succeed silently.
func (service *Service) SendVerificationEmail(context context.Context, email, callbackURL string) error {
	user, err := service.users.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return service.sendVerification(context, user, callbackURL)
}

func (service *Service) sendVerification(context context.Context, user *User, callbackURL string) error {
	if callbackURL == "" {
		callbackURL = DefaultVerifyCallback
	}

	token, err := sec.GenerateSecureToken()
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(verificationPayload{UserID: user.ID, Email: user.Email})
	if err := service.verifyTokens.Set(context, token, string(payload), VerificationTokenTTL); err != nil {
		return err
	}

	link := service.links.APIURL + APIPrefix + "/verify-email?" + url.Values{
		FieldToken:       {token},
		FieldCallbackURL: {callbackURL},
	}.Encode()

	return service.mailer.SendVerification(context, user.Email, user.Name, link)
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow.

A reset token is minted and the link PUBLIC_URL + redirectTo + "?token=" is
mailed. Unknown addresses succeed silently so the response never reveals
whether an account exists; mail failures are logged for the same reason.
*/
func (service *Service) RequestPasswordReset(context context.Context, email, redirectTo string) error {
	logger := ctxutil.GetLogger(context)

	user, err := service.users.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			logger.InfoContext(context, "password_reset_unknown_email")
			return nil
		}
		return err
	}

	token, err := sec.GenerateSecureToken()
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokens.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	if redirectTo == "" {
		redirectTo = DefaultResetRedirect
	}
	link := appendQuery(service.links.PublicURL+redirectTo, FieldToken, token)

	if err := service.mailer.SendPasswordReset(context, user.Email, user.Name, link); err != nil {
		logger.ErrorContext(context, "password_reset_mail_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
	return nil
}

/*
ResetPassword completes the forgot-password flow.

The token is consumed once, the new hash stored, and every session of the
user revoked so a stolen session dies with the old password.
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokens.Consume(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	revoked, err := service.sessions.RevokeAll(context, userID)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_revoke_failed: %w", err)
	}
	service.evict(context, revoked...)

	return nil
}

// ChangePasswordInput carries an authenticated password change.
type ChangePasswordInput struct {
	UserID              string
	SessionID           string
	CurrentPassword     string
	NewPassword         string
	RevokeOtherSessions bool
}

/*
ChangePassword verifies the current password and stores the new one.

Returns:
  - error: VALIDATION_ERROR on current_password when it does not match
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {
	user, err := service.users.FindByID(context, input.UserID)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldCurrentPassword,
			Message: "This account signs in with a social provider and has no password",
		})
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldCurrentPassword,
			Message: "Current password is incorrect",
		})
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	if input.RevokeOtherSessions {
		if err := service.RevokeOtherSessions(context, user.ID, input.SessionID); err != nil {
			return err
		}
	}

	return nil
}

// # Email Change

/*
ChangeEmail starts an address change.

The confirmation link goes to the CURRENT address; nothing changes until it
is opened. callbackURL is where the browser lands after confirmation.
*/
func (service *Service) ChangeEmail(context context.Context, userID, newEmail, callbackURL string) error {
	newEmail = NormalizeEmail(newEmail)

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}

	if newEmail == user.Email {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldNewEmail,
			Message: "New email must be different from the current one",
		})
	}

	if _, err := service.users.FindByEmail(context, newEmail); err == nil {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldNewEmail,
			Message: "Email is already in use",
		})
	} else if !apperr.IsNotFound(err) {
		return err
	}

	if callbackURL == "" {
		callbackURL = DefaultEmailChangeCallback
	}

	token, err := sec.GenerateSecureToken()
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(emailChange{UserID: user.ID, NewEmail: newEmail, CallbackURL: callbackURL})
	if err := service.emailChangeTokens.Set(context, token, string(payload), EmailChangeTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_email_change_token_failed: %w", err)
	}

	link := service.links.APIURL + APIPrefix + "/confirm-email-change?" + url.Values{FieldToken: {token}}.Encode()

	if err := service.mailer.SendEmailChange(context, user.Email, user.Name, newEmail, link); err != nil {
		return fmt.Errorf("auth_service_email_change_mail_failed: %w", err)
	}
	return nil
}

/*
ConfirmEmailChange applies a confirmed address change.

The token is consumed once; the new address is stored unverified, a
verification link is mailed to it, and cached sessions are evicted so no
request keeps seeing the old address.

Returns:
  - string: The callback URL recorded when the change was requested
*/
func (service *Service) ConfirmEmailChange(context context.Context, token string) (string, error) {
	raw, err := service.emailChangeTokens.Consume(context, token)
	if err != nil {
		return "", err
	}

	var change emailChange
	if err := json.Unmarshal([]byte(raw), &change); err != nil {
		return "", apperr.InvalidToken("Confirmation link is invalid or has expired")
	}

	user, err := service.users.FindByID(context, change.UserID)
	if err != nil {
		return "", err
	}

	if err := service.users.UpdateEmail(context, user.ID, change.NewEmail); err != nil {
		return "", err
	}
	user.Email = change.NewEmail
	user.EmailVerified = false

	if active, err := service.sessions.ListActive(context, user.ID); err == nil {
		hashes := make([]string, 0, len(active))
		for _, item := range active {
			hashes = append(hashes, item.TokenHash)
		}
		service.evict(context, hashes...)
	}

	if err := service.sendVerification(context, user, change.CallbackURL); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verification_mail_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return change.CallbackURL, nil
}

// # Social Sign-in

/*
SignInSocial opens a session for an external identity.

Resolution order: an existing link; otherwise an account with the same
address, linked only when the provider vouches for the address; otherwise a
new account without a password.
*/
func (service *Service) SignInSocial(context context.Context, profile SocialProfile, client ClientInfo) (*SessionResult, error) {
	link, err := service.identities.FindByProviderSubject(context, profile.Provider, profile.Subject)
	if err == nil {
		user, err := service.users.FindByID(context, link.UserID)
		if err != nil {
			return nil, err
		}
		return service.openSession(context, user, true, client)
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	email := NormalizeEmail(profile.Email)
	if email == "" {
		return nil, apperr.Unprocessable("The provider did not share an email address")
	}

	user, err := service.users.FindByEmail(context, email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, apperr.Conflict("An account with this email already exists. Sign in with your password first.")
		}
		if !user.EmailVerified {
			if err := service.users.MarkVerified(context, user.ID); err != nil {
				return nil, err
			}
			user.EmailVerified = true
		}

	case apperr.IsNotFound(err):
		user, err = service.createSocialUser(context, email, profile)
		if err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	if err := service.identities.Create(context, &Identity{
		ID:       uuid.New(),
		UserID:   user.ID,
		Provider: profile.Provider,
		Subject:  profile.Subject,
		Email:    email,
	}); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "social_identity_linked",
		slog.String("user_id", user.ID),
		slog.String("provider", profile.Provider),
	)

	return service.openSession(context, user, true, client)
}

func (service *Service) createSocialUser(context context.Context, email string, profile SocialProfile) (*User, error) {
	name := NormalizeName(profile.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if runes := []rune(name); len(runes) > NameMaxLength {
		name = string(runes[:NameMaxLength])
	}

	user := &User{
		ID:            uuid.New(),
		Email:         email,
		Name:          name,
		Role:          sec.RoleUser,
		EmailVerified: profile.EmailVerified,
	}
	if profile.Image != "" {
		image := profile.Image
		user.Image = &image
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}
	return user, nil
}

// # Session Management

// ListSessions returns the user's active sessions.
func (service *Service) ListSessions(context context.Context, userID string) ([]*Session, error) {
	return service.sessions.ListActive(context, userID)
}

// RevokeSession revokes one of the user's sessions.
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	tokenHash, err := service.sessions.Revoke(context, userID, sessionID)
	if err != nil {
		return err
	}
	service.evict(context, tokenHash)
	return nil
}

// RevokeOtherSessions revokes every session of the user except currentSessionID.
func (service *Service) RevokeOtherSessions(context context.Context, userID, currentSessionID string) error {
	revoked, err := service.sessions.RevokeOthers(context, userID, currentSessionID)
	if err != nil {
		return fmt.Errorf("auth_service_revoke_others_failed: %w", err)
	}
	service.evict(context, revoked...)
	return nil
}

// PurgeExpiredSessions deletes expired session rows.
func (service *Service) PurgeExpiredSessions(context context.Context) (int64, error) {
	return service.sessions.DeleteExpired(context)
}

// # Internals

// openSession mints a session token, persists its hash and signs an access token.
func (service *Service) openSession(context context.Context, user *User, persistent bool, client ClientInfo) (*SessionResult, error) {
	token, err := sec.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_token_failed: %w", err)
	}

	now := service.now()
	ttl := BrowserSessionTTL
	if persistent {
		ttl = PersistentSessionTTL
	}

	created := &Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		TokenHash:  sec.HashToken(token),
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
		Persistent: persistent,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}

	if err := service.sessions.Create(context, created); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	if err := service.users.TouchLastLogin(context, user.ID, now); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "touch_last_login_failed", slog.Any("error", err))
	}

	accessToken, err := service.tokens.GenerateAccessToken(sec.AuthClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		SessionID: created.ID,
	}, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "session_opened",
		slog.String("user_id", user.ID),
		slog.String("session_id", created.ID),
		slog.Bool("persistent", persistent),
	)

	return &SessionResult{
		Token:       token,
		AccessToken: accessToken,
		ExpiresAt:   created.ExpiresAt,
		Persistent:  persistent,
		Session:     created,
		User:        user,
	}, nil
}

// evict drops sessions from the cache; failures only shorten the cache's usefulness.
func (service *Service) evict(context context.Context, tokenHashes ...string) {
	if err := service.sessionCache.Delete(context, tokenHashes...); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "session_cache_evict_failed", slog.Any("error", err))
	}
}

// appendQuery adds key=value to a URL that may already carry a query string.
func appendQuery(target, key, value string) string {
	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}
	return target + separator + url.Values{key: {value}}.Encode()
}
