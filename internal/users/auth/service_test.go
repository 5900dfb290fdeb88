// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

/*
TestSignUp_CreatesAccountAndSession checks the happy path of registration.
*/
func TestSignUp_CreatesAccountAndSession(t *testing.T) {
	f := newFixture()

	result := f.signUp(t, "  Tai@Example.com ")

	assert.Equal(t, "tai@example.com", result.User.Email)
	assert.True(t, result.Persistent)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "access-"+result.Session.ID, result.AccessToken)
	assert.WithinDuration(t, time.Now().Add(auth.PersistentSessionTTL), result.ExpiresAt, time.Minute)

	stored := f.users.get(t, result.User.ID)
	assert.True(t, sec.CheckPasswordHash(testPassword, stored.PasswordHash))
	assert.False(t, stored.EmailVerified)
	assert.Equal(t, sec.RoleUser, stored.Role)

	mail := f.mailer.last(t, "verify")
	assert.Equal(t, "tai@example.com", mail.To)
	assert.True(t, strings.HasPrefix(mail.Link, testAPIURL+auth.APIPrefix+"/verify-email?"))
	assert.Contains(t, mail.Link, "callback_url=%2Fdashboard")
}

/*
TestSignUp_DuplicateEmail rejects an address registered with different casing.
*/
func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")

	_, err := f.service.SignUp(context.Background(), auth.SignUpInput{
		Name:     "Other",
		Email:    "TAI@example.com",
		Password: testPassword,
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

/*
TestSignUp_MailOutage still registers the user.
*/
func TestSignUp_MailOutage(t *testing.T) {
	f := newFixture()
	f.mailer.fail = true

	result := f.signUp(t, "tai@example.com")
	assert.NotEmpty(t, result.Token)
}

/*
TestSignIn covers credentials and the remember-me lifetime.
*/
func TestSignIn(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	ctx := context.Background()

	t.Run("browser_session_without_remember_me", func(t *testing.T) {
		result, err := f.service.SignIn(ctx, auth.SignInInput{Email: "tai@example.com", Password: testPassword})
		require.NoError(t, err)
		assert.False(t, result.Persistent)
		assert.WithinDuration(t, time.Now().Add(auth.BrowserSessionTTL), result.ExpiresAt, time.Minute)
	})

	t.Run("persistent_with_remember_me", func(t *testing.T) {
		result, err := f.service.SignIn(ctx, auth.SignInInput{Email: "tai@example.com", Password: testPassword, RememberMe: true})
		require.NoError(t, err)
		assert.True(t, result.Persistent)
		assert.WithinDuration(t, time.Now().Add(auth.PersistentSessionTTL), result.ExpiresAt, time.Minute)
	})

	t.Run("wrong_password_and_unknown_email_look_alike", func(t *testing.T) {
		_, wrong := f.service.SignIn(ctx, auth.SignInInput{Email: "tai@example.com", Password: "Wr0ng!pass"})
		_, unknown := f.service.SignIn(ctx, auth.SignInInput{Email: "nobody@example.com", Password: testPassword})

		require.Error(t, wrong)
		require.Error(t, unknown)
		assert.Equal(t, wrong.Error(), unknown.Error())
		assert.True(t, apperr.IsCode(wrong, apperr.CodeUnauthorized))
	})
}

/*
TestSignOut revokes the session and evicts it from the cache.
*/
func TestSignOut(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	_, err := f.service.ResolveSession(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(ctx, result.Token))
	assert.Contains(t, f.cache.evicted, sec.HashToken(result.Token))

	_, err = f.service.ResolveSession(ctx, result.Token)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	// Unknown tokens are a no-op.
	assert.NoError(t, f.service.SignOut(ctx, "unknown"))
}

/*
TestRefreshSession rotates the token and keeps the lifetime class.
*/
func TestRefreshSession(t *testing.T) {
	f := newFixture()
	first := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	second, err := f.service.RefreshSession(ctx, first.Token, auth.ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.Persistent)

	_, err = f.service.RefreshSession(ctx, first.Token, auth.ClientInfo{})
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

/*
TestResolveSession_ReadThrough fills the cache on a miss.
*/
func TestResolveSession_ReadThrough(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	claims, err := f.service.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, result.Session.ID, claims.SessionID)

	cached, _ := f.cache.Get(ctx, sec.HashToken(result.Token))
	require.NotNil(t, cached)
	assert.Equal(t, "tai@example.com", cached.Email)

	view, err := f.service.GetSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, view.Session.ID)
}

/*
TestVerifyEmail consumes the mailed link exactly once.
*/
func TestVerifyEmail(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	token := tokenFrom(t, f.mailer.last(t, "verify").Link)

	require.NoError(t, f.service.VerifyEmail(ctx, token))
	assert.True(t, f.users.get(t, result.User.ID).EmailVerified)

	err := f.service.VerifyEmail(ctx, token)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

/*
TestVerifyEmail_StaleAddress refuses a link minted for a previous address.
*/
func TestVerifyEmail_StaleAddress(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	stale := tokenFrom(t, f.mailer.last(t, "verify").Link)
	require.NoError(t, f.users.UpdateEmail(ctx, result.User.ID, "new@example.com"))

	err := f.service.VerifyEmail(ctx, stale)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

/*
TestSendVerificationEmail skips verified and unknown accounts silently.
*/
func TestSendVerificationEmail(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.SendVerificationEmail(ctx, "tai@example.com", "/profile"))
	assert.Equal(t, 2, f.mailer.count("verify"))
	assert.Contains(t, f.mailer.last(t, "verify").Link, "callback_url=%2Fprofile")

	require.NoError(t, f.service.SendVerificationEmail(ctx, "nobody@example.com", ""))
	assert.Equal(t, 2, f.mailer.count("verify"))

	require.NoError(t, f.users.MarkVerified(ctx, result.User.ID))
	require.NoError(t, f.service.SendVerificationEmail(ctx, "tai@example.com", ""))
	assert.Equal(t, 2, f.mailer.count("verify"))
}

/*
TestRequestPasswordReset never reveals whether an account exists.
*/
func TestRequestPasswordReset(t *testing.T) {
	f := newFixture()
	f.signUp(t, "tai@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.RequestPasswordReset(ctx, "nobody@example.com", ""))
	assert.Equal(t, 0, f.mailer.count("reset"))

	require.NoError(t, f.service.RequestPasswordReset(ctx, "TAI@example.com", ""))
	link := f.mailer.last(t, "reset").Link
	assert.True(t, strings.HasPrefix(link, testPublicURL+"/reset-password?token="))

	require.NoError(t, f.service.RequestPasswordReset(ctx, "tai@example.com", "/custom-reset"))
	assert.True(t, strings.HasPrefix(f.mailer.last(t, "reset").Link, testPublicURL+"/custom-reset?token="))

	f.mailer.fail = true
	assert.NoError(t, f.service.RequestPasswordReset(ctx, "tai@example.com", ""))
}

/*
TestResetPassword applies the new password and revokes every session.
*/
func TestResetPassword(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.RequestPasswordReset(ctx, "tai@example.com", ""))
	token := tokenFrom(t, f.mailer.last(t, "reset").Link)

	require.NoError(t, f.service.ResetPassword(ctx, token, "N3w!password"))

	stored := f.users.get(t, result.User.ID)
	assert.True(t, sec.CheckPasswordHash("N3w!password", stored.PasswordHash))
	assert.Equal(t, 0, f.sessions.activeCount(result.User.ID))

	err := f.service.ResetPassword(ctx, token, "An0ther!password")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

/*
TestChangePassword covers the current-password check and session revocation.
*/
func TestChangePassword(t *testing.T) {
	f := newFixture()
	current := f.signUp(t, "tai@example.com")
	ctx := context.Background()

	_, err := f.service.SignIn(ctx, auth.SignInInput{Email: "tai@example.com", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, 2, f.sessions.activeCount(current.User.ID))

	t.Run("wrong_current_password", func(t *testing.T) {
		err := f.service.ChangePassword(ctx, auth.ChangePasswordInput{
			UserID:          current.User.ID,
			CurrentPassword: "Wr0ng!pass",
			NewPassword:     "N3w!password",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		detail, ok := appError.Field(auth.FieldCurrentPassword)
		require.True(t, ok)
		assert.Equal(t, "Current password is incorrect", detail.Message)
	})

	t.Run("revokes_other_sessions", func(t *testing.T) {
		err := f.service.ChangePassword(ctx, auth.ChangePasswordInput{
			UserID:              current.User.ID,
			SessionID:           current.Session.ID,
			CurrentPassword:     testPassword,
			NewPassword:         "N3w!password",
			RevokeOtherSessions: true,
		})
		require.NoError(t, err)

		active, _ := f.sessions.ListActive(ctx, current.User.ID)
		require.Len(t, active, 1)
		assert.Equal(t, current.Session.ID, active[0].ID)
		assert.True(t, sec.CheckPasswordHash("N3w!password", f.users.get(t, current.User.ID).PasswordHash))
	})
}

/*
TestChangeEmail_Flow walks the request, confirm and re-verify steps.
*/
func TestChangeEmail_Flow(t *testing.T) {
	f := newFixture()
	result := f.signUp(t, "tai@example.com")
	f.signUp(t, "taken@example.com")
	ctx := context.Background()

	t.Run("same_address", func(t *testing.T) {
		err := f.service.ChangeEmail(ctx, result.User.ID, "TAI@example.com", "")
		_, ok := apperr.As(err).Field(auth.FieldNewEmail)
		assert.True(t, ok)
	})

	t.Run("address_in_use", func(t *testing.T) {
		err := f.service.ChangeEmail(ctx, result.User.ID, "taken@example.com", "")
		detail, ok := apperr.As(err).Field(auth.FieldNewEmail)
		require.True(t, ok)
		assert.Equal(t, "Email is already in use", detail.Message)
	})

	t.Run("confirmed_from_current_address", func(t *testing.T) {
		require.NoError(t, f.service.ChangeEmail(ctx, result.User.ID, "new@example.com", ""))

		mail := f.mailer.last(t, "change")
		assert.Equal(t, "tai@example.com", mail.To)
		assert.Equal(t, "new@example.com", mail.NewEmail)
		assert.True(t, strings.HasPrefix(mail.Link, testAPIURL+auth.APIPrefix+"/confirm-email-change?token="))

		// Nothing changes before confirmation.
		assert.Equal(t, "tai@example.com", f.users.get(t, result.User.ID).Email)

		token := tokenFrom(t, mail.Link)
		callback, err := f.service.ConfirmEmailChange(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultEmailChangeCallback, callback)

		stored := f.users.get(t, result.User.ID)
		assert.Equal(t, "new@example.com", stored.Email)
		assert.False(t, stored.EmailVerified)
		assert.Equal(t, "new@example.com", f.mailer.last(t, "verify").To)

		_, err = f.service.ConfirmEmailChange(ctx, token)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
	})
}

/*
TestSignInSocial covers linking rules for external identities.
*/
func TestSignInSocial(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_passwordless_account", func(t *testing.T) {
		f := newFixture()
		profile := auth.SocialProfile{Provider: "github", Subject: "42", Email: "Octo@Example.com", EmailVerified: true}

		first, err := f.service.SignInSocial(ctx, profile, auth.ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, "octo@example.com", first.User.Email)
		assert.Equal(t, "octo", first.User.Name)
		assert.False(t, first.User.HasPassword())

		second, err := f.service.SignInSocial(ctx, profile, auth.ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
	})

	t.Run("unverified_provider_email_conflicts", func(t *testing.T) {
		f := newFixture()
		f.signUp(t, "tai@example.com")

		_, err := f.service.SignInSocial(ctx, auth.SocialProfile{
			Provider: "google", Subject: "1", Email: "tai@example.com",
		}, auth.ClientInfo{})
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("verified_provider_email_links", func(t *testing.T) {
		f := newFixture()
		existing := f.signUp(t, "tai@example.com")

		result, err := f.service.SignInSocial(ctx, auth.SocialProfile{
			Provider: "google", Subject: "1", Email: "tai@example.com", EmailVerified: true,
		}, auth.ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, existing.User.ID, result.User.ID)
		assert.True(t, f.users.get(t, existing.User.ID).EmailVerified)
	})
}

/*
TestNormalizeName trims and composes display names.
*/
func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Tài", auth.NormalizeName("  Tài "))
}
