// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/taibuivan/yomira-id/internal/users/auth"
)

const (
	googleName   = "google"
	googleIssuer = "https://accounts.google.com"
)

// Google signs users in with Google accounts through OIDC discovery.
type Google struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// NewGoogle discovers Google's OIDC configuration.
// redirectURL is the absolute callback URL registered with Google.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL string) (*Google, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google_config_incomplete")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google_discovery_failed: %w", err)
	}

	return &Google{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Name implements [Provider].
func (google *Google) Name() string { return googleName }

// AuthCodeURL implements [Provider].
func (google *Google) AuthCodeURL(state, verifier string) string {
	return google.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the code for tokens and reads the verified ID token.
func (google *Google) Exchange(ctx context.Context, code, verifier string) (*auth.SocialProfile, error) {
	token, err := google.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("google_token_exchange_failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google_id_token_missing")
	}

	idToken, err := google.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google_id_token_invalid: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google_id_token_claims_failed: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("google_id_token_subject_missing")
	}

	return &auth.SocialProfile{
		Provider:      googleName,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Image:         claims.Picture,
	}, nil
}
