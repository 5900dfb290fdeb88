// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package social implements sign-in through external identity providers.

Providers only report identity facts. Deciding whether to create, link or
reject an account is left to [auth.Service.SignInSocial].

# Flow

	GET /api/v1/auth/sign-in/social/{provider}  → state + PKCE cookies, redirect
	GET /api/v1/auth/callback/{provider}        → verify state, exchange code,
	                                              open session, redirect to web
*/
package social

import (
	"context"
	"sort"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// Provider is an OAuth2 / OIDC identity provider.
type Provider interface {
	// Name returns the provider identifier used in routes ("google", "github").
	Name() string

	// AuthCodeURL returns the authorization URL for state and the PKCE verifier.
	AuthCodeURL(state, verifier string) string

	// Exchange trades the authorization code for the caller's profile.
	Exchange(context context.Context, code, verifier string) (*auth.SocialProfile, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers providers by name. Provider names must be unique.
func NewRegistry(providers ...Provider) *Registry {
	registry := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, provider := range providers {
		registry.providers[provider.Name()] = provider
	}
	return registry
}

// Get returns the provider registered under name, or UNKNOWN_PROVIDER.
func (registry *Registry) Get(name string) (Provider, error) {
	provider, ok := registry.providers[name]
	if !ok {
		return nil, apperr.UnknownProvider(name)
	}
	return provider, nil
}

// Names lists the registered providers in a stable order.
func (registry *Registry) Names() []string {
	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
