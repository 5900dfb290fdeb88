// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/taibuivan/yomira-id/internal/users/auth"
)

const (
	githubName    = "github"
	githubAPIBase = "https://api.github.com"
)

// GitHub signs users in with GitHub accounts. GitHub is plain OAuth2, so the
// profile and verified addresses come from its REST API.
type GitHub struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
}

// NewGitHub configures the GitHub provider against github.com.
func NewGitHub(clientID, clientSecret, redirectURL string) (*GitHub, error) {
	return NewGitHubWithEndpoint(clientID, clientSecret, redirectURL, githuboauth.Endpoint, githubAPIBase)
}

// NewGitHubWithEndpoint targets another OAuth endpoint and API base (GitHub
// Enterprise, tests).
func NewGitHubWithEndpoint(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, apiBaseURL string) (*GitHub, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github_config_incomplete")
	}

	return &GitHub{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: apiBaseURL,
	}, nil
}

// Name implements [Provider].
func (github *GitHub) Name() string { return githubName }

// AuthCodeURL implements [Provider].
func (github *GitHub) AuthCodeURL(state, verifier string) string {
	return github.oauthConfig.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the code for a token and reads the user and primary email.
func (github *GitHub) Exchange(ctx context.Context, code, verifier string) (*auth.SocialProfile, error) {
	token, err := github.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("github_token_exchange_failed: %w", err)
	}

	client := github.oauthConfig.Client(ctx, token)

	var user githubUser
	if err := github.get(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("github_user_id_missing")
	}

	var emails []githubEmail
	if err := github.get(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}

	profile := &auth.SocialProfile{
		Provider: githubName,
		Subject:  strconv.FormatInt(user.ID, 10),
		Name:     user.Name,
		Image:    user.AvatarURL,
	}
	if profile.Name == "" {
		profile.Name = user.Login
	}

	for _, email := range emails {
		if email.Primary {
			profile.Email = email.Email
			profile.EmailVerified = email.Verified
			break
		}
	}

	return profile, nil
}

func (github *GitHub) get(ctx context.Context, client *http.Client, path string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, github.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("github_request_failed: %w", err)
	}
	request.Header.Set("Accept", "application/vnd.github+json")

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("github_api_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("github_api_status: %s %d", path, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("github_api_decode_failed: %w", err)
	}
	return nil
}
