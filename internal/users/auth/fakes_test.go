// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # In-memory repositories

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*auth.User
	fails error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]*auth.User)}
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return nil, m.fails
	}
	for _, user := range m.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return apperr.Conflict("An account with this email already exists")
		}
	}
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memoryUsers) update(userID string, apply func(*auth.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	apply(user)
	return nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, userID, name string, image *string) error {
	return m.update(userID, func(u *auth.User) { u.Name, u.Image = name, image })
}

func (m *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	return m.update(userID, func(u *auth.User) { u.PasswordHash = newHash })
}

func (m *memoryUsers) UpdateEmail(_ context.Context, userID, email string) error {
	return m.update(userID, func(u *auth.User) { u.Email, u.EmailVerified = email, false })
}

func (m *memoryUsers) MarkVerified(_ context.Context, userID string) error {
	return m.update(userID, func(u *auth.User) { u.EmailVerified = true })
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	return m.update(userID, func(u *auth.User) { u.LastLoginAt = &at })
}

func (m *memoryUsers) get(t *testing.T, id string) *auth.User {
	t.Helper()
	user, err := m.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

type memorySessions struct {
	mu    sync.Mutex
	items map[string]*auth.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{items: make(map[string]*auth.Session)}
}

func (m *memorySessions) Create(_ context.Context, session *auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.items[session.ID] = &copied
	return nil
}

func (m *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.TokenHash == tokenHash {
			copied := *item
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (m *memorySessions) ListActive(_ context.Context, userID string) ([]*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	active := make([]*auth.Session, 0)
	for _, item := range m.items {
		if item.UserID == userID && item.Active(now) {
			copied := *item
			active = append(active, &copied)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
	return active, nil
}

func (m *memorySessions) Revoke(_ context.Context, userID, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sessionID]
	if !ok || item.UserID != userID || item.IsRevoked {
		return "", apperr.NotFound("Session")
	}
	item.IsRevoked = true
	return item.TokenHash, nil
}

func (m *memorySessions) RevokeAll(ctx context.Context, userID string) ([]string, error) {
	return m.RevokeOthers(ctx, userID, "")
}

func (m *memorySessions) RevokeOthers(_ context.Context, userID, keepSessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hashes := make([]string, 0)
	for _, item := range m.items {
		if item.UserID == userID && !item.IsRevoked && item.ID != keepSessionID {
			item.IsRevoked = true
			hashes = append(hashes, item.TokenHash)
		}
	}
	return hashes, nil
}

func (m *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, item := range m.items {
		if time.Now().After(item.ExpiresAt) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memorySessions) activeCount(userID string) int {
	active, _ := m.ListActive(context.Background(), userID)
	return len(active)
}

type memoryIdentities struct {
	mu    sync.Mutex
	items []*auth.Identity
}

func (m *memoryIdentities) FindByProviderSubject(_ context.Context, provider, subject string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Provider == provider && item.Subject == subject {
			return item, nil
		}
	}
	return nil, apperr.NotFound("Identity")
}

func (m *memoryIdentities) Create(_ context.Context, identity *auth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, identity)
	return nil
}

type memoryTokens struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{values: make(map[string]string)}
}

func (m *memoryTokens) Set(_ context.Context, token, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[token] = value
	return nil
}

func (m *memoryTokens) Consume(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[token]
	if !ok {
		return "", apperr.InvalidToken("Link is invalid or has expired")
	}
	delete(m.values, token)
	return value, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*auth.CachedSession
	evicted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*auth.CachedSession)}
}

func (m *memoryCache) Get(_ context.Context, tokenHash string) (*auth.CachedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[tokenHash], nil
}

func (m *memoryCache) Set(_ context.Context, tokenHash string, session *auth.CachedSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tokenHash] = session
	return nil
}

func (m *memoryCache) Delete(_ context.Context, tokenHashes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, hash := range tokenHashes {
		delete(m.entries, hash)
		m.evicted = append(m.evicted, hash)
	}
	return nil
}

// # Collaborators

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(principal sec.AuthClaims, _ time.Duration) (string, error) {
	return "access-" + principal.SessionID, nil
}

type sentMail struct {
	Kind     string
	To       string
	NewEmail string
	Link     string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *recordingMailer) record(mail sentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *recordingMailer) SendVerification(_ context.Context, to, _, link string) error {
	return m.record(sentMail{Kind: "verify", To: to, Link: link})
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	return m.record(sentMail{Kind: "reset", To: to, Link: link})
}

func (m *recordingMailer) SendEmailChange(_ context.Context, to, _, newEmail, link string) error {
	return m.record(sentMail{Kind: "change", To: to, NewEmail: newEmail, Link: link})
}

// last returns the most recent mail of kind.
func (m *recordingMailer) last(t *testing.T, kind string) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i]
		}
	}
	t.Fatalf("no %s mail sent", kind)
	return sentMail{}
}

func (m *recordingMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, mail := range m.sent {
		if mail.Kind == kind {
			total++
		}
	}
	return total
}

// tokenFrom extracts the token query parameter of a mailed link.
func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

// # Fixture

type fixture struct {
	users      *memoryUsers
	sessions   *memorySessions
	identities *memoryIdentities
	cache      *memoryCache
	reset      *memoryTokens
	verify     *memoryTokens
	change     *memoryTokens
	mailer     *recordingMailer
	service    *auth.Service
}

const (
	testPublicURL = "http://localhost:3000"
	testAPIURL    = "http://localhost:8080"
	testPassword  = "Str0ng!pass"
)

func newFixture() *fixture {
	f := &fixture{
		users:      newMemoryUsers(),
		sessions:   newMemorySessions(),
		identities: &memoryIdentities{},
		cache:      newMemoryCache(),
		reset:      newMemoryTokens(),
		verify:     newMemoryTokens(),
		change:     newMemoryTokens(),
		mailer:     &recordingMailer{},
	}

	f.service = auth.NewService(auth.Dependencies{
		Users:             f.users,
		Sessions:          f.sessions,
		Identities:        f.identities,
		SessionCache:      f.cache,
		ResetTokens:       f.reset,
		VerifyTokens:      f.verify,
		EmailChangeTokens: f.change,
		Tokens:            stubTokens{},
		Mailer:            f.mailer,
		Links:             auth.Links{PublicURL: testPublicURL, APIURL: testAPIURL},
	})
	return f
}

// signUp registers a user and returns the opened session.
func (f *fixture) signUp(t *testing.T, email string) *auth.SessionResult {
	t.Helper()
	result, err := f.service.SignUp(context.Background(), auth.SignUpInput{
		Name:       "Tai",
		Email:      email,
		Password:   testPassword,
		RememberMe: true,
	})
	require.NoError(t, err)
	return result
}
