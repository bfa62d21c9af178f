// Package connector registers payables with external accounting providers.
package connector

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNotAuthorized is returned when no OAuth grant has been completed yet.
var ErrNotAuthorized = errors.New("connector not authorized, complete the OAuth flow first")

// CredentialStore holds the provider's OAuth token and company binding. It is
// injected into the connector rather than kept as package state so tests and
// multiple provider instances get isolated credentials.
type CredentialStore struct {
	mu        sync.Mutex
	conf      *oauth2.Config
	token     *oauth2.Token
	companyID int64
}

// NewCredentialStore creates a store bound to the provider's OAuth endpoints.
func NewCredentialStore(conf *oauth2.Config) *CredentialStore {
	return &CredentialStore{conf: conf}
}

// AuthCodeURL returns the provider consent URL for the interactive grant.
func (s *CredentialStore) AuthCodeURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and stores it.
func (s *CredentialStore) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

// AccessToken returns the current access token.
func (s *CredentialStore) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return "", ErrNotAuthorized
	}
	return s.token.AccessToken, nil
}

// Refresh forces a token refresh using the stored refresh token and returns
// the new access token.
func (s *CredentialStore) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil || s.token.RefreshToken == "" {
		return "", ErrNotAuthorized
	}
	// An already-expired expiry forces TokenSource to hit the refresh
	// endpoint instead of returning the cached token.
	stale := &oauth2.Token{
		RefreshToken: s.token.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	fresh, err := s.conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return "", err
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}
	s.token = fresh
	return fresh.AccessToken, nil
}

// SetCompanyID binds the authorized grant to a provider company.
func (s *CredentialStore) SetCompanyID(id int64) {
	s.mu.Lock()
	s.companyID = id
	s.mu.Unlock()
}

// CompanyID returns the bound provider company, or ErrNotAuthorized when the
// grant never completed.
func (s *CredentialStore) CompanyID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.companyID == 0 {
		return 0, ErrNotAuthorized
	}
	return s.companyID, nil
}
