package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

// Tokens is what a successful login yields.
type Tokens struct {
	Access  string
	Refresh string
	User    domain.User
}

// Session keeps the login state in client storage under the
// accessToken, refreshToken and user keys.
type Session struct {
	store localstore.Store
	log   *zap.Logger
}

// NewSession creates a Session over store.
func NewSession(store localstore.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, log: log}
}

// AccessToken returns the stored token or domain.ErrUnauthorized.
func (s *Session) AccessToken() (string, error) {
	token, ok, err := s.store.Get(localstore.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("reading access token: %w", err)
	}
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", domain.ErrUnauthorized
	}
	return token, nil
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	access, err := s.AccessToken()
	if err != nil {
		return nil, err
	}
	refresh, _, _ := s.store.Get(localstore.KeyRefreshToken)
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer", RefreshToken: refresh}, nil
}

// Authenticated reports whether an access token is stored.
func (s *Session) Authenticated() bool {
	_, err := s.AccessToken()
	return err == nil
}

// User returns the stored user, if any. A corrupted record reads as absent.
func (s *Session) User() (domain.User, bool) {
	raw, ok, err := s.store.Get(localstore.KeyUser)
	if err != nil || !ok {
		return domain.User{}, false
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("stored user corrupted", zap.Error(err))
		return domain.User{}, false
	}
	return u, u.Username != ""
}

// Save persists a successful login.
func (s *Session) Save(t Tokens) error {
	user, err := json.Marshal(t.User)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.store.Set(localstore.KeyUser, string(user)); err != nil {
		return err
	}
	if err := s.store.Set(localstore.KeyRefreshToken, t.Refresh); err != nil {
		return err
	}
	// Written last so observers of the token see a complete session.
	return s.store.Set(localstore.KeyAccessToken, t.Access)
}

// Logout removes all stored credentials.
func (s *Session) Logout() error {
	for _, key := range []string{localstore.KeyAccessToken, localstore.KeyRefreshToken, localstore.KeyUser} {
		if err := s.store.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// OnChange calls fn with the current authentication state whenever the
// access token may have changed.
func (s *Session) OnChange(fn func(authenticated bool)) (cancel func()) {
	return s.store.Subscribe(func(key string) {
		if key == localstore.KeyAccessToken || key == localstore.AnyKey {
			fn(s.Authenticated())
		}
	})
}
