// Package session manages the OAuth session used to upload documents.
//
// A [Session] holds the bearer token the upload client sends and, when the
// server issued one, a refresh token. Sessions are persisted by a [Store];
// the CLI uses [FileStore] under ~/.config/lucidpack/sessions with 0600
// files.
//
// # Providers
//
// Upload code never reads the store directly. It asks a [Provider] for a
// session at upload time:
//
//	store, _ := session.NewFileStore("")
//	provider := session.NewOAuthProvider(store, session.DefaultID, oauthConfig, logger)
//	sess, err := provider.Session(ctx)
//
// [OAuthProvider] refreshes an expired access token with the stored refresh
// token and saves the result. Without a refresh token an expired session
// fails with SESSION_EXPIRED and the user must log in again. [Static]
// wraps a fixed session, such as a token passed on the command line.
package session

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when no session has been stored.
	ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "not logged in")

	// ErrExpired is returned when a session has expired and cannot be refreshed.
	ErrExpired = errors.New(errors.ErrCodeSessionExpired, "session expired")
)

// DefaultID is the session id the CLI stores its login under.
const DefaultID = "lucid"

// DefaultLeeway is how long before expiry a token is already treated as
// expired, so it does not lapse in the middle of an upload.
const DefaultLeeway = time.Minute

// Session stores the tokens of one login.
type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired. A session without an
// expiry never expires.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// IsValid reports whether s has an access token that is still good for at
// least leeway.
func (s *Session) IsValid(leeway time.Duration) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Add(leeway).Before(s.ExpiresAt)
}

// Token converts s to an oauth2 token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}

// FromToken builds a session from an oauth2 token. The token's "scope"
// extra field is kept when present.
func FromToken(id string, tok *oauth2.Token) *Session {
	sess := &Session{
		ID:           id,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
		CreatedAt:    time.Now(),
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		sess.Scope = scope
	}
	return sess
}

// Scopes splits the granted scope string.
func (s *Session) Scopes() []string {
	return strings.Fields(s.Scope)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Expired sessions are returned so they
	// can be refreshed. Returns nil, nil if the session doesn't exist.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions that cannot be refreshed.
	Cleanup(ctx context.Context) error
}

// Provider supplies the session to upload with.
type Provider interface {
	Session(ctx context.Context) (*Session, error)
}

// Static returns a provider that always returns sess. It fails with
// SESSION_EXPIRED once sess has expired.
func Static(sess *Session) Provider {
	return staticProvider{sess}
}

type staticProvider struct{ sess *Session }

func (p staticProvider) Session(context.Context) (*Session, error) {
	if p.sess == nil || p.sess.AccessToken == "" {
		return nil, ErrNotFound
	}
	if p.sess.IsExpired() {
		return nil, ErrExpired
	}
	return p.sess, nil
}
