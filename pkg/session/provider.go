package session

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/httputil"
)

// OAuthProvider loads a stored session and refreshes it when it is about
// to expire. It is safe for concurrent use; concurrent refreshes of the
// same session are not coalesced.
type OAuthProvider struct {
	Store  Store
	ID     string
	Config *oauth2.Config
	Leeway time.Duration
	Logger *log.Logger

	// HTTPClient is used for the refresh request. Defaults to
	// [httputil.NewClient].
	HTTPClient *http.Client
}

// NewOAuthProvider returns a provider for the session stored under id.
func NewOAuthProvider(store Store, id string, cfg *oauth2.Config, logger *log.Logger) *OAuthProvider {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &OAuthProvider{
		Store:  store,
		ID:     id,
		Config: cfg,
		Leeway: DefaultLeeway,
		Logger: logger,
	}
}

// Session returns a session whose access token is valid for at least the
// provider's leeway.
func (p *OAuthProvider) Session(ctx context.Context) (*Session, error) {
	sess, err := p.Store.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if sess.IsValid(p.Leeway) {
		return sess, nil
	}
	if sess.RefreshToken == "" || p.Config == nil {
		return nil, ErrExpired
	}

	p.Logger.Debug("refreshing access token", "expired", sess.ExpiresAt)
	tok, err := p.refresh(ctx, sess.RefreshToken)
	if err != nil {
		return nil, err
	}

	fresh := FromToken(p.ID, tok)
	fresh.CreatedAt = sess.CreatedAt
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = sess.RefreshToken
	}
	if fresh.Scope == "" {
		fresh.Scope = sess.Scope
	}
	if err := p.Store.Set(ctx, fresh); err != nil {
		p.Logger.Warn("could not save refreshed session", "error", err)
	}
	return fresh, nil
}

func (p *OAuthProvider) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	client := p.HTTPClient
	if client == nil {
		client = httputil.NewClient(0)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	// An empty access token forces the token source to refresh regardless
	// of the leeway oauth2 applies itself.
	src := p.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	var tok *oauth2.Token
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		tok, err = src.Token()
		if err == nil {
			return nil
		}
		var re *oauth2.RetrieveError
		if stderrors.As(err, &re) && re.Response != nil && httputil.TransientStatus(re.Response.StatusCode) {
			return httputil.Retryable(err)
		}
		if httputil.IsTransient(err) {
			return httputil.Retryable(err)
		}
		return err
	})
	if err != nil {
		var re *oauth2.RetrieveError
		if stderrors.As(err, &re) && re.Response != nil && !httputil.TransientStatus(re.Response.StatusCode) {
			return nil, errors.Wrap(errors.ErrCodeSessionExpired, err, "refresh rejected, log in again")
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "refresh access token")
	}
	return tok, nil
}

var _ Provider = (*OAuthProvider)(nil)
