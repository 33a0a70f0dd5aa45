package lucidapi

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/httputil"
)

// OAuth endpoints and scopes.
const (
	AuthorizeURL = "https://lucid.app/oauth2/authorize"
	TokenURL     = "https://api.lucid.co/oauth2/token"

	// ScopeDocumentApp allows creating documents through standard import.
	ScopeDocumentApp = "lucidchart.document.app"
	// ScopeOfflineAccess asks for a refresh token.
	ScopeOfflineAccess = "offline_access"
)

// OAuthConfig holds the OAuth client registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthURL and TokenURL override the Lucid endpoints.
	AuthURL  string
	TokenURL string
}

// OAuth2 returns the oauth2 configuration for c. Client credentials are
// sent in the request body, as the token endpoint expects.
func (c OAuthConfig) OAuth2() *oauth2.Config {
	auth, token := c.AuthURL, c.TokenURL
	if auth == "" {
		auth = AuthorizeURL
	}
	if token == "" {
		token = TokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       []string{ScopeDocumentApp, ScopeOfflineAccess},
		Endpoint: oauth2.Endpoint{
			AuthURL:   auth,
			TokenURL:  token,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Validate reports a missing client id or secret.
func (c OAuthConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"oauth client id and secret are required (set oauth.client_id and oauth.client_secret)")
	}
	return nil
}

// LoginOptions configure [Login].
type LoginOptions struct {
	// Port is the local callback port; 0 picks a free one. The redirect URL
	// registered with Lucid must match, so fix it in production.
	Port int
	// Open is called with the authorization URL, typically to launch a
	// browser. Login still waits if it fails.
	Open func(url string) error
	// HTTPClient is used for the code exchange.
	HTTPClient *http.Client
}

// Login runs the authorization-code flow: it starts a callback server,
// hands the authorization URL to opts.Open, waits for the redirect and
// exchanges the code for a token. It returns when ctx is done.
func Login(ctx context.Context, cfg OAuthConfig, opts LoginOptions) (*oauth2.Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srv, err := NewCallbackServer(opts.Port)
	if err != nil {
		return nil, err
	}
	defer srv.Close()
	srv.Start()

	cfg.RedirectURL = srv.RedirectURL()
	oc := cfg.OAuth2()
	authURL := oc.AuthCodeURL(srv.State())
	if opts.Open != nil {
		_ = opts.Open(authURL)
	}

	code, err := srv.Wait(ctx)
	if err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		client = httputil.NewClient(0)
	}
	tok, err := oc.Exchange(context.WithValue(ctx, oauth2.HTTPClient, client), code)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, err, "exchange authorization code")
	}
	return tok, nil
}
