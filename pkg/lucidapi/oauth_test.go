package lucidapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

func TestOAuth2Config(t *testing.T) {
	oc := OAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8765/callback"}.OAuth2()
	if oc.Endpoint.AuthURL != AuthorizeURL || oc.Endpoint.TokenURL != TokenURL {
		t.Errorf("endpoint = %+v", oc.Endpoint)
	}
	u, err := url.Parse(oc.AuthCodeURL("st"))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("response_type") != "code" || q.Get("client_id") != "id" || q.Get("state") != "st" {
		t.Errorf("auth url query = %v", q)
	}
	if !strings.Contains(q.Get("scope"), ScopeDocumentApp) {
		t.Errorf("scope = %q", q.Get("scope"))
	}
}

func TestOAuthConfigValidate(t *testing.T) {
	if err := (OAuthConfig{ClientID: "id"}).Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing secret: %v", err)
	}
	if err := (OAuthConfig{ClientID: "id", ClientSecret: "s"}).Validate(); err != nil {
		t.Errorf("complete config: %v", err)
	}
}

func TestCallbackServer(t *testing.T) {
	srv, err := NewCallbackServer(0)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	srv.Start()

	get := func(query string) int {
		resp, err := http.Get(srv.RedirectURL() + "?" + query)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := get("state=wrong&code=abc"); code != http.StatusBadRequest {
		t.Errorf("wrong state: status %d", code)
	}
	if code := get("state=" + srv.State()); code != http.StatusBadRequest {
		t.Errorf("missing code: status %d", code)
	}
	if code := get("state=" + srv.State() + "&code=abc"); code != http.StatusOK {
		t.Errorf("valid callback: status %d", code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	code, err := srv.Wait(ctx)
	if err != nil || code != "abc" {
		t.Errorf("Wait() = %q, %v", code, err)
	}
}

func TestCallbackServerDenied(t *testing.T) {
	srv, err := NewCallbackServer(0)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	srv.Start()

	resp, err := http.Get(srv.RedirectURL() + "?state=" + srv.State() + "&error=access_denied")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := srv.Wait(ctx); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("Wait() = %v, want UNAUTHORIZED", err)
	}
}

func TestCallbackServerTimeout(t *testing.T) {
	srv, err := NewCallbackServer(0)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := srv.Wait(ctx); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Wait() = %v, want TIMEOUT", err)
	}
}

func TestLogin(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "the-code" || r.Form.Get("client_secret") != "secret" {
			t.Errorf("token request form = %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokens.Close()

	cfg := OAuthConfig{ClientID: "id", ClientSecret: "secret", AuthURL: "https://auth.example/authorize", TokenURL: tokens.URL}
	open := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		go func() {
			resp, err := http.Get(q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tok, err := Login(ctx, cfg, LoginOptions{Open: open, HTTPClient: tokens.Client()})
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "at" || tok.RefreshToken != "rt" {
		t.Errorf("token = %+v", tok)
	}
}
