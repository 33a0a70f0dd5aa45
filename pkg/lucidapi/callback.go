package lucidapi

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// CallbackPath is the path the OAuth redirect lands on.
const CallbackPath = "/callback"

// CallbackServer receives the OAuth redirect on the loopback interface.
// It accepts one authorization code whose state matches; anything else is
// answered with an error page and ignored.
type CallbackServer struct {
	state  string
	ln     net.Listener
	srv    *http.Server
	result chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

// NewCallbackServer listens on 127.0.0.1:port. Port 0 picks a free port.
func NewCallbackServer(port int) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "listen for oauth callback")
	}
	s := &CallbackServer{
		state:  uuid.NewString(),
		ln:     ln,
		result: make(chan callbackResult, 1),
	}

	r := chi.NewRouter()
	r.Get(CallbackPath, s.handleCallback)
	s.srv = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return s, nil
}

// State returns the CSRF state the authorization URL must carry.
func (s *CallbackServer) State() string { return s.state }

// RedirectURL returns the URL to register as the OAuth redirect.
func (s *CallbackServer) RedirectURL() string {
	return fmt.Sprintf("http://%s%s", s.ln.Addr().String(), CallbackPath)
}

// Start serves in the background.
func (s *CallbackServer) Start() {
	go func() { _ = s.srv.Serve(s.ln) }()
}

// Wait blocks until a valid callback arrives or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "waiting for authorization")
	case r := <-s.result:
		return r.code, r.err
	}
}

// Close stops the server.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != s.state {
		writePage(w, http.StatusBadRequest, "Login failed", "The request did not come from this login attempt.")
		return
	}

	var res callbackResult
	switch {
	case q.Get("error") != "":
		msg := q.Get("error")
		if d := q.Get("error_description"); d != "" {
			msg += ": " + d
		}
		res.err = errors.New(errors.ErrCodeUnauthorized, "authorization denied: %s", msg)
		writePage(w, http.StatusOK, "Login failed", msg)
	case q.Get("code") == "":
		writePage(w, http.StatusBadRequest, "Login failed", "No authorization code in the redirect.")
		return
	default:
		res.code = q.Get("code")
		writePage(w, http.StatusOK, "Logged in", "You can close this window and return to the terminal.")
	}

	select {
	case s.result <- res:
	default:
	}
}

func writePage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!doctype html><title>%s</title><h1>%s</h1><p>%s</p>",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
}
