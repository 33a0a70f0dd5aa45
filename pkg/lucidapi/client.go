package lucidapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/lucidpack/pkg/buildinfo"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/httputil"
	"github.com/matzehuels/lucidpack/pkg/observability"
	"github.com/matzehuels/lucidpack/pkg/session"
)

const (
	// DefaultBaseURL is the Lucid REST API root.
	DefaultBaseURL = "https://api.lucid.co"

	// ImportMediaType identifies a standard import bundle.
	ImportMediaType = "x-application/vnd.lucid.standardImport"

	// UploadFileName is the file name the bundle is sent under.
	UploadFileName = "data.lucid"

	// DefaultUploadTimeout bounds a single upload. Large bundles are slow
	// to process server-side.
	DefaultUploadTimeout = 10 * time.Minute

	apiVersion = "1"
	product    = "lucidchart"
)

// ErrMalformedResponse is returned when the server accepts an upload but
// its response has no edit URL.
var ErrMalformedResponse = errors.New(errors.ErrCodeMalformedResponse, "upload response has no editUrl")

// StatusError is a non-success response from the API.
type StatusError struct {
	StatusCode int
	Body       string
	// Message is the server's error text, if the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lucid api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("lucid api: status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// Unwrap exposes UNAUTHORIZED for 401/403 and UPLOAD_FAILED otherwise.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return errors.New(errors.ErrCodeUnauthorized, "not authorized")
	}
	return errors.New(errors.ErrCodeUploadFailed, "upload failed")
}

// Config configures a [Client].
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *log.Logger
}

// Client uploads bundles. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient returns a client. Zero config values use the defaults: the
// public API, a ten minute timeout and two requests per second.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultUploadTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{
		http:    httputil.NewClient(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  cfg.Logger,
	}
}

// Upload sends the archive at path as a new document titled title and
// returns its edit URL.
func (c *Client) Upload(ctx context.Context, sess *session.Session, path, title string) (string, error) {
	if sess == nil || sess.AccessToken == "" {
		return "", session.ErrNotFound
	}
	body, contentType, err := uploadBody(path, title)
	if err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	req.Header.Set("Lucid-Api-Version", apiVersion)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "upload %q", title)
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "read upload response")
	}
	c.logger.Debug("upload response", "title", title, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw), Message: errorMessage(raw)}
	}

	var out struct {
		EditURL string `json:"editUrl"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.EditURL == "" {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(string(raw), 200))
	}
	return out.EditURL, nil
}

func uploadBody(path, title string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.New(errors.ErrCodeFileNotFound, "bundle %s not found", path)
		}
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, UploadFileName))
	h.Set("Content-Type", ImportMediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read bundle: %w", err)
	}
	for _, field := range [][2]string{{"type", ImportMediaType}, {"title", title}, {"product", product}} {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// errorMessage pulls a human-readable message out of an error body. The
// import endpoint nests it under details.error; other endpoints use a
// top-level message or error.
func errorMessage(body []byte) string {
	var v struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	}
	if json.Unmarshal(body, &v) != nil {
		return ""
	}
	switch {
	case v.Details.Error != "":
		return v.Details.Error
	case v.Message != "":
		return v.Message
	}
	if s, ok := v.Error.(string); ok {
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
