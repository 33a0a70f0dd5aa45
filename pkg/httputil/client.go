package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// NewClient returns an HTTP client with the given timeout, or
// [DefaultTimeout] when timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// TransientStatus reports whether a response status is worth retrying.
func TransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// IsTransient reports whether err is a network-level failure: a timeout, a
// refused connection or a DNS error. Context cancellation is not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
