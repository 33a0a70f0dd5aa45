// Package httputil holds the HTTP plumbing shared by the API and OAuth
// clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for
// errors marked with [RetryableError]. Callers decide what is transient:
// typically network errors and 5xx responses, never 4xx.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    tok, err := src.Token()
//	    if err != nil && httputil.IsTransient(err) {
//	        return httputil.Retryable(err)
//	    }
//	    return err
//	})
//
// Uploads are not retried: a failed import may still have created a
// document on the server.
//
// # Clients
//
// [NewClient] returns an *http.Client with a timeout. A zero timeout uses
// [DefaultTimeout]; uploads of large bundles should pass a longer one.
package httputil
