// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional and backend-neutral. Consumers register hooks
// at startup to receive events about imports, cache lookups and API calls;
// libraries emit those events through the registered hooks, which default
// to no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetImportHooks(&myImportHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Import().OnPartitionStart(ctx, index, title)
//	// ... bundle and upload ...
//	observability.Import().OnPartitionComplete(ctx, index, title, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Import Hooks
// =============================================================================

// ImportHooks receives events from the import pipeline.
type ImportHooks interface {
	// Split events
	OnSplit(ctx context.Context, title string, pages, partitions int, duration time.Duration, err error)

	// Per-partition events. They may arrive concurrently from several
	// partitions.
	OnPartitionStart(ctx context.Context, index int, title string)
	OnBundleComplete(ctx context.Context, index int, archiveBytes int64, duration time.Duration, err error)
	OnPartitionComplete(ctx context.Context, index int, title string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopImportHooks is a no-op implementation of ImportHooks.
type NoopImportHooks struct{}

func (NoopImportHooks) OnSplit(context.Context, string, int, int, time.Duration, error)         {}
func (NoopImportHooks) OnPartitionStart(context.Context, int, string)                           {}
func (NoopImportHooks) OnBundleComplete(context.Context, int, int64, time.Duration, error)      {}
func (NoopImportHooks) OnPartitionComplete(context.Context, int, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	importHooks ImportHooks = NoopImportHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetImportHooks registers custom import hooks.
// This should be called once at application startup before any import runs.
func SetImportHooks(h ImportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		importHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Import returns the registered import hooks.
func Import() ImportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return importHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	importHooks = NoopImportHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
