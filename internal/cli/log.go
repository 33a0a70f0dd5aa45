package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Uploaded 3 documents (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Hooks
// =============================================================================

// logHooks reports pipeline, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnSplit(_ context.Context, title string, pages, partitions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("split failed", "title", title, "pages", pages, "error", err)
		return
	}
	h.logger.Debug("split", "title", title, "pages", pages, "partitions", partitions, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnPartitionStart(_ context.Context, index int, title string) {
	h.logger.Debug("partition started", "index", index, "title", title)
}

func (h *logHooks) OnBundleComplete(_ context.Context, index int, size int64, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("bundled", "index", index, "archive", humanize.IBytes(uint64(size)), "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnPartitionComplete(_ context.Context, index int, title string, d time.Duration, err error) {
	h.logger.Debug("partition done", "index", index, "title", title, "took", d.Round(time.Millisecond), "ok", err == nil)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", humanize.IBytes(uint64(size)))
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "error", err)
}
