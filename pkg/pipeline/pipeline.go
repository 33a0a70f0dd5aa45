// Package pipeline runs the import of a document: split, bundle, upload.
//
// A document that serializes larger than the server accepts is split into
// several partitions (see package split). Each partition then goes through
// its own pipeline:
//
//  1. Bundle: clone the partition, resolve and process images, write
//     document.json and side files, archive and validate
//  2. Upload: send the archive and collect the edit URL
//  3. Record: append the upload to the ledger
//
// Partitions run concurrently, up to Options.Concurrency at a time. One
// partition failing does not stop the others: every partition runs to
// completion, results land in the slot of their partition, and the failures
// are returned together as an [*ImportError] next to the partial result.
//
// # Usage
//
//	runner := pipeline.NewRunner(assembler, client, store, logger)
//	result, err := runner.Import(ctx, sess, doc, pipeline.Options{Title: "Roadmap"})
//	for i, url := range result.URLs {
//	    fmt.Println(i, url) // "" for a failed partition
//	}
//	if err != nil {
//	    var ie *pipeline.ImportError
//	    if errors.As(err, &ie) {
//	        for _, pe := range ie.Failures {
//	            fmt.Println(pe.Title, pe.Err)
//	        }
//	    }
//	}
//
// [Runner.Pack] runs the same fan-out but keeps the archives in a directory
// instead of uploading them.
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/split"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultConcurrency is how many partitions are bundled and uploaded at
	// the same time.
	DefaultConcurrency = 4

	// DefaultMaxBytes is the per-partition ceiling on document.json.
	DefaultMaxBytes = split.DefaultMaxBytes
)

// =============================================================================
// Options - Import Configuration
// =============================================================================

// Options configures one import run.
type Options struct {
	Title       string `json:"title"`
	MaxBytes    int    `json:"max_bytes,omitempty"`
	Concurrency int    `json:"concurrency,omitempty"`

	// SkipValidation disables the bundle size checks (default: false =
	// validate every bundle before upload).
	SkipValidation bool   `json:"skip_validation,omitempty"`
	DebugDir       string `json:"debug_dir,omitempty"`

	// OutDir receives the archives of [Runner.Pack].
	OutDir string `json:"out_dir,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

var discardLogger = log.NewWithOptions(io.Discard, log.Options{})

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.MaxBytes == 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
}

// Validate checks required fields and ranges.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "title is required")
	}
	if o.MaxBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max bytes must not be negative, got %d", o.MaxBytes)
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative, got %d", o.Concurrency)
	}
	return nil
}

// ValidateAndSetDefaults validates o and then applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of an import. Partitions and URLs are indexed by
// partition, whatever order the partitions finished in.
type Result struct {
	Title      string
	Pages      int
	URLs       []string // edit URL of partition i; "" when it failed or was packed
	Partitions []PartitionResult
	Duration   time.Duration
}

// PartitionResult is the outcome of one partition.
type PartitionResult struct {
	split.Partition
	Archive      string // archive path, kept only by Pack
	ArchiveBytes int64
	EditURL      string
	Err          error
}

// Failed returns the partition errors in partition order.
func (r *Result) Failed() []*PartitionError {
	var out []*PartitionError
	for _, p := range r.Partitions {
		if p.Err != nil {
			out = append(out, &PartitionError{
				Index:     p.Index,
				Title:     p.Title,
				FirstPage: p.FirstPage,
				PageCount: p.PageCount,
				Err:       p.Err,
			})
		}
	}
	return out
}

// =============================================================================
// Errors
// =============================================================================

// PartitionError ties a failure to the partition it happened in.
type PartitionError struct {
	Index     int
	Title     string
	FirstPage int
	PageCount int
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d %q (%s): %v", e.Index, e.Title, e.Pages(), e.Err)
}

// Pages returns the 1-based page range, e.g. "pages 4-7".
func (e *PartitionError) Pages() string {
	if e.PageCount <= 1 {
		return fmt.Sprintf("page %d", e.FirstPage+1)
	}
	return fmt.Sprintf("pages %d-%d", e.FirstPage+1, e.FirstPage+e.PageCount)
}

// Unwrap exposes the cause and the PARTITION_FAILED code.
func (e *PartitionError) Unwrap() []error {
	return []error{e.Err, errors.New(errors.ErrCodePartitionFailed, "partition %d failed", e.Index)}
}

// ImportError aggregates every failed partition of an import.
type ImportError struct {
	Title      string
	Partitions int
	Failures   []*PartitionError
}

func (e *ImportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "import %q: %d of %d partitions failed", e.Title, len(e.Failures), e.Partitions)
	for _, f := range e.Failures {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap returns the partition errors so errors.Is and errors.As see every
// cause.
func (e *ImportError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
