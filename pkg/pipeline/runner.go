package pipeline

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lucidpack/pkg/bundle"
	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/ledger"
	"github.com/matzehuels/lucidpack/pkg/observability"
	"github.com/matzehuels/lucidpack/pkg/session"
	"github.com/matzehuels/lucidpack/pkg/split"
)

// Uploader sends an archive and returns the new document's edit URL.
// [lucidapi.Client] implements it.
type Uploader interface {
	Upload(ctx context.Context, sess *session.Session, path, title string) (string, error)
}

// Runner imports documents. It holds no per-run state; several goroutines
// may share one Runner.
type Runner struct {
	Assembler *bundle.Assembler
	Uploader  Uploader
	Ledger    ledger.Store
	Logger    *log.Logger
}

// NewRunner returns a runner. A nil assembler builds bundles in the temp
// directory without image processing, a nil store keeps no history and a
// nil logger discards output.
func NewRunner(asm *bundle.Assembler, up Uploader, store ledger.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = discardLogger
	}
	if asm == nil {
		asm = bundle.NewAssembler("", nil, logger)
	}
	if store == nil {
		store = ledger.Nop{}
	}
	return &Runner{
		Assembler: asm,
		Uploader:  up,
		Ledger:    store,
		Logger:    logger,
	}
}

// finisher completes a bundled partition: it uploads or keeps the archive.
type finisher func(ctx context.Context, p split.Partition, b *bundle.Bundle, out *PartitionResult) error

// Import splits doc, bundles every partition and uploads it with sess.
//
// The returned result is never nil once splitting succeeded. When any
// partition fails, Import still waits for all of them and returns the
// partial result together with an [*ImportError].
func (r *Runner) Import(ctx context.Context, sess *session.Session, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if r.Uploader == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "runner has no uploader")
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}

	return r.run(ctx, doc, opts, r.Assembler.WorkDir, false, func(ctx context.Context, p split.Partition, b *bundle.Bundle, out *PartitionResult) error {
		url, err := r.Uploader.Upload(ctx, sess, b.Archive, p.Title)
		if err != nil {
			return err
		}
		out.EditURL = url
		r.logger(opts).Info("uploaded", "title", p.Title, "url", url)

		part := 0
		if p.Title != opts.Title {
			part = p.Index + 1
		}
		rec := ledger.NewRecord(p.Title, part, p.PageCount, out.ArchiveBytes, url)
		if err := r.Ledger.Add(ctx, rec); err != nil {
			r.logger(opts).Warn("ledger write failed", "title", p.Title, "error", err)
		}
		return nil
	})
}

// Pack runs the import without uploading: every partition's archive is
// written to opts.OutDir as "<title slug>.lucid".
func (r *Runner) Pack(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.OutDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return r.run(ctx, doc, opts, opts.OutDir, true, func(ctx context.Context, p split.Partition, b *bundle.Bundle, out *PartitionResult) error {
		out.Archive = b.Archive
		b.Archive = "" // kept
		r.logger(opts).Info("packed", "title", p.Title, "archive", out.Archive)
		return nil
	})
}

func (r *Runner) run(ctx context.Context, doc *document.Document, opts Options, workDir string, keep bool, finish finisher) (*Result, error) {
	start := time.Now()
	logger := r.logger(opts)
	hooks := observability.Import()

	parts, err := split.Split(doc, opts.Title, opts.MaxBytes)
	pages := 0
	if doc != nil {
		pages = doc.PageCount()
	}
	hooks.OnSplit(ctx, opts.Title, pages, len(parts), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	logger.Info("split document", "title", opts.Title, "pages", pages, "partitions", len(parts))

	asm := *r.Assembler
	asm.WorkDir = workDir
	asm.Validate = !opts.SkipValidation
	if opts.DebugDir != "" {
		asm.DebugDir = opts.DebugDir
	}
	if asm.Logger == nil {
		asm.Logger = logger
	}

	result := &Result{
		Title:      opts.Title,
		Pages:      pages,
		URLs:       make([]string, len(parts)),
		Partitions: make([]PartitionResult, len(parts)),
	}

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, p := range parts {
		g.Go(func() error {
			out := &result.Partitions[i]
			out.Partition = p
			out.Err = r.partition(ctx, &asm, p, archiveName(p.Title, keep), finish, out)
			if out.Err != nil {
				logger.Error("partition failed", "title", p.Title, "index", p.Index, "error", out.Err)
			}
			result.URLs[i] = out.EditURL
			return nil
		})
	}
	_ = g.Wait()

	result.Duration = time.Since(start)
	if failed := result.Failed(); len(failed) > 0 {
		return result, &ImportError{Title: opts.Title, Partitions: len(parts), Failures: failed}
	}
	logger.Info("import complete", "title", opts.Title, "partitions", len(parts), "duration", result.Duration)
	return result, nil
}

func (r *Runner) partition(ctx context.Context, asm *bundle.Assembler, p split.Partition, name string, finish finisher, out *PartitionResult) (err error) {
	hooks := observability.Import()
	start := time.Now()
	hooks.OnPartitionStart(ctx, p.Index, p.Title)
	defer func() { hooks.OnPartitionComplete(ctx, p.Index, p.Title, time.Since(start), err) }()

	b, err := asm.Build(ctx, p.Document, name)
	if b != nil {
		if info, serr := os.Stat(b.Archive); serr == nil {
			out.ArchiveBytes = info.Size()
		}
	}
	hooks.OnBundleComplete(ctx, p.Index, out.ArchiveBytes, time.Since(start), err)
	if err != nil {
		if b != nil {
			_ = b.Remove()
		}
		return fmt.Errorf("bundle: %w", err)
	}
	defer func() {
		if rerr := b.Remove(); rerr != nil {
			asm.Logger.Debug("bundle cleanup failed", "dir", b.Dir, "error", rerr)
		}
	}()

	return finish(ctx, p, b, out)
}

// logger returns opts.Logger when set, then the runner's logger.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return discardLogger
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// archiveName slugs title. Names in a shared work directory get a random
// suffix so concurrent runs never collide.
func archiveName(title string, keep bool) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "document"
	}
	if keep {
		return slug
	}
	return slug + "-" + uuid.NewString()[:8]
}
