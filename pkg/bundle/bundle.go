package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	lpio "github.com/matzehuels/lucidpack/pkg/io"
	"github.com/matzehuels/lucidpack/pkg/raster"
)

// Bundle layout names.
const (
	DocumentFile = "document.json"
	ImagesDir    = "images"
	DataDir      = "data"
	ArchiveExt   = ".lucid"
)

// Expander resizes and tiles the image of one shape. The first returned
// shape must be s. [raster.Processor] implements it.
type Expander interface {
	Expand(ctx context.Context, s *document.Shape) ([]*document.Shape, error)
}

// Assembler writes bundles under WorkDir.
type Assembler struct {
	// WorkDir holds bundle directories and archives. Defaults to the OS
	// temp directory.
	WorkDir string
	// Images processes local and in-memory images. When nil, local files
	// are copied unchanged and rasters are encoded as they are.
	Images Expander
	// Limits are checked by Build when Validate is set.
	Limits   Limits
	Validate bool
	// DebugDir, when set, receives a copy of every archive.
	DebugDir string
	Logger   *log.Logger
}

// NewAssembler returns an assembler with default limits that validates
// every bundle it builds.
func NewAssembler(workDir string, images Expander, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = discard
	}
	return &Assembler{
		WorkDir:  workDir,
		Images:   images,
		Limits:   DefaultLimits(),
		Validate: true,
		Logger:   logger,
	}
}

// Bundle is a prepared bundle directory and, once archived, its zip file.
type Bundle struct {
	Dir      string
	Document *document.Document
	Images   int // files written to images/
	Archive  string
}

// Remove deletes the bundle directory and archive.
func (b *Bundle) Remove() error {
	err := os.RemoveAll(b.Dir)
	if b.Archive != "" {
		if rerr := os.Remove(b.Archive); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}
	return err
}

// Build prepares, archives and optionally validates doc. The archive is
// named name + ".lucid"; an empty name uses the bundle's random id.
func (a *Assembler) Build(ctx context.Context, doc *document.Document, name string) (*Bundle, error) {
	b, err := a.Prepare(ctx, doc)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = filepath.Base(b.Dir)
	}
	f, err := Archive(b.Dir, filepath.Join(a.workDir(), name+ArchiveExt))
	if err != nil {
		_ = b.Remove()
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		_ = b.Remove()
		return nil, fmt.Errorf("close archive: %w", err)
	}
	b.Archive = f.Name()

	if a.DebugDir != "" {
		if err := copyFile(b.Archive, filepath.Join(a.DebugDir, name+ArchiveExt)); err != nil {
			a.logger().Warn("debug copy failed", "archive", b.Archive, "error", err)
		} else {
			a.logger().Debug("debug copy written", "dir", a.DebugDir, "name", name)
		}
	}

	if a.Validate {
		if err := Validate(b, a.Limits); err != nil {
			return b, err
		}
	}
	return b, nil
}

// Prepare writes a bundle directory for a clone of doc and returns it.
//
// Image shapes with a local or in-memory fill are resolved to files under
// images/ and the clone's fill references point at them. A fill shared by
// several shapes is written once. Remote images are left for the importer
// to fetch. A missing local image fails with FILE_NOT_FOUND.
func (a *Assembler) Prepare(ctx context.Context, doc *document.Document) (*Bundle, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document must not be nil")
	}
	dir := filepath.Join(a.workDir(), "lucidpack-"+uuid.NewString())
	for _, d := range []string{dir, filepath.Join(dir, ImagesDir), filepath.Join(dir, DataDir)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create bundle dir: %w", err)
		}
	}

	b := &Bundle{Dir: dir, Document: doc.Clone()}
	if err := a.prepare(ctx, b); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return b, nil
}

func (a *Assembler) prepare(ctx context.Context, b *Bundle) error {
	w := &imageWriter{
		dir:     filepath.Join(b.Dir, ImagesDir),
		ids:     b.Document.IDs(),
		written: make(map[string]string),
	}
	for _, page := range b.Document.Pages() {
		for _, s := range page.Shapes() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.Type != document.ShapeImage || s.Image == nil || s.Image.Source() == document.SourceURL {
				continue
			}
			if err := a.resolveImage(ctx, w, page, s); err != nil {
				return fmt.Errorf("page %q: %w", page.Title, err)
			}
		}
	}
	b.Images = w.count

	for _, c := range b.Document.Collections() {
		if c.Data == nil {
			continue
		}
		path := filepath.Join(b.Dir, DataDir, filepath.FromSlash(c.DataSource))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, c.Data, 0644); err != nil {
			return fmt.Errorf("write collection %s: %w", c.DataSource, err)
		}
	}

	if err := lpio.ExportDocument(b.Document, filepath.Join(b.Dir, DocumentFile)); err != nil {
		return fmt.Errorf("write %s: %w", DocumentFile, err)
	}
	a.logger().Debug("bundle prepared", "dir", b.Dir, "images", b.Images)
	return nil
}

func (a *Assembler) resolveImage(ctx context.Context, w *imageWriter, page *document.Page, s *document.Shape) error {
	if w.reuse(s.Image) {
		return nil
	}
	if a.Images == nil {
		if s.Image.Source() == document.SourceLocal {
			return w.copyLocal(s)
		}
		return w.writeRaster(s.Image)
	}

	tiles, err := a.Images.Expand(ctx, s)
	if err != nil {
		return err
	}
	if len(tiles) > 1 {
		if err := page.ExpandShape(s, tiles[1:]...); err != nil {
			return err
		}
	}
	for _, t := range tiles {
		if err := w.writeRaster(t.Image); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) workDir() string {
	if a.WorkDir != "" {
		return a.WorkDir
	}
	return os.TempDir()
}

var discard = log.NewWithOptions(io.Discard, log.Options{})

func (a *Assembler) logger() *log.Logger {
	if a.Logger == nil {
		return discard
	}
	return a.Logger
}

var _ Expander = (*raster.Processor)(nil)
