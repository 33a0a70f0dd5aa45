package bundle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Limits are the server's size ceilings for one upload, in bytes.
type Limits struct {
	Archive  int64
	Data     int64
	Images   int64
	Document int64
}

// DefaultLimits returns the ceilings the import endpoint enforces.
func DefaultLimits() Limits {
	return Limits{
		Archive:  50 << 20,
		Data:     1 << 20,
		Images:   50 << 20,
		Document: 2 << 20,
	}
}

// Violation is one exceeded ceiling.
type Violation struct {
	What  string
	Size  int64
	Limit int64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s exceeds %s", v.What,
		humanize.IBytes(uint64(v.Size)), humanize.IBytes(uint64(v.Limit)))
}

// LimitError lists every ceiling a bundle exceeds.
type LimitError struct {
	Violations []Violation
}

func (e *LimitError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "bundle exceeds size limits: " + strings.Join(parts, "; ")
}

// Unwrap exposes the SIZE_LIMIT error code.
func (e *LimitError) Unwrap() error {
	return errors.New(errors.ErrCodeSizeLimit, "bundle too large")
}

// Validate measures b against limits. A zero limit is not checked. Every
// exceeded ceiling is reported in the returned [*LimitError].
func Validate(b *Bundle, limits Limits) error {
	var checks []Violation

	if b.Archive != "" {
		fi, err := os.Stat(b.Archive)
		if err != nil {
			return fmt.Errorf("stat archive: %w", err)
		}
		checks = append(checks, Violation{"archive", fi.Size(), limits.Archive})
	}
	data, err := dirSize(filepath.Join(b.Dir, DataDir))
	if err != nil {
		return err
	}
	images, err := dirSize(filepath.Join(b.Dir, ImagesDir))
	if err != nil {
		return err
	}
	fi, err := os.Stat(filepath.Join(b.Dir, DocumentFile))
	if err != nil {
		return fmt.Errorf("stat %s: %w", DocumentFile, err)
	}
	checks = append(checks,
		Violation{DataDir + "/", data, limits.Data},
		Violation{ImagesDir + "/", images, limits.Images},
		Violation{DocumentFile, fi.Size(), limits.Document},
	)

	var over []Violation
	for _, c := range checks {
		if c.Limit > 0 && c.Size > c.Limit {
			over = append(over, c)
		}
	}
	if len(over) > 0 {
		return &LimitError{Violations: over}
	}
	return nil
}

func dirSize(dir string) (int64, error) {
	var n int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		n += fi.Size()
		return nil
	})
	return n, err
}
