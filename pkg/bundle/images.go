package bundle

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/ident"
	"github.com/matzehuels/lucidpack/pkg/raster"
)

// imageWriter writes fills into images/ and remembers, by fill id, the
// name each was written under.
type imageWriter struct {
	dir     string
	ids     *ident.Factory
	written map[string]string
	count   int
}

func (w *imageWriter) reuse(f *document.ImageFill) bool {
	if f.ID() == "" {
		return false
	}
	ref, ok := w.written[f.ID()]
	if ok {
		f.SetRef(ref)
	}
	return ok
}

// copyLocal copies a local fill unchanged as "<shapeId><ext>".
func (w *imageWriter) copyLocal(s *document.Shape) error {
	src := s.Image.Path()
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound, "cannot find image file %s", src)
		}
		return err
	}
	name := s.ID() + filepath.Ext(src)
	if err := copyFile(src, filepath.Join(w.dir, name)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "copy image %s", src)
	}
	w.record(s.Image, name)
	return nil
}

// writeRaster encodes an in-memory fill as "<fillId>.png".
func (w *imageWriter) writeRaster(f *document.ImageFill) error {
	if w.reuse(f) {
		return nil
	}
	if err := w.ids.Assign(f); err != nil {
		return err
	}
	data, err := raster.EncodePNG(f.Raster())
	if err != nil {
		return err
	}
	name := f.ID() + ".png"
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write image %s", name)
	}
	w.record(f, name)
	return nil
}

func (w *imageWriter) record(f *document.ImageFill, name string) {
	f.SetRef(name)
	w.written[f.ID()] = name
	w.count++
}
