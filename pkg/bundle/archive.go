package bundle

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// epoch is the modification time stamped on every entry so archives of
// the same directory are byte-identical.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Archive zips the contents of srcDir into a new file at dest and returns
// it opened for reading at offset 0. Entry names are relative to srcDir and
// use forward slashes; directories get their own entries so empty images/
// and data/ folders survive.
func Archive(srcDir, dest string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if err := writeZip(f, srcDir); err != nil {
		f.Close()
		os.Remove(dest)
		return nil, fmt.Errorf("archive %s: %w", srcDir, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeZip(w io.Writer, srcDir string) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil || rel == "." {
			return err
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			_, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Modified: epoch})
			return err
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: epoch,
		})
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
