package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lucidpack/pkg/document"
)

// WriteDocument encodes doc as indented JSON and writes it to w.
// The output uses two-space indentation, "\n" line endings and no HTML
// escaping. Encoding the same document twice yields identical bytes.
func WriteDocument(doc *document.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalDocument returns the bytes [WriteDocument] would write.
func MarshalDocument(doc *document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDocument writes doc to a JSON file at path.
// This is a convenience wrapper around [WriteDocument] for file-based output.
func ExportDocument(doc *document.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDocument(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Size returns the length in bytes of doc's serialized form.
func Size(doc *document.Document) (int, error) {
	var c counter
	if err := WriteDocument(doc, &c); err != nil {
		return 0, err
	}
	return int(c), nil
}

// counter is a writer that only counts bytes.
type counter int64

func (c *counter) Write(p []byte) (int, error) {
	*c += counter(len(p))
	return len(p), nil
}
