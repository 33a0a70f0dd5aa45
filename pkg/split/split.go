package split

import (
	"fmt"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/io"
)

// DefaultMaxBytes is the server's ceiling on document.json (2 MiB).
const DefaultMaxBytes = 2 << 20

// Partition is one output document of [Split].
type Partition struct {
	Index     int                // position in the output, from 0
	Title     string             // upload title
	Document  *document.Document // pages FirstPage..FirstPage+PageCount-1
	Size      int                // serialized size in bytes
	FirstPage int                // index of the first page in the source document
	PageCount int
}

// PageTooLargeError reports a page whose serialized form alone exceeds the
// budget. Such a page cannot be placed in any partition.
type PageTooLargeError struct {
	PageTitle string
	PageIndex int
	Size      int
	Limit     int
}

func (e *PageTooLargeError) Error() string {
	return fmt.Sprintf("page %d (%q) serializes to %d bytes, over the %d byte limit",
		e.PageIndex, e.PageTitle, e.Size, e.Limit)
}

// Unwrap exposes the SIZE_LIMIT error code.
func (e *PageTooLargeError) Unwrap() error {
	return errors.New(errors.ErrCodeSizeLimit, "page too large")
}

// Split partitions doc's pages into documents that each serialize to at
// most maxBytes. A maxBytes of 0 or less means [DefaultMaxBytes].
//
// Pages are taken in order and each partition is filled greedily until the
// next page would overflow it. Concatenating the pages of all partitions
// gives back doc's pages in their original order. Every partition shares
// doc's identity factory and holds its own copy of doc's metadata.
//
// A document with fewer than two pages is returned as the single partition,
// unchanged and unmeasured against the budget. Otherwise, a page that alone
// exceeds the budget fails the whole split with a [*PageTooLargeError].
//
// One partition keeps title; several are titled "<title> (Part N)".
func Split(doc *document.Document, title string, maxBytes int) ([]Partition, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document must not be nil")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	pages := doc.Pages()
	if len(pages) < 2 {
		size, err := io.Size(doc)
		if err != nil {
			return nil, err
		}
		return []Partition{{Title: title, Document: doc, Size: size, PageCount: len(pages)}}, nil
	}

	var (
		out   []Partition
		acc   []*document.Page
		size  int
		first int
	)
	emit := func() {
		out = append(out, Partition{
			Index:     len(out),
			Document:  doc.Derive(acc...),
			Size:      size,
			FirstPage: first,
			PageCount: len(acc),
		})
	}

	for i, p := range pages {
		n, err := measure(doc, append(acc[:len(acc):len(acc)], p))
		if err != nil {
			return nil, err
		}
		if n <= maxBytes {
			acc = append(acc, p)
			size = n
			continue
		}

		if len(acc) > 0 {
			emit()
			n, err = measure(doc, []*document.Page{p})
			if err != nil {
				return nil, err
			}
		}
		if n > maxBytes {
			return nil, &PageTooLargeError{PageTitle: p.Title, PageIndex: i, Size: n, Limit: maxBytes}
		}
		acc = []*document.Page{p}
		size = n
		first = i
	}
	if len(acc) > 0 {
		emit()
	}

	for i := range out {
		out[i].Title = partTitle(title, i, len(out))
	}
	return out, nil
}

func measure(doc *document.Document, pages []*document.Page) (int, error) {
	n, err := io.Size(doc.Derive(pages...))
	if err != nil {
		return 0, fmt.Errorf("measure partition: %w", err)
	}
	return n, nil
}

func partTitle(title string, i, n int) string {
	if n == 1 {
		return title
	}
	return fmt.Sprintf("%s (Part %d)", title, i+1)
}
