package split

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/io"
)

// buildDocument returns a document whose i-th page holds shapes[i] text
// shapes with 40 characters of text each.
func buildDocument(t *testing.T, shapes ...int) *document.Document {
	t.Helper()
	doc := document.New("Doc")
	for i, n := range shapes {
		p, err := doc.NewPage(fmt.Sprintf("Page %d", i+1))
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < n; j++ {
			s := document.NewText(document.Box(float64(j*10), 0, 10, 10), strings.Repeat("x", 40))
			if err := p.AddShape(s); err != nil {
				t.Fatal(err)
			}
		}
	}
	return doc
}

func pageSize(t *testing.T, doc *document.Document, i int) int {
	t.Helper()
	n, err := io.Size(doc.Derive(doc.Pages()[i]))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func flatten(parts []Partition) []*document.Page {
	var out []*document.Page
	for _, p := range parts {
		out = append(out, p.Document.Pages()...)
	}
	return out
}

func TestSplitTrivial(t *testing.T) {
	for _, pages := range [][]int{{}, {50}} {
		doc := buildDocument(t, pages...)
		// Budget is deliberately tiny: trivial documents are never split.
		parts, err := Split(doc, "Title", 100)
		if err != nil {
			t.Fatalf("%d pages: %v", len(pages), err)
		}
		if len(parts) != 1 {
			t.Fatalf("%d pages: got %d partitions, want 1", len(pages), len(parts))
		}
		if parts[0].Document != doc {
			t.Errorf("%d pages: document was not returned unchanged", len(pages))
		}
		if parts[0].Title != "Title" {
			t.Errorf("title = %q, want Title", parts[0].Title)
		}
	}
}

func TestSplitFitsInOne(t *testing.T) {
	doc := buildDocument(t, 2, 3, 4)
	parts, err := Split(doc, "All", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d partitions, want 1", len(parts))
	}
	if parts[0].Title != "All" {
		t.Errorf("single partition title = %q, want All", parts[0].Title)
	}
	if parts[0].Document == doc {
		t.Error("multi-page input should be rebuilt as a derived document")
	}
	if parts[0].PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", parts[0].PageCount)
	}
}

func TestSplitPreservesOrderAndBound(t *testing.T) {
	counts := []int{3, 8, 1, 5, 5, 2, 9, 4, 6, 1}
	doc := buildDocument(t, counts...)

	largest := 0
	for i := range counts {
		largest = max(largest, pageSize(t, doc, i))
	}

	for _, budget := range []int{largest, largest + largest/2, 2 * largest, 4 * largest} {
		t.Run(fmt.Sprintf("budget=%d", budget), func(t *testing.T) {
			parts, err := Split(doc, "Doc", budget)
			if err != nil {
				t.Fatal(err)
			}

			got := flatten(parts)
			want := doc.Pages()
			if len(got) != len(want) {
				t.Fatalf("got %d pages back, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("page %d out of order", i)
				}
			}

			next := 0
			for i, p := range parts {
				if p.Index != i {
					t.Errorf("partition %d has Index %d", i, p.Index)
				}
				if p.FirstPage != next {
					t.Errorf("partition %d FirstPage = %d, want %d", i, p.FirstPage, next)
				}
				next += p.PageCount

				n, err := io.Size(p.Document)
				if err != nil {
					t.Fatal(err)
				}
				if n != p.Size {
					t.Errorf("partition %d Size = %d, measured %d", i, p.Size, n)
				}
				if n > budget {
					t.Errorf("partition %d is %d bytes, budget %d", i, n, budget)
				}
			}
		})
	}
}

func TestSplitTitles(t *testing.T) {
	doc := buildDocument(t, 5, 5, 5)
	parts, err := Split(doc, "Report", pageSize(t, doc, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 3 {
		t.Fatalf("got %d partitions, want 3", len(parts))
	}
	for i, p := range parts {
		want := fmt.Sprintf("Report (Part %d)", i+1)
		if p.Title != want {
			t.Errorf("partition %d title = %q, want %q", i, p.Title, want)
		}
		if p.Document.Title != "Doc" {
			t.Errorf("partition %d document title = %q, want the source title", i, p.Document.Title)
		}
	}
}

func TestSplitSharesFactoryCopiesMetadata(t *testing.T) {
	doc := buildDocument(t, 5, 5)
	doc.Settings = &document.Settings{Units: document.UnitsPX}

	parts, err := Split(doc, "Doc", pageSize(t, doc, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d partitions, want 2", len(parts))
	}
	if parts[0].Document.IDs() != doc.IDs() || parts[1].Document.IDs() != doc.IDs() {
		t.Error("partitions must share the source factory")
	}
	parts[0].Document.Settings.Units = document.UnitsCM
	if doc.Settings.Units != document.UnitsPX || parts[1].Document.Settings.Units != document.UnitsPX {
		t.Error("partitions share settings with each other or the source")
	}
}

func TestSplitFirstPageTooLarge(t *testing.T) {
	doc := buildDocument(t, 1, 1)
	_, err := Split(doc, "Doc", 100)

	var tooLarge *PageTooLargeError
	if !stderrors.As(err, &tooLarge) {
		t.Fatalf("error = %v, want *PageTooLargeError", err)
	}
	if tooLarge.PageIndex != 0 || tooLarge.PageTitle != "Page 1" {
		t.Errorf("reported page %d %q, want 0 \"Page 1\"", tooLarge.PageIndex, tooLarge.PageTitle)
	}
	if tooLarge.Limit != 100 || tooLarge.Size <= 100 {
		t.Errorf("size %d / limit %d", tooLarge.Size, tooLarge.Limit)
	}
	if !errors.Is(err, errors.ErrCodeSizeLimit) {
		t.Error("error does not carry SIZE_LIMIT")
	}
	if !strings.Contains(err.Error(), "Page 1") {
		t.Errorf("message %q does not name the page", err.Error())
	}
}

func TestSplitMiddlePageTooLarge(t *testing.T) {
	doc := buildDocument(t, 1, 40, 1)
	budget := pageSize(t, doc, 0) * 2

	parts, err := Split(doc, "Doc", budget)
	if parts != nil {
		t.Error("partitions returned alongside the fatal error")
	}
	var tooLarge *PageTooLargeError
	if !stderrors.As(err, &tooLarge) {
		t.Fatalf("error = %v, want *PageTooLargeError", err)
	}
	if tooLarge.PageIndex != 1 || tooLarge.PageTitle != "Page 2" {
		t.Errorf("reported page %d %q", tooLarge.PageIndex, tooLarge.PageTitle)
	}
}

func TestSplitNil(t *testing.T) {
	if _, err := Split(nil, "x", 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Split(nil) = %v, want INVALID_INPUT", err)
	}
}
