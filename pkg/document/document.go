package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/ident"
)

// FormatVersion is the standard import format version written by default.
const FormatVersion = 1

// Document is the root of the graph: an ordered list of pages plus
// document-wide metadata. All descendants draw identifiers from the one
// factory the document was created with.
type Document struct {
	Title     string
	Version   int
	Settings  *Settings
	Bootstrap *BootstrapData

	ids         *ident.Factory
	pages       []*Page
	collections []*Collection
}

// New returns an empty document with a fresh identity factory.
func New(title string) *Document {
	return NewWithFactory(title, ident.New())
}

// NewWithFactory returns an empty document drawing identifiers from ids.
// A nil ids gets a fresh factory.
func NewWithFactory(title string, ids *ident.Factory) *Document {
	if ids == nil {
		ids = ident.New()
	}
	return &Document{Title: title, Version: FormatVersion, ids: ids}
}

// IDs returns the document's identity factory.
func (d *Document) IDs() *ident.Factory { return d.ids }

// Pages returns the pages in order.
func (d *Document) Pages() []*Page { return slices.Clone(d.pages) }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Collections returns the data collections of the document.
func (d *Document) Collections() []*Collection { return slices.Clone(d.collections) }

// NewPage creates a page, adds it to the document and returns it.
func (d *Document) NewPage(title string) (*Page, error) {
	p := NewPage(d.ids, title)
	if err := d.AddPage(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddPage assigns p an identifier and appends it. p must have been created
// with this document's factory.
func (d *Document) AddPage(p *Page) error {
	if p == nil {
		return ident.ErrNilNode
	}
	if p.ids != d.ids {
		return errors.New(errors.ErrCodeInvalidInput,
			"page %q was created for another document", p.Title)
	}
	if err := d.ids.Assign(p); err != nil {
		return err
	}
	d.pages = append(d.pages, p)
	return nil
}

// AddCollection registers a data collection. Its data, if any, is written to
// the bundle's data folder under DataSource.
func (d *Document) AddCollection(c *Collection) error {
	if c == nil {
		return ident.ErrNilNode
	}
	if err := errors.ValidatePath(c.DataSource); err != nil {
		return err
	}
	if err := d.ids.Assign(c); err != nil {
		return err
	}
	d.collections = append(d.collections, c)
	return nil
}

// Derive returns a document with the same title, version, metadata and
// factory as d that holds the given pages. The pages are shared, not
// copied; metadata and collections are copied.
func (d *Document) Derive(pages ...*Page) *Document {
	out := &Document{
		Title:     d.Title,
		Version:   d.Version,
		Bootstrap: d.Bootstrap.clone(),
		ids:       d.ids,
		pages:     slices.Clone(pages),
	}
	for _, c := range d.collections {
		cc := *c
		out.collections = append(out.collections, &cc)
	}
	if d.Settings != nil {
		s := *d.Settings
		out.Settings = &s
	}
	return out
}

// Clone returns a deep copy of d that keeps every identifier and shares
// the factory, so new nodes added to the copy get fresh identifiers that
// do not clash with the original's.
func (d *Document) Clone() *Document {
	out := d.Derive()
	for _, p := range d.pages {
		out.pages = append(out.pages, p.Clone())
	}
	return out
}

// Collection is a data source referenced by [LinkedData].
type Collection struct {
	id string

	// DataSource is the file name of the data under the bundle's data folder.
	DataSource string
	// Data is the file content, typically CSV. It is not serialized.
	Data []byte
}

// NewCollection returns a collection backed by data stored as dataSource.
func NewCollection(dataSource string, data []byte) *Collection {
	return &Collection{DataSource: dataSource, Data: data}
}

// ID returns the collection identifier.
func (c *Collection) ID() string { return c.id }

// SetID is called by the identity factory.
func (c *Collection) SetID(id string) { c.id = id }

// ExternalKey returns the data source name so a collection registered
// twice keeps one identifier.
func (c *Collection) ExternalKey() string { return "collection:" + c.DataSource }
