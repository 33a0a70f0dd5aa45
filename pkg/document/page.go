package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/ident"
)

// Page owns shapes and lines and holds the layers and groups that refer to
// them. Every node added to a page receives its identifier from the
// document's factory.
type Page struct {
	id string

	Title      string
	Settings   *PageSettings
	CustomData []CustomData

	ids    *ident.Factory
	shapes []*Shape
	owned  map[*Shape]struct{}
	lines  []*Line
	groups []*Group
	layers []*Layer
}

// NewPage returns an empty page bound to ids. The page receives its own
// identifier when it is added to a document.
func NewPage(ids *ident.Factory, title string) *Page {
	return &Page{
		Title: title,
		ids:   ids,
		owned: make(map[*Shape]struct{}),
	}
}

// ID returns the page identifier.
func (p *Page) ID() string { return p.id }

// SetID is called by the identity factory.
func (p *Page) SetID(id string) { p.id = id }

// ExternalKey returns "": pages are not correlated by key.
func (p *Page) ExternalKey() string { return "" }

// Shapes returns the shapes owned by the page, in insertion order.
func (p *Page) Shapes() []*Shape { return slices.Clone(p.shapes) }

// Lines returns the lines owned by the page, in insertion order.
func (p *Page) Lines() []*Line { return slices.Clone(p.lines) }

// Groups returns the groups of the page.
func (p *Page) Groups() []*Group { return slices.Clone(p.groups) }

// Layers returns the layers of the page.
func (p *Page) Layers() []*Layer { return slices.Clone(p.layers) }

// Owns reports whether s has been added to p.
func (p *Page) Owns(s *Shape) bool {
	_, ok := p.owned[s]
	return ok
}

// Shape returns the owned shape with identifier id, or nil.
func (p *Page) Shape(id string) *Shape {
	for _, s := range p.shapes {
		if s.id == id {
			return s
		}
	}
	return nil
}

// ShapeAt returns the most recently added shape whose bounding box contains
// pt, or nil.
func (p *Page) ShapeAt(pt Point) *Shape {
	for i := len(p.shapes) - 1; i >= 0; i-- {
		if p.shapes[i].BoundingBox.Contains(pt) {
			return p.shapes[i]
		}
	}
	return nil
}

// AddShape assigns s an identifier and makes p its owner. Adding a shape
// the page already owns is a no-op.
func (p *Page) AddShape(s *Shape) error {
	if err := p.assign(s); err != nil {
		return err
	}
	if p.Owns(s) {
		return nil
	}
	p.shapes = append(p.shapes, s)
	p.owned[s] = struct{}{}
	return nil
}

// AddShapes adds each shape in order.
func (p *Page) AddShapes(shapes ...*Shape) error {
	for _, s := range shapes {
		if err := p.AddShape(s); err != nil {
			return err
		}
	}
	return nil
}

// AddLine resolves the line's endpoints, assigns it an identifier and makes
// p its owner.
func (p *Page) AddLine(l *Line) error {
	if l == nil {
		return ident.ErrNilNode
	}
	if err := l.Endpoint1.resolve(p); err != nil {
		return err
	}
	if err := l.Endpoint2.resolve(p); err != nil {
		return err
	}
	if err := p.ids.Assign(l); err != nil {
		return err
	}
	if slices.Contains(p.lines, l) {
		return nil
	}
	p.lines = append(p.lines, l)
	return nil
}

// NewLayer creates a layer on p.
func (p *Page) NewLayer(title string) (*Layer, error) {
	l := &Layer{Title: title, page: p, items: []string{}}
	if err := p.ids.Assign(l); err != nil {
		return nil, err
	}
	p.layers = append(p.layers, l)
	return l, nil
}

// AddGroup groups shapes. Shapes the page does not own yet are added to it
// first. Membership is fixed once the group exists.
func (p *Page) AddGroup(shapes ...*Shape) (*Group, error) {
	if len(shapes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "group needs at least one shape")
	}
	items := make([]string, 0, len(shapes))
	for _, s := range shapes {
		if err := p.AddShape(s); err != nil {
			return nil, err
		}
		items = append(items, s.id)
	}
	g := &Group{items: items}
	if err := p.ids.Assign(g); err != nil {
		return nil, err
	}
	p.groups = append(p.groups, g)
	return g, nil
}

// ExpandShape places extra shapes directly after orig and adds their ids
// next to orig's in every layer and group that refers to orig. It is used
// when one shape is replaced by several, such as an image split into tiles.
func (p *Page) ExpandShape(orig *Shape, extra ...*Shape) error {
	i := slices.Index(p.shapes, orig)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "shape %q is not on page %q", orig.id, p.Title)
	}
	ids := make([]string, 0, len(extra))
	for _, s := range extra {
		if err := p.assign(s); err != nil {
			return err
		}
		p.owned[s] = struct{}{}
		ids = append(ids, s.id)
	}
	p.shapes = slices.Insert(p.shapes, i+1, extra...)

	for _, l := range p.layers {
		l.items = insertAfter(l.items, orig.id, ids)
	}
	for _, g := range p.groups {
		g.items = insertAfter(g.items, orig.id, ids)
	}
	return nil
}

// Clone returns a copy of p with the same identifiers. Shapes, lines,
// layers and groups are copied so the clone can be changed independently.
func (p *Page) Clone() *Page {
	c := &Page{
		id:         p.id,
		Title:      p.Title,
		CustomData: slices.Clone(p.CustomData),
		ids:        p.ids,
		owned:      make(map[*Shape]struct{}, len(p.shapes)),
	}
	if p.Settings != nil {
		st := *p.Settings
		c.Settings = &st
	}
	for _, s := range p.shapes {
		cs := s.Clone()
		c.shapes = append(c.shapes, cs)
		c.owned[cs] = struct{}{}
	}
	for _, l := range p.lines {
		c.lines = append(c.lines, l.clone())
	}
	for _, g := range p.groups {
		c.groups = append(c.groups, g.clone())
	}
	for _, l := range p.layers {
		cl := l.clone()
		cl.page = c
		c.layers = append(c.layers, cl)
	}
	return c
}

// assign gives s, and its image fill, an identifier. A fill shared by
// several shapes keeps the one identifier.
func (p *Page) assign(s *Shape) error {
	if err := p.ids.Assign(s); err != nil {
		return err
	}
	if s.Image != nil {
		return p.ids.Assign(s.Image)
	}
	return nil
}

func insertAfter(items []string, after string, ids []string) []string {
	i := slices.Index(items, after)
	if i < 0 {
		return items
	}
	return slices.Insert(items, i+1, ids...)
}
