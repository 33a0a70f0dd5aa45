package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Layer is an ordered set of references to shapes and groups of one page.
// A layer never owns what it refers to.
type Layer struct {
	id    string
	page  *Page
	items []string

	Title      string
	Note       string
	CustomData []CustomData
	LinkedData []LinkedData
}

// ID returns the layer identifier.
func (l *Layer) ID() string { return l.id }

// SetID is called by the identity factory.
func (l *Layer) SetID(id string) { l.id = id }

// ExternalKey returns "".
func (l *Layer) ExternalKey() string { return "" }

// Items returns the referenced identifiers in order.
func (l *Layer) Items() []string { return slices.Clone(l.items) }

// Contains reports whether the layer refers to id.
func (l *Layer) Contains(id string) bool { return slices.Contains(l.items, id) }

// AddShape adds a reference to s. If the page does not own s yet, s is
// added to the page first.
func (l *Layer) AddShape(s *Shape) error {
	if err := l.page.AddShape(s); err != nil {
		return err
	}
	l.add(s.id)
	return nil
}

// AddGroup adds a reference to a group of the same page.
func (l *Layer) AddGroup(g *Group) error {
	if g == nil || !slices.Contains(l.page.groups, g) {
		return errors.New(errors.ErrCodeInvalidInput, "group is not on page %q", l.page.Title)
	}
	l.add(g.id)
	return nil
}

// Remove drops the reference to s. The shape stays on its page.
// It reports whether a reference was removed.
func (l *Layer) Remove(s *Shape) bool {
	if s == nil || s.id == "" {
		return false
	}
	i := slices.Index(l.items, s.id)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

func (l *Layer) add(id string) {
	if !slices.Contains(l.items, id) {
		l.items = append(l.items, id)
	}
}

func (l *Layer) clone() *Layer {
	c := *l
	c.items = slices.Clone(l.items)
	c.CustomData = slices.Clone(l.CustomData)
	c.LinkedData = slices.Clone(l.LinkedData)
	return &c
}

// Group is a fixed set of references to shapes of one page, created with
// [Page.AddGroup].
type Group struct {
	id    string
	items []string

	Note       string
	CustomData []CustomData
	LinkedData []LinkedData
}

// ID returns the group identifier.
func (g *Group) ID() string { return g.id }

// SetID is called by the identity factory.
func (g *Group) SetID(id string) { g.id = id }

// ExternalKey returns "".
func (g *Group) ExternalKey() string { return "" }

// Items returns the member shape identifiers in order.
func (g *Group) Items() []string { return slices.Clone(g.items) }

func (g *Group) clone() *Group {
	c := *g
	c.items = slices.Clone(g.items)
	c.CustomData = slices.Clone(g.CustomData)
	c.LinkedData = slices.Clone(g.LinkedData)
	return &c
}
