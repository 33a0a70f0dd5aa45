package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Line connects two endpoints on a page.
type Line struct {
	id  string
	key string

	Type               LineType
	Endpoint1          Endpoint
	Endpoint2          Endpoint
	Stroke             *Stroke
	Text               []LineText
	CustomData         []CustomData
	LinkedData         []LinkedData
	Joints             []Point
	ElbowControlPoints []Point
}

// NewLine returns a line of the given routing type between two endpoints.
func NewLine(t LineType, from, to Endpoint) *Line {
	return &Line{Type: t, Endpoint1: from, Endpoint2: to}
}

// ID returns the identifier assigned when the line was added to a page.
func (l *Line) ID() string { return l.id }

// SetID is called by the identity factory.
func (l *Line) SetID(id string) { l.id = id }

// ExternalKey returns the caller-supplied correlation key.
func (l *Line) ExternalKey() string { return l.key }

// WithKey sets the external correlation key and returns l.
func (l *Line) WithKey(key string) *Line {
	l.key = key
	return l
}

func (l *Line) clone() *Line {
	c := *l
	c.Text = slices.Clone(l.Text)
	c.CustomData = slices.Clone(l.CustomData)
	c.LinkedData = slices.Clone(l.LinkedData)
	c.Joints = slices.Clone(l.Joints)
	c.ElbowControlPoints = slices.Clone(l.ElbowControlPoints)
	return &c
}

// Endpoint is one end of a line.
//
// A position endpoint sits at an absolute canvas position. A shape endpoint
// attaches to a shape at a position relative to the shape's bounding box
// (0,0 top left, 1,1 bottom right). The target shape is named by id, by
// external key or by a canvas point inside it; keys and points are resolved
// when the line is added to a page. A line endpoint attaches to another line
// at a fraction of its length.
type Endpoint struct {
	Type     EndpointType
	Position Point
	Style    string

	ShapeID string
	LineID  string

	key string
	at  *Point
}

// AtPosition returns an endpoint at an absolute canvas position.
func AtPosition(x, y float64) Endpoint {
	return Endpoint{Type: PositionEndpoint, Position: Point{X: x, Y: y}}
}

// OnShape attaches to a shape that already has an identifier.
func OnShape(s *Shape, rx, ry float64) Endpoint {
	return Endpoint{Type: ShapeEndpoint, ShapeID: s.ID(), key: s.ExternalKey(), Position: Point{X: rx, Y: ry}}
}

// OnKey attaches to the shape carrying external key. The shape does not
// need to exist yet.
func OnKey(key string, rx, ry float64) Endpoint {
	return Endpoint{Type: ShapeEndpoint, key: key, Position: Point{X: rx, Y: ry}}
}

// OnShapeAt attaches to the topmost shape of the page containing the
// canvas point (x, y).
func OnShapeAt(x, y, rx, ry float64) Endpoint {
	return Endpoint{Type: ShapeEndpoint, at: &Point{X: x, Y: y}, Position: Point{X: rx, Y: ry}}
}

// OnLine attaches to another line at fraction pos of its length.
func OnLine(l *Line, pos float64) Endpoint {
	return Endpoint{Type: LineEndpoint, LineID: l.ID(), Position: Point{X: pos}}
}

// WithStyle sets the arrowhead style and returns the endpoint.
func (e Endpoint) WithStyle(style string) Endpoint {
	e.Style = style
	return e
}

// Key returns the external key the endpoint was created with, if any.
func (e Endpoint) Key() string { return e.key }

// resolve fills in ShapeID for key and point endpoints.
func (e *Endpoint) resolve(p *Page) error {
	switch e.Type {
	case PositionEndpoint:
		return nil
	case LineEndpoint:
		if e.LineID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "line endpoint references a line without id")
		}
		return nil
	case ShapeEndpoint:
		if e.ShapeID != "" {
			return nil
		}
		if e.key != "" {
			id, err := p.ids.Resolve(e.key)
			if err != nil {
				return err
			}
			e.ShapeID = id
			return nil
		}
		if e.at != nil {
			s := p.ShapeAt(*e.at)
			if s == nil {
				return errors.New(errors.ErrCodeNotFound, "no shape at (%g, %g)", e.at.X, e.at.Y)
			}
			e.ShapeID = s.ID()
			return nil
		}
		return errors.New(errors.ErrCodeInvalidInput, "shape endpoint has no target")
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown endpoint type %q", e.Type)
}
