package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Shape is a visual primitive on a page.
//
// Shape is a closed variant: Type selects which of the variant payloads is
// meaningful. Image shapes carry Image (and optionally Stroke), table shapes
// carry Table. Construct shapes with the New* functions so the payload
// matches the tag.
//
// A shape is owned by exactly one page. Layers and groups refer to it by id.
type Shape struct {
	id  string
	key string

	Type        ShapeType
	BoundingBox BoundingBox
	Style       *Style
	Text        string
	Note        string
	Actions     []Action
	CustomData  []CustomData
	LinkedData  []LinkedData

	opacity *int

	// Image is the fill of an image shape.
	Image *ImageFill
	// Stroke is the outline of an image shape.
	Stroke *Stroke
	// Table is the payload of a table shape.
	Table *Table
}

func newShape(t ShapeType, box BoundingBox) *Shape {
	return &Shape{Type: t, BoundingBox: box}
}

// NewRectangle returns a rectangle shape.
func NewRectangle(box BoundingBox) *Shape { return newShape(ShapeRectangle, box) }

// NewCircle returns a circle shape.
func NewCircle(box BoundingBox) *Shape { return newShape(ShapeCircle, box) }

// NewHexagon returns a hexagon shape.
func NewHexagon(box BoundingBox) *Shape { return newShape(ShapeHexagon, box) }

// NewPentagon returns a pentagon shape.
func NewPentagon(box BoundingBox) *Shape { return newShape(ShapePentagon, box) }

// NewText returns a text shape.
func NewText(box BoundingBox, text string) *Shape {
	s := newShape(ShapeText, box)
	s.Text = text
	return s
}

// NewImage returns an image shape filled by fill. stroke may be nil.
func NewImage(box BoundingBox, fill *ImageFill, stroke *Stroke) (*Shape, error) {
	if fill == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image shape requires a fill")
	}
	s := newShape(ShapeImage, box)
	s.Image = fill
	s.Stroke = stroke
	return s, nil
}

// ID returns the identifier assigned when the shape was added to a page.
func (s *Shape) ID() string { return s.id }

// SetID is called by the identity factory.
func (s *Shape) SetID(id string) { s.id = id }

// ExternalKey returns the caller-supplied correlation key.
func (s *Shape) ExternalKey() string { return s.key }

// WithKey sets the external correlation key and returns s. Shapes sharing a
// key within a document share an identifier.
func (s *Shape) WithKey(key string) *Shape {
	s.key = key
	return s
}

// WithStyle sets the style and returns s.
func (s *Shape) WithStyle(style *Style) *Shape {
	s.Style = style
	return s
}

// WithText sets the text and returns s.
func (s *Shape) WithText(text string) *Shape {
	s.Text = text
	return s
}

// SetOpacity sets the opacity in percent. Values outside [0, 100] are
// rejected and leave the shape unchanged.
func (s *Shape) SetOpacity(v int) error {
	if v < 0 || v > 100 {
		return errors.New(errors.ErrCodeOutOfRange, "opacity %d outside [0, 100]", v)
	}
	s.opacity = &v
	return nil
}

// Opacity returns the opacity and whether it has been set.
func (s *Shape) Opacity() (int, bool) {
	if s.opacity == nil {
		return 0, false
	}
	return *s.opacity, true
}

// ClearOpacity removes the opacity so the importer default applies.
func (s *Shape) ClearOpacity() { s.opacity = nil }

// Clone returns a copy of s that keeps its identifier. The image fill and
// table payload are copied; styles are shared.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.opacity != nil {
		v := *s.opacity
		c.opacity = &v
	}
	c.Actions = slices.Clone(s.Actions)
	c.CustomData = slices.Clone(s.CustomData)
	c.LinkedData = slices.Clone(s.LinkedData)
	if s.Image != nil {
		c.Image = s.Image.Clone()
	}
	if s.Table != nil {
		c.Table = s.Table.clone()
	}
	return &c
}
