package document

import (
	"bytes"
	"encoding/json"
)

// The wire types below are the JSON projection of the graph. Required
// arrays are always non-nil so they encode as [] rather than null.

type wireDocument struct {
	Version          int              `json:"version"`
	Title            string           `json:"title"`
	Pages            []wirePage       `json:"pages"`
	Collections      []wireCollection `json:"collections,omitempty"`
	DocumentSettings *Settings        `json:"documentSettings,omitempty"`
	BootstrapData    *BootstrapData   `json:"bootstrapData,omitempty"`
}

type wireCollection struct {
	ID         string `json:"id"`
	DataSource string `json:"dataSource"`
}

type wirePage struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Settings   *PageSettings `json:"settings,omitempty"`
	Shapes     []wireShape   `json:"shapes"`
	Lines      []wireLine    `json:"lines"`
	Groups     []wireGroup   `json:"groups"`
	Layers     []wireLayer   `json:"layers"`
	CustomData []CustomData  `json:"customData,omitempty"`
}

type wireShape struct {
	ID          string       `json:"id"`
	Type        ShapeType    `json:"type"`
	BoundingBox BoundingBox  `json:"boundingBox"`
	Style       *Style       `json:"style,omitempty"`
	Text        *string      `json:"text,omitempty"`
	Opacity     *int         `json:"opacity,omitempty"`
	Note        string       `json:"note,omitempty"`
	Actions     []Action     `json:"actions,omitempty"`
	CustomData  []CustomData `json:"customData,omitempty"`
	LinkedData  []LinkedData `json:"linkedData,omitempty"`

	Image  *wireImage `json:"image,omitempty"`
	Stroke *Stroke    `json:"stroke,omitempty"`

	RowCount          *int         `json:"rowCount,omitempty"`
	ColCount          *int         `json:"colCount,omitempty"`
	Cells             *[]TableCell `json:"cells,omitempty"`
	UserSpecifiedRows []FieldSize  `json:"userSpecifiedRows,omitempty"`
	UserSpecifiedCols []FieldSize  `json:"userSpecifiedCols,omitempty"`
	VerticalBorder    *bool        `json:"verticalBorder,omitempty"`
	HorizontalBorder  *bool        `json:"horizontalBorder,omitempty"`
}

type wireImage struct {
	Ref        string     `json:"ref,omitempty"`
	URL        string     `json:"url,omitempty"`
	ImageScale ImageScale `json:"imageScale,omitempty"`
}

type wireLine struct {
	ID                 string       `json:"id"`
	LineType           LineType     `json:"lineType"`
	Endpoint1          wireEndpoint `json:"endpoint1"`
	Endpoint2          wireEndpoint `json:"endpoint2"`
	Stroke             *Stroke      `json:"stroke,omitempty"`
	Text               []LineText   `json:"text,omitempty"`
	CustomData         []CustomData `json:"customData,omitempty"`
	LinkedData         []LinkedData `json:"linkedData,omitempty"`
	Joints             []Point      `json:"joints,omitempty"`
	ElbowControlPoints []Point      `json:"elbowControlPoints,omitempty"`
}

type wireEndpoint struct {
	Type     EndpointType `json:"type"`
	Style    string       `json:"style,omitempty"`
	ShapeID  string       `json:"shapeId,omitempty"`
	LineID   string       `json:"lineId,omitempty"`
	Position any          `json:"position"`
}

type wireGroup struct {
	ID         string       `json:"id"`
	Items      []string     `json:"items"`
	Note       string       `json:"note,omitempty"`
	CustomData []CustomData `json:"customData,omitempty"`
	LinkedData []LinkedData `json:"linkedData,omitempty"`
}

type wireLayer struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Items      []string     `json:"items"`
	Note       string       `json:"note,omitempty"`
	CustomData []CustomData `json:"customData,omitempty"`
	LinkedData []LinkedData `json:"linkedData,omitempty"`
}

// MarshalJSON encodes the document in the standard import format.
func (d *Document) MarshalJSON() ([]byte, error) {
	return encode(d.wire())
}

// MarshalJSON encodes a single page as it appears inside a document.
func (p *Page) MarshalJSON() ([]byte, error) {
	return encode(p.wire())
}

// encode marshals v without HTML escaping. When the result is returned from
// MarshalJSON, encoding/json recompacts it and the caller's encoder decides
// escaping; json.Marshal escapes, an Encoder with SetEscapeHTML(false) does
// not.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (d *Document) wire() wireDocument {
	out := wireDocument{
		Version:          d.Version,
		Title:            d.Title,
		Pages:            make([]wirePage, 0, len(d.pages)),
		DocumentSettings: d.Settings,
		BootstrapData:    d.Bootstrap,
	}
	for _, p := range d.pages {
		out.Pages = append(out.Pages, p.wire())
	}
	for _, c := range d.collections {
		out.Collections = append(out.Collections, wireCollection{ID: c.id, DataSource: c.DataSource})
	}
	return out
}

func (p *Page) wire() wirePage {
	out := wirePage{
		ID:         p.id,
		Title:      p.Title,
		Settings:   p.Settings,
		Shapes:     make([]wireShape, 0, len(p.shapes)),
		Lines:      make([]wireLine, 0, len(p.lines)),
		Groups:     make([]wireGroup, 0, len(p.groups)),
		Layers:     make([]wireLayer, 0, len(p.layers)),
		CustomData: p.CustomData,
	}
	for _, s := range p.shapes {
		out.Shapes = append(out.Shapes, s.wire())
	}
	for _, l := range p.lines {
		out.Lines = append(out.Lines, l.wire())
	}
	for _, g := range p.groups {
		out.Groups = append(out.Groups, wireGroup{
			ID:         g.id,
			Items:      nonNil(g.items),
			Note:       g.Note,
			CustomData: g.CustomData,
			LinkedData: g.LinkedData,
		})
	}
	for _, l := range p.layers {
		out.Layers = append(out.Layers, wireLayer{
			ID:         l.id,
			Title:      l.Title,
			Items:      nonNil(l.items),
			Note:       l.Note,
			CustomData: l.CustomData,
			LinkedData: l.LinkedData,
		})
	}
	return out
}

func (s *Shape) wire() wireShape {
	out := wireShape{
		ID:          s.id,
		Type:        s.Type,
		BoundingBox: s.BoundingBox,
		Style:       s.Style,
		Opacity:     s.opacity,
		Note:        s.Note,
		Actions:     s.Actions,
		CustomData:  s.CustomData,
		LinkedData:  s.LinkedData,
	}

	switch s.Type {
	case ShapeTable:
		// Tables carry their text in cells and must not have a text field.
		if t := s.Table; t != nil {
			cells := nonNil(t.Cells)
			out.RowCount = &t.RowCount
			out.ColCount = &t.ColCount
			out.Cells = &cells
			out.UserSpecifiedRows = t.UserSpecifiedRows
			out.UserSpecifiedCols = t.UserSpecifiedCols
			out.VerticalBorder = &t.VerticalBorder
			out.HorizontalBorder = &t.HorizontalBorder
		}
	case ShapeImage:
		text := s.Text
		out.Text = &text
		out.Stroke = s.Stroke
		if f := s.Image; f != nil {
			out.Image = &wireImage{Ref: f.ref, URL: f.url, ImageScale: f.Scale}
		}
	default:
		// An absent text field makes the importer show placeholder text.
		text := s.Text
		out.Text = &text
	}
	return out
}

func (l *Line) wire() wireLine {
	return wireLine{
		ID:                 l.id,
		LineType:           l.Type,
		Endpoint1:          l.Endpoint1.wire(),
		Endpoint2:          l.Endpoint2.wire(),
		Stroke:             l.Stroke,
		Text:               l.Text,
		CustomData:         l.CustomData,
		LinkedData:         l.LinkedData,
		Joints:             l.Joints,
		ElbowControlPoints: l.ElbowControlPoints,
	}
}

func (e Endpoint) wire() wireEndpoint {
	out := wireEndpoint{Type: e.Type, Style: e.Style}
	switch e.Type {
	case LineEndpoint:
		out.LineID = e.LineID
		out.Position = e.Position.X
	case ShapeEndpoint:
		out.ShapeID = e.ShapeID
		out.Position = e.Position
	default:
		out.Position = e.Position
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
