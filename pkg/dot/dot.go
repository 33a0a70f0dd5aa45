package dot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
)

// DefaultScale converts inches to pixels.
const DefaultScale = 72.0

// plainFormat is Graphviz's line-oriented layout output.
const plainFormat graphviz.Format = "plain"

// Options configures [Build] and [Layout.AddTo].
type Options struct {
	Scale    float64           // pixels per inch; default 72
	OffsetX  float64           // added to every x after scaling
	OffsetY  float64           // added to every y after scaling
	LineType document.LineType // default straight
	Arrow    string            // head arrow style; default "Arrow", "none" for no arrow
	Fill     string            // fill for nodes Graphviz leaves unfilled
	Style    *document.Stroke  // stroke for lines; nil keeps the importer default
	Layer    string            // put every node in a layer of this title when set
}

func (o *Options) setDefaults() {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.LineType == "" {
		o.LineType = document.LineStraight
	}
	if o.Arrow == "" {
		o.Arrow = "Arrow"
	}
}

// Result summarizes what [Build] added.
type Result struct {
	Nodes  int
	Edges  int
	Width  float64 // drawing size in pixels
	Height float64
}

// Build lays out the DOT source and adds the drawing to page.
func Build(ctx context.Context, page *document.Page, src []byte, opts Options) (*Result, error) {
	if page == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "page must not be nil")
	}
	l, err := Render(ctx, src)
	if err != nil {
		return nil, err
	}
	return l.AddTo(page, opts)
}

// Render runs the Graphviz layout on src and returns the result.
func Render(ctx context.Context, src []byte) (*Layout, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return ParsePlain(buf.Bytes())
}

// AddTo adds one shape per node and one line per edge to page. Nodes are
// keyed by name within the page, so adding the same layout to two pages
// gives distinct shapes.
func (l *Layout) AddTo(page *document.Page, opts Options) (*Result, error) {
	opts.setDefaults()
	scale := opts.Scale
	if l.Scale > 0 {
		scale *= l.Scale
	}

	var layer *document.Layer
	if opts.Layer != "" {
		var err error
		if layer, err = page.NewLayer(opts.Layer); err != nil {
			return nil, err
		}
	}

	boxes := make(map[string]document.BoundingBox, len(l.Nodes))
	key := func(name string) string { return page.ID() + "/dot:" + name }

	for _, n := range l.Nodes {
		box := document.Box(
			(n.X-n.W/2)*scale+opts.OffsetX,
			(l.Height-n.Y-n.H/2)*scale+opts.OffsetY,
			n.W*scale,
			n.H*scale,
		)
		s := nodeShape(n, box, opts.Fill).WithKey(key(n.Name))
		if layer != nil {
			if err := layer.AddShape(s); err != nil {
				return nil, err
			}
		} else if err := page.AddShape(s); err != nil {
			return nil, err
		}
		boxes[n.Name] = box
	}

	for _, e := range l.Edges {
		tail, ok := boxes[e.Tail]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge from unknown node %q", e.Tail)
		}
		head, ok := boxes[e.Head]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge to unknown node %q", e.Head)
		}

		tx, ty, hx, hy := 0.5, 0.5, 0.5, 0.5
		if len(e.Points) > 0 {
			first, last := e.Points[0], e.Points[len(e.Points)-1]
			tx, ty = relative(tail, l.point(first, scale, opts))
			hx, hy = relative(head, l.point(last, scale, opts))
		}
		to := document.OnKey(key(e.Head), hx, hy)
		if opts.Arrow != "none" {
			to = to.WithStyle(opts.Arrow)
		}
		line := document.NewLine(opts.LineType, document.OnKey(key(e.Tail), tx, ty), to)
		if opts.Style != nil {
			st := *opts.Style
			line.Stroke = &st
		}
		if label := strings.TrimSpace(e.Label); label != "" {
			line.Text = []document.LineText{{Text: label, Position: 0.5, Side: document.SideMiddle}}
		}
		if err := page.AddLine(line); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.Tail, e.Head, err)
		}
	}

	return &Result{
		Nodes:  len(l.Nodes),
		Edges:  len(l.Edges),
		Width:  l.Width * scale,
		Height: l.Height * scale,
	}, nil
}

func (l *Layout) point(p [2]float64, scale float64, opts Options) document.Point {
	return document.Point{
		X: p[0]*scale + opts.OffsetX,
		Y: (l.Height-p[1])*scale + opts.OffsetY,
	}
}

// relative returns p as a fraction of box, clamped to the box.
func relative(box document.BoundingBox, p document.Point) (float64, float64) {
	rx, ry := 0.5, 0.5
	if box.W > 0 {
		rx = clamp((p.X - box.X) / box.W)
	}
	if box.H > 0 {
		ry = clamp((p.Y - box.Y) / box.H)
	}
	return rx, ry
}

func clamp(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*1000) / 1000
}

func nodeShape(n Node, box document.BoundingBox, fill string) *document.Shape {
	label := strings.TrimRight(n.Label, "\n")
	if label == "\\N" {
		label = n.Name
	}

	var s *document.Shape
	switch n.Shape {
	case "ellipse", "oval", "circle", "doublecircle", "point":
		s = document.NewCircle(box)
	case "hexagon":
		s = document.NewHexagon(box)
	case "pentagon":
		s = document.NewPentagon(box)
	case "plaintext", "plain", "none", "underline":
		return document.NewText(box, label)
	default:
		s = document.NewRectangle(box)
	}
	s.WithText(label)

	style := &document.Style{}
	if strings.HasPrefix(n.FillColor, "#") && strings.Contains(n.Style, "filled") {
		style.Fill = document.ColorFill(n.FillColor)
	} else if fill != "" {
		style.Fill = document.ColorFill(fill)
	}
	if strings.HasPrefix(n.Color, "#") {
		style.Stroke = &document.Stroke{Color: n.Color, Width: 1}
	}
	if strings.Contains(n.Style, "rounded") {
		style.Rounding = 8
	}
	if style.Fill != nil || style.Stroke != nil || style.Rounding != 0 {
		s.WithStyle(style)
	}
	return s
}
