package manifest

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
)

var shapeTypes = map[string]func(document.BoundingBox) *document.Shape{
	"rectangle": document.NewRectangle,
	"circle":    document.NewCircle,
	"hexagon":   document.NewHexagon,
	"pentagon":  document.NewPentagon,
	"text": func(b document.BoundingBox) *document.Shape {
		return document.NewText(b, "")
	},
}

// Build turns the manifest into a document.
//
// Pages, shapes and lines keep the manifest's order. Tables are added after
// the page's shapes, then lines, then groups. Errors name the page and the
// item that caused them.
func (m *Manifest) Build() (*document.Document, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "manifest has no title")
	}
	doc := document.New(title)
	if m.Units != "" {
		doc.Settings = &document.Settings{Units: document.Units(m.Units)}
	}

	for i, mp := range m.Pages {
		if err := m.buildPage(doc, i, mp); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

type pageBuilder struct {
	page   *document.Page
	layers map[string]*document.Layer
	keys   map[string]*document.Shape
}

func (m *Manifest) buildPage(doc *document.Document, i int, mp Page) error {
	title := mp.Title
	if title == "" {
		title = fmt.Sprintf("Page %d", i+1)
	}
	page, err := doc.NewPage(title)
	if err != nil {
		return err
	}
	if err := checkColors(mp.FillColor); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "page %q", title)
	}
	if mp.FillColor != "" || mp.InfiniteCanvas || mp.Paper != "" {
		page.Settings = &document.PageSettings{FillColor: mp.FillColor, InfiniteCanvas: mp.InfiniteCanvas}
		if mp.Paper != "" {
			page.Settings.Size = &document.PageSize{
				Type:   document.PaperSize(mp.Paper),
				Format: document.Orientation(mp.Orientation),
			}
		}
	}

	b := &pageBuilder{
		page:   page,
		layers: make(map[string]*document.Layer),
		keys:   make(map[string]*document.Shape),
	}
	where := func(kind string, j int, key string) string {
		s := fmt.Sprintf("page %q %s %d", title, kind, j+1)
		if key != "" {
			s += fmt.Sprintf(" (%s)", key)
		}
		return s
	}

	for j, ms := range mp.Shapes {
		if err := b.addShape(m.Dir, ms); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where("shape", j, ms.Key))
		}
	}
	for j, mt := range mp.Tables {
		if err := b.addTable(mt); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where("table", j, mt.Key))
		}
	}
	for j, ml := range mp.Lines {
		if err := b.addLine(ml); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where("line", j, ml.Key))
		}
	}
	for j, mg := range mp.Groups {
		if err := b.addGroup(mg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where("group", j, ""))
		}
	}
	return nil
}

func (b *pageBuilder) addShape(dir string, ms Shape) error {
	if err := checkColors(ms.Fill, ms.Stroke); err != nil {
		return err
	}
	box := document.BoundingBox{X: ms.X, Y: ms.Y, W: ms.W, H: ms.H, Rotation: ms.Rotation}

	var s *document.Shape
	if ms.Type == "image" {
		fill, err := imageFill(dir, ms.Image, document.ImageScale(ms.Scale))
		if err != nil {
			return err
		}
		if s, err = document.NewImage(box, fill, stroke(ms.Stroke, ms.Width, "")); err != nil {
			return err
		}
	} else {
		newShape, ok := shapeTypes[ms.Type]
		if !ok {
			return fmt.Errorf("unknown shape type %q", ms.Type)
		}
		s = newShape(box)
		if ms.Fill != "" || ms.Stroke != "" || ms.Rounding != 0 {
			style := &document.Style{Stroke: stroke(ms.Stroke, ms.Width, ""), Rounding: ms.Rounding}
			if ms.Fill != "" {
				style.Fill = document.ColorFill(ms.Fill)
			}
			s.WithStyle(style)
		}
	}
	s.WithText(ms.Text)
	s.Note = ms.Note
	s.CustomData = customData(ms.Data)
	if ms.Opacity != nil {
		if err := s.SetOpacity(*ms.Opacity); err != nil {
			return err
		}
	}
	return b.place(ms.Key, s, ms.Layer)
}

func (b *pageBuilder) addTable(mt Table) error {
	grid := make([][]*document.TableCell, len(mt.Cells))
	for r, row := range mt.Cells {
		grid[r] = make([]*document.TableCell, len(row))
		for c, text := range row {
			if text != "" {
				grid[r][c] = document.Cell(text)
			}
		}
	}
	s, err := document.NewTable(document.Box(mt.X, mt.Y, mt.W, mt.H), grid, nil, nil)
	if err != nil {
		return err
	}
	return b.place(mt.Key, s, mt.Layer)
}

func (b *pageBuilder) place(key string, s *document.Shape, layer string) error {
	if key != "" {
		if _, dup := b.keys[key]; dup {
			return fmt.Errorf("duplicate key %q", key)
		}
		s.WithKey(b.scoped(key))
		b.keys[key] = s
	}
	if err := b.page.AddShape(s); err != nil {
		return err
	}
	if layer == "" {
		return nil
	}
	l, err := b.layer(layer)
	if err != nil {
		return err
	}
	return l.AddShape(s)
}

func (b *pageBuilder) layer(title string) (*document.Layer, error) {
	if l, ok := b.layers[title]; ok {
		return l, nil
	}
	l, err := b.page.NewLayer(title)
	if err != nil {
		return nil, err
	}
	b.layers[title] = l
	return l, nil
}

func (b *pageBuilder) addLine(ml Line) error {
	if err := checkColors(ml.Color); err != nil {
		return err
	}
	from, err := b.endpoint(ml.From, ml.FromAt)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := b.endpoint(ml.To, ml.ToAt)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if ml.Arrow != "" {
		to = to.WithStyle(ml.Arrow)
	}

	lineType := document.LineType(ml.Type)
	switch lineType {
	case "":
		lineType = document.LineStraight
	case document.LineStraight, document.LineElbow, document.LineCurved:
	default:
		return fmt.Errorf("unknown line type %q", ml.Type)
	}

	l := document.NewLine(lineType, from, to)
	if ml.Key != "" {
		l.WithKey(b.scoped(ml.Key))
	}
	l.Stroke = stroke(ml.Color, ml.Width, ml.Style)
	if ml.Text != "" {
		l.Text = []document.LineText{{Text: ml.Text, Position: 0.5, Side: document.SideMiddle}}
	}
	return b.page.AddLine(l)
}

func (b *pageBuilder) endpoint(key string, at []float64) (document.Endpoint, error) {
	rx, ry := 0.5, 0.5
	switch len(at) {
	case 0:
	case 2:
		rx, ry = at[0], at[1]
	default:
		return document.Endpoint{}, fmt.Errorf("anchor needs two numbers, got %d", len(at))
	}
	if _, ok := b.keys[key]; !ok {
		return document.Endpoint{}, fmt.Errorf("no shape with key %q", key)
	}
	return document.OnKey(b.scoped(key), rx, ry), nil
}

// scoped qualifies a manifest key with the page so equal keys on different
// pages stay distinct shapes.
func (b *pageBuilder) scoped(key string) string {
	return b.page.ID() + "/" + key
}

func (b *pageBuilder) addGroup(mg Group) error {
	shapes := make([]*document.Shape, 0, len(mg.Shapes))
	for _, key := range mg.Shapes {
		s, ok := b.keys[key]
		if !ok {
			return fmt.Errorf("no shape with key %q", key)
		}
		shapes = append(shapes, s)
	}
	g, err := b.page.AddGroup(shapes...)
	if err != nil {
		return err
	}
	if mg.Layer == "" {
		return nil
	}
	l, err := b.layer(mg.Layer)
	if err != nil {
		return err
	}
	return l.AddGroup(g)
}

func imageFill(dir, src string, scale document.ImageScale) (*document.ImageFill, error) {
	if scale == "" {
		scale = document.ScaleFit
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return document.RemoteImage(src, scale)
	}
	if src != "" && !filepath.IsAbs(src) && dir != "" {
		src = filepath.Join(dir, src)
	}
	return document.LocalImage(src, scale)
}

// checkColors rejects colors that are set but not hex.
func checkColors(colors ...string) error {
	for _, c := range colors {
		if c == "" {
			continue
		}
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	return nil
}

func stroke(color string, width int, style string) *document.Stroke {
	if color == "" && width == 0 && style == "" {
		return nil
	}
	if width == 0 {
		width = 1
	}
	return &document.Stroke{Color: color, Width: width, Style: document.StrokeStyle(style)}
}

func customData(data map[string]string) []document.CustomData {
	if len(data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]document.CustomData, len(keys))
	for i, k := range keys {
		out[i] = document.CustomData{Key: k, Value: data[k]}
	}
	return out
}
