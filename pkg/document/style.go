package document

import "maps"

// ShapeType tags the variant of a [Shape].
type ShapeType string

const (
	ShapeImage     ShapeType = "image"
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeText      ShapeType = "text"
	ShapeLine      ShapeType = "line"
	ShapeTable     ShapeType = "table"
	ShapeHexagon   ShapeType = "hexagon"
	ShapePentagon  ShapeType = "pentagon"
)

// LineType selects how a line is routed between its endpoints.
type LineType string

const (
	LineStraight LineType = "straight"
	LineElbow    LineType = "elbow"
	LineCurved   LineType = "curved"
)

// EndpointType tags the variant of an [Endpoint].
type EndpointType string

const (
	PositionEndpoint EndpointType = "positionEndpoint"
	ShapeEndpoint    EndpointType = "shapeEndpoint"
	LineEndpoint     EndpointType = "lineEndpoint"
)

// StrokeStyle is the dash pattern of a stroke.
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

// ImageScale controls how an image fills its bounding box.
type ImageScale string

const (
	ScaleFit      ImageScale = "fit"
	ScaleFill     ImageScale = "fill"
	ScaleStretch  ImageScale = "stretch"
	ScaleOriginal ImageScale = "original"
	ScaleTile     ImageScale = "tile"
)

// FillType distinguishes solid color fills from image fills.
type FillType string

const (
	FillColor FillType = "color"
	FillImage FillType = "image"
)

// LineSide positions line text relative to the line.
type LineSide string

const (
	SideTop    LineSide = "top"
	SideMiddle LineSide = "middle"
	SideBottom LineSide = "bottom"
)

// Units is the measurement unit of the document.
type Units string

const (
	UnitsCM     Units = "cm"
	UnitsInches Units = "inches"
	UnitsPT     Units = "pt"
	UnitsPX     Units = "px"
)

// PaperSize names a standard page size.
type PaperSize string

const (
	PaperA4      PaperSize = "a4"
	PaperA3      PaperSize = "a3"
	PaperA2      PaperSize = "a2"
	PaperA1      PaperSize = "a1"
	PaperA0      PaperSize = "a0"
	PaperLetter  PaperSize = "letter"
	PaperLegal   PaperSize = "legal"
	PaperTabloid PaperSize = "tabloid"
)

// Orientation of a page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Style is the visual style shared by shapes and table cells.
type Style struct {
	Fill     *Fill   `json:"fill,omitempty"`
	Stroke   *Stroke `json:"stroke,omitempty"`
	Rounding int     `json:"rounding"`
}

// Fill is a solid color or image reference fill.
type Fill struct {
	Type       FillType   `json:"type"`
	Color      string     `json:"color,omitempty"`
	Ref        string     `json:"ref,omitempty"`
	ImageScale ImageScale `json:"imageScale,omitempty"`
}

// ColorFill returns a solid fill of the given hex color.
func ColorFill(hex string) *Fill {
	return &Fill{Type: FillColor, Color: hex}
}

// Stroke is an outline or line style.
type Stroke struct {
	Color string      `json:"color,omitempty"`
	Width int         `json:"width"`
	Style StrokeStyle `json:"style,omitempty"`
}

// BoundingBox positions a shape on its page.
type BoundingBox struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	W        float64  `json:"w"`
	H        float64  `json:"h"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// Box is shorthand for an unrotated bounding box.
func Box(x, y, w, h float64) BoundingBox {
	return BoundingBox{X: x, Y: y, W: w, H: h}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Point is a pair of coordinates. Depending on context they are absolute
// canvas units or relative (0..1) positions on a bounding box.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Action is a click action attached to a shape.
type Action struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// CustomData is a key/value pair attached to a node.
type CustomData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LinkedData links a node to a row of a [Collection].
type LinkedData struct {
	CollectionID string `json:"collectionId"`
	Key          string `json:"key"`
}

// LineText is a label placed along a line.
type LineText struct {
	Text     string   `json:"text"`
	Position float64  `json:"position"`
	Side     LineSide `json:"side,omitempty"`
}

// FieldSize is an explicit row height or column width of a table.
type FieldSize struct {
	Index int     `json:"index"`
	Size  float64 `json:"size"`
}

// PageSettings holds per-page options.
type PageSettings struct {
	FillColor      string    `json:"fillColor,omitempty"`
	InfiniteCanvas bool      `json:"infiniteCanvas"`
	AutoTiling     bool      `json:"autoTiling"`
	Size           *PageSize `json:"size,omitempty"`
}

// PageSize is the paper size of a page. Width and Height are used for
// custom sizes.
type PageSize struct {
	Type   PaperSize   `json:"type,omitempty"`
	Format Orientation `json:"format,omitempty"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
}

// Settings holds document-wide options.
type Settings struct {
	Units Units `json:"units,omitempty"`
}

// BootstrapData asks the importing application to run an extension
// after the document is created.
type BootstrapData struct {
	PackageID      string            `json:"packageId"`
	ExtensionName  string            `json:"extensionName"`
	MinimumVersion string            `json:"minimumVersion,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
}

func (b *BootstrapData) clone() *BootstrapData {
	if b == nil {
		return nil
	}
	c := *b
	c.Data = maps.Clone(b.Data)
	return &c
}
