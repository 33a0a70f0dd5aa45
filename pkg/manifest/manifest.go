package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Manifest is the decoded form of a manifest file.
type Manifest struct {
	Title string `toml:"title"`
	Units string `toml:"units"`
	Pages []Page `toml:"page"`

	// Dir resolves relative image paths. Load sets it to the manifest's
	// directory.
	Dir string `toml:"-"`

	// Undecoded lists keys present in the input that no field consumed.
	Undecoded []string `toml:"-"`
}

// Page describes one page.
type Page struct {
	Title          string `toml:"title"`
	FillColor      string `toml:"fill_color"`
	InfiniteCanvas bool   `toml:"infinite_canvas"`
	Paper          string `toml:"paper"`
	Orientation    string `toml:"orientation"`

	Shapes []Shape `toml:"shape"`
	Tables []Table `toml:"table"`
	Lines  []Line  `toml:"line"`
	Groups []Group `toml:"group"`
}

// Shape describes a rectangle, circle, hexagon, pentagon, text or image.
type Shape struct {
	Key      string   `toml:"key"`
	Type     string   `toml:"type"`
	X        float64  `toml:"x"`
	Y        float64  `toml:"y"`
	W        float64  `toml:"w"`
	H        float64  `toml:"h"`
	Rotation *float64 `toml:"rotation"`
	Text     string   `toml:"text"`
	Note     string   `toml:"note"`
	Fill     string   `toml:"fill"`
	Stroke   string   `toml:"stroke"`
	Width    int      `toml:"stroke_width"`
	Rounding int      `toml:"rounding"`
	Opacity  *int     `toml:"opacity"`
	Image    string   `toml:"image"`
	Scale    string   `toml:"scale"`
	Layer    string   `toml:"layer"`

	Data map[string]string `toml:"data"`
}

// Table describes a table shape. Cells are rows of text.
type Table struct {
	Key   string     `toml:"key"`
	X     float64    `toml:"x"`
	Y     float64    `toml:"y"`
	W     float64    `toml:"w"`
	H     float64    `toml:"h"`
	Cells [][]string `toml:"cells"`
	Layer string     `toml:"layer"`
}

// Line connects two shapes by key.
type Line struct {
	Key    string    `toml:"key"`
	From   string    `toml:"from"`
	To     string    `toml:"to"`
	FromAt []float64 `toml:"from_at"` // relative [x, y] on the shape; default center
	ToAt   []float64 `toml:"to_at"`
	Type   string    `toml:"type"`
	Text   string    `toml:"text"`
	Arrow  string    `toml:"arrow"`
	Color  string    `toml:"color"`
	Width  int       `toml:"width"`
	Style  string    `toml:"style"`
}

// Group lists the keys of the shapes it groups.
type Group struct {
	Shapes []string `toml:"shapes"`
	Layer  string   `toml:"layer"`
}

// Parse decodes a manifest.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse manifest")
	}
	for _, k := range md.Undecoded() {
		m.Undecoded = append(m.Undecoded, k.String())
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "manifest %s not found", path)
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}
