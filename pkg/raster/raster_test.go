package raster

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/lucidpack/pkg/cache"
	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func imageShape(t *testing.T, box document.BoundingBox, img image.Image) (*document.Page, *document.Shape) {
	t.Helper()
	doc := document.New("d")
	page, err := doc.NewPage("p")
	if err != nil {
		t.Fatal(err)
	}
	fill, err := document.RasterImage(img, document.ScaleFit)
	if err != nil {
		t.Fatal(err)
	}
	s, err := document.NewImage(box, fill, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := page.AddShape(s); err != nil {
		t.Fatal(err)
	}
	return page, s
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		box          document.BoundingBox
		wantW, wantH int
	}{
		{"shrink keeps aspect", 400, 200, document.Box(0, 0, 100, 100), 100, 50},
		{"no enlarge", 40, 20, document.Box(0, 0, 100, 100), 40, 20},
		{"empty box", 400, 200, document.Box(0, 0, 0, 0), 400, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Process(solid(tt.w, tt.h), tt.box, false).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestProcessGrayscale(t *testing.T) {
	img := Process(solid(10, 10), document.Box(0, 0, 10, 10), true)
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("grayscale output is %T, want *image.Gray", img)
	}
}

func TestTileSingle(t *testing.T) {
	_, s := imageShape(t, document.Box(0, 0, 100, 100), solid(1, 1))
	id := s.ID()
	img := solid(500, 400)

	tiles, err := Tile(s, img, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 1 || tiles[0] != s {
		t.Fatalf("got %d tiles, want s itself", len(tiles))
	}
	if s.ID() != id || s.Image.Raster() != image.Image(img) {
		t.Error("single tile should keep the shape and carry the new raster")
	}
}

func TestTileGrid(t *testing.T) {
	page, s := imageShape(t, document.Box(10, 20, 250, 120), solid(1, 1))
	id := s.ID()

	tiles, err := Tile(s, solid(2500, 1200), 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 6 {
		t.Fatalf("got %d tiles, want 6", len(tiles))
	}
	if tiles[0] != s || s.ID() != id {
		t.Error("first tile must be the original shape")
	}

	want := []struct {
		x, y, w, h float64
		px, py     int
	}{
		{10, 20, 100, 100, 1000, 1000},
		{110, 20, 100, 100, 1000, 1000},
		{210, 20, 50, 100, 500, 1000},
		{10, 120, 100, 20, 1000, 200},
		{110, 120, 100, 20, 1000, 200},
		{210, 120, 50, 20, 500, 200},
	}
	for i, tile := range tiles {
		b := tile.BoundingBox
		w := want[i]
		if !near(b.X, w.x) || !near(b.Y, w.y) || !near(b.W, w.w) || !near(b.H, w.h) {
			t.Errorf("tile %d box = %+v, want %v", i, b, w)
		}
		size := tile.Image.Raster().Bounds()
		if size.Dx() != w.px || size.Dy() != w.py {
			t.Errorf("tile %d raster = %dx%d, want %dx%d", i, size.Dx(), size.Dy(), w.px, w.py)
		}
		if tile.Image.ID() != "" {
			t.Errorf("tile %d fill already has id %q", i, tile.Image.ID())
		}
		if i > 0 && (tile.ID() != "" || tile.ExternalKey() != "") {
			t.Errorf("tile %d should be a fresh shape", i)
		}
	}

	if err := page.ExpandShape(s, tiles[1:]...); err != nil {
		t.Fatal(err)
	}
	if got := len(page.Shapes()); got != 6 {
		t.Errorf("page has %d shapes after expansion, want 6", got)
	}
}

func TestTileRotated(t *testing.T) {
	_, s := imageShape(t, document.Box(0, 0, 100, 100), solid(1, 1))
	rot := 45.0
	s.BoundingBox.Rotation = &rot

	tiles, err := Tile(s, solid(3000, 3000), 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 1 {
		t.Errorf("rotated shape split into %d tiles", len(tiles))
	}
}

func TestTileInvalid(t *testing.T) {
	if _, err := Tile(document.NewRectangle(document.Box(0, 0, 1, 1)), solid(1, 1), 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("tiling a rectangle: %v", err)
	}
	_, s := imageShape(t, document.Box(0, 0, 1, 1), solid(1, 1))
	if _, err := Tile(s, nil, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("tiling without a raster: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Open(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	data, err := EncodePNG(solid(7, 3))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 7 || b.Dy() != 3 {
		t.Errorf("decoded %v", b)
	}
	if _, err := Decode([]byte("not an image")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode(garbage) = %v", err)
	}
}

type countingCache struct {
	cache.Cache
	hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return data, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestProcessorCachesLocalImages(t *testing.T) {
	dir := t.TempDir()
	data, err := EncodePNG(solid(400, 200))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	p := NewProcessor(cc, false, 0, nil)

	fill, err := document.LocalImage(path, document.ScaleFit)
	if err != nil {
		t.Fatal(err)
	}
	box := document.Box(0, 0, 100, 100)
	for i := 0; i < 2; i++ {
		img, err := p.Load(context.Background(), fill, box)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
			t.Errorf("load %d: size %v", i, b)
		}
	}
	if cc.sets != 1 || cc.hits != 1 {
		t.Errorf("sets = %d, hits = %d; want 1 and 1", cc.sets, cc.hits)
	}
}

func TestProcessorExpand(t *testing.T) {
	_, s := imageShape(t, document.Box(0, 0, 3000, 1000), solid(3000, 1000))
	p := NewProcessor(nil, true, 1000, nil)

	tiles, err := p.Expand(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 3 {
		t.Fatalf("got %d tiles, want 3", len(tiles))
	}
	if _, ok := tiles[2].Image.Raster().(*image.Gray); !ok {
		t.Errorf("tile raster is %T, want grayscale", tiles[2].Image.Raster())
	}
}

func TestProcessorRemote(t *testing.T) {
	fill, err := document.RemoteImage("https://example.com/a.png", document.ScaleFit)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewProcessor(nil, false, 0, nil).Load(context.Background(), fill, document.Box(0, 0, 1, 1)); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("remote image: got %v, want UNSUPPORTED", err)
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
