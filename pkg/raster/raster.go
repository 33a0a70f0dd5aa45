package raster

import (
	"bytes"
	"image"
	"image/draw"
	"math"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
)

// DefaultTileSize is the largest tile edge, in pixels, that [Tile] emits.
const DefaultTileSize = 1000

// Open reads and decodes the image file at path. EXIF orientation is
// applied so the pixels match what an image viewer shows.
func Open(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "cannot find image file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read image %s", path)
	}
	return Decode(data)
}

// Decode decodes an encoded image in any registered format.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	return img, nil
}

// EncodePNG encodes img as PNG at the best compression level.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(9)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Process shrinks img to fit inside box, keeping its aspect ratio, and
// converts it to 8-bit grayscale when grayscale is set. Images already
// inside the box are not enlarged. A box with no width or height leaves the
// size unchanged.
func Process(img image.Image, box document.BoundingBox, grayscale bool) image.Image {
	w, h := int(math.Round(box.W)), int(math.Round(box.H))
	b := img.Bounds()
	if w > 0 && h > 0 && (b.Dx() > w || b.Dy() > h) {
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}
	if grayscale {
		return toGray(img)
	}
	return img
}

// toGray converts to a single-channel image so the PNG encoder writes a
// grayscale file instead of RGBA.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Tile cuts img into a grid of tiles no larger than maxPx on either edge
// and returns one image shape per tile, left to right then top to bottom.
//
// The first returned shape is s itself, with its box shrunk to cover the
// first tile, so references to s stay valid. Every tile gets a new fill
// without an identifier. The other shapes are new, without identifiers, and
// copy s's style,
// stroke, opacity and scale mode. Tile boxes are laid out over s's box,
// scaled by the ratio between the box and the image size.
//
// When img fits in one tile, or s is rotated, Tile returns just s with img
// as its fill. A maxPx of 0 or less means [DefaultTileSize].
func Tile(s *document.Shape, img image.Image, maxPx int) ([]*document.Shape, error) {
	if s == nil || s.Type != document.ShapeImage || s.Image == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tiling requires an image shape")
	}
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tiling requires a raster")
	}
	if maxPx <= 0 {
		maxPx = DefaultTileSize
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rotated := s.BoundingBox.Rotation != nil && *s.BoundingBox.Rotation != 0
	if (w <= maxPx && h <= maxPx) || rotated {
		s.Image.SetRaster(img)
		return []*document.Shape{s}, nil
	}

	box := s.BoundingBox
	sx, sy := ratio(box.W, w), ratio(box.H, h)

	var out []*document.Shape
	for top := 0; top < h; top += maxPx {
		for left := 0; left < w; left += maxPx {
			tw, th := min(maxPx, w-left), min(maxPx, h-top)
			tile := crop(img, image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+left+tw, b.Min.Y+top+th))
			tileBox := document.Box(
				box.X+float64(left)*sx,
				box.Y+float64(top)*sy,
				float64(tw)*sx,
				float64(th)*sy,
			)

			fill, err := document.RasterImage(tile, s.Image.Scale)
			if err != nil {
				return nil, err
			}
			if len(out) == 0 {
				s.Image = fill
				s.BoundingBox = tileBox
				out = append(out, s)
				continue
			}
			t := s.Clone().WithKey("")
			t.SetID("")
			t.Image = fill
			t.BoundingBox = tileBox
			out = append(out, t)
		}
	}
	return out, nil
}

// crop keeps grayscale rasters single-channel; imaging.Crop always
// returns NRGBA.
func crop(img image.Image, r image.Rectangle) image.Image {
	if g, ok := img.(*image.Gray); ok {
		return g.SubImage(r)
	}
	return imaging.Crop(img, r)
}

func ratio(boxLen float64, px int) float64 {
	if boxLen <= 0 || px == 0 {
		return 1
	}
	return boxLen / float64(px)
}
