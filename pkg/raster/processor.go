package raster

import (
	"context"
	"image"
	"io"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lucidpack/pkg/cache"
	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/errors"
	"github.com/matzehuels/lucidpack/pkg/observability"
)

const cacheKeyType = "raster"

// Processor resizes and tiles the images of one import run.
//
// A Processor is safe for concurrent use as long as its cache is.
type Processor struct {
	Cache     cache.Cache
	TTL       time.Duration
	Grayscale bool
	TileSize  int
	Logger    *log.Logger
}

// NewProcessor returns a processor. A nil cache disables caching and a nil
// logger discards output.
func NewProcessor(c cache.Cache, grayscale bool, tileSize int, logger *log.Logger) *Processor {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Processor{Cache: c, Grayscale: grayscale, TileSize: tileSize, Logger: logger}
}

// Load returns the processed raster for fill, sized for box.
//
// Local files are read, processed and cached by content hash. In-memory
// rasters are processed without caching. Remote images are left to the
// importer and return an UNSUPPORTED error.
func (p *Processor) Load(ctx context.Context, fill *document.ImageFill, box document.BoundingBox) (image.Image, error) {
	switch fill.Source() {
	case document.SourceRaster:
		return Process(fill.Raster(), box, p.Grayscale), nil
	case document.SourceLocal:
		return p.loadLocal(ctx, fill.Path(), box)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "remote image %s is not processed locally", fill.URL())
	}
}

func (p *Processor) loadLocal(ctx context.Context, path string, box document.BoundingBox) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "cannot find image file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read image %s", path)
	}

	key := cache.RasterKey(cache.Hash(data), cache.RasterKeyOpts{
		Width:     int(math.Round(box.W)),
		Height:    int(math.Round(box.H)),
		Grayscale: p.Grayscale,
	})
	if cached, ok, err := p.Cache.Get(ctx, key); err != nil {
		p.Logger.Debug("raster cache read failed", "path", path, "error", err)
	} else if ok {
		if img, err := Decode(cached); err == nil {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			p.Logger.Debug("raster cache hit", "path", path)
			return img, nil
		}
		_ = p.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	src, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", path)
	}
	img := Process(src, box, p.Grayscale)

	encoded, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Set(ctx, key, encoded, p.TTL); err != nil {
		p.Logger.Debug("raster cache write failed", "path", path, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(encoded))
	}
	p.Logger.Debug("processed image",
		"path", path,
		"from", src.Bounds().Size(),
		"to", img.Bounds().Size())
	return img, nil
}

// Expand processes the image of shape s and tiles it. See [Tile] for the
// shapes returned.
func (p *Processor) Expand(ctx context.Context, s *document.Shape) ([]*document.Shape, error) {
	if s.Image == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "shape %q has no image fill", s.ID())
	}
	img, err := p.Load(ctx, s.Image, s.BoundingBox)
	if err != nil {
		return nil, err
	}
	return Tile(s, img, p.TileSize)
}
