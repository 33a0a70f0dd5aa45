package document

import (
	"image"
	"strings"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// ImageSource says where an [ImageFill] takes its pixels from.
type ImageSource int

const (
	SourceLocal ImageSource = iota
	SourceURL
	SourceRaster
)

// ImageFill is the content of an image shape. It has exactly one source:
// a local file, a remote URL or an in-memory raster.
//
// Local and in-memory images are written into the upload bundle, after
// which Ref holds the relative name of the written file. Fills get their
// own identifier so a fill shared by several shapes is written once.
type ImageFill struct {
	id     string
	source ImageSource
	path   string
	url    string
	raster image.Image
	ref    string

	Scale ImageScale
}

// LocalImage returns a fill backed by the file at path.
func LocalImage(path string, scale ImageScale) (*ImageFill, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image path must not be empty")
	}
	return &ImageFill{source: SourceLocal, path: path, Scale: scale}, nil
}

// RemoteImage returns a fill the importer downloads from url.
func RemoteImage(url string, scale ImageScale) (*ImageFill, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	return &ImageFill{source: SourceURL, url: url, Scale: scale}, nil
}

// RasterImage returns a fill backed by an in-memory image.
func RasterImage(img image.Image, scale ImageScale) (*ImageFill, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "raster must not be nil")
	}
	return &ImageFill{source: SourceRaster, raster: img, Scale: scale}, nil
}

// ID returns the fill identifier.
func (f *ImageFill) ID() string { return f.id }

// SetID is called by the identity factory.
func (f *ImageFill) SetID(id string) { f.id = id }

// ExternalKey returns "": fills are never correlated by key.
func (f *ImageFill) ExternalKey() string { return "" }

// Source reports which of the three sources the fill uses.
func (f *ImageFill) Source() ImageSource { return f.source }

// Path returns the local file path of a [SourceLocal] fill.
func (f *ImageFill) Path() string { return f.path }

// URL returns the remote address of a [SourceURL] fill.
func (f *ImageFill) URL() string { return f.url }

// Raster returns the in-memory image of a [SourceRaster] fill.
func (f *ImageFill) Raster() image.Image { return f.raster }

// Ref returns the bundle-relative file name, or "" before bundling.
func (f *ImageFill) Ref() string { return f.ref }

// SetRef records the bundle-relative file name the fill was written to.
func (f *ImageFill) SetRef(ref string) { f.ref = ref }

// SetRaster replaces the fill content with an in-memory image, keeping its
// identifier. It is used when a local image has been processed.
func (f *ImageFill) SetRaster(img image.Image) {
	f.source = SourceRaster
	f.raster = img
	f.path = ""
}

// Clone returns a copy of f with the same identifier and source.
func (f *ImageFill) Clone() *ImageFill {
	c := *f
	return &c
}
