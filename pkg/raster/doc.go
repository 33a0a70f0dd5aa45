// Package raster prepares images for the upload bundle.
//
// The importer renders an image fill at whatever resolution it is given, so
// a 6000×4000 photo dropped into a 300×200 box costs the full upload size
// for no visible gain. [Process] shrinks a raster to fit its shape's box and
// optionally converts it to grayscale. [Tile] cuts a large raster into a
// grid of image shapes, because the importer rejects very large single
// images.
//
// [Processor] ties the two together for one image fill and caches the
// encoded result, keyed by the source file's content hash and the options,
// so rebuilding an unchanged manifest skips the decode and resize.
//
// Decoding supports PNG, JPEG and GIF from the standard library plus BMP,
// TIFF and WebP from golang.org/x/image. Output is always PNG.
package raster
