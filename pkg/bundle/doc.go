// Package bundle turns a document into an upload bundle.
//
// A bundle is a directory with a fixed layout, zipped into a single file
// for upload:
//
//	<root>/
//	  document.json   serialized document
//	  images/         image fills, "<shapeId><ext>" or "<fillId>.png"
//	  data/           collection data sources
//
// [Assembler.Prepare] writes the directory. It works on a clone of the
// document, so the caller's document is never changed: image fills are
// resolved to files in images/ and their references rewritten in the clone
// only. When an image [Expander] is configured, each local or in-memory
// image is resized and, if large, split into tiles first; the extra tile
// shapes appear in the clone next to the original.
//
// [Archive] zips a directory with forward-slash entry names in lexical
// order. [Validate] checks the server's size ceilings and reports every
// ceiling exceeded in one [*LimitError].
package bundle
