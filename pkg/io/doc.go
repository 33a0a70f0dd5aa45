// Package io serializes documents to the standard import JSON format.
//
// # Overview
//
// The import format is a single document.json at the root of an upload
// bundle. This package writes it with the conventions the importer expects:
//
//   - Field names and enum values in camelCase
//   - Null-valued fields omitted, required arrays written as []
//   - Two-space indentation and "\n" line endings
//   - Identity bookkeeping (external keys, local paths, rasters) excluded
//
// A trimmed example:
//
//	{
//	  "version": 1,
//	  "title": "Test Document",
//	  "pages": [
//	    {
//	      "id": "a",
//	      "title": "Page 1",
//	      "shapes": [
//	        {
//	          "id": "b",
//	          "type": "rectangle",
//	          "boundingBox": {"x": 0, "y": 0, "w": 160, "h": 80},
//	          "style": {"fill": {"type": "color", "color": "#bedbed"}, "rounding": 0},
//	          "text": "",
//	          "opacity": 60
//	        }
//	      ],
//	      "lines": [],
//	      "groups": [],
//	      "layers": []
//	    }
//	  ]
//	}
//
// # Export
//
// Use [ExportDocument] to write a document to a file, or [WriteDocument] to
// write to any io.Writer:
//
//	if err := io.ExportDocument(doc, "document.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Measuring
//
// [Size] returns the serialized length without keeping the bytes. The
// splitter uses it to keep every partition under the server's size ceiling,
// so it counts exactly what [WriteDocument] writes.
//
// # Determinism
//
// Output depends only on the document graph: pages, shapes and references
// are written in insertion order and map keys are sorted. Serializing the
// same document twice produces identical bytes.
package io
