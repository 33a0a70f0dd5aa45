// Package ident assigns short, deterministic identifiers to document nodes.
//
// # Overview
//
// Every page, shape, line, layer, group and image fill of a document needs an
// identifier that is unique within the document. Layers, groups and line
// endpoints refer to shapes by these identifiers, so they must be assigned
// before a shape can be referenced.
//
// A [Factory] generates identifiers from a counter encoded in [Alphabet]
// (lowercase letters, digits, then "-_.~"), skipping any value whose encoding
// would start with a punctuation character. The first identifiers are
// "a", "b", ... "z", "0" ... "9", "ba", "bb", ...
//
// # External Keys
//
// Callers may attach an external key to a node (for example a database row id
// or a Graphviz node name). Two different node values carrying the same key
// receive the same identifier, and [Factory.Resolve] hands out the identifier
// for a key before any node with that key exists:
//
//	f := ident.New()
//	id, _ := f.Resolve("db:42")   // e.g. "a"
//	s := document.NewRectangle(box).WithKey("db:42")
//	_ = f.Assign(s)               // s.ID() == "a"
//
// # Concurrency
//
// A Factory is safe for concurrent use. Nodes that already carry an
// identifier, and keys that are already mapped, are resolved without taking
// the factory lock; only generating and recording a new identifier is
// serialized.
package ident
