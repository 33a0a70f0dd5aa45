// Package dot imports Graphviz graphs as document pages.
//
// [Build] lays a DOT graph out with Graphviz (through
// [github.com/goccy/go-graphviz], which runs in-process), reads the
// layout back in Graphviz's plain text format and adds one shape per node
// and one line per edge to a page:
//
//	page, _ := doc.NewPage("Dependencies")
//	res, err := dot.Build(ctx, page, src, dot.Options{})
//
// Graphviz works in inches with the origin at the bottom left. Coordinates
// are converted to pixels at Options.Scale (72 by default) with the y axis
// flipped so the top of the drawing is at y = 0.
//
// Node shapes map to the closest document shape: ellipse and circle become
// circles, hexagon and pentagon keep their shape, plaintext and none become
// text, everything else is a rectangle. Edges attach to their nodes at the
// points where Graphviz routed them.
package dot
