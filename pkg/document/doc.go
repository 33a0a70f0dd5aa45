// Package document models a diagram in the standard import format.
//
// # Overview
//
// A [Document] owns an ordered list of [Page] values. A page owns its
// [Shape] and [Line] values and holds [Layer] and [Group] values that refer
// to shapes by identifier only. Identifiers come from the document's
// [ident.Factory], which is created once with the document and shared by
// every node below it.
//
//	doc := document.New("Network")
//	page, _ := doc.NewPage("Overview")
//
//	web := document.NewRectangle(document.Box(0, 0, 160, 80)).WithKey("web")
//	_ = web.SetOpacity(60)
//	_ = page.AddShape(web)
//
//	db := document.NewCircle(document.Box(300, 0, 80, 80)).WithKey("db")
//	_ = page.AddShape(db)
//
//	_ = page.AddLine(document.NewLine(document.LineStraight,
//	    document.OnKey("web", 1, 0.5), document.OnKey("db", 0, 0.5)))
//
// # Ownership and References
//
// Adding a shape to a page assigns its identifier. A shape must be on a page
// before anything can refer to it, so [Layer.AddShape] and [Page.AddGroup]
// add shapes the page does not own yet. Groups freeze their membership when
// they are created. Layers can drop a reference with [Layer.Remove]; the
// shape itself stays on the page.
//
// # Shapes
//
// [Shape] is a closed variant tagged by [ShapeType]. Use the constructors
// ([NewRectangle], [NewImage], [NewTable], ...) so the payload matches the
// tag. Opacity is validated on assignment: [Shape.SetOpacity] rejects values
// outside [0, 100].
//
// # Serialization
//
// Document and Page implement json.Marshaler with the field names, enum
// spellings and omission rules of the import format. Use the io package for
// indented output and size measurement.
//
// # Concurrency
//
// Documents are built in a single goroutine. Only the identity factory is
// safe for concurrent use; once a document is handed to the splitter it is
// treated as read-only.
package document
