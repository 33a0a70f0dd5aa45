// Package manifest describes a document in TOML.
//
// A manifest lists pages and, for each page, its shapes, tables, lines and
// groups. Shapes and tables name themselves with a key that lines and
// groups refer to:
//
//	title = "Service Map"
//	units = "px"
//
//	[[page]]
//	title = "Overview"
//	fill_color = "#ffffff"
//
//	[[page.shape]]
//	key  = "api"
//	type = "rectangle"
//	x = 0
//	y = 0
//	w = 160
//	h = 80
//	text = "API"
//	fill = "#bedbed"
//	layer = "Services"
//
//	[[page.shape]]
//	key   = "logo"
//	type  = "image"
//	x = 200
//	y = 0
//	w = 80
//	h = 80
//	image = "assets/logo.png"
//
//	[[page.line]]
//	from  = "api"
//	to    = "logo"
//	type  = "elbow"
//	arrow = "Arrow"
//
//	[[page.group]]
//	shapes = ["api", "logo"]
//
//	[[page.table]]
//	key = "owners"
//	x = 0
//	y = 200
//	w = 240
//	h = 60
//	cells = [["team", "service"], ["core", ""]]
//
// An empty table cell is left out of the table. Local image paths are
// resolved against the directory of the manifest file; http and https
// URLs become remote images.
//
// Keys that do not belong to the format are collected in
// [Manifest.Undecoded] so callers can warn about typos.
package manifest
