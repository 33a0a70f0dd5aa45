package document

import (
	"slices"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Table is the payload of a table shape.
type Table struct {
	RowCount          int
	ColCount          int
	Cells             []TableCell
	UserSpecifiedRows []FieldSize
	UserSpecifiedCols []FieldSize
	VerticalBorder    bool
	HorizontalBorder  bool
}

// TableCell is one non-empty cell of a table. X is the column and Y the row.
type TableCell struct {
	X               int    `json:"xPosition"`
	Y               int    `json:"yPosition"`
	MergeCellsRight int    `json:"mergeCellsRight"`
	MergeCellsDown  int    `json:"mergeCellsDown"`
	Style           *Style `json:"style,omitempty"`
	Text            string `json:"text"`
}

// Cell returns a cell holding text, for use in the grid passed to [NewTable].
func Cell(text string) *TableCell {
	return &TableCell{Text: text}
}

// NewTable builds a table shape from a row-major grid of cells.
//
// Nil cells are dropped; every other cell is copied and its position set
// from its place in the grid. rowHeights and colWidths optionally override
// row and column sizes; nil entries keep the default size. The grid must be
// rectangular.
func NewTable(box BoundingBox, grid [][]*TableCell, rowHeights, colWidths []*float64) (*Shape, error) {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	for r, row := range grid {
		if len(row) != cols {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"table row %d has %d cells, want %d", r, len(row), cols)
		}
	}
	if len(rowHeights) > rows || len(colWidths) > cols {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"table size overrides exceed %dx%d grid", rows, cols)
	}

	t := &Table{
		RowCount:          rows,
		ColCount:          cols,
		Cells:             []TableCell{},
		UserSpecifiedRows: sizes(rowHeights),
		UserSpecifiedCols: sizes(colWidths),
		VerticalBorder:    true,
		HorizontalBorder:  true,
	}
	for r, row := range grid {
		for c, cell := range row {
			if cell == nil {
				continue
			}
			cp := *cell
			cp.X, cp.Y = c, r
			t.Cells = append(t.Cells, cp)
		}
	}

	s := newShape(ShapeTable, box)
	s.Table = t
	return s, nil
}

func sizes(in []*float64) []FieldSize {
	out := []FieldSize{}
	for i, v := range in {
		if v != nil {
			out = append(out, FieldSize{Index: i, Size: *v})
		}
	}
	return out
}

func (t *Table) clone() *Table {
	c := *t
	c.Cells = slices.Clone(t.Cells)
	c.UserSpecifiedRows = slices.Clone(t.UserSpecifiedRows)
	c.UserSpecifiedCols = slices.Clone(t.UserSpecifiedCols)
	return &c
}
