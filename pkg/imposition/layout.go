package imposition

import "github.com/sheetwright/imposer/pkg/geom"

// GridCell is one slot of an ImpositionLayout's grid. Rows are indexed from
// 0 at the bottom, columns from 0 at the left.
type GridCell struct {
	Row, Col       int
	PageIndex      *int
	Rotation       int
	TrimOriginX    float64
	TrimOriginY    float64
	ClipRect       geom.Rectangle
	BleedPerEdge   EdgeBleed
	IsInteriorEdge EdgeFlags
}

// ImpositionLayout is the planner's output: grid shape plus one GridCell
// per slot, rebuilt for every (sheet_index, side).
type ImpositionLayout struct {
	Rows         int
	Cols         int
	NUp          int
	TotalSheets  int
	CellRotation int
	EffTrimWidth  float64
	EffTrimHeight float64
	Grid         []GridCell
}

func (l *ImpositionLayout) indexOf(row, col int) int {
	return row*l.Cols + col
}

// CellAt is the O(1) neighbor/lookup accessor the Bleed Resolver and Grid
// Builder use, replacing a linear scan over the grid.
func (l *ImpositionLayout) CellAt(row, col int) (*GridCell, bool) {
	if row < 0 || row >= l.Rows || col < 0 || col >= l.Cols {
		return nil, false
	}
	idx := l.indexOf(row, col)
	if idx < 0 || idx >= len(l.Grid) {
		return nil, false
	}
	return &l.Grid[idx], true
}

// Clone returns a deep copy of the layout, independent of the receiver
// (used by the Duplex Mirror, which must not mutate the front grid).
func (l *ImpositionLayout) Clone() *ImpositionLayout {
	clone := *l
	clone.Grid = make([]GridCell, len(l.Grid))
	for i, c := range l.Grid {
		cc := c
		if c.PageIndex != nil {
			pi := *c.PageIndex
			cc.PageIndex = &pi
		}
		clone.Grid[i] = cc
	}
	return &clone
}

func buildSkeletonGrid(rows, cols, rotation int) []GridCell {
	cells := make([]GridCell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, GridCell{Row: r, Col: c, Rotation: rotation})
		}
	}
	return cells
}
