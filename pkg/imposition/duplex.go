package imposition

// MirrorForDuplex returns a new layout whose grid shape is shape's, with
// every cell's (row, col) remapped per flip and rotation adjusted for
// short-edge flips. It only mirrors geometry: PageIndex is cleared on every
// cell, and the caller must run BuildGrid for the back side followed by
// ResolveBleed and SolvePositions on the result — positions depend on
// (row, col), so the mirror has to happen before those, not as a coordinate
// translation applied afterward.
func MirrorForDuplex(shape *ImpositionLayout, flip FlipEdge) *ImpositionLayout {
	mirrored := shape.Clone()
	remapped := make([]GridCell, len(mirrored.Grid))

	for _, cell := range mirrored.Grid {
		switch flip {
		case FlipLong:
			cell.Col = mirrored.Cols - 1 - cell.Col
		case FlipShort:
			cell.Row = mirrored.Rows - 1 - cell.Row
			cell.Rotation = (cell.Rotation + 180) % 360
		}
		cell.PageIndex = nil
		cell.BleedPerEdge = EdgeBleed{}
		cell.IsInteriorEdge = EdgeFlags{}
		idx := cell.Row*mirrored.Cols + cell.Col
		remapped[idx] = cell
	}

	mirrored.Grid = remapped
	return mirrored
}
