package imposition

import "github.com/sheetwright/imposer/pkg/geom"

// SolvePositions computes each cell's trim origin and clip rectangle, per
// §4.5: the grid is centred on the sheet, with tight and gap modes using
// different pitch and extent formulas. Must run after ResolveBleed, since
// the clip rectangle depends on each cell's resolved per-edge bleed.
func SolvePositions(layout *ImpositionLayout, cfg ImpositionConfig) {
	sheetW, sheetH := cfg.Sheet.Oriented()
	bleed := cfg.Bleed.ToEdgeBleed()
	trimW, trimH := layout.EffTrimWidth, layout.EffTrimHeight

	var gridW, gridH, pitchX, pitchY float64
	if cfg.GapBetweenItems > 0 {
		pitchX = trimW + bleed.Left + bleed.Right + cfg.GapBetweenItems
		pitchY = trimH + bleed.Bottom + bleed.Top + cfg.GapBetweenItems
		gridW = float64(layout.Cols)*pitchX - cfg.GapBetweenItems
		gridH = float64(layout.Rows)*pitchY - cfg.GapBetweenItems
	} else {
		pitchX = trimW
		pitchY = trimH
		gridW = float64(layout.Cols)*trimW + bleed.Left + bleed.Right
		gridH = float64(layout.Rows)*trimH + bleed.Bottom + bleed.Top
	}

	offsetX := (sheetW-gridW)/2 + bleed.Left
	offsetY := (sheetH-gridH)/2 + bleed.Bottom

	for i := range layout.Grid {
		cell := &layout.Grid[i]
		cell.TrimOriginX = offsetX + float64(cell.Col)*pitchX
		cell.TrimOriginY = offsetY + float64(cell.Row)*pitchY

		if cell.PageIndex == nil {
			continue
		}
		cr := cell.BleedPerEdge
		cell.ClipRect = geom.NewRectangle(
			cell.TrimOriginX-cr.Left,
			cell.TrimOriginY-cr.Bottom,
			trimW+cr.Left+cr.Right,
			trimH+cr.Top+cr.Bottom,
		)
	}
}
