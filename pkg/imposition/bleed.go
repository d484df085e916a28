package imposition

// ResolveBleed assigns BleedPerEdge and IsInteriorEdge to every non-blank
// cell in layout, per §4.4: an edge is interior only when gap is zero and a
// filled neighbor exists across it. It uses ImpositionLayout.CellAt's O(1)
// lookup rather than scanning the whole grid for each neighbor.
func ResolveBleed(layout *ImpositionLayout, cfg ImpositionConfig) {
	bleed := cfg.Bleed.ToEdgeBleed()

	for i := range layout.Grid {
		cell := &layout.Grid[i]
		if cell.PageIndex == nil {
			continue
		}
		for _, e := range AllEdges {
			dr, dc := e.Delta()
			exterior := true
			if cfg.GapBetweenItems <= 0 {
				if neighbor, ok := layout.CellAt(cell.Row+dr, cell.Col+dc); ok && neighbor.PageIndex != nil {
					exterior = false
				}
			}
			if exterior {
				cell.BleedPerEdge.Set(e, bleed.Get(e))
				cell.IsInteriorEdge.Set(e, false)
			} else {
				cell.BleedPerEdge.Set(e, 0)
				cell.IsInteriorEdge.Set(e, true)
			}
		}
	}
}
