package imposition

// Side distinguishes a sheet's front from its back.
type Side int

const (
	Front Side = iota
	Back
)

// BuildGrid fills layout.Grid's PageIndex fields for one (sheetIndex, side)
// pair, dispatching on cfg.Mode. It mutates layout in place; callers that
// need the unfilled shape again should re-plan or Clone first.
func BuildGrid(layout *ImpositionLayout, cfg ImpositionConfig, pageCount, sheetIndex int, side Side) {
	switch cfg.Mode {
	case StepAndRepeat:
		buildStepAndRepeatGrid(layout, pageCount, sheetIndex, side, cfg.Duplex)
	case CutAndStack, BookletPerfectBind:
		buildSequentialGrid(layout, pageCount, sheetIndex, side, cfg.Duplex)
	case BookletSaddleStitch:
		buildSaddleStitchGrid(layout, pageCount, sheetIndex, side)
	}
}

// buildStepAndRepeatGrid places the same page index in every cell: sheet k's
// front carries page k, its back (when duplex) carries page k+1.
func buildStepAndRepeatGrid(layout *ImpositionLayout, pageCount, sheetIndex int, side Side, duplex bool) {
	pageIdx := sheetIndex
	if duplex && side == Back {
		pageIdx = sheetIndex + 1
	}
	var pv *int
	if pageIdx >= 0 && pageIdx < pageCount {
		v := pageIdx
		pv = &v
	}
	for i := range layout.Grid {
		layout.Grid[i].PageIndex = pv
	}
}

// buildSequentialGrid fills cells in row-major, bottom-to-top, left-to-right
// order with consecutive source indices. Front and back of a duplex sheet
// draw from two adjacent blocks of n_up pages.
func buildSequentialGrid(layout *ImpositionLayout, pageCount, sheetIndex int, side Side, duplex bool) {
	perSheet := layout.NUp
	multiplier := perSheet
	if duplex {
		multiplier = 2 * perSheet
	}
	start := sheetIndex*multiplier
	if duplex && side == Back {
		start += perSheet
	}

	idx := start
	for r := 0; r < layout.Rows; r++ {
		for c := 0; c < layout.Cols; c++ {
			cell, ok := layout.CellAt(r, c)
			if !ok {
				continue
			}
			if idx < pageCount {
				v := idx
				cell.PageIndex = &v
			} else {
				cell.PageIndex = nil
			}
			idx++
		}
	}
}

// Signature is one saddle-stitch sheet's four page assignments: two per
// side. Indices at or beyond the source page count are nil.
type Signature struct {
	Index int
	Front [2]*int
	Back  [2]*int
}

// AllSaddleStitchSignatures enumerates every signature for a pageCount-page
// source, independent of any one sheet's layout — used both by the Grid
// Builder (one signature per sheet) and exposed standalone so a caller can
// show the full imposition scheme without re-planning. Its ceil(P/4) sheet
// count is the one the "Open question" note in DESIGN.md discusses: it can
// diverge from ImpositionLayout.TotalSheets when n_up != 2.
func AllSaddleStitchSignatures(pageCount int) []Signature {
	total := ceilDiv(pageCount, 4) * 4
	mk := func(p int) *int {
		if p < 0 || p >= pageCount {
			return nil
		}
		v := p
		return &v
	}

	sigs := make([]Signature, 0, total/4)
	for i := 0; i < total/4; i++ {
		sigs = append(sigs, Signature{
			Index: i,
			Front: [2]*int{mk(total - 2*i - 1), mk(2 * i)},
			Back:  [2]*int{mk(2*i + 1), mk(total - 2*i - 2)},
		})
	}
	return sigs
}

// buildSaddleStitchGrid is hard-coded to the 2-up case: a signature's Front
// or Back pair fills the grid's cells in row-major order. With a grid
// shape other than 1x2 it degrades gracefully rather than generalizing:
// excess cells past the pair's two entries are left blank. No 4-up/8-up
// folding order is derived.
func buildSaddleStitchGrid(layout *ImpositionLayout, pageCount, sheetIndex int, side Side) {
	sigs := AllSaddleStitchSignatures(pageCount)
	var pair [2]*int
	if sheetIndex >= 0 && sheetIndex < len(sigs) {
		if side == Front {
			pair = sigs[sheetIndex].Front
		} else {
			pair = sigs[sheetIndex].Back
		}
	}

	idx := 0
	for r := 0; r < layout.Rows; r++ {
		for c := 0; c < layout.Cols; c++ {
			cell, ok := layout.CellAt(r, c)
			if !ok {
				continue
			}
			if idx < len(pair) {
				cell.PageIndex = pair[idx]
			} else {
				cell.PageIndex = nil
			}
			idx++
		}
	}
}
