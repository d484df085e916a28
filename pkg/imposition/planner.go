package imposition

import "math"

// PlanLayout computes the grid shape, cell-rotation choice, and total sheet
// count for cfg against a source of pageCount pages. It does not assign
// pages to cells (the Grid Builder does that) or resolve bleed/position
// (the Bleed Resolver and Position Solver do).
func PlanLayout(cfg ImpositionConfig, pageCount int) *ImpositionLayout {
	sheetW, sheetH := cfg.Sheet.Oriented()
	availW := sheetW - 2*cfg.Sheet.MarkMargin
	availH := sheetH - 2*cfg.Sheet.MarkMargin - cfg.Sheet.GripEdge
	bleed := cfg.Bleed.ToEdgeBleed()

	computeGrid := func(trimW, trimH float64) (cols, rows int) {
		if availW <= 0 || availH <= 0 {
			return 0, 0
		}
		if cfg.GapBetweenItems > 0 {
			cols = gapCount(availW, trimW, bleed.Left, bleed.Right, cfg.GapBetweenItems)
			rows = gapCount(availH, trimH, bleed.Bottom, bleed.Top, cfg.GapBetweenItems)
		} else {
			cols = tightCount(availW, trimW, bleed.Left, bleed.Right)
			rows = tightCount(availH, trimH, bleed.Bottom, bleed.Top)
		}
		return
	}

	cols, rows := computeGrid(cfg.TrimWidth, cfg.TrimHeight)
	nUp := cols * rows
	cellRotation := 0
	effTrimW, effTrimH := cfg.TrimWidth, cfg.TrimHeight

	// auto_rotate never decreases n_up vs the unrotated layout: ties keep
	// the unrotated orientation.
	if cfg.AutoRotate {
		rCols, rRows := computeGrid(cfg.TrimHeight, cfg.TrimWidth)
		rNUp := rCols * rRows
		if rNUp > nUp {
			cols, rows, nUp = rCols, rRows, rNUp
			cellRotation = 90
			effTrimW, effTrimH = cfg.TrimHeight, cfg.TrimWidth
		}
	}

	return &ImpositionLayout{
		Rows:          rows,
		Cols:          cols,
		NUp:           nUp,
		TotalSheets:   calcTotalSheets(cfg, nUp, pageCount),
		CellRotation:  cellRotation,
		EffTrimWidth:  effTrimW,
		EffTrimHeight: effTrimH,
		Grid:          buildSkeletonGrid(rows, cols, cellRotation),
	}
}

// tightCount implements gap=0 mode: interior edges share, only the
// outermost row/col carries outer bleed.
func tightCount(available, trim, bleedA, bleedB float64) int {
	if trim <= 0 {
		return 0
	}
	outer := bleedA + bleedB
	n := int(math.Floor((available - outer) / trim))
	if n < 1 {
		n = 1
	}
	for n > 1 {
		total := float64(n)*trim + outer
		if total <= available+1e-9 {
			break
		}
		n--
	}
	return n
}

// gapCount implements gap>0 mode: every cell carries full bleed plus a
// trailing gap, the last cell in a row/column included.
func gapCount(available, trim, bleedA, bleedB, gap float64) int {
	pitch := trim + bleedA + bleedB + gap
	if pitch <= 0 {
		return 0
	}
	n := int(math.Floor(available / pitch))
	if n < 0 {
		n = 0
	}
	return n
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// calcTotalSheets implements §4.2's per-mode rule. For saddle_stitch this
// deliberately diverges from AllSaddleStitchSignatures' own ceil(P/4) count
// whenever n_up != 2 — see the "Open question" note in DESIGN.md; both
// behaviours are preserved verbatim rather than reconciled.
func calcTotalSheets(cfg ImpositionConfig, nUp, pageCount int) int {
	switch cfg.Mode {
	case StepAndRepeat:
		if cfg.Duplex {
			return ceilDiv(pageCount, 2)
		}
		return pageCount
	case CutAndStack, BookletPerfectBind:
		perSheet := nUp
		if cfg.Duplex {
			perSheet = 2 * nUp
		}
		return ceilDiv(pageCount, perSheet)
	case BookletSaddleStitch:
		// Saddle-stitch sheets are inherently two-sided: pagesPerSheet is
		// 2*n_up regardless of the Duplex flag. When n_up == 2 (the
		// designed case) this is ceil(P/4), matching
		// AllSaddleStitchSignatures' own count. For any other n_up — the
		// grid builder still lays out saddle-stitch as 2-up, see
		// buildSaddleStitchGrid — the two diverge. That divergence is
		// preserved, not reconciled: see DESIGN.md.
		return ceilDiv(pageCount, 2*nUp)
	default:
		return 0
	}
}
