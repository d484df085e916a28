package imposition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func filledLayout(rows, cols int, filled map[[2]int]int) *ImpositionLayout {
	layout := &ImpositionLayout{
		Rows: rows, Cols: cols, NUp: rows * cols,
		EffTrimWidth: 85, EffTrimHeight: 55,
		Grid: buildSkeletonGrid(rows, cols, 0),
	}
	for i := range layout.Grid {
		c := &layout.Grid[i]
		if p, ok := filled[[2]int{c.Row, c.Col}]; ok {
			v := p
			c.PageIndex = &v
		}
	}
	return layout
}

func twoByTwoConfig() ImpositionConfig {
	return ImpositionConfig{
		Bleed: BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
	}
}

func TestResolveBleedAllExteriorWhenGapPositive(t *testing.T) {
	layout := filledLayout(2, 2, map[[2]int]int{{0, 0}: 0, {0, 1}: 1, {1, 0}: 2, {1, 1}: 3})
	cfg := twoByTwoConfig()
	cfg.GapBetweenItems = 5
	ResolveBleed(layout, cfg)

	for _, c := range layout.Grid {
		for _, e := range AllEdges {
			require.False(t, c.IsInteriorEdge.Get(e))
			require.Equal(t, 3.0, c.BleedPerEdge.Get(e))
		}
	}
}

func TestResolveBleedInteriorWhenNeighborFilledAndGapZero(t *testing.T) {
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0, {0, 1}: 1})
	ResolveBleed(layout, twoByTwoConfig())

	left, _ := layout.CellAt(0, 0)
	right, _ := layout.CellAt(0, 1)

	require.True(t, left.IsInteriorEdge.Get(EdgeRight))
	require.Equal(t, 0.0, left.BleedPerEdge.Get(EdgeRight))
	require.True(t, right.IsInteriorEdge.Get(EdgeLeft))

	// Outer edges with no neighbor remain exterior.
	require.False(t, left.IsInteriorEdge.Get(EdgeLeft))
	require.Equal(t, 3.0, left.BleedPerEdge.Get(EdgeLeft))
	require.False(t, right.IsInteriorEdge.Get(EdgeRight))
}

func TestResolveBleedExteriorWhenNeighborBlank(t *testing.T) {
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0})
	ResolveBleed(layout, twoByTwoConfig())

	left, _ := layout.CellAt(0, 0)
	require.False(t, left.IsInteriorEdge.Get(EdgeRight))
	require.Equal(t, 3.0, left.BleedPerEdge.Get(EdgeRight))
}

func TestResolveBleedSkipsBlankCells(t *testing.T) {
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0})
	ResolveBleed(layout, twoByTwoConfig())

	right, _ := layout.CellAt(0, 1)
	require.Equal(t, EdgeBleed{}, right.BleedPerEdge)
	require.Equal(t, EdgeFlags{}, right.IsInteriorEdge)
}
