package imposition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func onePageCenteredLayout(cfg ImpositionConfig) *ImpositionLayout {
	layout := filledLayout(1, 1, map[[2]int]int{{0, 0}: 0})
	layout.EffTrimWidth, layout.EffTrimHeight = cfg.TrimWidth, cfg.TrimHeight
	ResolveBleed(layout, cfg)
	SolvePositions(layout, cfg)
	return layout
}

func cropTestConfig() ImpositionConfig {
	cfg := ImpositionConfig{
		TrimWidth:  100,
		TrimHeight: 60,
		Bleed:      BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
		Marks:      DefaultMarkConfig(),
		Sheet:      SheetConfig{SheetWidth: 300, SheetHeight: 200, Orientation: Landscape, MarkMargin: 10},
	}
	return cfg
}

func TestPlaceCropMarksTwoMarksPerExteriorCorner(t *testing.T) {
	cfg := cropTestConfig()
	layout := onePageCenteredLayout(cfg)
	marks := placeCropMarks(layout, cfg)

	// A single isolated cell has all four edges exterior: 4 corners * 2
	// marks each = 8 crop marks.
	require.Len(t, marks, 8)
	for _, m := range marks {
		require.Equal(t, MarkCrop, m.Kind)
	}
}

func TestPlaceCropMarksSuppressesInteriorCornerMarks(t *testing.T) {
	cfg := cropTestConfig()
	cfg.GapBetweenItems = 0
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0, {0, 1}: 1})
	layout.EffTrimWidth, layout.EffTrimHeight = cfg.TrimWidth, cfg.TrimHeight
	ResolveBleed(layout, cfg)
	SolvePositions(layout, cfg)

	marks := placeCropMarks(layout, cfg)
	// The shared interior edge between the two cells contributes no marks
	// on that side; only the four outer corners per cell remain, minus the
	// shared interior pair on each side (left cell's right corners, right
	// cell's left corners) — fewer than the 16 a fully-isolated pair would
	// produce.
	require.Less(t, len(marks), 16)
}

func TestPlaceCropMarksDeduplicatesSharedCorners(t *testing.T) {
	cfg := cropTestConfig()
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0, {0, 1}: 1})
	layout.EffTrimWidth, layout.EffTrimHeight = cfg.TrimWidth, cfg.TrimHeight
	cfg.GapBetweenItems = 0 // adjacent cells: both emit the same marks at their shared corners
	ResolveBleed(layout, cfg)
	SolvePositions(layout, cfg)

	marks := placeCropMarks(layout, cfg)
	seen := map[dedupKey]bool{}
	for _, m := range marks {
		key := dedupKey{quantize(m.X1), quantize(m.Y1), quantize(m.X2), quantize(m.Y2)}
		require.False(t, seen[key], "duplicate mark geometry emitted")
		seen[key] = true
	}
}

func TestPlaceRegistrationMarksFourPositions(t *testing.T) {
	cfg := cropTestConfig()
	marks := placeRegistrationMarks(cfg)
	require.Len(t, marks, 4)
	for _, m := range marks {
		require.Equal(t, MarkRegistration, m.Kind)
	}
}

func TestPlaceColorBarsTwelvePatches(t *testing.T) {
	cfg := cropTestConfig()
	marks := placeColorBars(cfg)
	require.Len(t, marks, 12)
}

func TestPlaceFoldMarksOnlyForTwoColumnGrids(t *testing.T) {
	cfg := cropTestConfig()
	layout := filledLayout(1, 2, map[[2]int]int{{0, 0}: 0, {0, 1}: 1})
	cfg.Marks.FoldMarksEnabled = true

	marks := PlaceAllMarks(layout, cfg, 0, 1, "doc.pdf", time.Now())
	foldCount := 0
	for _, m := range marks {
		if m.Kind == MarkFold {
			foldCount++
		}
	}
	require.Equal(t, 2, foldCount)

	layout.Cols = 1
	marks = PlaceAllMarks(layout, cfg, 0, 1, "doc.pdf", time.Now())
	foldCount = 0
	for _, m := range marks {
		if m.Kind == MarkFold {
			foldCount++
		}
	}
	require.Equal(t, 0, foldCount)
}

func TestPlaceSlugTextJoinsTokensWithSeparator(t *testing.T) {
	cfg := cropTestConfig()
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	m := placeSlugText(cfg, 2, 10, "brochure.pdf", now)

	props, ok := m.Props.(SlugTextProps)
	require.True(t, ok)
	require.Contains(t, props.Text, "File: brochure.pdf")
	require.Contains(t, props.Text, "Sheet: 3 of 10")
	require.Contains(t, props.Text, "  |  ")
}

func TestPlaceAllMarksRespectsToggles(t *testing.T) {
	cfg := cropTestConfig()
	cfg.Marks = MarkConfig{} // everything disabled
	layout := onePageCenteredLayout(cfg)

	marks := PlaceAllMarks(layout, cfg, 0, 1, "doc.pdf", time.Now())
	require.Empty(t, marks)
}
