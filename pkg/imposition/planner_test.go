package imposition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func businessCardConfig() ImpositionConfig {
	return ImpositionConfig{
		Mode:       StepAndRepeat,
		TrimWidth:  85,
		TrimHeight: 55,
		Bleed:      BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
		Marks:      DefaultMarkConfig(),
		Sheet:      DefaultSheetConfig(),
	}
}

func TestPlanLayoutTightGrid(t *testing.T) {
	layout := PlanLayout(businessCardConfig(), 1)
	require.Greater(t, layout.Cols, 0)
	require.Greater(t, layout.Rows, 0)
	require.Equal(t, layout.Cols*layout.Rows, layout.NUp)
	require.Equal(t, 0, layout.CellRotation)
}

func TestPlanLayoutGapModeShrinksGrid(t *testing.T) {
	tight := businessCardConfig()
	gapped := businessCardConfig()
	gapped.GapBetweenItems = 5

	tightLayout := PlanLayout(tight, 1)
	gappedLayout := PlanLayout(gapped, 1)
	require.LessOrEqual(t, gappedLayout.NUp, tightLayout.NUp)
}

func TestPlanLayoutAutoRotatePicksLargerNUp(t *testing.T) {
	cfg := ImpositionConfig{
		Mode:       StepAndRepeat,
		TrimWidth:  100,
		TrimHeight: 50,
		Bleed:      BleedConfig{},
		Marks:      DefaultMarkConfig(),
		Sheet:      DefaultSheetConfig(),
		AutoRotate: true,
	}
	rotated := PlanLayout(cfg, 1)

	cfg.AutoRotate = false
	unrotated := PlanLayout(cfg, 1)

	require.GreaterOrEqual(t, rotated.NUp, unrotated.NUp)
}

func TestPlanLayoutZeroNUpWhenMarginsConsumeSheet(t *testing.T) {
	cfg := businessCardConfig()
	cfg.Sheet.MarkMargin = 300 // leaves a negative printable width on a 488mm sheet
	layout := PlanLayout(cfg, 1)
	require.Equal(t, 0, layout.NUp)
}

func TestCalcTotalSheetsStepAndRepeat(t *testing.T) {
	cfg := businessCardConfig()
	require.Equal(t, 7, calcTotalSheets(cfg, 4, 7))

	cfg.Duplex = true
	require.Equal(t, 4, calcTotalSheets(cfg, 4, 7))
}

func TestCalcTotalSheetsSaddleStitchDivergesForNUpNotTwo(t *testing.T) {
	cfg := businessCardConfig()
	cfg.Mode = BookletSaddleStitch

	// n_up == 2 matches AllSaddleStitchSignatures' ceil(P/4).
	require.Equal(t, ceilDiv(16, 4), calcTotalSheets(cfg, 2, 16))

	// n_up == 4 diverges from ceil(P/4): the planner's own rule is
	// ceil(P/(2*n_up)), while AllSaddleStitchSignatures always uses
	// ceil(P/4) regardless of n_up. Both are preserved, not reconciled.
	planned := calcTotalSheets(cfg, 4, 16)
	signatureCount := len(AllSaddleStitchSignatures(16))
	require.NotEqual(t, signatureCount, planned)
}
