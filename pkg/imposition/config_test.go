package imposition

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sheetwright/imposer/pkg/geom"
)

func TestValidateRejectsNonPositiveTrim(t *testing.T) {
	cfg := businessCardConfig()
	cfg.TrimWidth = 0
	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidateRejectsNegativeBleed(t *testing.T) {
	cfg := businessCardConfig()
	cfg.Bleed.Left = -1
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := businessCardConfig()
	require.NoError(t, cfg.Validate())
}

func TestSheetOrientedSwapsForLandscape(t *testing.T) {
	s := SheetConfig{SheetWidth: 100, SheetHeight: 200, Orientation: Landscape}
	w, h := s.Oriented()
	require.Equal(t, 200.0, w)
	require.Equal(t, 100.0, h)
}

func TestSheetOrientedLeavesPortraitAlone(t *testing.T) {
	s := SheetConfig{SheetWidth: 100, SheetHeight: 200, Orientation: Portrait}
	w, h := s.Oriented()
	require.Equal(t, 100.0, w)
	require.Equal(t, 200.0, h)
}

func TestEffectiveTrimBoxFallsBackToMediaBox(t *testing.T) {
	pg := PageGeometry{MediaBox: geom.NewRectangle(0, 0, 100, 200)}
	require.Equal(t, pg.MediaBox, pg.EffectiveTrimBox())

	trim := geom.NewRectangle(5, 5, 90, 190)
	pg.TrimBox = &trim
	require.Equal(t, trim, pg.EffectiveTrimBox())
}
