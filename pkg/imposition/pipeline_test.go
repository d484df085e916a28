package imposition

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sheetwright/imposer/pkg/geom"
	"github.com/sheetwright/imposer/pkg/pdfdoc"
)

func stepAndRepeatPipelineConfig() ImpositionConfig {
	return ImpositionConfig{
		Mode:       StepAndRepeat,
		TrimWidth:  85,
		TrimHeight: 55,
		Bleed:      BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
		Marks:      DefaultMarkConfig(),
		Sheet:      DefaultSheetConfig(),
	}
}

func writeAndReopen(t *testing.T, doc *pdfdoc.Document) *pdfdoc.Source {
	t.Helper()
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	src, err := pdfdoc.OpenSource(buf.Bytes())
	require.NoError(t, err)
	return src
}

func TestImposeProducesOneSheetForSingleSourcePage(t *testing.T) {
	data := buildSourcePDF(t, geom.MmToPt(210), geom.MmToPt(297))
	result, err := Impose(data, stepAndRepeatPipelineConfig(), "flyer.pdf", time.Now())
	require.NoError(t, err)
	require.Len(t, result.Analysis.Pages, 1)

	out := writeAndReopen(t, result.Document)
	require.Len(t, out.Pages, 1)
}

func TestImposeDuplexProducesTwoSheetsForOnePage(t *testing.T) {
	data := buildSourcePDF(t, geom.MmToPt(210), geom.MmToPt(297))
	cfg := stepAndRepeatPipelineConfig()
	cfg.Duplex = true

	result, err := Impose(data, cfg, "flyer.pdf", time.Now())
	require.NoError(t, err)

	out := writeAndReopen(t, result.Document)
	require.Len(t, out.Pages, 2)
}

func TestImposeRejectsTrimExceedingSheet(t *testing.T) {
	data := buildSourcePDF(t, geom.MmToPt(210), geom.MmToPt(297))
	cfg := stepAndRepeatPipelineConfig()
	cfg.TrimWidth = 10000
	cfg.TrimHeight = 10000

	_, err := Impose(data, cfg, "flyer.pdf", time.Now())
	require.Error(t, err)
}

func TestImposeRejectsInvalidConfig(t *testing.T) {
	data := buildSourcePDF(t, geom.MmToPt(210), geom.MmToPt(297))
	cfg := stepAndRepeatPipelineConfig()
	cfg.TrimWidth = 0

	_, err := Impose(data, cfg, "flyer.pdf", time.Now())
	require.Error(t, err)
}

func TestImposeSaddleStitchAlwaysProducesBacksRegardlessOfDuplexFlag(t *testing.T) {
	data := buildSourcePDF(t, geom.MmToPt(100), geom.MmToPt(150))
	cfg := ImpositionConfig{
		Mode:       BookletSaddleStitch,
		TrimWidth:  100,
		TrimHeight: 150,
		Bleed:      BleedConfig{},
		Marks:      DefaultMarkConfig(),
		Sheet:      SheetConfig{SheetWidth: 450, SheetHeight: 320, Orientation: Landscape, MarkMargin: 5},
		Duplex:     false,
	}

	result, err := Impose(data, cfg, "booklet.pdf", time.Now())
	require.NoError(t, err)

	out := writeAndReopen(t, result.Document)
	// One source page means one signature's worth of sheets, each with a
	// front and a back: booklet sheets are always two-sided.
	require.True(t, len(out.Pages) >= 2)
}
