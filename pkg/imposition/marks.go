package imposition

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/sheetwright/imposer/pkg/color"
	"github.com/sheetwright/imposer/pkg/geom"
)

// slugCharsPerMM is the rune-count upper bound used to turn a printable-area
// width budget into a truncation width for go-runewidth: roughly the widest
// a 6pt Helvetica glyph gets, rounded down so the estimate never overshoots.
const slugCharsPerMM = 0.5

// MarkKind tags a MarkObject's variant. The original implementation kept a
// single heterogeneous properties map per mark; here each kind carries its
// own typed Props, so the renderer switches on a closed set instead of
// branching on map keys it hopes are present.
type MarkKind int

const (
	MarkCrop MarkKind = iota
	MarkRegistration
	MarkFold
	MarkColorBar
	MarkSlugText
)

// MarkProps is implemented by exactly one concrete type per MarkKind.
type MarkProps interface {
	markKind() MarkKind
}

type CropMarkProps struct {
	StrokeWeight float64
	Color        MarkColor
}

func (CropMarkProps) markKind() MarkKind { return MarkCrop }

type RegistrationMarkProps struct {
	Radius          float64
	CrosshairLength float64
	LineWeight      float64
	Color           MarkColor
}

func (RegistrationMarkProps) markKind() MarkKind { return MarkRegistration }

type FoldMarkProps struct {
	LineWeight     float64
	DashOn, DashOff float64
}

func (FoldMarkProps) markKind() MarkKind { return MarkFold }

type ColorBarProps struct {
	Patch color.CMYK
	Size  float64
}

func (ColorBarProps) markKind() MarkKind { return MarkColorBar }

type SlugTextProps struct {
	Text     string
	FontName string
	FontSize float64
	Color    MarkColor
}

func (SlugTextProps) markKind() MarkKind { return MarkSlugText }

// MarkObject is one placed mark, in millimetres, sheet-relative.
type MarkObject struct {
	Kind       MarkKind
	X1, Y1     float64
	X2, Y2     float64
	Props      MarkProps
}

// PlaceAllMarks dispatches to each enabled mark kind's placer, per §4.7.
func PlaceAllMarks(layout *ImpositionLayout, cfg ImpositionConfig, sheetIndex, totalSheets int, filename string, now time.Time) []MarkObject {
	var marks []MarkObject
	mc := cfg.Marks

	if mc.CropMarksEnabled {
		marks = append(marks, placeCropMarks(layout, cfg)...)
	}
	if mc.RegistrationMarksEnabled {
		marks = append(marks, placeRegistrationMarks(cfg)...)
	}
	if mc.ColorBarsEnabled {
		marks = append(marks, placeColorBars(cfg)...)
	}
	if mc.FoldMarksEnabled && layout.Cols == 2 {
		marks = append(marks, placeFoldMarks(cfg)...)
	}
	if mc.SlugInfoEnabled {
		marks = append(marks, placeSlugText(cfg, sheetIndex, totalSheets, filename, now))
	}
	return marks
}

type cropCorner struct {
	h, v   Edge
	cx, cy float64
}

// dedupKey quantizes a mark's endpoints to 0.01mm (the redesign note's
// "make the rounding explicit" fix): an integer-keyed map instead of
// rounded-float keys.
type dedupKey struct {
	x1, y1, x2, y2 int64
}

func quantize(v float64) int64 {
	return int64(math.Round(v * 100))
}

// placeCropMarks emits up to two marks per filled cell's trim corner — one
// oriented along each exterior edge's outward normal — deduplicating
// shared corners between adjacent cells and suppressing any mark that
// would cross another cell's trim rectangle.
func placeCropMarks(layout *ImpositionLayout, cfg ImpositionConfig) []MarkObject {
	mc := cfg.Marks
	offset, length := mc.CropMarkOffset, mc.CropMarkLength
	trimW, trimH := layout.EffTrimWidth, layout.EffTrimHeight

	seen := map[dedupKey]bool{}
	var out []MarkObject

	for i := range layout.Grid {
		cell := &layout.Grid[i]
		if cell.PageIndex == nil {
			continue
		}
		corners := []cropCorner{
			{EdgeBottom, EdgeLeft, cell.TrimOriginX, cell.TrimOriginY},
			{EdgeBottom, EdgeRight, cell.TrimOriginX + trimW, cell.TrimOriginY},
			{EdgeTop, EdgeLeft, cell.TrimOriginX, cell.TrimOriginY + trimH},
			{EdgeTop, EdgeRight, cell.TrimOriginX + trimW, cell.TrimOriginY + trimH},
		}

		for _, cr := range corners {
			if !cell.IsInteriorEdge.Get(cr.v) {
				sign := 1.0
				if cr.v == EdgeLeft {
					sign = -1
				}
				m := MarkObject{
					Kind: MarkCrop,
					X1:   cr.cx + sign*offset, Y1: cr.cy,
					X2: cr.cx + sign*(offset+length), Y2: cr.cy,
					Props: CropMarkProps{StrokeWeight: mc.CropMarkStrokeWeight, Color: mc.CropMarkColor},
				}
				appendCropMark(&out, seen, m, layout)
			}
			if !cell.IsInteriorEdge.Get(cr.h) {
				sign := 1.0
				if cr.h == EdgeBottom {
					sign = -1
				}
				m := MarkObject{
					Kind: MarkCrop,
					X1:   cr.cx, Y1: cr.cy + sign*offset,
					X2: cr.cx, Y2: cr.cy + sign*(offset+length),
					Props: CropMarkProps{StrokeWeight: mc.CropMarkStrokeWeight, Color: mc.CropMarkColor},
				}
				appendCropMark(&out, seen, m, layout)
			}
		}
	}
	return out
}

func appendCropMark(out *[]MarkObject, seen map[dedupKey]bool, m MarkObject, layout *ImpositionLayout) {
	key := dedupKey{quantize(m.X1), quantize(m.Y1), quantize(m.X2), quantize(m.Y2)}
	if seen[key] {
		return
	}
	if cropMarkOverlapsAnyCell(m, layout) {
		return
	}
	seen[key] = true
	*out = append(*out, m)
}

func cropMarkOverlapsAnyCell(m MarkObject, layout *ImpositionLayout) bool {
	mid := geom.Point{X: (m.X1 + m.X2) / 2, Y: (m.Y1 + m.Y2) / 2}
	p1 := geom.Point{X: m.X1, Y: m.Y1}
	p2 := geom.Point{X: m.X2, Y: m.Y2}
	trimW, trimH := layout.EffTrimWidth, layout.EffTrimHeight

	for i := range layout.Grid {
		cell := &layout.Grid[i]
		if cell.PageIndex == nil {
			continue
		}
		rect := geom.NewRectangle(cell.TrimOriginX, cell.TrimOriginY, trimW, trimH)
		if rect.Contains(mid) {
			return true
		}
		if rect.Contains(p1) && rect.Contains(p2) {
			return true
		}
	}
	return false
}

// placeRegistrationMarks emits the four fixed edge-midpoint marks.
func placeRegistrationMarks(cfg ImpositionConfig) []MarkObject {
	sheetW, sheetH := cfg.Sheet.Oriented()
	inset := cfg.Sheet.MarkMargin / 2

	positions := []geom.Point{
		{X: inset, Y: sheetH / 2},           // left-mid
		{X: sheetW - inset, Y: sheetH / 2},  // right-mid
		{X: sheetW / 2, Y: inset},           // bottom-mid
		{X: sheetW / 2, Y: sheetH - inset},  // top-mid
	}

	marks := make([]MarkObject, len(positions))
	for i, p := range positions {
		marks[i] = MarkObject{
			Kind: MarkRegistration,
			X1:   p.X, Y1: p.Y,
			Props: RegistrationMarkProps{Radius: 4.0, CrosshairLength: 6.0, LineWeight: 0.25, Color: ColorRegistration},
		}
	}
	return marks
}

// placeColorBars emits the fixed twelve-patch CMYK sequence along the
// bottom slug area.
func placeColorBars(cfg ImpositionConfig) []MarkObject {
	const patchSize, patchGap = 4.0, 1.0
	marks := make([]MarkObject, len(color.ColorBarSequence))
	for i, cmyk := range color.ColorBarSequence {
		x := cfg.Sheet.MarkMargin + float64(i)*(patchSize+patchGap)
		marks[i] = MarkObject{
			Kind: MarkColorBar,
			X1:   x, Y1: 2.0,
			Props: ColorBarProps{Patch: cmyk, Size: patchSize},
		}
	}
	return marks
}

// placeFoldMarks emits the two centre fold ticks; callers must only invoke
// this when layout.Cols == 2, per §4.7.
func placeFoldMarks(cfg ImpositionConfig) []MarkObject {
	sheetW, sheetH := cfg.Sheet.Oriented()
	x := sheetW / 2
	props := FoldMarkProps{LineWeight: 0.25, DashOn: 3, DashOff: 3}
	return []MarkObject{
		{Kind: MarkFold, X1: x, Y1: 0, X2: x, Y2: 5.0, Props: props},
		{Kind: MarkFold, X1: x, Y1: sheetH - 5.0, X2: x, Y2: sheetH, Props: props},
	}
}

// placeSlugText expands the configured token list into one joined string,
// truncated to fit between the sheet's margins.
func placeSlugText(cfg ImpositionConfig, sheetIndex, totalSheets int, filename string, now time.Time) MarkObject {
	var parts []string
	for _, tok := range cfg.Marks.SlugTextContent {
		switch tok {
		case SlugFilename:
			parts = append(parts, "File: "+filename)
		case SlugDate:
			parts = append(parts, "Date: "+now.Format("2006-01-02 15:04"))
		case SlugSheetNumber:
			parts = append(parts, fmt.Sprintf("Sheet: %d of %d", sheetIndex+1, totalSheets))
		case SlugColorProfile:
			parts = append(parts, "Profile: CMYK")
		}
	}
	sheetW, sheetH := cfg.Sheet.Oriented()
	text := strings.Join(parts, "  |  ")
	budget := int((sheetW - 2*cfg.Sheet.MarkMargin) * slugCharsPerMM)
	if budget > 0 && runewidth.StringWidth(text) > budget {
		text = runewidth.Truncate(text, budget, "...")
	}
	return MarkObject{
		Kind: MarkSlugText,
		X1:   cfg.Sheet.MarkMargin, Y1: sheetH - 3.0,
		Props: SlugTextProps{Text: text, FontName: "Helvetica", FontSize: 6, Color: ColorBlackOnly},
	}
}
