package imposition

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/color"
	"github.com/sheetwright/imposer/pkg/draw"
	"github.com/sheetwright/imposer/pkg/geom"
	"github.com/sheetwright/imposer/pkg/matrix"
	"github.com/sheetwright/imposer/pkg/pdfdoc"
)

// AssembleSheet draws one output sheet: every filled grid cell's source
// page, clipped and transformed into place, followed by the mark overlay.
// It is the single assembly path for both front and back sides — the
// teacher's separate "simplex" and "duplex" drawing routines collapse into
// one function here, since a mirrored layout is just another
// *ImpositionLayout by the time this runs.
//
// The marks overlay is drawn once into its own Form XObject (buildMarksForm)
// and invoked a single time on top of the cell content, the same
// import-as-form-then-Do sequence placeCell uses for source pages, rather
// than emitting mark operators straight into the sheet's own content
// stream.
func AssembleSheet(doc *pdfdoc.Document, src *pdfdoc.Source, layout *ImpositionLayout, cfg ImpositionConfig, marks []MarkObject) error {
	sheetW, sheetH := cfg.Sheet.Oriented()
	mediaBoxPt := geom.NewRectangle(0, 0, geom.MmToPt(sheetW), geom.MmToPt(sheetH))
	pb := doc.AddPage(mediaBoxPt)

	for i := range layout.Grid {
		cell := &layout.Grid[i]
		if cell.PageIndex == nil {
			continue
		}
		if err := placeCell(doc, pb, src, cell, layout); err != nil {
			return errors.Wrapf(err, "placing page %d at row %d col %d", *cell.PageIndex, cell.Row, cell.Col)
		}
	}

	if len(marks) > 0 {
		formRef := buildMarksForm(doc, mediaBoxPt, marks)
		pb.UseXObject("Marks", formRef)
		fmt.Fprint(pb, "q ")
		fmt.Fprint(pb, "/Marks Do ")
		fmt.Fprint(pb, "Q ")
	}

	return nil
}

// buildMarksForm draws every placed mark into a fresh Form XObject sized to
// the full sheet and returns its reference, ready for a single "/name Do"
// invocation from the sheet page.
func buildMarksForm(doc *pdfdoc.Document, mediaBoxPt geom.Rectangle, marks []MarkObject) pdfdoc.Ref {
	fb := doc.NewForm(mediaBoxPt)

	fontName := ""
	for _, m := range marks {
		if m.Kind == MarkSlugText {
			fontRef := doc.AddDict(pdfdoc.Dict{
				"Type": pdfdoc.Name("Font"), "Subtype": pdfdoc.Name("Type1"), "BaseFont": pdfdoc.Name("Helvetica"),
			})
			fontName = "Helv"
			fb.UseFont(fontName, fontRef)
			break
		}
	}

	for _, m := range marks {
		drawMark(fb, m, fontName)
	}

	return fb.Finish()
}

// placeCell imports the cell's source page as a (memoized) Form XObject
// and invokes it under a clip and a placement matrix, per §4.8.
func placeCell(doc *pdfdoc.Document, pb *pdfdoc.PageBuilder, src *pdfdoc.Source, cell *GridCell, layout *ImpositionLayout) error {
	formRef, srcTrimBoxPt, err := doc.ImportPageAsForm(src, *cell.PageIndex)
	if err != nil {
		return err
	}

	targetX := geom.MmToPt(cell.TrimOriginX)
	targetY := geom.MmToPt(cell.TrimOriginY)
	targetTrimW := geom.MmToPt(layout.EffTrimWidth)
	targetTrimH := geom.MmToPt(layout.EffTrimHeight)

	m := matrix.ForRotation(cell.Rotation, targetX, targetY,
		srcTrimBoxPt.X, srcTrimBoxPt.Y, srcTrimBoxPt.Width, srcTrimBoxPt.Height,
		targetTrimW, targetTrimH)

	name := fmt.Sprintf("Fm%d", formRef.Num)
	pb.UseXObject(name, formRef)

	fmt.Fprint(pb, "q ")
	draw.ClipRect(pb, cell.ClipRect.ToPt())
	fmt.Fprintf(pb, "%s cm ", m.String())
	fmt.Fprintf(pb, "/%s Do ", name)
	fmt.Fprint(pb, "Q ")
	return nil
}

// drawMark renders one placed mark into w — the marks overlay form's
// content stream. fontName is the registered standard font resource name,
// only used (and only non-empty) when marks contains a MarkSlugText entry.
func drawMark(w io.Writer, m MarkObject, fontName string) {
	switch m.Kind {
	case MarkCrop:
		p := m.Props.(CropMarkProps)
		draw.DrawLine(w, geom.MmToPt(m.X1), geom.MmToPt(m.Y1), geom.MmToPt(m.X2), geom.MmToPt(m.Y2),
			p.StrokeWeight, color.ForName(string(p.Color)))

	case MarkRegistration:
		p := m.Props.(RegistrationMarkProps)
		cx, cy := geom.MmToPt(m.X1), geom.MmToPt(m.Y1)
		outerR := geom.MmToPt(p.Radius)
		innerR := outerR * 0.3
		col := color.ForName(string(p.Color))
		draw.DrawCircle(w, cx, cy, outerR, p.LineWeight, col)
		draw.DrawCircle(w, cx, cy, innerR, p.LineWeight, col)
		draw.DrawCrosshair(w, cx, cy, geom.MmToPt(p.CrosshairLength), p.LineWeight, col)

	case MarkFold:
		p := m.Props.(FoldMarkProps)
		draw.DrawDashedLine(w, geom.MmToPt(m.X1), geom.MmToPt(m.Y1), geom.MmToPt(m.X2), geom.MmToPt(m.Y2),
			p.LineWeight, color.Registration, p.DashOn, p.DashOff)

	case MarkColorBar:
		p := m.Props.(ColorBarProps)
		size := geom.MmToPt(p.Size)
		rect := geom.NewRectangle(geom.MmToPt(m.X1), geom.MmToPt(m.Y1), size, size)
		draw.FillRect(w, rect, p.Patch, color.CMYK{}, 0)

	case MarkSlugText:
		p := m.Props.(SlugTextProps)
		draw.DrawText(w, draw.TextDescriptor{
			FontName: fontName,
			FontSize: p.FontSize,
			X:        geom.MmToPt(m.X1),
			Y:        geom.MmToPt(m.Y1),
			FillCol:  color.ForName(string(p.Color)),
			Text:     p.Text,
		})
	}
}
