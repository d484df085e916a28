/*
Copyright 2022 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package draw writes PDF content-stream drawing operators: lines, circles,
// rects, dashed strokes, in CMYK. It never rasterizes anything; every call
// appends text operators to an io.Writer.
package draw

import (
	"fmt"
	"io"

	"github.com/sheetwright/imposer/pkg/color"
	"github.com/sheetwright/imposer/pkg/geom"
)

// SetLineWidth sets the line width for stroking operations, in points.
func SetLineWidth(w io.Writer, width float64) {
	fmt.Fprintf(w, "%.2f w ", width)
}

// SetDash sets a dash pattern, on/off lengths in points. A nil/empty pattern
// clears dashing.
func SetDash(w io.Writer, onOff ...float64) {
	fmt.Fprint(w, "[")
	for i, v := range onOff {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%.2f", v)
	}
	fmt.Fprint(w, "] 0 d ")
}

// SetStrokeColor sets the CMYK stroke color.
func SetStrokeColor(w io.Writer, c color.CMYK) {
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f K ", c.C, c.M, c.Y, c.K)
}

// SetFillColor sets the CMYK fill color.
func SetFillColor(w io.Writer, c color.CMYK) {
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f k ", c.C, c.M, c.Y, c.K)
}

// DrawLine strokes the segment (xp,yp)-(xq,yq) with lineWidth and strokeCol.
func DrawLine(w io.Writer, xp, yp, xq, yq, lineWidth float64, strokeCol color.CMYK) {
	fmt.Fprint(w, "q ")
	SetLineWidth(w, lineWidth)
	SetStrokeColor(w, strokeCol)
	fmt.Fprintf(w, "%.2f %.2f m %.2f %.2f l S Q ", xp, yp, xq, yq)
}

// DrawDashedLine strokes a dashed segment.
func DrawDashedLine(w io.Writer, xp, yp, xq, yq, lineWidth float64, strokeCol color.CMYK, on, off float64) {
	fmt.Fprint(w, "q ")
	SetLineWidth(w, lineWidth)
	SetStrokeColor(w, strokeCol)
	SetDash(w, on, off)
	fmt.Fprintf(w, "%.2f %.2f m %.2f %.2f l S Q ", xp, yp, xq, yq)
}

// ClipRect emits a non-painting clip for r: `re W n`.
func ClipRect(w io.Writer, r geom.Rectangle) {
	fmt.Fprintf(w, "%.2f %.2f %.2f %.2f re W n ", r.X, r.Y, r.Width, r.Height)
}

// DrawRect strokes r's boundary.
func DrawRect(w io.Writer, r geom.Rectangle, lineWidth float64, strokeCol color.CMYK) {
	fmt.Fprint(w, "q ")
	SetLineWidth(w, lineWidth)
	SetStrokeColor(w, strokeCol)
	fmt.Fprintf(w, "%.2f %.2f %.2f %.2f re S Q ", r.X, r.Y, r.Width, r.Height)
}

// FillRect fills r with fillCol, optionally stroking its border with
// strokeCol and lineWidth when lineWidth > 0.
func FillRect(w io.Writer, r geom.Rectangle, fillCol color.CMYK, strokeCol color.CMYK, lineWidth float64) {
	fmt.Fprint(w, "q ")
	SetFillColor(w, fillCol)
	op := "f"
	if lineWidth > 0 {
		SetStrokeColor(w, strokeCol)
		SetLineWidth(w, lineWidth)
		op = "B"
	}
	fmt.Fprintf(w, "%.2f %.2f %.2f %.2f re %s Q ", r.X, r.Y, r.Width, r.Height, op)
}

// bezierCircleMagic is the standard cubic-Bezier approximation constant for
// a quarter circle of radius r: control points sit bezierCircleMagic*r away
// from the on-curve point along the tangent.
const bezierCircleMagic = 0.5523

// DrawCircle strokes a circle centered at (x,y) with the given radius and
// line weight, in strokeCol.
func DrawCircle(w io.Writer, x, y, radius, lineWidth float64, strokeCol color.CMYK) {
	f := bezierCircleMagic
	r := radius
	fmt.Fprint(w, "q ")
	SetLineWidth(w, lineWidth)
	SetStrokeColor(w, strokeCol)
	fmt.Fprintf(w, "1 0 0 1 %.2f %.2f cm %.3f 0 m ", x, y, r)
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f %.3f %.3f c ", r, f*r, f*r, r, 0.0, r)
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f %.3f %.3f c ", -f*r, r, -r, f*r, -r, 0.0)
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f %.3f %.3f c ", -r, -f*r, -f*r, -r, 0.0, -r)
	fmt.Fprintf(w, "%.3f %.3f %.3f %.3f %.3f %.3f c ", f*r, -r, r, -f*r, r, 0.0)
	fmt.Fprint(w, "S Q ")
}

// DrawCrosshair draws a centered crosshair of total length `length` at (x,y).
func DrawCrosshair(w io.Writer, x, y, length, lineWidth float64, strokeCol color.CMYK) {
	half := length / 2
	DrawLine(w, x-half, y, x+half, y, lineWidth, strokeCol)
	DrawLine(w, x, y-half, x, y+half, lineWidth, strokeCol)
}

// TextDescriptor positions a single line of text in a standard font.
type TextDescriptor struct {
	FontName string
	FontSize float64
	X, Y     float64
	FillCol  color.CMYK
	Text     string
}

// DrawText emits a single `Tj` text-showing operation for td, escaping PDF
// string delimiters. No font embedding: FontName must name a standard font
// already present in the page's /Font resource dictionary.
func DrawText(w io.Writer, td TextDescriptor) {
	fmt.Fprint(w, "q BT ")
	SetFillColor(w, td.FillCol)
	fmt.Fprintf(w, "/%s %.2f Tf %.2f %.2f Td (%s) Tj ET Q ", td.FontName, td.FontSize, td.X, td.Y, escape(td.Text))
}

func escape(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', ')', '\\':
			out = append(out, '\\', s[i])
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
