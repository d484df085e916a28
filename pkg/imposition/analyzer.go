package imposition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/geom"
	"github.com/sheetwright/imposer/pkg/pdfdoc"
)

// AnalysisResult is the Source Analyzer's one-shot, immutable output.
type AnalysisResult struct {
	Pages    []PageGeometry
	Warnings []Warning
}

// AnalyzeSource opens a source PDF and derives one PageGeometry per page,
// accumulating non-fatal warnings (NoTrimBox, MixedPageSizes). Encrypted or
// zero-page sources fail outright.
func AnalyzeSource(data []byte) (*AnalysisResult, error) {
	src, err := pdfdoc.OpenSource(data)
	if err != nil {
		switch {
		case errors.Is(err, pdfdoc.ErrEncrypted):
			return nil, errors.Wrap(ErrEncrypted, "analyzing source")
		case errors.Is(err, pdfdoc.ErrNoPages):
			return nil, errors.Wrap(ErrNoPages, "analyzing source")
		default:
			return nil, errors.Wrap(err, "opening source PDF")
		}
	}

	pages := make([]PageGeometry, len(src.Pages))
	var warnings []Warning
	var firstW, firstH float64

	for i, sp := range src.Pages {
		if sp.MediaBox.Width <= 0 || sp.MediaBox.Height <= 0 {
			return nil, errors.Wrapf(ErrMalformedBox, "page %d", i+1)
		}

		media := toMM(sp.MediaBox)
		var trim, bleed, art *geom.Rectangle
		if sp.TrimBox != nil {
			t := toMM(*sp.TrimBox)
			trim = &t
		}
		if sp.BleedBox != nil {
			b := toMM(*sp.BleedBox)
			bleed = &b
		}
		if sp.ArtBox != nil {
			a := toMM(*sp.ArtBox)
			art = &a
		}

		if trim == nil {
			warnings = append(warnings, Warning{
				Kind:    WarnNoTrimBox,
				Message: fmt.Sprintf("page %d: no TrimBox found, using MediaBox", i+1),
			})
		}

		if i == 0 {
			firstW, firstH = round1(media.Width), round1(media.Height)
		} else if round1(media.Width) != firstW || round1(media.Height) != firstH {
			warnings = append(warnings, Warning{
				Kind:    WarnMixedPageSizes,
				Message: fmt.Sprintf("page %d size (%.1fx%.1f mm) differs from page 1", i+1, media.Width, media.Height),
			})
		}

		pages[i] = PageGeometry{
			PageIndex:        i,
			MediaBox:         media,
			TrimBox:          trim,
			BleedBox:         bleed,
			ArtBox:           art,
			DetectedBleed:    detectBleed(media, trim, bleed),
			HasExistingMarks: detectExistingMarks(media, trim, sp.Content),
		}
	}

	return &AnalysisResult{Pages: pages, Warnings: warnings}, nil
}

func toMM(r geom.Rectangle) geom.Rectangle {
	return geom.NewRectangle(geom.PtToMm(r.X), geom.PtToMm(r.Y), geom.PtToMm(r.Width), geom.PtToMm(r.Height))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// detectBleed implements §4.1's three-way rule: both boxes present, trim
// alone, or neither.
func detectBleed(media geom.Rectangle, trim, bleed *geom.Rectangle) EdgeBleed {
	if trim != nil && bleed != nil {
		return EdgeBleed{
			Top:    math.Max(0, bleed.Top()-trim.Top()),
			Bottom: math.Max(0, trim.Bottom()-bleed.Bottom()),
			Left:   math.Max(0, trim.Left()-bleed.Left()),
			Right:  math.Max(0, bleed.Right()-trim.Right()),
		}
	}
	if trim != nil {
		clamp := func(v float64) float64 {
			if v < 0 || v > 10 {
				return 0
			}
			return v
		}
		return EdgeBleed{
			Top:    clamp(media.Top() - trim.Top()),
			Bottom: clamp(trim.Bottom() - media.Bottom()),
			Left:   clamp(trim.Left() - media.Left()),
			Right:  clamp(media.Right() - trim.Right()),
		}
	}
	return EdgeBleed{}
}

func marginsAround(media, trim geom.Rectangle) EdgeBleed {
	return EdgeBleed{
		Top:    media.Top() - trim.Top(),
		Bottom: trim.Bottom() - media.Bottom(),
		Left:   trim.Left() - media.Left(),
		Right:  media.Right() - trim.Right(),
	}
}

var (
	reStrokeWidth = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+w\b`)
	reMoveLine    = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)\s+m\s+(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)\s+l\b`)
)

// detectExistingMarks is an advisory heuristic only (§4.1): it never
// blocks imposition, it only informs the "marks already present" hint
// a caller may show the user.
func detectExistingMarks(media geom.Rectangle, trim *geom.Rectangle, content []byte) bool {
	if trim == nil {
		return false
	}
	m := marginsAround(media, *trim)
	maxMargin := math.Max(math.Max(m.Top, m.Bottom), math.Max(m.Left, m.Right))
	if maxMargin < 1.0 {
		return false
	}
	if countCropMarkLikeSegments(content, *trim) >= 4 {
		return true
	}
	minMargin := math.Min(math.Min(m.Top, m.Bottom), math.Min(m.Left, m.Right))
	return minMargin > 8.0
}

func countCropMarkLikeSegments(content []byte, trim geom.Rectangle) int {
	hasThinWidth := false
	for _, w := range reStrokeWidth.FindAllSubmatch(content, -1) {
		if v, err := strconv.ParseFloat(string(w[1]), 64); err == nil && v >= 0.05 && v <= 1.0 {
			hasThinWidth = true
			break
		}
	}
	if !hasThinWidth {
		return 0
	}

	corners := []geom.Point{
		{X: trim.Left(), Y: trim.Bottom()},
		{X: trim.Right(), Y: trim.Bottom()},
		{X: trim.Left(), Y: trim.Top()},
		{X: trim.Right(), Y: trim.Top()},
	}

	count := 0
	for _, seg := range reMoveLine.FindAllSubmatch(content, -1) {
		x1, _ := strconv.ParseFloat(string(seg[1]), 64)
		y1, _ := strconv.ParseFloat(string(seg[2]), 64)
		x2, _ := strconv.ParseFloat(string(seg[3]), 64)
		y2, _ := strconv.ParseFloat(string(seg[4]), 64)
		x1, y1, x2, y2 = geom.PtToMm(x1), geom.PtToMm(y1), geom.PtToMm(x2), geom.PtToMm(y2)

		axisAligned := math.Abs(x1-x2) < 0.01 || math.Abs(y1-y2) < 0.01
		length := math.Hypot(x2-x1, y2-y1)
		if !axisAligned || length < 2 || length > 20 {
			continue
		}

		near := false
		for _, c := range corners {
			if math.Hypot(x1-c.X, y1-c.Y) <= 20 || math.Hypot(x2-c.X, y2-c.Y) <= 20 {
				near = true
				break
			}
		}
		if near {
			count++
		}
	}
	return count
}
