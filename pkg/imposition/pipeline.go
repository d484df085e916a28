package imposition

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/pdfdoc"
)

// Result is the Pipeline Orchestrator's output.
type Result struct {
	Document *pdfdoc.Document
	Analysis *AnalysisResult
}

// Impose runs the full core pipeline end to end: validate, analyze, plan,
// then per sheet build/resolve/solve/mark/assemble, mirroring for duplex
// and saddle-stitch backs. filename and now feed the slug text mark; now is
// supplied by the caller rather than read here, since this package has no
// ambient clock.
func Impose(data []byte, cfg ImpositionConfig, filename string, now time.Time) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	analysis, err := AnalyzeSource(data)
	if err != nil {
		return nil, err
	}
	pageCount := len(analysis.Pages)

	sheetW, sheetH := cfg.Sheet.Oriented()
	bleed := cfg.Bleed.ToEdgeBleed()
	if cfg.TrimWidth+bleed.Left+bleed.Right > sheetW || cfg.TrimHeight+bleed.Top+bleed.Bottom > sheetH {
		return nil, errors.Wrap(ErrTrimExceedsSheet, "planning layout")
	}

	layout := PlanLayout(cfg, pageCount)
	if layout.NUp == 0 {
		return nil, errors.Wrap(ErrZeroNUp, "planning layout")
	}

	src, err := pdfdoc.OpenSource(data)
	if err != nil {
		return nil, errors.Wrap(ErrAssemblyFailure, err.Error())
	}

	doc := pdfdoc.NewDocument()
	doc.SetMetadata(filename, "sheetwright/imposer")

	// Saddle-stitch signatures are two-sided by construction (buildSaddleStitchGrid
	// has no duplex gate of its own), so that mode always produces a back
	// page regardless of the Duplex toggle; other modes respect it directly.
	producesBacks := cfg.Duplex || cfg.Mode == BookletSaddleStitch

	for sheetIndex := 0; sheetIndex < layout.TotalSheets; sheetIndex++ {
		front := layout.Clone()
		BuildGrid(front, cfg, pageCount, sheetIndex, Front)
		ResolveBleed(front, cfg)
		SolvePositions(front, cfg)
		frontMarks := PlaceAllMarks(front, cfg, sheetIndex, layout.TotalSheets, filename, now)
		if err := AssembleSheet(doc, src, front, cfg, frontMarks); err != nil {
			return nil, errors.Wrap(ErrAssemblyFailure, err.Error())
		}

		if !producesBacks {
			continue
		}

		back := MirrorForDuplex(layout, cfg.FlipEdge)
		BuildGrid(back, cfg, pageCount, sheetIndex, Back)
		ResolveBleed(back, cfg)
		SolvePositions(back, cfg)
		backMarks := PlaceAllMarks(back, cfg, sheetIndex, layout.TotalSheets, filename, now)
		if err := AssembleSheet(doc, src, back, cfg, backMarks); err != nil {
			return nil, errors.Wrap(ErrAssemblyFailure, err.Error())
		}
	}

	return &Result{Document: doc, Analysis: analysis}, nil
}
