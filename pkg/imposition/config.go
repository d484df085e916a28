// Package imposition is the core of the system: given a source PDF's page
// geometry and an ImpositionConfig, it plans a sheet layout, resolves bleed,
// solves cell positions, mirrors for duplex, places marks, and assembles the
// output PDF. Nothing here touches a network socket or a filesystem path;
// every entry point is a pure function of its inputs.
package imposition

import (
	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/geom"
)

// Orientation is the sheet's long-axis preference.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// ImpositionMode selects how source pages are assigned to grid cells.
type ImpositionMode string

const (
	StepAndRepeat       ImpositionMode = "step_and_repeat"
	BookletSaddleStitch ImpositionMode = "booklet_saddle_stitch"
	BookletPerfectBind  ImpositionMode = "booklet_perfect_bind"
	CutAndStack         ImpositionMode = "cut_and_stack"
)

// FlipEdge is the physical edge a sheet rotates around for duplex printing.
type FlipEdge string

const (
	FlipLong  FlipEdge = "long"
	FlipShort FlipEdge = "short"
)

// MarkColor names one of the two fixed mark colors.
type MarkColor string

const (
	ColorRegistration MarkColor = "registration"
	ColorBlackOnly    MarkColor = "black_only"
)

// SlugToken is one recognized entry of MarkConfig.SlugTextContent.
type SlugToken string

const (
	SlugFilename     SlugToken = "filename"
	SlugDate         SlugToken = "date"
	SlugSheetNumber  SlugToken = "sheet_number"
	SlugColorProfile SlugToken = "color_profile"
)

// BleedConfig is the four configured outer-bleed lengths, in millimetres.
// Uniform is informational only, consumed by a UI this package never sees.
type BleedConfig struct {
	Top     float64 `json:"top" yaml:"top"`
	Bottom  float64 `json:"bottom" yaml:"bottom"`
	Left    float64 `json:"left" yaml:"left"`
	Right   float64 `json:"right" yaml:"right"`
	Uniform bool    `json:"uniform" yaml:"uniform"`
}

// ToEdgeBleed reshapes the config into the four-valued tagged form the
// Bleed Resolver and Position Solver operate on.
func (b BleedConfig) ToEdgeBleed() EdgeBleed {
	return EdgeBleed{Top: b.Top, Bottom: b.Bottom, Left: b.Left, Right: b.Right}
}

// MarkConfig toggles and parameterizes each mark kind.
type MarkConfig struct {
	CropMarksEnabled     bool      `json:"crop_marks_enabled" yaml:"crop_marks_enabled"`
	CropMarkLength       float64   `json:"crop_mark_length" yaml:"crop_mark_length"`
	CropMarkOffset       float64   `json:"crop_mark_offset" yaml:"crop_mark_offset"`
	CropMarkStrokeWeight float64   `json:"crop_mark_stroke_weight" yaml:"crop_mark_stroke_weight"`
	CropMarkColor        MarkColor `json:"crop_mark_color" yaml:"crop_mark_color"`

	RegistrationMarksEnabled bool `json:"registration_marks_enabled" yaml:"registration_marks_enabled"`

	ColorBarsEnabled bool `json:"color_bars_enabled" yaml:"color_bars_enabled"`

	FoldMarksEnabled bool `json:"fold_marks_enabled" yaml:"fold_marks_enabled"`

	SlugInfoEnabled bool        `json:"slug_info_enabled" yaml:"slug_info_enabled"`
	SlugTextContent []SlugToken `json:"slug_text_content" yaml:"slug_text_content"`
}

// DefaultMarkConfig mirrors the original implementation's field defaults.
func DefaultMarkConfig() MarkConfig {
	return MarkConfig{
		CropMarksEnabled:         true,
		CropMarkLength:           5.0,
		CropMarkOffset:           3.0,
		CropMarkStrokeWeight:     0.25,
		CropMarkColor:            ColorRegistration,
		RegistrationMarksEnabled: true,
		ColorBarsEnabled:         false,
		FoldMarksEnabled:         false,
		SlugInfoEnabled:          true,
		SlugTextContent:          []SlugToken{SlugFilename, SlugDate, SlugSheetNumber},
	}
}

// SheetConfig describes the physical press sheet.
type SheetConfig struct {
	SheetWidth  float64     `json:"sheet_width" yaml:"sheet_width"`
	SheetHeight float64     `json:"sheet_height" yaml:"sheet_height"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
	GripEdge    float64     `json:"grip_edge" yaml:"grip_edge"`
	MarkMargin  float64     `json:"mark_margin" yaml:"mark_margin"`
}

// DefaultSheetConfig mirrors the original backend's SheetConfig defaults.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		SheetWidth:  488.0,
		SheetHeight: 330.0,
		Orientation: Landscape,
		GripEdge:    0,
		MarkMargin:  10.0,
	}
}

// Oriented returns the sheet's (width, height) with the configured
// orientation applied: landscape forces width >= height, portrait the
// reverse.
func (s SheetConfig) Oriented() (w, h float64) {
	w, h = s.SheetWidth, s.SheetHeight
	switch s.Orientation {
	case Landscape:
		if w < h {
			w, h = h, w
		}
	case Portrait:
		if w > h {
			w, h = h, w
		}
	}
	return w, h
}

// ImpositionConfig is the complete input to a layout/assembly job.
type ImpositionConfig struct {
	Mode            ImpositionMode `json:"mode" yaml:"mode"`
	TrimWidth       float64        `json:"trim_width" yaml:"trim_width"`
	TrimHeight      float64        `json:"trim_height" yaml:"trim_height"`
	Bleed           BleedConfig    `json:"bleed" yaml:"bleed"`
	Marks           MarkConfig     `json:"marks" yaml:"marks"`
	Sheet           SheetConfig    `json:"sheet" yaml:"sheet"`
	GapBetweenItems float64        `json:"gap_between_items" yaml:"gap_between_items"`
	Duplex          bool           `json:"duplex" yaml:"duplex"`
	FlipEdge        FlipEdge       `json:"flip_edge" yaml:"flip_edge"`
	AutoRotate      bool           `json:"auto_rotate" yaml:"auto_rotate"`
	CreepAdjustment float64        `json:"creep_adjustment" yaml:"creep_adjustment"`
}

// ErrInvalidConfig is returned, wrapped with detail, for any numeric
// config field that can't be negative.
var ErrInvalidConfig = errors.New("invalid imposition config")

// Validate rejects negative sizes, bleed, or gap, per §7's InvalidConfig
// kind; it does not check trim-vs-sheet fit, which is the planner's job.
func (c ImpositionConfig) Validate() error {
	if c.TrimWidth <= 0 || c.TrimHeight <= 0 {
		return errors.Wrap(ErrInvalidConfig, "trim_width and trim_height must be positive")
	}
	for name, v := range map[string]float64{
		"bleed.top": c.Bleed.Top, "bleed.bottom": c.Bleed.Bottom,
		"bleed.left": c.Bleed.Left, "bleed.right": c.Bleed.Right,
		"gap_between_items": c.GapBetweenItems,
		"sheet_width":        c.Sheet.SheetWidth,
		"sheet_height":       c.Sheet.SheetHeight,
		"mark_margin":        c.Sheet.MarkMargin,
		"grip_edge":          c.Sheet.GripEdge,
	} {
		if v < 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be non-negative, got %.4f", name, v)
		}
	}
	return nil
}

// PageGeometry is the immutable per-source-page record the Analyzer
// produces once at upload time.
type PageGeometry struct {
	PageIndex        int
	MediaBox         geom.Rectangle
	TrimBox          *geom.Rectangle
	BleedBox         *geom.Rectangle
	ArtBox           *geom.Rectangle
	DetectedBleed    EdgeBleed
	HasExistingMarks bool
}

// EffectiveTrimBox returns TrimBox if present, else MediaBox — the
// fallback used throughout the pipeline whenever a concrete trim rectangle
// is required.
func (p PageGeometry) EffectiveTrimBox() geom.Rectangle {
	if p.TrimBox != nil {
		return *p.TrimBox
	}
	return p.MediaBox
}
