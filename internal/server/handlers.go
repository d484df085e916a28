package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/imposition"
	"github.com/sheetwright/imposer/pkg/presets"
)

// ErrSessionNotFound is returned when a session_id doesn't resolve in the
// cache — either it was never issued, or it aged out of the bounded LRU.
var ErrSessionNotFound = errors.New("session not found; please re-upload the PDF")

type uploadResponse struct {
	SessionID string                      `json:"session_id"`
	Filename  string                      `json:"filename"`
	PageCount int                         `json:"page_count"`
	Pages     []imposition.PageGeometry   `json:"pages"`
	Warnings  []imposition.Warning        `json:"warnings"`
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return echo.NewHTTPError(http.StatusBadRequest, "only PDF files are accepted")
	}

	f, err := fh.Open()
	if err != nil {
		return httpError(errors.Wrap(err, "opening uploaded file"))
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return httpError(errors.Wrap(err, "reading uploaded file"))
	}
	if buf.Len() == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty file uploaded")
	}

	analysis, err := imposition.AnalyzeSource(buf.Bytes())
	if err != nil {
		return httpError(err)
	}

	id := uuid.NewString()
	s.sessions.Put(&session{
		id:       id,
		filename: fh.Filename,
		pdfBytes: buf.Bytes(),
		analysis: analysis,
	})

	return c.JSON(http.StatusOK, uploadResponse{
		SessionID: id,
		Filename:  fh.Filename,
		PageCount: len(analysis.Pages),
		Pages:     analysis.Pages,
		Warnings:  analysis.Warnings,
	})
}

type previewResponse struct {
	Layout          *imposition.ImpositionLayout `json:"layout"`
	Marks           []imposition.MarkObject      `json:"marks"`
	SheetWidthMm    float64                      `json:"sheet_width_mm"`
	SheetHeightMm   float64                      `json:"sheet_height_mm"`
	EffectiveTrimW  float64                      `json:"effective_trim_w"`
	EffectiveTrimH  float64                      `json:"effective_trim_h"`
	PageCount       int                          `json:"page_count"`
}

// handlePreview computes the front grid of sheet 0 without assembling any
// PDF bytes — the cheap half of the pipeline, for a live layout preview.
func (s *Server) handlePreview(c echo.Context) error {
	cfg, sess, err := s.bindSessionRequest(c)
	if err != nil {
		return httpError(err)
	}

	trimW, trimH := cfg.TrimWidth, cfg.TrimHeight
	if trimW == 0 || trimH == 0 {
		if len(sess.analysis.Pages) > 0 {
			pg := sess.analysis.Pages[0]
			box := pg.EffectiveTrimBox()
			trimW, trimH = box.Width, box.Height
			cfg.TrimWidth, cfg.TrimHeight = trimW, trimH
		}
	}

	if err := cfg.Validate(); err != nil {
		return httpError(err)
	}

	pageCount := len(sess.analysis.Pages)
	layout := imposition.PlanLayout(cfg, pageCount)
	if layout.NUp == 0 {
		return httpError(imposition.ErrZeroNUp)
	}

	imposition.BuildGrid(layout, cfg, pageCount, 0, imposition.Front)
	imposition.ResolveBleed(layout, cfg)
	imposition.SolvePositions(layout, cfg)
	marks := imposition.PlaceAllMarks(layout, cfg, 0, layout.TotalSheets, sess.filename, time.Now())

	sheetW, sheetH := cfg.Sheet.Oriented()

	return c.JSON(http.StatusOK, previewResponse{
		Layout:         layout,
		Marks:          marks,
		SheetWidthMm:   sheetW,
		SheetHeightMm:  sheetH,
		EffectiveTrimW: layout.EffTrimWidth,
		EffectiveTrimH: layout.EffTrimHeight,
		PageCount:      pageCount,
	})
}

// handleImpose runs the full pipeline and streams back the imposed PDF.
func (s *Server) handleImpose(c echo.Context) error {
	cfg, sess, err := s.bindSessionRequest(c)
	if err != nil {
		return httpError(err)
	}

	result, err := imposition.Impose(sess.pdfBytes, cfg, sess.filename, time.Now())
	if err != nil {
		return httpError(errors.Wrap(err, "imposition failed"))
	}

	var buf bytes.Buffer
	if _, err := result.Document.WriteTo(&buf); err != nil {
		return httpError(errors.Wrap(err, "writing imposed PDF"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="imposed_`+sess.filename+`"`)
	return c.Stream(http.StatusOK, "application/pdf", &buf)
}

func (s *Server) handleGetPDF(c echo.Context) error {
	id := c.Param("session_id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return httpError(ErrSessionNotFound)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Stream(http.StatusOK, "application/pdf", bytes.NewReader(sess.pdfBytes))
}

func (s *Server) handleListPresets(c echo.Context) error {
	all, err := s.presets.List()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"presets": all})
}

func (s *Server) handleGetPreset(c echo.Context) error {
	p, err := s.presets.Get(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleSavePreset(c echo.Context) error {
	var p presets.Preset
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid preset body")
	}
	saved, err := s.presets.Save(p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "saved", "name": saved.Name})
}

// bindSessionRequest decodes an ImpositionConfig request body — the whole
// body is the config, session_id travels as a query parameter, matching
// the original backend's `preview_imposition(session_id: str, config:
// ImpositionConfig)` split between query and body — and resolves the
// session it names.
func (s *Server) bindSessionRequest(c echo.Context) (imposition.ImpositionConfig, *session, error) {
	var cfg imposition.ImpositionConfig
	if err := c.Bind(&cfg); err != nil {
		return cfg, nil, errors.Wrap(imposition.ErrInvalidConfig, "decoding request body")
	}
	sess, ok := s.sessions.Get(c.QueryParam("session_id"))
	if !ok {
		return cfg, nil, ErrSessionNotFound
	}
	return cfg, sess, nil
}
