package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheetwright/imposer/pkg/geom"
	"github.com/sheetwright/imposer/pkg/imposition"
	"github.com/sheetwright/imposer/pkg/pdfdoc"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New("127.0.0.1", "0", t.TempDir())
	require.NoError(t, err)
	return s
}

func buildTestPDF(t *testing.T) []byte {
	t.Helper()
	doc := pdfdoc.NewDocument()
	pb := doc.AddPage(geom.NewRectangle(0, 0, geom.MmToPt(210), geom.MmToPt(297)))
	pb.Write([]byte("q 1 0 0 1 0 0 cm Q"))
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadTestPDF(t *testing.T, s *Server) string {
	t.Helper()
	data := buildTestPDF(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "flyer.pdf")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echoContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.PageCount)
	return resp.SessionID
}

const echoContentType = "Content-Type"

func TestHandleUploadRejectsNonPDF(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echoContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadThenGetPDFRoundTrips(t *testing.T) {
	s := newTestServer(t)
	sessionID := uploadTestPDF(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/"+sessionID, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "%PDF")
}

func TestGetPDFUnknownSessionReturns404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewAndImposeAfterUpload(t *testing.T) {
	s := newTestServer(t)
	sessionID := uploadTestPDF(t, s)

	cfg := imposition.ImpositionConfig{
		Mode:       imposition.StepAndRepeat,
		TrimWidth:  85,
		TrimHeight: 55,
		Bleed:      imposition.BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
		Marks:      imposition.DefaultMarkConfig(),
		Sheet:      imposition.DefaultSheetConfig(),
	}
	cfgBytes, err := json.Marshal(cfg)
	require.NoError(t, err)

	previewReq := httptest.NewRequest(http.MethodPost, "/api/preview?session_id="+sessionID, bytes.NewReader(cfgBytes))
	previewReq.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, previewReq)
	require.Equal(t, http.StatusOK, rec.Code)

	// Only the layout is decoded: marks carry an interface-typed Props that
	// encoding/json cannot unmarshal into.
	var preview struct {
		Layout *imposition.ImpositionLayout `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Greater(t, preview.Layout.NUp, 0)

	imposeReq := httptest.NewRequest(http.MethodPost, "/api/impose?session_id="+sessionID, bytes.NewReader(cfgBytes))
	imposeReq.Header.Set(echoContentType, "application/json")
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, imposeReq)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "%PDF")
}

func TestPreviewUnknownSessionReturns404(t *testing.T) {
	s := newTestServer(t)
	cfgBytes, _ := json.Marshal(imposition.ImpositionConfig{TrimWidth: 10, TrimHeight: 10})

	req := httptest.NewRequest(http.MethodPost, "/api/preview?session_id=ghost", bytes.NewReader(cfgBytes))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndGetPresets(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/presets/list", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "business_card_sra3")

	req = httptest.NewRequest(http.MethodGet, "/api/presets/business_card_sra3", nil)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "step_and_repeat")
}

func TestSavePresetThenFetchIt(t *testing.T) {
	s := newTestServer(t)

	cfg := imposition.ImpositionConfig{
		Mode:       imposition.CutAndStack,
		TrimWidth:  210,
		TrimHeight: 297,
		Bleed:      imposition.BleedConfig{Top: 3, Bottom: 3, Left: 3, Right: 3},
		Marks:      imposition.DefaultMarkConfig(),
		Sheet:      imposition.DefaultSheetConfig(),
	}
	body, err := json.Marshal(map[string]interface{}{
		"name":   "SavedPreset",
		"config": cfg,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/presets/save", bytes.NewReader(body))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/presets/SavedPreset", nil)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cut_and_stack")
}
