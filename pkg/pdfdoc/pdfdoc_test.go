package pdfdoc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheetwright/imposer/pkg/geom"
)

func TestWriteThenOpenRoundTrip(t *testing.T) {
	doc := NewDocument()
	media := geom.NewRectangle(0, 0, geom.MmToPt(320), geom.MmToPt(450))
	pb := doc.AddPage(media)
	pb.Write([]byte("q 1 0 0 1 0 0 cm Q"))

	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	src, err := OpenSource(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, src.Pages, 1)

	got := src.Pages[0].MediaBox
	require.InDelta(t, media.Width, got.Width, 0.01)
	require.InDelta(t, media.Height, got.Height, 0.01)
	require.Contains(t, string(src.Pages[0].Content), "cm Q")
}

func TestWriteThenOpenMultiplePages(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 3; i++ {
		pb := doc.AddPage(geom.NewRectangle(0, 0, 200, 300))
		pb.Write([]byte("1 0 0 1 0 0 cm"))
	}
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	src, err := OpenSource(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, src.Pages, 3)
}

func TestImportPageAsFormDeduplicates(t *testing.T) {
	// Build a tiny one-page source document, with a named resource so the
	// deep-copy path through a Dict-valued (not just Ref-valued) Resources
	// entry is exercised.
	srcDoc := NewDocument()
	srcPage := srcDoc.AddPage(geom.NewRectangle(0, 0, 100, 140))
	fontRef := srcDoc.AddDict(Dict{"Type": Name("Font"), "Subtype": Name("Type1"), "BaseFont": Name("Helvetica")})
	srcPage.UseFont("F1", fontRef)
	srcPage.Write([]byte("BT /F1 12 Tf (hi) Tj ET"))

	var srcBuf bytes.Buffer
	_, err := srcDoc.WriteTo(&srcBuf)
	require.NoError(t, err)

	src, err := OpenSource(srcBuf.Bytes())
	require.NoError(t, err)
	require.Len(t, src.Pages, 1)

	out := NewDocument()
	ref1, trim1, err := out.ImportPageAsForm(src, 0)
	require.NoError(t, err)
	ref2, _, err := out.ImportPageAsForm(src, 0)
	require.NoError(t, err)
	require.Equal(t, ref1, ref2, "repeated imports of the same source page must share one Form XObject")
	require.InDelta(t, 100, trim1.Width, 0.01)
	require.InDelta(t, 140, trim1.Height, 0.01)

	sheet := out.AddPage(geom.NewRectangle(0, 0, 400, 500))
	sheet.UseXObject("Fm1", ref1)
	sheet.Write([]byte("q 1 0 0 1 10 10 cm /Fm1 Do Q"))

	var outBuf bytes.Buffer
	_, err = out.WriteTo(&outBuf)
	require.NoError(t, err)

	reopened, err := OpenSource(outBuf.Bytes())
	require.NoError(t, err)
	require.Len(t, reopened.Pages, 1)
	require.Contains(t, string(reopened.Pages[0].Content), "Do")
}

func TestOpenSourceRejectsEncrypted(t *testing.T) {
	doc := NewDocument()
	doc.AddPage(geom.NewRectangle(0, 0, 100, 100))
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	// Splice an /Encrypt entry into the trailer dict. Inserting bytes here
	// is safe: every earlier offset (objects, xref table) was fixed before
	// the trailer was written, so this can't shift anything OpenSource
	// needs to locate via startxref.
	raw := buf.Bytes()
	marker := []byte("trailer\n<< ")
	idx := bytes.Index(raw, marker)
	require.GreaterOrEqual(t, idx, 0)
	insertAt := idx + len(marker)
	patched := append(append(append([]byte{}, raw[:insertAt]...), []byte("/Encrypt 9 0 R ")...), raw[insertAt:]...)

	_, err = OpenSource(patched)
	require.Error(t, err)
	require.Contains(t, err.Error(), "encrypted")
}
