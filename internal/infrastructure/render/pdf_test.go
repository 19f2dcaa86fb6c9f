package render

import (
	"bytes"
	"testing"

	"github.com/gen2brain/go-fitz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

func renderPDF(t *testing.T, r *PDFRenderer, doc *entity.InvoiceDocument) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, doc))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	return buf.Bytes()
}

func pageTexts(t *testing.T, data []byte) []string {
	t.Helper()
	doc, err := fitz.NewFromMemory(data)
	require.NoError(t, err)
	defer doc.Close()

	texts := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		require.NoError(t, err)
		texts = append(texts, text)
	}
	return texts
}

func TestPDFRenderer_Metadata(t *testing.T) {
	r := NewPDFRenderer(DefaultBranding())
	assert.Equal(t, "pdf", r.Extension())
	assert.Equal(t, "application/pdf", r.ContentType())
}

func TestPDFRenderer_SinglePage(t *testing.T) {
	pages := pageTexts(t, renderPDF(t, NewPDFRenderer(DefaultBranding()), sampleDocument(3)))
	require.Len(t, pages, 1)

	text := pages[0]
	for _, want := range []string{
		"Service Invoice",
		"240613-7",
		"Acme Sand & Gravel",
		"invoices@voldhaul.com",
		"Voldhaul LLC",
		"ARTESIA, NM 88210",
		"Date Range:",
		"06/01/24",
		"06/30/24",
		"Load Count",
		"15.00",
		"120",
		"$1,130.50",
		"Well/Job",
		"Load Pay",
		"06/01/2024",
		"Ann Lee",
		"L-3",
		"$100.00",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "No rows for selected filters.")
}

func TestPDFRenderer_GridHeaderRepeatsOnNewPages(t *testing.T) {
	pages := pageTexts(t, renderPDF(t, NewPDFRenderer(DefaultBranding()), sampleDocument(80)))
	require.Len(t, pages, 3)

	assert.Contains(t, pages[0], "Date Range:")
	for _, page := range pages[1:] {
		assert.Contains(t, page, "Well/Job")
		assert.Contains(t, page, "Rate/Ton")
		assert.NotContains(t, page, "Date Range:")
		assert.NotContains(t, page, "Service Invoice")
		assert.NotContains(t, page, "Load Count")
	}
	assert.Contains(t, pages[2], "L-80")
}

func TestPDFRenderer_NoRows(t *testing.T) {
	pages := pageTexts(t, renderPDF(t, NewPDFRenderer(DefaultBranding()), sampleDocument(0)))
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "No rows for selected filters.")
	assert.Contains(t, pages[0], "Well/Job")
}

func TestPDFRenderer_WithLogo(t *testing.T) {
	branding := DefaultBranding()
	branding.LogoPNG = testLogo(t)
	renderPDF(t, NewPDFRenderer(branding), sampleDocument(1))
}

func TestPDFRenderer_LongTextIsTruncated(t *testing.T) {
	doc := sampleDocument(1)
	doc.Rows[0].Job = "A very long well pad name that cannot possibly fit inside the first grid column"

	pages := pageTexts(t, renderPDF(t, NewPDFRenderer(DefaultBranding()), doc))
	assert.Contains(t, pages[0], "A very long")
	assert.NotContains(t, pages[0], "first grid column")
}

func TestPDFRenderer_NilDocument(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewPDFRenderer(DefaultBranding()).Render(&buf, nil))
}
