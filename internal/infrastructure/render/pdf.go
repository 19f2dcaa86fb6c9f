package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// Page geometry in points, letter portrait
const (
	pdfMargin        = 16.0
	logoCellWidth    = 135.0
	addressCellWidth = 155.0
	headerBandHeight = 66.0
	gridHeaderHeight = 20.0
	gridRowHeight    = 18.0
	gridLineWidth    = 1.5
)

// Column widths in percent of the printable width
var (
	totalsColumnPercents = []float64{24, 10, 7, 15, 9, 9, 8, 7, 8}
	gridColumnPercents   = []float64{24, 10, 14, 7, 9, 9, 8, 7, 8}
)

const (
	fontSans = "Helvetica"
	fontMono = "Courier"
)

// PDFRenderer draws the paginated invoice with gofpdf
type PDFRenderer struct {
	branding Branding
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(branding Branding) *PDFRenderer {
	return &PDFRenderer{branding: branding.withDefaults()}
}

// ContentType implements port.InvoiceRenderer
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Extension implements port.InvoiceRenderer
func (r *PDFRenderer) Extension() string {
	return entity.FormatPDF
}

// Render writes the invoice as a PDF. The header band, date range and
// totals appear once; the grid header repeats on every page.
func (r *PDFRenderer) Render(w io.Writer, doc *entity.InvoiceDocument) error {
	if doc == nil {
		return errors.New("render pdf: nil invoice document")
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle("Invoice "+doc.Invoice.InvoiceNumber, true)
	pdf.SetAuthor(r.branding.CompanyName, true)
	pdf.SetCreator("load-invoicing", true)
	pdf.AddPage()

	p := newPDFPage(pdf)
	p.headerBand(doc.Invoice, r.branding)
	p.dateRange(doc.Invoice)
	p.totalsStrip(doc.Invoice)
	p.grid(doc.Rows)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// textRun is a piece of text in one font, used to center mixed-font lines
type textRun struct {
	family string
	style  string
	size   float64
	text   string
}

type pdfPage struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	left   float64
	width  float64
	bottom float64
}

func newPDFPage(pdf *gofpdf.Fpdf) *pdfPage {
	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return &pdfPage{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		left:   left,
		width:  pageW - left - right,
		bottom: pageH - pdfMargin,
	}
}

func (p *pdfPage) textColor(hex string) {
	p.pdf.SetTextColor(hexRGB(hex))
}

func (p *pdfPage) fillColor(hex string) {
	p.pdf.SetFillColor(hexRGB(hex))
}

func (p *pdfPage) drawColor(hex string) {
	p.pdf.SetDrawColor(hexRGB(hex))
}

// fit translates s and shortens it with "..." until it fits w in the
// current font
func (p *pdfPage) fit(s string, w float64) string {
	s = p.tr(s)
	avail := w - 2*p.pdf.GetCellMargin()
	if avail <= 0 || p.pdf.GetStringWidth(s) <= avail {
		return s
	}
	for len(s) > 0 && p.pdf.GetStringWidth(s+"...") > avail {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// centeredRuns writes runs side by side, centered in [x, x+w)
func (p *pdfPage) centeredRuns(x, y, w, h float64, runs []textRun) {
	widths := make([]float64, len(runs))
	total := 0.0
	for i, run := range runs {
		p.pdf.SetFont(run.family, run.style, run.size)
		widths[i] = p.pdf.GetStringWidth(p.tr(run.text))
		total += widths[i]
	}

	cx := x + (w-total)/2
	if cx < x {
		cx = x
	}
	margin := p.pdf.GetCellMargin()
	p.pdf.SetCellMargin(0)
	for i, run := range runs {
		p.pdf.SetFont(run.family, run.style, run.size)
		p.pdf.SetXY(cx, y)
		p.pdf.CellFormat(widths[i], h, p.tr(run.text), "", 0, "L", false, 0, "")
		cx += widths[i]
	}
	p.pdf.SetCellMargin(margin)
}

func (p *pdfPage) headerBand(inv entity.InvoiceHeader, b Branding) {
	x, y := p.left, p.pdf.GetY()
	p.fillColor(colorBlack)
	p.pdf.Rect(x, y, p.width, headerBandHeight, "F")

	if iw, ih, ok := b.logoSize(); ok {
		p.logo(b.LogoPNG, iw, ih, x+10, y+6, 95, headerBandHeight-12)
	}

	centerX := x + logoCellWidth
	centerW := p.width - logoCellWidth - addressCellWidth

	p.textColor(colorWhite)
	lead := "Service Invoice  --  "
	leadW := p.sansWidth(lead, "B", 16.5)
	p.pdf.SetFont(fontMono, "B", 16.5)
	number := p.fitRaw(inv.InvoiceNumber, centerW-leadW)
	p.centeredRuns(centerX, y+8, centerW, 20, []textRun{
		{fontSans, "B", 16.5, lead},
		{fontMono, "B", 16.5, number},
	})

	p.textColor(colorPageYellow)
	p.pdf.SetFont(fontSans, "B", 12)
	p.pdf.SetXY(centerX, y+29)
	p.pdf.CellFormat(centerW, 16, p.fit(inv.ClientName, centerW), "", 0, "C", false, 0, "")

	p.textColor(colorWhite)
	p.pdf.SetFont(fontSans, "", 7.5)
	p.pdf.SetXY(centerX, y+47)
	p.pdf.CellFormat(centerW, 10, p.fit(b.ContactLine, centerW), "", 0, "C", false, 0, "")

	lines := b.addressBlock()
	const lineH = 10.0
	rightX := x + p.width - addressCellWidth
	rightW := addressCellWidth - 15
	ly := y + (headerBandHeight-lineH*float64(len(lines)))/2
	for i, line := range lines {
		style := ""
		if i == 0 {
			style = "B"
		}
		p.pdf.SetFont(fontSans, style, 8.25)
		p.pdf.SetXY(rightX, ly)
		p.pdf.CellFormat(rightW, lineH, p.fit(line, rightW), "", 0, "R", false, 0, "")
		ly += lineH
	}

	p.pdf.SetY(y + headerBandHeight)
}

func (p *pdfPage) sansWidth(s, style string, size float64) float64 {
	p.pdf.SetFont(fontSans, style, size)
	return p.pdf.GetStringWidth(p.tr(s))
}

// fitRaw shortens s to w in the current font, ignoring the cell margin.
// The result is still untranslated.
func (p *pdfPage) fitRaw(s string, w float64) string {
	if p.pdf.GetStringWidth(p.tr(s)) <= w {
		return s
	}
	cut := []rune(s)
	for len(cut) > 0 && p.pdf.GetStringWidth(p.tr(string(cut)+"...")) > w {
		cut = cut[:len(cut)-1]
	}
	return string(cut) + "..."
}

// logo draws the PNG scaled into a maxW x maxH box, vertically centered
func (p *pdfPage) logo(png []byte, iw, ih int, x, y, maxW, maxH float64) {
	w := maxW
	h := w * float64(ih) / float64(iw)
	if h > maxH {
		h = maxH
		w = h * float64(iw) / float64(ih)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(png))
	p.pdf.ImageOptions("logo", x, y+(maxH-h)/2, w, h, false, opts, 0, "")
}

func (p *pdfPage) dateRange(inv entity.InvoiceHeader) {
	const (
		h      = 26.0
		gap    = 10.0
		arrowW = 18.0
	)
	y := p.pdf.GetY() + 8

	label := "Date Range:"
	start, end := ShortDate(inv.StartDate), ShortDate(inv.EndDate)

	labelW := p.sansWidth(label, "B", 18.75)
	p.pdf.SetFont(fontMono, "B", 13.5)
	startW := p.pdf.GetStringWidth(p.tr(start))
	endW := p.pdf.GetStringWidth(p.tr(end))

	total := labelW + gap + startW + gap + arrowW + gap + endW
	x := p.left + (p.width-total)/2
	if x < p.left {
		x = p.left
	}

	p.textColor(colorInk)
	p.centeredRuns(x, y, labelW, h, []textRun{{fontSans, "B", 18.75, label}})
	x += labelW + gap
	p.centeredRuns(x, y, startW, h, []textRun{{fontMono, "B", 13.5, start}})
	x += startW + gap
	p.arrow(x, y+h/2, arrowW)
	x += arrowW + gap
	p.centeredRuns(x, y, endW, h, []textRun{{fontMono, "B", 13.5, end}})

	p.pdf.SetY(y + h + 4)
}

// arrow draws a right-pointing arrow; the core fonts have no arrow glyph
func (p *pdfPage) arrow(x, midY, w float64) {
	const head = 6.0
	p.drawColor(colorInk)
	p.fillColor(colorInk)
	p.pdf.SetLineWidth(1.2)
	p.pdf.Line(x, midY, x+w-head, midY)
	p.pdf.Polygon([]gofpdf.PointType{
		{X: x + w, Y: midY},
		{X: x + w - head, Y: midY - 3.5},
		{X: x + w - head, Y: midY + 3.5},
	}, "F")
}

func (p *pdfPage) columnWidths(percents []float64) []float64 {
	widths := make([]float64, len(percents))
	for i, pct := range percents {
		widths[i] = p.width * pct / 100
	}
	return widths
}

func (p *pdfPage) totalsStrip(inv entity.InvoiceHeader) {
	const h = 18.0
	widths := p.columnWidths(totalsColumnPercents)
	y := p.pdf.GetY() + 4

	x := p.left
	xs := make([]float64, len(widths))
	for i, w := range widths {
		xs[i] = x
		x += w
	}

	p.textColor(colorInk)
	p.centeredRuns(xs[3], y, widths[3], h, []textRun{
		{fontSans, "", 9, "Load Count "},
		{fontMono, "B", 9.75, strconv.Itoa(inv.LoadCount)},
	})
	p.centeredRuns(xs[5], y, widths[5], h, []textRun{
		{fontMono, "B", 9.75, FormatTons(inv.TonTotal)},
	})
	p.centeredRuns(xs[6], y, widths[6], h, []textRun{
		{fontMono, "B", 9.75, FormatMiles(int64(inv.MileTotal))},
	})
	p.centeredRuns(xs[8], y, widths[8], h, []textRun{
		{fontMono, "B", 9.75, FormatMoney(inv.TotalAmount)},
	})

	p.pdf.SetY(y + h + 6)
}

func (p *pdfPage) gridHeader(widths []float64) {
	p.pdf.SetLineWidth(gridLineWidth)
	p.drawColor(colorGridLine)
	p.fillColor(colorGridGray)
	p.textColor(colorInk)
	p.pdf.SetFont(fontSans, "B", 8.25)

	p.pdf.SetX(p.left)
	for i, title := range ColumnHeaders {
		p.pdf.CellFormat(widths[i], gridHeaderHeight, p.fit(title, widths[i]), "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(gridHeaderHeight)
}

func (p *pdfPage) grid(rows []entity.InvoiceRow) {
	widths := p.columnWidths(gridColumnPercents)
	p.gridHeader(widths)

	if len(rows) == 0 {
		p.pdf.SetFont(fontSans, "", 7.5)
		p.textColor(colorMuted)
		p.pdf.SetX(p.left)
		p.pdf.CellFormat(p.width, 28, "No rows for selected filters.", "1", 1, "C", false, 0, "")
		return
	}

	for _, row := range rows {
		if p.pdf.GetY()+gridRowHeight > p.bottom {
			p.pdf.AddPage()
			p.gridHeader(widths)
		}
		p.gridRow(widths, row)
	}
}

func (p *pdfPage) gridRow(widths []float64, row entity.InvoiceRow) {
	cells := []struct {
		text  string
		mono  bool
		align string
	}{
		{row.Job, false, "L"},
		{RowDate(row), true, "C"},
		{row.Driver, false, "L"},
		{row.LoadNumber, true, "C"},
		{row.BOL, true, "C"},
		{FormatTons(row.Tons), true, "C"},
		{FormatMiles(row.Miles), true, "C"},
		{FormatMoney(row.RatePerTon), true, "C"},
		{FormatMoney(row.LoadPay), true, "C"},
	}

	p.textColor(colorInk)
	p.pdf.SetX(p.left)
	for i, c := range cells {
		if c.mono {
			p.pdf.SetFont(fontMono, "", 7.5)
		} else {
			p.pdf.SetFont(fontSans, "", 7.5)
		}
		p.pdf.CellFormat(widths[i], gridRowHeight, p.fit(c.text, widths[i]), "1", 0, c.align, false, 0, "")
	}
	p.pdf.Ln(gridRowHeight)
}

var _ port.InvoiceRenderer = (*PDFRenderer)(nil)
