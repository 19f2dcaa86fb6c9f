package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only worksheet of the workbook
const SheetName = "Invoice"

// Sheet layout
const (
	headerRow    = 8
	firstDataRow = headerRow + 1
	moneyFormat  = "$#,##0.00"
	logoHeightPx = 70.0
	// excelize built-in number formats
	numFmtInteger = 1 // 0
	numFmtFixed2  = 2 // 0.00
)

var sheetColumnWidths = []float64{28, 14, 22, 12, 18, 10, 10, 12, 14}

// XLSXRenderer builds the invoice workbook with excelize
type XLSXRenderer struct {
	branding Branding
}

// NewXLSXRenderer creates a spreadsheet renderer
func NewXLSXRenderer(branding Branding) *XLSXRenderer {
	return &XLSXRenderer{branding: branding.withDefaults()}
}

// ContentType implements port.InvoiceRenderer
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements port.InvoiceRenderer
func (r *XLSXRenderer) Extension() string {
	return entity.FormatXLSX
}

// Render writes the invoice workbook to w
func (r *XLSXRenderer) Render(w io.Writer, doc *entity.InvoiceDocument) error {
	if doc == nil {
		return errors.New("render xlsx: nil invoice document")
	}

	f := excelize.NewFile()
	defer f.Close()

	s := &sheetWriter{f: f, name: SheetName}
	s.err = f.SetSheetName(f.GetSheetName(0), SheetName)

	s.pageSetup()
	s.headerBand(doc.Invoice, r.branding)
	s.dateRange(doc.Invoice)
	s.totals(doc.Invoice)
	lastRow := s.grid(doc.Rows)
	s.printArea(lastRow)

	if s.err != nil {
		return fmt.Errorf("render xlsx: %w", s.err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return nil
}

// sheetWriter keeps the first excelize error so layout code reads straight
type sheetWriter struct {
	f    *excelize.File
	name string
	err  error
}

func (s *sheetWriter) do(fn func() error) {
	if s.err == nil {
		s.err = fn()
	}
}

func (s *sheetWriter) set(cell string, value interface{}) {
	s.do(func() error { return s.f.SetCellValue(s.name, cell, value) })
}

func (s *sheetWriter) merge(from, to string) {
	s.do(func() error { return s.f.MergeCell(s.name, from, to) })
}

func (s *sheetWriter) height(row int, h float64) {
	s.do(func() error { return s.f.SetRowHeight(s.name, row, h) })
}

func (s *sheetWriter) newStyle(style *excelize.Style) int {
	var id int
	s.do(func() (err error) {
		id, err = s.f.NewStyle(style)
		return err
	})
	return id
}

func (s *sheetWriter) apply(from, to string, id int) {
	s.do(func() error { return s.f.SetCellStyle(s.name, from, to, id) })
}

func (s *sheetWriter) style(from, to string, style *excelize.Style) {
	s.apply(from, to, s.newStyle(style))
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func solidFill(hex string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}
}

func allBorders(style int, hex string) []excelize.Border {
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "top", "right", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Color: hex, Style: style})
	}
	return borders
}

func (s *sheetWriter) pageSetup() {
	for i, w := range sheetColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := w
		s.do(func() error { return s.f.SetColWidth(s.name, col, col, width) })
	}

	letter, portrait := 1, "portrait"
	fitWide, fitTall := 1, 0
	s.do(func() error {
		return s.f.SetPageLayout(s.name, &excelize.PageLayoutOptions{
			Size:        &letter,
			Orientation: &portrait,
			FitToWidth:  &fitWide,
			FitToHeight: &fitTall,
		})
	})

	fitToPage := true
	s.do(func() error {
		return s.f.SetSheetProps(s.name, &excelize.SheetPropsOptions{FitToPage: &fitToPage})
	})

	margin := 0.25
	s.do(func() error {
		return s.f.SetPageMargins(s.name, &excelize.PageLayoutMarginsOptions{
			Top:    &margin,
			Bottom: &margin,
			Left:   &margin,
			Right:  &margin,
		})
	})
}

func (s *sheetWriter) headerBand(inv entity.InvoiceHeader, b Branding) {
	s.height(1, 22)
	s.height(2, 34)
	s.height(3, 22)

	s.merge("A1", "B3")
	s.merge("C1", "G1")
	s.merge("C2", "G2")
	s.merge("C3", "G3")
	s.merge("H1", "I3")

	s.style("A1", "I3", &excelize.Style{Fill: solidFill(colorBlack)})

	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	s.set("C1", "Service Invoice  --  "+inv.InvoiceNumber)
	s.style("C1", "C1", &excelize.Style{
		Fill:      solidFill(colorBlack),
		Font:      &excelize.Font{Bold: true, Size: 24, Color: colorWhite},
		Alignment: centered,
	})

	s.set("C2", inv.ClientName)
	s.style("C2", "C2", &excelize.Style{
		Fill:      solidFill(colorBlack),
		Font:      &excelize.Font{Bold: true, Size: 20, Color: colorSheetYellow},
		Alignment: centered,
	})

	s.set("C3", b.ContactLine)
	s.style("C3", "C3", &excelize.Style{
		Fill:      solidFill(colorBlack),
		Font:      &excelize.Font{Size: 11, Color: colorWhite},
		Alignment: centered,
	})

	s.set("H1", strings.Join(b.addressBlock(), "\n"))
	s.style("H1", "H1", &excelize.Style{
		Fill:      solidFill(colorBlack),
		Font:      &excelize.Font{Bold: true, Size: 11, Color: colorWhite},
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "top", WrapText: true},
	})

	if _, ih, ok := b.logoSize(); ok {
		scale := logoHeightPx / float64(ih)
		s.do(func() error {
			return s.f.AddPictureFromBytes(s.name, "A1", &excelize.Picture{
				Extension: ".png",
				File:      b.LogoPNG,
				Format: &excelize.GraphicOptions{
					OffsetX:     10,
					OffsetY:     5,
					ScaleX:      scale,
					ScaleY:      scale,
					Positioning: "oneCell",
				},
			})
		})
	}
}

func (s *sheetWriter) dateRange(inv entity.InvoiceHeader) {
	s.merge("A5", "I5")
	s.height(5, 40)
	s.set("A5", fmt.Sprintf("Date Range:   %s   →   %s", ShortDate(inv.StartDate), ShortDate(inv.EndDate)))
	s.style("A5", "A5", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 26, Color: colorInk},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func (s *sheetWriter) totals(inv entity.InvoiceHeader) {
	s.height(6, 24)

	bold := &excelize.Font{Bold: true, Size: 14}
	right := &excelize.Alignment{Horizontal: "right", Vertical: "center"}
	money := moneyFormat

	s.merge("C6", "D6")
	s.set("C6", fmt.Sprintf("Load  Count  %d", inv.LoadCount))
	s.style("C6", "C6", &excelize.Style{
		Font:      bold,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	s.set("F6", inv.TonTotal)
	s.style("F6", "F6", &excelize.Style{Font: bold, Alignment: right, NumFmt: numFmtFixed2})

	s.set("G6", int64(inv.MileTotal))
	s.style("G6", "G6", &excelize.Style{Font: bold, Alignment: right, NumFmt: numFmtInteger})

	s.set("I6", inv.TotalAmount)
	s.style("I6", "I6", &excelize.Style{Font: bold, Alignment: right, CustomNumFmt: &money})
}

// grid writes the column header and one row per invoice row and returns
// the last row that belongs to the print area
func (s *sheetWriter) grid(rows []entity.InvoiceRow) int {
	s.height(headerRow, 26)
	for i, title := range ColumnHeaders {
		s.set(cellName(i+1, headerRow), title)
	}
	s.style(cellName(1, headerRow), cellName(len(ColumnHeaders), headerRow), &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      solidFill(colorGridGray),
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    allBorders(5, colorBlack),
	})

	money := moneyFormat
	thin := allBorders(1, colorBlack)
	font := &excelize.Font{Size: 11}
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	right := &excelize.Alignment{Horizontal: "right", Vertical: "center"}

	textStyle := s.newStyle(&excelize.Style{Font: font, Alignment: left, Border: thin})
	tonsStyle := s.newStyle(&excelize.Style{Font: font, Alignment: right, Border: thin, NumFmt: numFmtFixed2})
	milesStyle := s.newStyle(&excelize.Style{Font: font, Alignment: right, Border: thin, NumFmt: numFmtInteger})
	moneyStyle := s.newStyle(&excelize.Style{Font: font, Alignment: right, Border: thin, CustomNumFmt: &money})

	r := firstDataRow
	for _, row := range rows {
		s.height(r, 22)
		s.set(cellName(1, r), row.Job)
		s.set(cellName(2, r), RowDate(row))
		s.set(cellName(3, r), row.Driver)
		s.set(cellName(4, r), row.LoadNumber)
		s.set(cellName(5, r), row.BOL)
		s.set(cellName(6, r), row.Tons)
		s.set(cellName(7, r), row.Miles)
		s.set(cellName(8, r), row.RatePerTon)
		s.set(cellName(9, r), row.LoadPay)

		s.apply(cellName(1, r), cellName(5, r), textStyle)
		s.apply(cellName(6, r), cellName(6, r), tonsStyle)
		s.apply(cellName(7, r), cellName(7, r), milesStyle)
		s.apply(cellName(8, r), cellName(9, r), moneyStyle)
		r++
	}

	if last := r - 1; last > headerRow {
		return last
	}
	return headerRow + 1
}

func (s *sheetWriter) printArea(lastRow int) {
	s.do(func() error {
		return s.f.SetDefinedName(&excelize.DefinedName{
			Name:     "_xlnm.Print_Area",
			RefersTo: fmt.Sprintf("'%s'!$A$1:$I$%d", s.name, lastRow),
			Scope:    s.name,
		})
	})
}

var _ port.InvoiceRenderer = (*XLSXRenderer)(nil)
