// Package render turns a finalized invoice into a print-ready PDF or an
// XLSX workbook. Values arrive already rounded; renderers only format.
package render

import (
	"bytes"
	"image"
	_ "image/png"
	"strings"
)

// Fixed palette shared by both documents
const (
	colorBlack       = "000000"
	colorWhite       = "FFFFFF"
	colorGridGray    = "E6E6E6"
	colorInk         = "111111"
	colorGridLine    = "333333"
	colorMuted       = "666666"
	colorSheetYellow = "FFD000"
	colorPageYellow  = "FFD800"
)

// ColumnHeaders is the fixed column order of the invoice grid
var ColumnHeaders = []string{
	"Well/Job", "Date", "Driver", "Load #", "BOL", "Tons", "Miles", "Rate/Ton", "Load Pay",
}

// Branding is the company identity printed in the header band
type Branding struct {
	CompanyName  string
	AddressLines []string
	ContactLine  string
	// LogoPNG is optional; an empty or undecodable logo is left out
	LogoPNG []byte
}

// DefaultBranding returns the Voldhaul identity
func DefaultBranding() Branding {
	return Branding{
		CompanyName:  "Voldhaul LLC",
		AddressLines: []string{"5786 SEVEN RIVERS HWY", "ARTESIA, NM 88210"},
		ContactLine:  "Please email invoices@voldhaul.com with any changes or corrections.",
	}
}

// withDefaults fills blank fields from DefaultBranding
func (b Branding) withDefaults() Branding {
	d := DefaultBranding()
	if strings.TrimSpace(b.CompanyName) == "" {
		b.CompanyName = d.CompanyName
	}
	if len(b.AddressLines) == 0 {
		b.AddressLines = d.AddressLines
	}
	if strings.TrimSpace(b.ContactLine) == "" {
		b.ContactLine = d.ContactLine
	}
	return b
}

// addressBlock is the company name followed by the address lines
func (b Branding) addressBlock() []string {
	return append([]string{b.CompanyName}, b.AddressLines...)
}

// logoSize decodes the PNG header of the logo. ok is false when there is
// no usable logo.
func (b Branding) logoSize() (width, height int, ok bool) {
	if len(b.LogoPNG) == 0 {
		return 0, 0, false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b.LogoPNG))
	if err != nil || format != "png" || cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// hexRGB splits an RRGGBB color into components
func hexRGB(hex string) (r, g, b int) {
	var v [3]int
	for i := 0; i < 3 && len(hex) >= (i+1)*2; i++ {
		v[i] = hexByte(hex[i*2])<<4 | hexByte(hex[i*2+1])
	}
	return v[0], v[1], v[2]
}

func hexByte(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
