package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// moneyPrinter groups the whole-dollar part with US separators
var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders $#,##0.00
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign, d = "-", d.Abs()
	}
	fixed := d.StringFixed(2)
	return sign + "$" + moneyPrinter.Sprintf("%d", d.IntPart()) + fixed[len(fixed)-3:]
}

// FormatTons renders two decimals without grouping
func FormatTons(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatMiles renders whole miles
func FormatMiles(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ShortDate turns a YYYY-MM-DD prefixed value into MM/DD/YY. Anything else
// is returned unchanged.
func ShortDate(s string) string {
	t, ok := leadingDate(s)
	if !ok {
		return s
	}
	return t.Format("01/02/06")
}

// RowDate is the delivery date of a row as MM/DD/YYYY
func RowDate(row entity.InvoiceRow) string {
	if !row.DeliveryTime.IsZero() {
		return row.DeliveryTime.Format("01/02/2006")
	}
	if t, ok := leadingDate(row.Date); ok {
		return t.Format("01/02/2006")
	}
	return row.Date
}

func leadingDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(entity.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(entity.DateLayout, s[:len(entity.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
