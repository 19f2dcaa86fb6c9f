// Package billing holds the pure invoice arithmetic: per-load rate and pay,
// display rounding and running totals.
package billing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// MinTons is the tonnage at or below which a load is billed at a zero rate
const MinTons = 0.000001

// Display precision
const (
	TonsPlaces   int32 = 2
	MilesPlaces  int32 = 0
	RatePlaces   int32 = 4
	AmountPlaces int32 = 2
)

// Totals are the rounded invoice totals for a set of rows
type Totals struct {
	LoadCount   int
	TonTotal    float64
	MileTotal   float64
	TotalAmount float64
}

// RatePerTon derives the client rate from the recorded pay
func RatePerTon(clientPay, tons float64) float64 {
	if tons > MinTons {
		return clientPay / tons
	}
	return 0
}

// LoadPay recomputes pay from the rate so the displayed rate and pay agree.
// A load with no tonnage pays nothing whatever its recorded pay.
func LoadPay(clientPay, tons float64) float64 {
	return RatePerTon(clientPay, tons) * tons
}

// Round rounds half away from zero to places decimals
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// RoundInt rounds half away from zero to an integer
func RoundInt(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(MilesPlaces).IntPart()
}

// DriverName joins first and last name
func DriverName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// NewRow computes the display row for one load
func NewRow(load *entity.LoadRecord) entity.InvoiceRow {
	rate := RatePerTon(load.ClientPay, load.Tons)
	pay := rate * load.Tons

	row := entity.InvoiceRow{
		Job:        load.Job,
		Driver:     DriverName(load.FirstName, load.LastName),
		LoadNumber: load.LoadNumber,
		BOL:        load.TicketNumber,
		Tons:       Round(load.Tons, TonsPlaces),
		Miles:      RoundInt(load.Miles),
		RatePerTon: Round(rate, RatePlaces),
		LoadPay:    Round(pay, AmountPlaces),
		LoadID:     load.ID,
	}
	if load.DeliveryTime != nil {
		row.DeliveryTime = *load.DeliveryTime
		row.Date = load.DeliveryTime.Format(entity.DateTimeLayout)
	}
	return row
}

// Accumulator sums unrounded values across loads and rounds once at the end.
// LoadCount counts distinct load ids; a repeated id still adds to the sums.
type Accumulator struct {
	seen   map[int64]struct{}
	count  int
	tons   float64
	miles  float64
	amount float64
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[int64]struct{})}
}

// Add folds one load into the totals
func (a *Accumulator) Add(load *entity.LoadRecord) {
	if _, ok := a.seen[load.ID]; !ok {
		a.seen[load.ID] = struct{}{}
		a.count++
	}
	a.tons += load.Tons
	a.miles += load.Miles
	a.amount += LoadPay(load.ClientPay, load.Tons)
}

// Totals returns the rounded totals
func (a *Accumulator) Totals() Totals {
	return Totals{
		LoadCount:   a.count,
		TonTotal:    Round(a.tons, TonsPlaces),
		MileTotal:   float64(RoundInt(a.miles)),
		TotalAmount: Round(a.amount, AmountPlaces),
	}
}

// SortLoads orders loads by delivery time, then load id
func SortLoads(loads []*entity.LoadRecord) {
	sort.SliceStable(loads, func(i, j int) bool {
		ti, tj := deliveredAt(loads[i]), deliveredAt(loads[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return loads[i].ID < loads[j].ID
	})
}

func deliveredAt(load *entity.LoadRecord) time.Time {
	if load == nil || load.DeliveryTime == nil {
		return time.Time{}
	}
	return *load.DeliveryTime
}

// BuildRows turns ordered loads into display rows plus totals. Loads without
// a delivery time never take part in an invoice and are skipped.
func BuildRows(loads []*entity.LoadRecord) ([]entity.InvoiceRow, Totals) {
	acc := NewAccumulator()
	rows := make([]entity.InvoiceRow, 0, len(loads))
	for _, load := range loads {
		if load == nil || load.DeliveryTime == nil {
			continue
		}
		acc.Add(load)
		rows = append(rows, NewRow(load))
	}
	return rows, acc.Totals()
}

// AutoInvoiceNumber formats the default invoice number, e.g. 240613-42
func AutoInvoiceNumber(now time.Time, clientID int64) string {
	return fmt.Sprintf("%s-%d", now.Format("060102"), clientID)
}

// ResolveInvoiceNumber keeps a caller-supplied number or falls back to the
// generated one
func ResolveInvoiceNumber(requested string, now time.Time, clientID int64) string {
	if n := strings.TrimSpace(requested); n != "" {
		return n
	}
	return AutoInvoiceNumber(now, clientID)
}
