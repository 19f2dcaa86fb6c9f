package entity

import "time"

// InvoiceHeader is the summary record of one billing document.
// ID is zero until the invoice has been saved.
type InvoiceHeader struct {
	ID            int64   `json:"id_bill_invoices,omitempty"`
	ClientID      int64   `json:"id_client"`
	ClientName    string  `json:"client_name"`
	StartDate     string  `json:"invoice_startdate"`
	EndDate       string  `json:"invoice_enddate"`
	InvoiceNumber string  `json:"invoice_number"`
	LoadCount     int     `json:"invoice_loadcount"`
	TonTotal      float64 `json:"invoice_tontotal"`
	MileTotal     float64 `json:"invoice_milestotal"`
	TotalAmount   float64 `json:"invoice_total_amount"`
}

// InvoiceLoadLink ties a saved invoice to one load it covers
type InvoiceLoadLink struct {
	ID        int64     `json:"idbill_invoice_loads"`
	InvoiceID int64     `json:"id_bill_invoice"`
	LoadID    int64     `json:"id_load"`
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceRow is one line item computed from a load at render time.
// It is never persisted.
type InvoiceRow struct {
	Job          string    `json:"well_job"`
	Date         string    `json:"date"`
	DeliveryTime time.Time `json:"-"`
	Driver       string    `json:"driver"`
	LoadNumber   string    `json:"load_no"`
	BOL          string    `json:"bol"`
	Tons         float64   `json:"tons"`
	Miles        int64     `json:"miles"`
	RatePerTon   float64   `json:"rate_ton"`
	LoadPay      float64   `json:"load_pay"`
	LoadID       int64     `json:"id_load"`
}

// MiscRow is a free-form invoice line. No source produces them yet; the
// field is kept so the page client always receives a list.
type MiscRow struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// InvoiceDocument is the finalized invoice handed to JSON output and renderers
type InvoiceDocument struct {
	Invoice  InvoiceHeader `json:"invoice"`
	Rows     []InvoiceRow  `json:"rows"`
	MiscRows []MiscRow     `json:"misc_rows"`
}

// NewInvoiceDocument builds a document with non-nil row lists
func NewInvoiceDocument(header InvoiceHeader, rows []InvoiceRow) *InvoiceDocument {
	if rows == nil {
		rows = []InvoiceRow{}
	}
	return &InvoiceDocument{
		Invoice:  header,
		Rows:     rows,
		MiscRows: []MiscRow{},
	}
}
