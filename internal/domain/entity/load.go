package entity

import "time"

// LoadRecord is one delivered load as recorded by the dispatch system.
// The invoicing service only reads these rows.
type LoadRecord struct {
	ID           int64      `json:"id_load"`
	ClientID     int64      `json:"client_id"`
	ClientName   string     `json:"client_name"`
	DeliveryTime *time.Time `json:"delivery_time"`
	Job          string     `json:"pl_job"`
	LoadNumber   string     `json:"load_number"`
	TicketNumber string     `json:"ticket_number"`
	Tons         float64    `json:"tons"`
	Miles        float64    `json:"miles"`
	ClientPay    float64    `json:"client_pay"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
}

// Client is a distinct (client_id, client_name) pair found in the load table
type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
