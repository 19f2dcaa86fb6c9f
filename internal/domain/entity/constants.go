package entity

// Layouts used for dates stored in and read from the load and invoice tables
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Export formats
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)
