package port

import (
	"io"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// InvoiceRenderer turns a finalized invoice into a document
type InvoiceRenderer interface {
	// Render writes the document for doc to w
	Render(w io.Writer, doc *entity.InvoiceDocument) error

	// ContentType is the MIME type of the produced document
	ContentType() string

	// Extension is the file extension without a dot
	Extension() string
}
