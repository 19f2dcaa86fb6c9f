package port

import (
	"context"
	"time"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// LoadRepository reads delivered loads. The load table is owned by the
// dispatch system; nothing here writes to it.
type LoadRepository interface {
	// ListClients returns distinct clients ordered by name
	ListClients(ctx context.Context) ([]*entity.Client, error)

	// FindByClientAndRange returns loads of a client delivered in [from, until),
	// ordered by delivery time then load id. Loads without a delivery time
	// are never returned.
	FindByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]*entity.LoadRecord, error)

	// DistinctIDsByClientAndRange returns the distinct load ids matched by the
	// same filter as FindByClientAndRange, ascending
	DistinctIDsByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]int64, error)

	// FindByIDs returns the delivered loads with the given ids, ordered by
	// delivery time then load id. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]*entity.LoadRecord, error)

	// ClientName resolves the current name of a client, "" when unknown
	ClientName(ctx context.Context, clientID int64) (string, error)
}

// InvoiceRepository persists invoice headers and their load links
type InvoiceRepository interface {
	// Create inserts the header and sets its ID
	Create(ctx context.Context, header *entity.InvoiceHeader) error

	// GetByID returns nil, nil when the invoice does not exist
	GetByID(ctx context.Context, id int64) (*entity.InvoiceHeader, error)

	// CreateLinks inserts one link row per load id, in order
	CreateLinks(ctx context.Context, invoiceID int64, loadIDs []int64, createdAt time.Time) error

	// GetLinkedLoadIDs returns linked load ids in link insertion order
	GetLinkedLoadIDs(ctx context.Context, invoiceID int64) ([]int64, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
