package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository over bill_invoices
// and bill_invoiceloads
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an invoice header. ClientName is not stored.
func (r *InvoiceRepository) Create(ctx context.Context, header *entity.InvoiceHeader) error {
	query := `
		INSERT INTO bill_invoices (
			id_client, invoice_startdate, invoice_enddate, invoice_number,
			invoice_total_amount, invoice_loadcount, invoice_tontotal, invoice_milestotal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		header.ClientID,
		header.StartDate,
		header.EndDate,
		header.InvoiceNumber,
		header.TotalAmount,
		header.LoadCount,
		header.TonTotal,
		header.MileTotal,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.Int64("client_id", header.ClientID),
			zap.String("invoice_number", header.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	header.ID = id
	return nil
}

// GetByID retrieves an invoice header by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.InvoiceHeader, error) {
	query := `
		SELECT id_bill_invoices, id_client, invoice_startdate, invoice_enddate,
			invoice_number, invoice_total_amount, invoice_loadcount,
			invoice_tontotal, invoice_milestotal
		FROM bill_invoices
		WHERE id_bill_invoices = ?
	`

	var header entity.InvoiceHeader
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&header.ID,
		&header.ClientID,
		&header.StartDate,
		&header.EndDate,
		&header.InvoiceNumber,
		&header.TotalAmount,
		&header.LoadCount,
		&header.TonTotal,
		&header.MileTotal,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &header, nil
}

// CreateLinks inserts one bill_invoiceloads row per load id, in order
func (r *InvoiceRepository) CreateLinks(ctx context.Context, invoiceID int64, loadIDs []int64, createdAt time.Time) error {
	if len(loadIDs) == 0 {
		return nil
	}

	exec := sqlite.ExecutorFor(ctx, r.db)
	created := createdAt.Format(entity.DateTimeLayout)
	query := `INSERT INTO bill_invoiceloads (id_bill_invoice, id_load, created_at) VALUES (?, ?, ?)`

	for _, loadID := range loadIDs {
		if _, err := exec.ExecContext(ctx, query, invoiceID, loadID, created); err != nil {
			r.logger.Error("Failed to link load to invoice",
				zap.Int64("invoice_id", invoiceID),
				zap.Int64("load_id", loadID),
				zap.Error(err))
			return fmt.Errorf("failed to link load %d: %w", loadID, err)
		}
	}
	return nil
}

// GetLinkedLoadIDs returns the load ids of an invoice in link order
func (r *InvoiceRepository) GetLinkedLoadIDs(ctx context.Context, invoiceID int64) ([]int64, error) {
	query := `
		SELECT id_load
		FROM bill_invoiceloads
		WHERE id_bill_invoice = ?
		ORDER BY idbill_invoice_loads
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get linked loads", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get linked loads: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
