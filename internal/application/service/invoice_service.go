package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/domain/billing"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// PreviewRequest selects the loads of one client over an inclusive date range
type PreviewRequest struct {
	ClientID      int64
	StartDate     string
	EndDate       string
	InvoiceNumber string
}

// Validate checks the request and returns its parsed period
func (r PreviewRequest) Validate() (billing.Period, error) {
	if r.ClientID <= 0 {
		return billing.Period{}, entity.NewValidationError("client_id", "client_id is required")
	}
	if strings.TrimSpace(r.StartDate) == "" || strings.TrimSpace(r.EndDate) == "" {
		return billing.Period{}, entity.NewValidationError("start_date", "start_date and end_date are required")
	}
	return billing.NewPeriod("start_date", r.StartDate, "end_date", r.EndDate)
}

// SaveInvoiceRequest is the header posted back by the client after a
// preview. Pointer fields tell a missing key apart from a zero value.
type SaveInvoiceRequest struct {
	ClientID      *int64   `json:"id_client"`
	StartDate     *string  `json:"invoice_startdate"`
	EndDate       *string  `json:"invoice_enddate"`
	InvoiceNumber *string  `json:"invoice_number"`
	TotalAmount   *float64 `json:"invoice_total_amount"`
	LoadCount     *int     `json:"invoice_loadcount"`
	TonTotal      *float64 `json:"invoice_tontotal"`
	MileTotal     *float64 `json:"invoice_milestotal"`

	// Present in a preview header; accepted and ignored
	ClientName *string `json:"client_name,omitempty"`
	ID         *int64  `json:"id_bill_invoices,omitempty"`
}

// Validate checks required fields in a fixed order and returns the header
// to store plus the period used to link loads
func (r SaveInvoiceRequest) Validate() (*entity.InvoiceHeader, billing.Period, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"id_client", r.ClientID == nil},
		{"invoice_startdate", r.StartDate == nil},
		{"invoice_enddate", r.EndDate == nil},
		{"invoice_number", r.InvoiceNumber == nil},
		{"invoice_total_amount", r.TotalAmount == nil},
		{"invoice_loadcount", r.LoadCount == nil},
		{"invoice_tontotal", r.TonTotal == nil},
		{"invoice_milestotal", r.MileTotal == nil},
	}
	for _, f := range required {
		if f.missing {
			return nil, billing.Period{}, entity.NewValidationError(f.name, "Missing field: %s", f.name)
		}
	}

	if *r.ClientID <= 0 {
		return nil, billing.Period{}, entity.NewValidationError("id_client", "id_client is required")
	}
	if strings.TrimSpace(*r.StartDate) == "" || strings.TrimSpace(*r.EndDate) == "" {
		return nil, billing.Period{}, entity.NewValidationError("invoice_startdate",
			"invoice_startdate and invoice_enddate are required")
	}
	period, err := billing.NewPeriod("invoice_startdate", *r.StartDate, "invoice_enddate", *r.EndDate)
	if err != nil {
		return nil, billing.Period{}, err
	}

	header := &entity.InvoiceHeader{
		ClientID:      *r.ClientID,
		StartDate:     period.StartDate(),
		EndDate:       period.EndDate(),
		InvoiceNumber: strings.TrimSpace(*r.InvoiceNumber),
		LoadCount:     *r.LoadCount,
		TonTotal:      *r.TonTotal,
		MileTotal:     *r.MileTotal,
		TotalAmount:   *r.TotalAmount,
	}
	return header, period, nil
}

// InvoiceService builds invoice previews, saves invoices and rebuilds saved ones
type InvoiceService interface {
	ListClients(ctx context.Context) ([]*entity.Client, error)
	BuildPreview(ctx context.Context, req PreviewRequest) (*entity.InvoiceDocument, error)
	SaveInvoice(ctx context.Context, req SaveInvoiceRequest) (int64, error)
	BuildFromInvoiceID(ctx context.Context, invoiceID int64) (*entity.InvoiceDocument, error)
}

type invoiceServiceImpl struct {
	loadRepo    port.LoadRepository
	invoiceRepo port.InvoiceRepository
	txManager   port.TransactionManager
	clock       port.Clock
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	loadRepo port.LoadRepository,
	invoiceRepo port.InvoiceRepository,
	txManager port.TransactionManager,
	clock port.Clock,
	logger Logger,
) InvoiceService {
	if clock == nil {
		clock = port.SystemClock()
	}
	return &invoiceServiceImpl{
		loadRepo:    loadRepo,
		invoiceRepo: invoiceRepo,
		txManager:   txManager,
		clock:       clock,
		logger:      logger,
	}
}

// ListClients returns the clients that have loads on record
func (s *invoiceServiceImpl) ListClients(ctx context.Context) ([]*entity.Client, error) {
	clients, err := s.loadRepo.ListClients(ctx)
	if err != nil {
		s.logger.Error("Failed to list clients", "error", err)
		return nil, err
	}
	return clients, nil
}

// BuildPreview computes an unsaved invoice for a client and date range
func (s *invoiceServiceImpl) BuildPreview(ctx context.Context, req PreviewRequest) (*entity.InvoiceDocument, error) {
	period, err := req.Validate()
	if err != nil {
		return nil, err
	}

	loads, err := s.loadRepo.FindByClientAndRange(ctx, req.ClientID, period.From(), period.Until())
	if err != nil {
		s.logger.Error("Failed to load preview rows", "error", err, "client_id", req.ClientID)
		return nil, fmt.Errorf("find loads: %w", err)
	}

	billing.SortLoads(loads)
	rows, totals := billing.BuildRows(loads)

	clientName := ""
	for _, load := range loads {
		if load != nil && load.DeliveryTime != nil {
			clientName = load.ClientName
			break
		}
	}

	header := entity.InvoiceHeader{
		ClientID:      req.ClientID,
		ClientName:    clientName,
		StartDate:     period.StartDate(),
		EndDate:       period.EndDate(),
		InvoiceNumber: billing.ResolveInvoiceNumber(req.InvoiceNumber, s.clock.Now(), req.ClientID),
		LoadCount:     totals.LoadCount,
		TonTotal:      totals.TonTotal,
		MileTotal:     totals.MileTotal,
		TotalAmount:   totals.TotalAmount,
	}

	s.logger.Info("Invoice preview built",
		"client_id", req.ClientID,
		"start", header.StartDate,
		"end", header.EndDate,
		"rows", len(rows))
	return entity.NewInvoiceDocument(header, rows), nil
}

// SaveInvoice stores the posted header and links every load of the client
// delivered in the header's range. The posted totals are stored as given.
func (s *invoiceServiceImpl) SaveInvoice(ctx context.Context, req SaveInvoiceRequest) (int64, error) {
	header, period, err := req.Validate()
	if err != nil {
		return 0, err
	}

	loadIDs, err := s.loadRepo.DistinctIDsByClientAndRange(ctx, header.ClientID, period.From(), period.Until())
	if err != nil {
		s.logger.Error("Failed to collect invoice loads", "error", err, "client_id", header.ClientID)
		return 0, fmt.Errorf("find load ids: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, header); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if len(loadIDs) > 0 {
			if err := s.invoiceRepo.CreateLinks(txCtx, header.ID, loadIDs, s.clock.Now()); err != nil {
				return fmt.Errorf("link loads: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save invoice", "error", err,
			"client_id", header.ClientID, "invoice_number", header.InvoiceNumber)
		return 0, err
	}

	s.logger.Info("Invoice saved",
		"id", header.ID,
		"client_id", header.ClientID,
		"invoice_number", header.InvoiceNumber,
		"linked_loads", len(loadIDs))
	return header.ID, nil
}

// BuildFromInvoiceID rebuilds a saved invoice. Totals are the stored ones;
// rows are recomputed from the linked loads that still exist.
func (s *invoiceServiceImpl) BuildFromInvoiceID(ctx context.Context, invoiceID int64) (*entity.InvoiceDocument, error) {
	if invoiceID <= 0 {
		return nil, entity.NewValidationError("id", "invoice id must be a positive integer")
	}

	header, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		s.logger.Error("Failed to get invoice", "error", err, "id", invoiceID)
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if header == nil {
		return nil, entity.NotFoundError(invoiceID)
	}

	name, err := s.loadRepo.ClientName(ctx, header.ClientID)
	if err != nil {
		return nil, fmt.Errorf("resolve client name: %w", err)
	}
	header.ClientName = name

	loadIDs, err := s.invoiceRepo.GetLinkedLoadIDs(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get linked loads: %w", err)
	}

	var rows []entity.InvoiceRow
	if len(loadIDs) > 0 {
		loads, err := s.loadRepo.FindByIDs(ctx, loadIDs)
		if err != nil {
			return nil, fmt.Errorf("find linked loads: %w", err)
		}
		billing.SortLoads(loads)
		rows, _ = billing.BuildRows(loads)

		if len(loads) < len(loadIDs) {
			s.logger.Info("Some linked loads no longer exist",
				"id", invoiceID, "linked", len(loadIDs), "found", len(loads))
		}
	}

	return entity.NewInvoiceDocument(*header, rows), nil
}
