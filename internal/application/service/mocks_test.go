package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

type mockLoadRepo struct {
	listClientsFunc          func(ctx context.Context) ([]*entity.Client, error)
	findByClientAndRangeFunc func(ctx context.Context, clientID int64, from, until time.Time) ([]*entity.LoadRecord, error)
	distinctIDsFunc          func(ctx context.Context, clientID int64, from, until time.Time) ([]int64, error)
	findByIDsFunc            func(ctx context.Context, ids []int64) ([]*entity.LoadRecord, error)
	clientNameFunc           func(ctx context.Context, clientID int64) (string, error)
}

func (m *mockLoadRepo) ListClients(ctx context.Context) ([]*entity.Client, error) {
	if m.listClientsFunc != nil {
		return m.listClientsFunc(ctx)
	}
	return []*entity.Client{}, nil
}

func (m *mockLoadRepo) FindByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]*entity.LoadRecord, error) {
	if m.findByClientAndRangeFunc != nil {
		return m.findByClientAndRangeFunc(ctx, clientID, from, until)
	}
	return nil, nil
}

func (m *mockLoadRepo) DistinctIDsByClientAndRange(ctx context.Context, clientID int64, from, until time.Time) ([]int64, error) {
	if m.distinctIDsFunc != nil {
		return m.distinctIDsFunc(ctx, clientID, from, until)
	}
	return nil, nil
}

func (m *mockLoadRepo) FindByIDs(ctx context.Context, ids []int64) ([]*entity.LoadRecord, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockLoadRepo) ClientName(ctx context.Context, clientID int64) (string, error) {
	if m.clientNameFunc != nil {
		return m.clientNameFunc(ctx, clientID)
	}
	return "", nil
}

type mockInvoiceRepo struct {
	createFunc      func(ctx context.Context, header *entity.InvoiceHeader) error
	getByIDFunc     func(ctx context.Context, id int64) (*entity.InvoiceHeader, error)
	createLinksFunc func(ctx context.Context, invoiceID int64, loadIDs []int64, createdAt time.Time) error
	linkedIDsFunc   func(ctx context.Context, invoiceID int64) ([]int64, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, header *entity.InvoiceHeader) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, header)
	}
	header.ID = 1
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.InvoiceHeader, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) CreateLinks(ctx context.Context, invoiceID int64, loadIDs []int64, createdAt time.Time) error {
	if m.createLinksFunc != nil {
		return m.createLinksFunc(ctx, invoiceID, loadIDs, createdAt)
	}
	return nil
}

func (m *mockInvoiceRepo) GetLinkedLoadIDs(ctx context.Context, invoiceID int64) ([]int64, error) {
	if m.linkedIDsFunc != nil {
		return m.linkedIDsFunc(ctx, invoiceID)
	}
	return nil, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockRenderer struct {
	ext        string
	renderFunc func(w io.Writer, doc *entity.InvoiceDocument) error
}

func (m *mockRenderer) Render(w io.Writer, doc *entity.InvoiceDocument) error {
	if m.renderFunc != nil {
		return m.renderFunc(w, doc)
	}
	_, err := io.WriteString(w, m.ext+":"+doc.Invoice.InvoiceNumber)
	return err
}

func (m *mockRenderer) ContentType() string {
	return "application/x-" + m.ext
}

func (m *mockRenderer) Extension() string {
	return m.ext
}
