package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voldhaul/load-invoicing/internal/application/service"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockInvoiceService struct {
	listClientsFunc  func(ctx context.Context) ([]*entity.Client, error)
	buildPreviewFunc func(ctx context.Context, req service.PreviewRequest) (*entity.InvoiceDocument, error)
	saveInvoiceFunc  func(ctx context.Context, req service.SaveInvoiceRequest) (int64, error)
	buildFromIDFunc  func(ctx context.Context, invoiceID int64) (*entity.InvoiceDocument, error)
}

func (m *mockInvoiceService) ListClients(ctx context.Context) ([]*entity.Client, error) {
	if m.listClientsFunc != nil {
		return m.listClientsFunc(ctx)
	}
	return nil, nil
}

func (m *mockInvoiceService) BuildPreview(ctx context.Context, req service.PreviewRequest) (*entity.InvoiceDocument, error) {
	if m.buildPreviewFunc != nil {
		return m.buildPreviewFunc(ctx, req)
	}
	return entity.NewInvoiceDocument(entity.InvoiceHeader{}, nil), nil
}

func (m *mockInvoiceService) SaveInvoice(ctx context.Context, req service.SaveInvoiceRequest) (int64, error) {
	if m.saveInvoiceFunc != nil {
		return m.saveInvoiceFunc(ctx, req)
	}
	return 1, nil
}

func (m *mockInvoiceService) BuildFromInvoiceID(ctx context.Context, invoiceID int64) (*entity.InvoiceDocument, error) {
	if m.buildFromIDFunc != nil {
		return m.buildFromIDFunc(ctx, invoiceID)
	}
	return nil, entity.NotFoundError(invoiceID)
}

type mockExportService struct {
	exportFunc func(ctx context.Context, invoiceID int64, format string) (*service.ExportedInvoice, error)
}

func (m *mockExportService) Export(ctx context.Context, invoiceID int64, format string) (*service.ExportedInvoice, error) {
	return m.exportFunc(ctx, invoiceID, format)
}

func (m *mockExportService) Formats() []string {
	return []string{"pdf", "xlsx"}
}

func newTestServer(invoices service.InvoiceService, exports service.ExportService) *Server {
	cfg := DefaultServerConfig()
	cfg.BasePath = ""
	return NewServer(cfg, invoices, exports, mockLogger{})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func TestHandlers_PingAndHealth(t *testing.T) {
	s := newTestServer(&mockInvoiceService{}, &mockExportService{})

	w := do(t, s, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHandlers_RequestID(t *testing.T) {
	s := newTestServer(&mockInvoiceService{}, &mockExportService{})

	w := do(t, s, http.MethodGet, "/ping", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestHandlers_CORSPreflight(t *testing.T) {
	s := newTestServer(&mockInvoiceService{}, &mockExportService{})

	w := do(t, s, http.MethodOptions, "/invoices/save", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlers_BasePath(t *testing.T) {
	s := NewServer(DefaultServerConfig(), &mockInvoiceService{}, &mockExportService{}, mockLogger{})

	w := do(t, s, http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlers_ListClients(t *testing.T) {
	invoices := &mockInvoiceService{
		listClientsFunc: func(ctx context.Context) ([]*entity.Client, error) {
			return []*entity.Client{{ID: 7, Name: "Acme"}, {ID: 8, Name: "Zeta"}}, nil
		},
	}
	s := newTestServer(invoices, &mockExportService{})

	w := do(t, s, http.MethodGet, "/invoices/clients", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":7,"name":"Acme"},{"id":8,"name":"Zeta"}]`, w.Body.String())
}

func TestHandlers_ListClients_EmptyIsArray(t *testing.T) {
	s := newTestServer(&mockInvoiceService{}, &mockExportService{})

	w := do(t, s, http.MethodGet, "/invoices/clients", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandlers_ListClients_StoreFailure(t *testing.T) {
	invoices := &mockInvoiceService{
		listClientsFunc: func(ctx context.Context) ([]*entity.Client, error) {
			return nil, errors.New("database is locked")
		},
	}
	s := newTestServer(invoices, &mockExportService{})

	w := do(t, s, http.MethodGet, "/invoices/clients", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "database is locked", decodeMessage(t, w))
}

func TestHandlers_Preview(t *testing.T) {
	var got service.PreviewRequest
	invoices := &mockInvoiceService{
		buildPreviewFunc: func(ctx context.Context, req service.PreviewRequest) (*entity.InvoiceDocument, error) {
			got = req
			header := entity.InvoiceHeader{ClientID: 7, ClientName: "Acme", InvoiceNumber: "INV-1", LoadCount: 1, TotalAmount: 100}
			return entity.NewInvoiceDocument(header, []entity.InvoiceRow{{Job: "Pad A", LoadID: 3, LoadPay: 100}}), nil
		},
	}
	s := newTestServer(invoices, &mockExportService{})

	w := do(t, s, http.MethodGet, "/invoices/preview?client_id=7&start=2024-06-01&end=2024-06-30&invoice_number=INV-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.PreviewRequest{ClientID: 7, StartDate: "2024-06-01", EndDate: "2024-06-30", InvoiceNumber: "INV-1"}, got)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["misc_rows"]))
	assert.Contains(t, string(body["invoice"]), `"client_name":"Acme"`)
	assert.NotContains(t, string(body["invoice"]), "id_bill_invoices")
	assert.Contains(t, string(body["rows"]), `"well_job":"Pad A"`)
}

func TestHandlers_Preview_Validation(t *testing.T) {
	invoices := &mockInvoiceService{
		buildPreviewFunc: func(ctx context.Context, req service.PreviewRequest) (*entity.InvoiceDocument, error) {
			assert.Zero(t, req.ClientID)
			return nil, entity.NewValidationError("client_id", "client_id is required")
		},
	}
	s := newTestServer(invoices, &mockExportService{})

	w := do(t, s, http.MethodGet, "/invoices/preview?client_id=abc&start=2024-06-01&end=2024-06-30", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "client_id is required", decodeMessage(t, w))
}

func TestHandlers_Save(t *testing.T) {
	var got service.SaveInvoiceRequest
	invoices := &mockInvoiceService{
		saveInvoiceFunc: func(ctx context.Context, req service.SaveInvoiceRequest) (int64, error) {
			got = req
			return 41, nil
		},
	}
	s := newTestServer(invoices, &mockExportService{})

	body := `{"id_client":7,"client_name":"Acme","invoice_startdate":"2024-06-01","invoice_enddate":"2024-06-30",
		"invoice_number":"INV-1","invoice_loadcount":3,"invoice_tontotal":15,"invoice_milestotal":120,
		"invoice_total_amount":130}`
	w := do(t, s, http.MethodPost, "/invoices/save", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":41,"id_bill_invoices":41}`, w.Body.String())
	require.NotNil(t, got.ClientID)
	assert.Equal(t, int64(7), *got.ClientID)
	require.NotNil(t, got.TotalAmount)
	assert.Equal(t, 130.0, *got.TotalAmount)
}

func TestHandlers_Save_BadBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"unknown field", `{"id_client":7,"surprise":1}`, "surprise"},
		{"not json", `id_client=7`, "invalid request body"},
		{"wrong type", `{"id_client":"seven"}`, "invalid request body"},
		{"trailing data", `{"id_client":7}{"id_client":8}`, "unexpected data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := &mockInvoiceService{
				saveInvoiceFunc: func(ctx context.Context, req service.SaveInvoiceRequest) (int64, error) {
					t.Fatal("service must not be called")
					return 0, nil
				},
			}
			s := newTestServer(invoices, &mockExportService{})

			w := do(t, s, http.MethodPost, "/invoices/save", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, decodeMessage(t, w), tt.wantMsg)
		})
	}
}

func TestHandlers_Save_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing field", entity.NewValidationError("invoice_number", "Missing field: invoice_number"), http.StatusUnprocessableEntity, "Missing field: invoice_number"},
		{"store failure", errors.New("failed to create invoice: disk full"), http.StatusInternalServerError, "failed to create invoice: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := &mockInvoiceService{
				saveInvoiceFunc: func(ctx context.Context, req service.SaveInvoiceRequest) (int64, error) {
					return 0, tt.err
				},
			}
			s := newTestServer(invoices, &mockExportService{})

			w := do(t, s, http.MethodPost, "/invoices/save", `{"id_client":7}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeMessage(t, w))
		})
	}
}

func TestHandlers_Export(t *testing.T) {
	tests := []struct {
		path       string
		wantFormat string
	}{
		{"/invoices/12/pdf", "pdf"},
		{"/invoices/12/xls", "xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			exports := &mockExportService{
				exportFunc: func(ctx context.Context, invoiceID int64, format string) (*service.ExportedInvoice, error) {
					assert.Equal(t, int64(12), invoiceID)
					assert.Equal(t, tt.wantFormat, format)
					return &service.ExportedInvoice{
						InvoiceID:   12,
						Filename:    "invoice-INV-12." + format,
						ContentType: "application/x-test",
						Content:     []byte("document"),
					}, nil
				},
			}
			s := newTestServer(&mockInvoiceService{}, exports)

			w := do(t, s, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/x-test", w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="invoice-INV-12.`+tt.wantFormat+`"`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, "document", w.Body.String())
		})
	}
}

func TestHandlers_Export_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{"bad id", "/invoices/abc/pdf", nil, http.StatusBadRequest},
		{"zero id", "/invoices/0/xls", nil, http.StatusBadRequest},
		{"not found", "/invoices/404/pdf", entity.NotFoundError(404), http.StatusNotFound},
		{"render failure", "/invoices/5/xls", errors.New("render xlsx: boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exports := &mockExportService{
				exportFunc: func(ctx context.Context, invoiceID int64, format string) (*service.ExportedInvoice, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(&mockInvoiceService{}, exports)

			w := do(t, s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, decodeMessage(t, w))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(entity.NewValidationError("x", "bad")))
	assert.Equal(t, http.StatusNotFound, statusFor(entity.NotFoundError(1)))
	assert.Equal(t, http.StatusBadRequest, statusFor(entity.ErrUnsupportedFormat))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
