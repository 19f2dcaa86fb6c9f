package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/application/service"
	"github.com/voldhaul/load-invoicing/internal/config"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
	"github.com/voldhaul/load-invoicing/pkg/database"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080, BasePath: "/api"},
		Database: config.DatabaseConfig{Path: database.MemoryPath},
		Branding: config.BrandingConfig{CompanyName: "Voldhaul LLC"},
		Export:   config.ExportConfig{OutputDir: t.TempDir()},
		Logger:   config.LoggerConfig{Level: "info", Format: "json"},
	}
}

func startContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	fixed := port.ClockFunc(func() time.Time {
		return time.Date(2024, 6, 13, 9, 30, 0, 0, time.UTC)
	})
	c, err := NewContainer(cfg, zap.NewNop(), WithClock(fixed))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		if !c.closed.Load() {
			_ = c.Close()
		}
	})
	return c
}

func seedLoads(t *testing.T, c *Container) {
	t.Helper()
	_, err := c.DB().Exec(`
		INSERT INTO fatloads (id_load, client_id, client_name, delivery_time, pl_job,
			load_number, ticket_number, tons, miles, client_pay, first_name, last_name)
		VALUES
			(1, 7, 'Acme', '2024-06-03 08:00:00', 'Pad A', 'L-1', 'B-1', 10, 40, 100, 'Ann', 'Lee'),
			(2, 7, 'Acme', '2024-06-04 08:00:00', 'Pad A', 'L-2', 'B-2', 0, 40, 50, 'Ann', 'Lee'),
			(3, 7, 'Acme', '2024-06-05 08:00:00', 'Pad B', 'L-3', 'B-3', 5, 40, 30, 'Bo', 'Diaz'),
			(4, 8, 'Other', '2024-06-05 08:00:00', 'Pad C', 'L-4', 'B-4', 5, 10, 30, 'Cy', 'Ng')`)
	require.NoError(t, err)
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.EqualError(t, err, "config is required")

	_, err = NewContainer(testConfig(t), nil)
	assert.EqualError(t, err, "logger is required")

	cfg := testConfig(t)
	cfg.Database.Path = ""
	_, err = NewContainer(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestContainer_Lifecycle(t *testing.T) {
	c := startContainer(t, testConfig(t))

	assert.True(t, c.Ready())
	assert.NotNil(t, c.Services().Invoices)
	assert.Equal(t, []string{"pdf", "xlsx"}, c.Services().Exports.Formats())
	assert.NotNil(t, c.Server())
	assert.NotNil(t, c.FileStorage())

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	assert.EqualError(t, c.Start(context.Background()), "container already started")

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.EqualError(t, c.Close(), "container already closed")
	assert.EqualError(t, c.Start(context.Background()), "container has been closed")
	assert.False(t, c.Health(context.Background()).Overall)
}

func TestContainer_StartFailsOnMissingLogo(t *testing.T) {
	cfg := testConfig(t)
	cfg.Branding.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read logo")
	assert.False(t, c.Ready())
	assert.Nil(t, c.DB())
}

func TestContainer_StartFailsOnBadMigrationsDir(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ("), 0644))
	cfg.Database.MigrationsDir = dir

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run migrations")
}

func TestContainer_EndToEnd(t *testing.T) {
	c := startContainer(t, testConfig(t))
	seedLoads(t, c)
	router := c.Server().Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/preview?client_id=7&start=2024-06-01&end=2024-06-30", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc entity.InvoiceDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "240613-7", doc.Invoice.InvoiceNumber)
	assert.Equal(t, 3, doc.Invoice.LoadCount)
	assert.InDelta(t, 130.0, doc.Invoice.TotalAmount, 1e-9)
	require.Len(t, doc.Rows, 3)

	body, err := json.Marshal(doc.Invoice)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true,"id":1,"id_bill_invoices":1}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/1/xls", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice-240613-7.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/99/pdf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContainer_ExportToStorage(t *testing.T) {
	c := startContainer(t, testConfig(t))
	seedLoads(t, c)
	ctx := context.Background()

	id, err := c.Services().Invoices.SaveInvoice(ctx, service.SaveInvoiceRequest{
		ClientID:      ptr(int64(8)),
		StartDate:     ptr("2024-06-01"),
		EndDate:       ptr("2024-06-30"),
		InvoiceNumber: ptr("INV 8"),
		TotalAmount:   ptr(30.0),
		LoadCount:     ptr(1),
		TonTotal:      ptr(5.0),
		MileTotal:     ptr(10.0),
	})
	require.NoError(t, err)

	out, err := c.Services().Exports.Export(ctx, id, entity.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "invoice-INV-8.pdf", out.Filename)

	require.NoError(t, c.FileStorage().Save(ctx, out.Filename, out.Content))
	assert.True(t, c.FileStorage().Exists(ctx, out.Filename))
}

func TestProvideBranding(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png-bytes"), 0644))

	b, err := ProvideBranding(&config.BrandingConfig{
		CompanyName:  "Test Hauling",
		AddressLines: []string{"1 MAIN ST"},
		ContactLine:  "call us",
		LogoPath:     logo,
	})
	require.NoError(t, err)
	assert.Equal(t, "Test Hauling", b.CompanyName)
	assert.Equal(t, []string{"1 MAIN ST"}, b.AddressLines)
	assert.Equal(t, "call us", b.ContactLine)
	assert.Equal(t, []byte("png-bytes"), b.LogoPNG)

	b, err = ProvideBranding(nil)
	require.NoError(t, err)
	assert.Equal(t, "Voldhaul LLC", b.CompanyName)
}

func TestProvideServices_Validation(t *testing.T) {
	_, err := ProvideServices(nil)
	assert.Error(t, err)

	_, err = ProvideServices(&ServiceDeps{Logger: zap.NewNop()})
	assert.EqualError(t, err, "repositories are required")

	_, err = ProvideServices(&ServiceDeps{Repos: &RepositoryBundle{}, Logger: zap.NewNop()})
	assert.EqualError(t, err, "transaction manager is required")
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Info("Invoice saved", "invoice_id", int64(4), 42, "dropped", "dangling")
	adapter.Error("Save failed", "error", errors.New("disk full"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Invoice saved", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"invoice_id": int64(4)}, entries[0].ContextMap())

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
}

func ptr[T any](v T) *T {
	return &v
}
