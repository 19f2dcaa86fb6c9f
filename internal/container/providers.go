package container

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/application/service"
	"github.com/voldhaul/load-invoicing/internal/config"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/persistence/repository"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/persistence/sqlite"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/render"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/storage"
	httpapi "github.com/voldhaul/load-invoicing/internal/interfaces/http"
	"github.com/voldhaul/load-invoicing/migrations"
	"github.com/voldhaul/load-invoicing/pkg/database"
)

// DatabaseBundle holds the connection and the transaction manager built on it.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and applies pending migrations.
// Migrations come from cfg.MigrationsDir when set, otherwise from the
// copies compiled into the binary.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}

	if err := database.NewMigrator(db, logger).RunMigrations(source); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Loads:    repository.NewLoadRepository(sqlDB, logger),
		Invoices: repository.NewInvoiceRepository(sqlDB, logger),
	}, nil
}

// ProvideBranding builds the render branding, reading the logo file if one
// is configured.
func ProvideBranding(cfg *config.BrandingConfig) (render.Branding, error) {
	if cfg == nil {
		return render.DefaultBranding(), nil
	}

	branding := render.Branding{
		CompanyName:  cfg.CompanyName,
		AddressLines: cfg.AddressLines,
		ContactLine:  cfg.ContactLine,
	}

	if cfg.LogoPath != "" {
		logo, err := os.ReadFile(cfg.LogoPath)
		if err != nil {
			return render.Branding{}, fmt.Errorf("failed to read logo: %w", err)
		}
		branding.LogoPNG = logo
	}

	return branding, nil
}

// ProvideRenderers returns the document formats offered for export.
func ProvideRenderers(branding render.Branding) []port.InvoiceRenderer {
	return []port.InvoiceRenderer{
		render.NewPDFRenderer(branding),
		render.NewXLSXRenderer(branding),
	}
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Renderers []port.InvoiceRenderer
	Clock     port.Clock
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	invoices := service.NewInvoiceService(
		deps.Repos.Loads,
		deps.Repos.Invoices,
		deps.TxManager,
		deps.Clock,
		serviceLogger,
	)

	return &ServiceBundle{
		Invoices: invoices,
		Exports:  service.NewExportService(invoices, serviceLogger, deps.Renderers...),
	}, nil
}

// ProvideStorage creates the export file storage.
func ProvideStorage(cfg *config.ExportConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("export.output_dir is required")
	}
	return storage.NewLocalFileStorage(cfg.OutputDir, logger), nil
}

// ProvideServer creates the HTTP server over the services.
func ProvideServer(cfg *config.ServerConfig, services *ServiceBundle, logger *zap.Logger) (*httpapi.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if services == nil {
		return nil, fmt.Errorf("services are required")
	}

	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	serverCfg.BasePath = cfg.BasePath
	if cfg.ReadTimeout > 0 {
		serverCfg.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		serverCfg.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.ShutdownTimeout > 0 {
		serverCfg.ShutdownTimeout = cfg.ShutdownTimeout
	}
	if cfg.AllowedOrigins != nil {
		serverCfg.AllowedOrigins = cfg.AllowedOrigins
	}

	return httpapi.NewServer(serverCfg, services.Invoices, services.Exports, &zapLoggerAdapter{logger: logger}), nil
}
