// Package cli is the invoicectl command tree. It runs the same services as
// the HTTP server against the configured database.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voldhaul/load-invoicing/internal/config"
	"github.com/voldhaul/load-invoicing/internal/container"
	httpapi "github.com/voldhaul/load-invoicing/internal/interfaces/http"
	"github.com/voldhaul/load-invoicing/pkg/utils"
)

// rootOptions are the persistent flags plus the container they produce
type rootOptions struct {
	configPath string
	envFile    string
	dbPath     string
	logLevel   string

	app *container.Container
}

// NewRootCommand builds the invoicectl command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "invoicectl",
		Short: "Preview, save and export trucking-load invoices",
		Long: `invoicectl works on the same database as the invoicing server.

Examples:
  invoicectl clients
  invoicectl preview --client 7 --start 2024-06-01 --end 2024-06-30
  invoicectl save --client 7 --start 2024-06-01 --end 2024-06-30 --number INV-1001
  invoicectl export --id 12 --format pdf --out ./exports`,
		Version:       httpapi.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the YAML config file (empty for defaults only)")
	flags.StringVar(&opts.envFile, "env", ".env", "optional .env file loaded before the config")
	flags.StringVar(&opts.dbPath, "db", "", "database path, overrides database.path")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overrides logger.level")

	root.AddCommand(
		newClientsCommand(opts),
		newPreviewCommand(opts),
		newSaveCommand(opts),
		newExportCommand(opts),
	)
	return root
}

// withApp starts the container for one command and always closes it
func (o *rootOptions) withApp(run func(cmd *cobra.Command, app *container.Container) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := o.start(cmd); err != nil {
			return err
		}
		defer func() {
			if closeErr := o.close(); err == nil {
				err = closeErr
			}
		}()
		return run(cmd, o.app)
	}
}

func (o *rootOptions) start(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}

	// stdout carries command output
	logSettings := cfg.LoggerSettings()
	if logSettings.OutputPath == "" || logSettings.OutputPath == "stdout" {
		logSettings.OutputPath = "stderr"
	}
	logger, err := utils.NewLogger(logSettings)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := app.Start(cmd.Context()); err != nil {
		return err
	}
	o.app = app
	return nil
}

func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	logger := o.app.Logger()
	err := o.app.Close()
	o.app = nil
	_ = logger.Sync()
	if err != nil {
		logger.Error("Container close failed", zap.Error(err))
	}
	return err
}

// writeJSON prints v indented, one document per command
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
