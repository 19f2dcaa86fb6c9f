package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voldhaul/load-invoicing/internal/application/port"
	"github.com/voldhaul/load-invoicing/internal/application/service"
	"github.com/voldhaul/load-invoicing/internal/container"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
	"github.com/voldhaul/load-invoicing/internal/infrastructure/storage"
)

type rangeFlags struct {
	clientID int64
	start    string
	end      string
	number   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.clientID, "client", 0, "client id")
	cmd.Flags().StringVar(&f.start, "start", "", "first delivery day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "last delivery day, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&f.number, "number", "", "invoice number; generated as YYMMDD-<client> when empty")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *rangeFlags) previewRequest() service.PreviewRequest {
	return service.PreviewRequest{
		ClientID:      f.clientID,
		StartDate:     f.start,
		EndDate:       f.end,
		InvoiceNumber: f.number,
	}
}

func newClientsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients that have loads on record",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, app *container.Container) error {
			clients, err := app.Services().Invoices.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			if clients == nil {
				clients = []*entity.Client{}
			}
			return writeJSON(cmd.OutOrStdout(), clients)
		}),
	}
}

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the invoice a client's loads would produce, as JSON",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, app *container.Container) error {
			doc, err := app.Services().Invoices.BuildPreview(cmd.Context(), flags.previewRequest())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		}),
	}
	flags.register(cmd)
	return cmd
}

// saveResult is printed after a save
type saveResult struct {
	ID            int64   `json:"id_bill_invoices"`
	InvoiceNumber string  `json:"invoice_number"`
	LoadCount     int     `json:"invoice_loadcount"`
	TotalAmount   float64 `json:"invoice_total_amount"`
}

func newSaveCommand(opts *rootOptions) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Build the preview and store it as an invoice",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, app *container.Container) error {
			invoices := app.Services().Invoices

			doc, err := invoices.BuildPreview(cmd.Context(), flags.previewRequest())
			if err != nil {
				return err
			}

			h := doc.Invoice
			id, err := invoices.SaveInvoice(cmd.Context(), service.SaveInvoiceRequest{
				ClientID:      &h.ClientID,
				StartDate:     &h.StartDate,
				EndDate:       &h.EndDate,
				InvoiceNumber: &h.InvoiceNumber,
				TotalAmount:   &h.TotalAmount,
				LoadCount:     &h.LoadCount,
				TonTotal:      &h.TonTotal,
				MileTotal:     &h.MileTotal,
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), saveResult{
				ID:            id,
				InvoiceNumber: h.InvoiceNumber,
				LoadCount:     h.LoadCount,
				TotalAmount:   h.TotalAmount,
			})
		}),
	}
	flags.register(cmd)
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		invoiceID int64
		format    string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a saved invoice to a PDF or XLSX file",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, app *container.Container) error {
			exported, err := app.Services().Exports.Export(cmd.Context(), invoiceID, format)
			if err != nil {
				return err
			}

			var files port.FileStorage = app.FileStorage()
			if outDir != "" {
				files = storage.NewLocalFileStorage(outDir, app.Logger())
			}
			replaced := files.Exists(cmd.Context(), exported.Filename)
			if err := files.Save(cmd.Context(), exported.Filename, exported.Content); err != nil {
				return err
			}

			path, err := filepath.Abs(files.GetFullPath(exported.Filename))
			if err != nil {
				path = files.GetFullPath(exported.Filename)
			}
			if replaced {
				app.Logger().Info("Replaced existing export", zap.String("path", path), zap.Int64("invoice_id", invoiceID))
				fmt.Fprintf(cmd.ErrOrStderr(), "replaced %s\n", path)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		}),
	}

	cmd.Flags().Int64Var(&invoiceID, "id", 0, "saved invoice id")
	cmd.Flags().StringVar(&format, "format", entity.FormatPDF, "pdf or xlsx")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory, overrides export.output_dir")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
