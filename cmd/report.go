package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rechnung/internal/invoice"
	"rechnung/internal/logger"
	"rechnung/internal/rates"
	"rechnung/internal/report"
	"rechnung/pkg/models"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate a year of invoices into a CHF financial report",
	Long: `Load every invoice JSON file for a year, derive missing invoice numbers
and ISO 11649 payment references, fetch the current exchange-rate snapshot,
and fold everything into a yearly report with monthly, quarterly, per-client
and grand totals.

All invoices in a run must name the same creditor (name and tax UID); a
mismatch aborts before anything is written. A missing conversion rate for a
single invoice is logged and falls back to 1:1 instead of aborting.`,
	Example: `  # Report for the current year, written to reports/report-<year>.json
  rechnung report

  # Report for 2025 from a specific directory
  rechnung report --year 2025 --invoice-dir ./invoices/2025

  # Also export the invoice list as CSV
  rechnung report --year 2025 --csv invoices-2025.csv`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int("year", time.Now().Year(), "Report year (invoices outside it are skipped)")
	reportCmd.Flags().String("invoice-dir", "", "Directory with invoice JSON files (default: config INVOICE_DIR)")
	reportCmd.Flags().StringP("output", "o", "", "Report JSON path (default: <REPORT_DIR>/report-<year>.json)")
	reportCmd.Flags().String("csv", "", "Also export the invoice list to this CSV path")
	reportCmd.Flags().Int("timeout", 60, "Exchange-rate fetch timeout in seconds")
	reportCmd.Flags().Bool("no-summary", false, "Suppress the console summary tables")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")
	conf := configOrDefault()

	year, _ := cmd.Flags().GetInt("year")
	invoiceDir, _ := cmd.Flags().GetString("invoice-dir")
	outputPath, _ := cmd.Flags().GetString("output")
	csvPath, _ := cmd.Flags().GetString("csv")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	noSummary, _ := cmd.Flags().GetBool("no-summary")

	if invoiceDir == "" {
		invoiceDir = conf.InvoiceDir
	}
	if outputPath == "" {
		outputPath = filepath.Join(conf.ReportDir, fmt.Sprintf("report-%d.json", year))
	}

	log.Info().
		Int("year", year).
		Str("invoice_dir", invoiceDir).
		Str("output", outputPath).
		Msg("Starting report run")

	// Load and process invoices
	loader := invoice.NewLoader(conf.DefaultCurrency)
	records, err := loader.LoadDir(invoiceDir)
	if err != nil {
		log.Error().Err(err).Str("dir", invoiceDir).Msg("Failed to load invoices")
		return err
	}

	records = filterYear(records, year, log)
	if len(records) == 0 {
		return fmt.Errorf("no invoices for %d in %s", year, invoiceDir)
	}

	processed, err := invoice.Process(records, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Invoice processing failed")
		return err
	}

	// Fetch the rate snapshot. A failure here is fatal for the run:
	// cross-currency totals without a snapshot are not tax-accurate.
	ctx, cancel := signalContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	table, err := rates.NewProvider(conf.RatesURL).Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Exchange rate fetch failed, aborting run")
		return fmt.Errorf("exchange rate fetch failed: %w", err)
	}

	// Aggregate
	aggregator := report.NewAggregator(report.Options{DefaultCurrency: conf.DefaultCurrency})
	result, err := aggregator.Aggregate(year, processed, table)
	if err != nil {
		log.Error().Err(err).Msg("Aggregation failed, no report written")
		return err
	}

	// Export only after full success
	written, err := report.ExportJSON(result, outputPath)
	if err != nil {
		log.Error().Err(err).Str("output", outputPath).Msg("Failed to write report")
		return err
	}
	log.Info().Str("file", written).Msg("Report written")

	if csvPath != "" {
		csvWritten, err := report.ExportCSV(result, csvPath)
		if err != nil {
			log.Error().Err(err).Str("csv", csvPath).Msg("Failed to write CSV export")
			return err
		}
		log.Info().Str("file", csvWritten).Msg("CSV export written")
	}

	if !noSummary {
		printSummary(result)
	}

	return nil
}

// filterYear keeps the invoices dated in the report year.
func filterYear(records []models.InvoiceRecord, year int, log zerolog.Logger) []models.InvoiceRecord {
	prefix := fmt.Sprintf("%04d-", year)
	kept := records[:0:0]
	for _, record := range records {
		if strings.HasPrefix(record.Date, prefix) {
			kept = append(kept, record)
			continue
		}
		log.Debug().
			Str("file", record.SourceFile).
			Str("date", record.Date).
			Int("year", year).
			Msg("Skipping invoice outside report year")
	}
	return kept
}

// signalContext creates a context with timeout that is also cancelled on
// SIGINT/SIGTERM.
func signalContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, cancelling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// printSummary renders the report's headline figures as console tables.
func printSummary(r *report.Report) {
	pterm.DefaultSection.Printfln("Report %d — %s", r.Year, r.CreditorName)

	totals := pterm.TableData{{"Currency", "Revenue"}}
	for _, currency := range r.Currencies() {
		totals = append(totals, []string{currency, fmt.Sprintf("%.2f", r.TotalRevenue[currency])})
	}
	totals = append(totals, []string{"Total CHF", fmt.Sprintf("%.2f", r.TotalRevenueCHF)})
	pterm.DefaultTable.WithHasHeader().WithData(totals).Render()

	monthly := pterm.TableData{{"Month", "Total CHF"}}
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%02d", m)
		bucket, ok := r.MonthlyRevenue[key]
		if !ok {
			continue
		}
		monthly = append(monthly, []string{key, fmt.Sprintf("%.2f", bucket.TotalCHF)})
	}
	pterm.DefaultSection.Println("Monthly")
	pterm.DefaultTable.WithHasHeader().WithData(monthly).Render()

	quarterly := pterm.TableData{{"Quarter", "Total CHF"}}
	for _, q := range r.Quarters(time.Now()) {
		quarterly = append(quarterly, []string{fmt.Sprintf("Q%d", q.Quarter), fmt.Sprintf("%.2f", q.TotalCHF)})
	}
	pterm.DefaultSection.Println("Quarterly")
	pterm.DefaultTable.WithHasHeader().WithData(quarterly).Render()

	clients := pterm.TableData{{"Client", "Invoices", "Billed CHF"}}
	for name, summary := range r.Clients {
		clients = append(clients, []string{
			name,
			fmt.Sprintf("%d", summary.InvoiceCount),
			fmt.Sprintf("%.2f", summary.TotalBilledCHF),
		})
	}
	pterm.DefaultSection.Println("Clients")
	pterm.DefaultTable.WithHasHeader().WithData(clients).Render()
}
