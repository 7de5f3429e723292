package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rechnung/internal/config"
	"rechnung/internal/logger"
)

var version = "1.0.0"

// cfg is the loaded application configuration, injected from main before
// Execute runs. Commands fall back to defaults when it is nil.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rechnung",
	Short: "Rechnung - invoice references and yearly tax reports for Swiss small businesses",
	Long: `Rechnung derives stable invoice numbers, generates ISO 11649 structured
payment references for QR-bill payments, and aggregates a year of invoice
files into a financial report (monthly, quarterly, per-client and grand
totals in CHF) suitable for tax filing.

Invoices are JSON files named "YYYY-MM-<name>.json"; exchange rates are
fetched once per run as a point-in-time snapshot against CHF.`,
	Version: version,
}

// SetConfig injects the loaded configuration before command execution.
func SetConfig(c *config.Config) {
	cfg = c
}

// configOrDefault returns the injected config, or a minimal default when
// configuration loading failed in main.
func configOrDefault() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{
		InvoiceDir:      "invoices",
		ReportDir:       "reports",
		DefaultCurrency: "CHF",
		RatesURL:        "https://open.er-api.com/v6/latest/CHF",
	}
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
