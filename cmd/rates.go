package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rechnung/internal/logger"
	"rechnung/internal/rates"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch and display the current CHF exchange-rate table",
	Long: `Fetch a point-in-time exchange-rate snapshot from the configured quote
service and display it as "CHF value of one unit" per currency — the same
table a report run uses to convert invoice totals into CHF.`,
	Args: cobra.NoArgs,
	RunE: runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)

	ratesCmd.Flags().Int("timeout", 30, "Fetch timeout in seconds")
}

func runRates(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rates")
	conf := configOrDefault()

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := signalContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	table, err := rates.NewProvider(conf.RatesURL).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("exchange rate fetch failed: %w", err)
	}

	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	data := pterm.TableData{{"Currency", "CHF per unit"}}
	for _, code := range codes {
		data = append(data, []string{code, fmt.Sprintf("%.6f", table[code])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	return nil
}
