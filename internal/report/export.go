package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ExportJSON writes the full report as indented JSON. The file is only
// created after aggregation has fully succeeded, so a fatal run never
// leaves a partial report behind.
func ExportJSON(r *Report, path string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}

	return filepath.Abs(path)
}

// ExportCSV writes the chronological invoice list as CSV, one row per
// invoice.
func ExportCSV(r *Report, path string) (string, error) {
	if err := ensureDir(path); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Date", "Number", "Reference", "Client", "Amount", "Currency", "Amount CHF", "Items"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}

	for _, inv := range r.Invoices {
		record := []string{
			inv.Date,
			inv.Number,
			inv.Reference,
			inv.Client,
			strconv.FormatFloat(inv.Amount, 'f', 2, 64),
			inv.Currency,
			strconv.FormatFloat(inv.AmountCHF, 'f', 2, 64),
			strconv.Itoa(inv.ItemCount),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}

	return filepath.Abs(path)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
