// Package invoice loads and validates invoice JSON documents from disk.
//
// One file holds one invoice. Files follow the "YYYY-MM-<freeform>.json"
// naming convention; the name is kept on the record so a missing invoice
// number can be derived from it later.
package invoice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rechnung/internal/logger"
	"rechnung/pkg/models"
)

// isoDateLayout is the only accepted invoice date format. Lexicographic
// order on dates in this layout equals chronological order.
const isoDateLayout = "2006-01-02"

// Loader reads invoice records from files. DefaultCurrency is stamped
// onto records whose file omits the currency field.
type Loader struct {
	DefaultCurrency string
}

// NewLoader creates a Loader. An empty defaultCurrency falls back to CHF.
func NewLoader(defaultCurrency string) *Loader {
	if defaultCurrency == "" {
		defaultCurrency = "CHF"
	}
	return &Loader{DefaultCurrency: defaultCurrency}
}

// LoadFile parses and validates a single invoice file.
func (l *Loader) LoadFile(path string) (*models.InvoiceRecord, error) {
	const op = "LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Op: op, File: path, Err: err}
	}

	var record models.InvoiceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &LoadError{Op: op, File: path, Err: fmt.Errorf("%w: %v", ErrInvalidDocument, err)}
	}

	record.SourceFile = filepath.Base(path)

	if record.Currency == "" {
		record.Currency = l.DefaultCurrency
	}
	record.Currency = strings.ToUpper(record.Currency)

	if err := validate(&record); err != nil {
		return nil, &LoadError{Op: op, File: path, Err: err}
	}

	return &record, nil
}

// LoadDir loads every *.json invoice in dir, in lexicographic filename
// order. Any single invalid file fails the whole load: a tax report over
// a partially read year is worse than no report.
func (l *Loader) LoadDir(dir string) ([]models.InvoiceRecord, error) {
	const op = "LoadDir"
	log := logger.WithComponent("invoice-loader")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Op: op, File: dir, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]models.InvoiceRecord, 0, len(names))
	for _, name := range names {
		record, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	log.Info().
		Int("invoices", len(records)).
		Str("dir", dir).
		Msg("Invoice files loaded")

	return records, nil
}

// validate checks the invariants every loaded record must satisfy.
func validate(record *models.InvoiceRecord) error {
	if record.Date == "" {
		return fmt.Errorf("%w: date is empty", ErrInvalidDateFormat)
	}
	if _, err := time.Parse(isoDateLayout, record.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDateFormat, record.Date)
	}

	if len(record.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range record.Items {
		if item.Amount < 0 {
			return fmt.Errorf("%w: item %d (%s)", ErrNegativeAmount, i, item.Description)
		}
	}

	return nil
}
