package invoice

import (
	"time"

	"rechnung/internal/logger"
	"rechnung/internal/reference"
	"rechnung/pkg/models"
)

// Process attaches derived data to each record: the assigned invoice
// number, the ISO 11649 structured reference, and the VAT-inclusive
// total. Records are processed in input order; the first failure aborts.
func Process(records []models.InvoiceRecord, now time.Time) ([]models.ProcessedInvoice, error) {
	log := logger.WithComponent("invoice-processor")

	processed := make([]models.ProcessedInvoice, 0, len(records))
	for i := range records {
		record := records[i]

		number, err := reference.DeriveInvoiceNumber(record.Number, record.SourceFile, &record, now)
		if err != nil {
			return nil, &LoadError{Op: "Process", File: record.SourceFile, Err: err}
		}

		ref, err := reference.GenerateStructuredReference(number)
		if err != nil {
			return nil, &LoadError{Op: "Process", File: record.SourceFile, Err: err}
		}

		processed = append(processed, models.ProcessedInvoice{
			Record:    record,
			Number:    number,
			Reference: ref,
			Total:     record.Total(),
		})

		log.Debug().
			Str("file", record.SourceFile).
			Str("number", number).
			Str("reference", ref).
			Msg("Invoice processed")
	}

	return processed, nil
}
