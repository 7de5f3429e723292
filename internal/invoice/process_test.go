package invoice

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung/pkg/models"
)

func sampleRecord(sourceFile string) models.InvoiceRecord {
	vat := 7.7
	return models.InvoiceRecord{
		Creditor:   models.Party{Name: "Muster GmbH", UID: "CHE-123.456.789"},
		Debtor:     models.Party{Name: "Acme AG"},
		Items:      []models.LineItem{{Description: "Consulting", Amount: 1000}},
		Date:       "2025-03-14",
		VATRate:    &vat,
		Currency:   "CHF",
		SourceFile: sourceFile,
	}
}

func TestProcessDerivesNumberAndReference(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []models.InvoiceRecord{sampleRecord("2025-03-acme.json")}

	processed, err := Process(records, now)
	require.NoError(t, err)
	require.Len(t, processed, 1)

	inv := processed[0]
	assert.Regexp(t, regexp.MustCompile(`^2503-\d{3}$`), inv.Number)
	assert.True(t, strings.HasPrefix(inv.Reference, "RF"))
	assert.InDelta(t, 1077.0, inv.Total, 1e-9)

	// The reference payload is the number stripped to alphanumerics.
	assert.Equal(t, strings.ReplaceAll(inv.Number, "-", ""), inv.Reference[4:])
}

func TestProcessKeepsExplicitNumber(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	record := sampleRecord("2025-03-acme.json")
	record.Number = "RE-0815"

	processed, err := Process([]models.InvoiceRecord{record}, now)
	require.NoError(t, err)
	assert.Equal(t, "RE-0815", processed[0].Number)
}

func TestProcessDeterministicAcrossRuns(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []models.InvoiceRecord{sampleRecord("2025-03-acme.json")}

	first, err := Process(records, now)
	require.NoError(t, err)
	second, err := Process(records, now)
	require.NoError(t, err)

	assert.Equal(t, first[0].Number, second[0].Number)
	assert.Equal(t, first[0].Reference, second[0].Reference)
}
