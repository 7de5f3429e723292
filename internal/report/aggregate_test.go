package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung/internal/rates"
	"rechnung/pkg/models"
)

func processedInvoice(date, client, currency string, total float64) models.ProcessedInvoice {
	return models.ProcessedInvoice{
		Record: models.InvoiceRecord{
			Creditor: models.Party{Name: "Muster GmbH", UID: "CHE-123.456.789"},
			Debtor:   models.Party{Name: client},
			Items:    []models.LineItem{{Description: "Work", Amount: total}},
			Date:     date,
			Currency: currency,
		},
		Number:    "2503-042",
		Reference: "RF252503042",
		Total:     total,
	}
}

func TestAggregateMultiCurrencyScenario(t *testing.T) {
	table := rates.Table{"CHF": 1, "EUR": 1.05}
	invoices := []models.ProcessedInvoice{
		processedInvoice("2025-03-14", "Acme AG", "CHF", 100),
		processedInvoice("2025-04-02", "Acme AG", "EUR", 50),
	}

	r, err := NewAggregator(Options{}).Aggregate(2025, invoices, table)
	require.NoError(t, err)

	assert.InDelta(t, 152.5, r.TotalRevenueCHF, 1e-9)
	assert.InDelta(t, 100.0, r.TotalRevenue["CHF"], 1e-9)
	assert.InDelta(t, 50.0, r.TotalRevenue["EUR"], 1e-9)

	client := r.Clients["Acme AG"]
	require.NotNil(t, client)
	assert.Equal(t, 2, client.InvoiceCount)
	assert.InDelta(t, 150.0, client.TotalBilled, 1e-9)
	assert.InDelta(t, 152.5, client.TotalBilledCHF, 1e-9)
	assert.Equal(t, "EUR", client.Currency) // last invoice's currency wins

	march := r.MonthlyRevenue["03"]
	require.NotNil(t, march)
	assert.InDelta(t, 100.0, march.TotalCHF, 1e-9)
	assert.InDelta(t, 100.0, march.ByCurrency["CHF"], 1e-9)

	april := r.MonthlyRevenue["04"]
	require.NotNil(t, april)
	assert.InDelta(t, 52.5, april.TotalCHF, 1e-9)
	assert.InDelta(t, 50.0, april.ByCurrency["EUR"], 1e-9)
}

func TestAggregateCreditorMismatchAborts(t *testing.T) {
	table := rates.Table{"CHF": 1}
	a := processedInvoice("2025-01-01", "Acme AG", "CHF", 100)
	b := processedInvoice("2025-02-01", "Acme AG", "CHF", 200)
	b.Record.Creditor.UID = "CHE-999.999.999" // name matches, UID differs

	r, err := NewAggregator(Options{}).Aggregate(2025, []models.ProcessedInvoice{a, b}, table)
	assert.ErrorIs(t, err, ErrCreditorMismatch)
	assert.Nil(t, r)
}

func TestAggregateSingleInvoiceSkipsConsistencyCheck(t *testing.T) {
	table := rates.Table{"CHF": 1}
	inv := processedInvoice("2025-01-01", "Acme AG", "CHF", 100)

	r, err := NewAggregator(Options{}).Aggregate(2025, []models.ProcessedInvoice{inv}, table)
	require.NoError(t, err)
	assert.Equal(t, "Muster GmbH", r.CreditorName)
	assert.Equal(t, "CHE-123.456.789", r.CreditorUID)
}

func TestAggregateMissingRateFallsBackOneToOne(t *testing.T) {
	table := rates.Table{"CHF": 1} // no GBP entry
	invoices := []models.ProcessedInvoice{
		processedInvoice("2025-05-01", "Acme AG", "GBP", 80),
	}

	r, err := NewAggregator(Options{}).Aggregate(2025, invoices, table)
	require.NoError(t, err)

	assert.InDelta(t, 80.0, r.TotalRevenueCHF, 1e-9)
	assert.InDelta(t, 80.0, r.TotalRevenue["GBP"], 1e-9)
}

func TestAggregateInvoicesSortedByDate(t *testing.T) {
	table := rates.Table{"CHF": 1}
	invoices := []models.ProcessedInvoice{
		processedInvoice("2025-11-30", "Acme AG", "CHF", 1),
		processedInvoice("2025-01-15", "Beta SA", "CHF", 2),
		processedInvoice("2025-06-01", "Acme AG", "CHF", 3),
	}

	r, err := NewAggregator(Options{}).Aggregate(2025, invoices, table)
	require.NoError(t, err)

	require.Len(t, r.Invoices, 3)
	assert.Equal(t, "2025-01-15", r.Invoices[0].Date)
	assert.Equal(t, "2025-06-01", r.Invoices[1].Date)
	assert.Equal(t, "2025-11-30", r.Invoices[2].Date)
}

func TestAggregateCrossTotalsConsistent(t *testing.T) {
	table := rates.Table{"CHF": 1, "EUR": 1.05, "USD": 0.88}
	invoices := []models.ProcessedInvoice{
		processedInvoice("2025-01-10", "Acme AG", "CHF", 1200),
		processedInvoice("2025-02-20", "Beta SA", "EUR", 830.50),
		processedInvoice("2025-02-28", "Acme AG", "USD", 45.99),
		processedInvoice("2025-07-04", "Gamma Sàrl", "EUR", 9999.99),
		processedInvoice("2025-12-31", "Beta SA", "CHF", 0.01),
	}

	r, err := NewAggregator(Options{}).Aggregate(2025, invoices, table)
	require.NoError(t, err)

	var clientSum float64
	for _, client := range r.Clients {
		clientSum += client.TotalBilledCHF
	}
	assert.InDelta(t, r.TotalRevenueCHF, clientSum, 1e-6)

	var monthSum float64
	for _, month := range r.MonthlyRevenue {
		monthSum += month.TotalCHF
	}
	assert.InDelta(t, r.TotalRevenueCHF, monthSum, 1e-6)

	var invoiceSum float64
	for _, inv := range r.Invoices {
		invoiceSum += inv.AmountCHF
	}
	assert.InDelta(t, r.TotalRevenueCHF, invoiceSum, 1e-6)
}

func TestQuartersPastYearIncludesAllQuarters(t *testing.T) {
	table := rates.Table{"CHF": 1, "EUR": 1.05}
	invoices := []models.ProcessedInvoice{
		processedInvoice("2024-02-01", "Acme AG", "CHF", 100),
		processedInvoice("2024-03-01", "Acme AG", "EUR", 200),
		processedInvoice("2024-08-01", "Acme AG", "CHF", 400),
	}

	r, err := NewAggregator(Options{}).Aggregate(2024, invoices, table)
	require.NoError(t, err)

	ref := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	quarters := r.Quarters(ref)
	require.Len(t, quarters, 4)

	assert.Equal(t, 1, quarters[0].Quarter)
	assert.InDelta(t, 100+200*1.05, quarters[0].TotalCHF, 1e-9)
	assert.InDelta(t, 100.0, quarters[0].ByCurrency["CHF"], 1e-9)
	assert.InDelta(t, 200.0, quarters[0].ByCurrency["EUR"], 1e-9)

	// Q2 and Q4 are present but empty
	assert.InDelta(t, 0.0, quarters[1].TotalCHF, 1e-9)
	assert.InDelta(t, 400.0, quarters[2].TotalCHF, 1e-9)
	assert.InDelta(t, 0.0, quarters[3].TotalCHF, 1e-9)
}

func TestQuartersCurrentYearSuppressesFuture(t *testing.T) {
	table := rates.Table{"CHF": 1}
	invoices := []models.ProcessedInvoice{
		processedInvoice("2026-01-15", "Acme AG", "CHF", 100),
	}

	r, err := NewAggregator(Options{}).Aggregate(2026, invoices, table)
	require.NoError(t, err)

	// Reference instant in Q2 of the report year: Q3/Q4 are omitted.
	ref := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	quarters := r.Quarters(ref)
	require.Len(t, quarters, 2)
	assert.Equal(t, 1, quarters[0].Quarter)
	assert.Equal(t, 2, quarters[1].Quarter)
	assert.InDelta(t, 100.0, quarters[0].TotalCHF, 1e-9)
}
