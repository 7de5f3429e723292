package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"rechnung/internal/logger"
	"rechnung/internal/rates"
	"rechnung/pkg/models"
)

// ErrCreditorMismatch is returned when invoices in one run name different
// creditors. A tax report mixing two legal entities is data corruption,
// not a per-record problem, so the whole run aborts.
var ErrCreditorMismatch = errors.New("invoices belong to different creditors")

// Options configures an Aggregator. Passed explicitly so multiple runs
// (e.g. several years) can use independent settings.
type Options struct {
	// DefaultCurrency is assumed for invoices without a currency code.
	DefaultCurrency string
}

// Aggregator folds processed invoices into a Report in a single pass.
// It keeps no state between runs.
type Aggregator struct {
	opts Options
	log  zerolog.Logger
}

// NewAggregator creates an Aggregator with the given options.
func NewAggregator(opts Options) *Aggregator {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = rates.BaseCurrency
	}
	return &Aggregator{
		opts: opts,
		log:  logger.WithComponent("aggregator"),
	}
}

// Aggregate builds the yearly report for the given invoices using the
// rate table snapshot. Invoices are processed in input order; the invoice
// list on the returned report is sorted by date ascending.
//
// A creditor identity mismatch aborts before any accumulation. A missing
// conversion rate for a single invoice does not: the CHF amount falls
// back to 1:1 with a logged warning and the run continues.
func (a *Aggregator) Aggregate(year int, invoices []models.ProcessedInvoice, table rates.Table) (*Report, error) {
	if err := checkCreditorConsistency(invoices); err != nil {
		return nil, err
	}

	r := &Report{
		Year:           year,
		TotalRevenue:   map[string]float64{},
		MonthlyRevenue: map[string]*MonthlySummary{},
		Clients:        map[string]*ClientSummary{},
		Invoices:       make([]InvoiceSummary, 0, len(invoices)),
	}
	if len(invoices) > 0 {
		r.CreditorName = invoices[0].Record.Creditor.Name
		r.CreditorUID = invoices[0].Record.Creditor.UID
	}

	for i := range invoices {
		a.accumulate(r, &invoices[i], table)
	}

	sort.SliceStable(r.Invoices, func(i, j int) bool {
		return r.Invoices[i].Date < r.Invoices[j].Date
	})

	a.log.Info().
		Int("year", year).
		Int("invoices", len(r.Invoices)).
		Int("clients", len(r.Clients)).
		Float64("total_chf", r.TotalRevenueCHF).
		Msg("Aggregation completed")

	return r, nil
}

// accumulate folds one invoice into every dimension of the report.
func (a *Aggregator) accumulate(r *Report, inv *models.ProcessedInvoice, table rates.Table) {
	currency := inv.Record.Currency
	if currency == "" {
		currency = a.opts.DefaultCurrency
	}

	total := inv.Total
	totalCHF := total
	if currency != rates.BaseCurrency {
		converted, err := rates.Convert(total, currency, rates.BaseCurrency, table)
		if err != nil {
			a.log.Warn().
				Err(err).
				Str("invoice", inv.Number).
				Str("currency", currency).
				Msg("Conversion failed, falling back to 1:1")
		} else {
			totalCHF = converted
		}
	}

	r.TotalRevenue[currency] += total
	r.TotalRevenueCHF += totalCHF

	month := monthKey(inv.Record.Date)
	bucket, ok := r.MonthlyRevenue[month]
	if !ok {
		bucket = &MonthlySummary{ByCurrency: map[string]float64{}}
		r.MonthlyRevenue[month] = bucket
	}
	bucket.Total += total
	bucket.TotalCHF += totalCHF
	bucket.ByCurrency[currency] += total

	client, ok := r.Clients[inv.Record.Debtor.Name]
	if !ok {
		client = &ClientSummary{}
		r.Clients[inv.Record.Debtor.Name] = client
	}
	client.TotalBilled += total
	client.TotalBilledCHF += totalCHF
	client.InvoiceCount++
	client.Currency = currency // last-write-wins

	r.Invoices = append(r.Invoices, InvoiceSummary{
		Date:      inv.Record.Date,
		Number:    inv.Number,
		Reference: inv.Reference,
		Client:    inv.Record.Debtor.Name,
		Amount:    total,
		Currency:  currency,
		AmountCHF: totalCHF,
		ItemCount: len(inv.Record.Items),
	})
}

// checkCreditorConsistency verifies that all invoices name the same
// creditor (name and tax UID). Only meaningful for two or more invoices.
func checkCreditorConsistency(invoices []models.ProcessedInvoice) error {
	if len(invoices) < 2 {
		return nil
	}

	first := invoices[0].Record.Creditor
	for i := 1; i < len(invoices); i++ {
		c := invoices[i].Record.Creditor
		if c.Name != first.Name || c.UID != first.UID {
			return fmt.Errorf("%w: %q (%s) vs %q (%s) in %s",
				ErrCreditorMismatch,
				first.Name, first.UID,
				c.Name, c.UID,
				invoices[i].Record.SourceFile)
		}
	}

	return nil
}

// monthKey extracts the two-digit month from an ISO date string.
func monthKey(isoDate string) string {
	if len(isoDate) >= 7 {
		return isoDate[5:7]
	}
	return "00"
}
