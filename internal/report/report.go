// Package report folds processed invoices into a yearly financial report:
// monthly, quarterly and per-client totals in native currencies and CHF,
// with cross-checked consistency between the breakdowns.
package report

import (
	"fmt"
	"sort"
	"time"
)

// MonthlySummary accumulates the revenue of one calendar month.
type MonthlySummary struct {
	// Total is the native-currency revenue, summed without conversion.
	Total float64 `json:"total"`

	// TotalCHF is the revenue converted into CHF.
	TotalCHF float64 `json:"totalCHF"`

	// ByCurrency breaks Total down per native currency.
	ByCurrency map[string]float64 `json:"byCurrency"`
}

// QuarterlySummary is derived on demand from the monthly buckets.
type QuarterlySummary struct {
	Quarter    int                `json:"quarter"` // 1..4
	TotalCHF   float64            `json:"totalCHF"`
	ByCurrency map[string]float64 `json:"byCurrency"`
}

// ClientSummary accumulates everything billed to one debtor.
type ClientSummary struct {
	TotalBilled    float64 `json:"totalBilled"`
	TotalBilledCHF float64 `json:"totalBilledCHF"`
	InvoiceCount   int     `json:"invoiceCount"`

	// Currency is the currency of the client's most recent invoice in
	// input order. When a client is billed in several currencies over
	// the year, earlier ones are overwritten; only this last-seen code
	// is reported.
	Currency string `json:"currency"`
}

// InvoiceSummary is one row of the report's chronological invoice list.
type InvoiceSummary struct {
	Date      string  `json:"date"`
	Number    string  `json:"number"`
	Reference string  `json:"reference"`
	Client    string  `json:"client"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	AmountCHF float64 `json:"amountCHF"`
	ItemCount int     `json:"itemCount"`
}

// Report is the aggregate result of one run. It is built once and
// read-only afterwards. For any report, the client CHF totals and the
// monthly CHF totals each sum to TotalRevenueCHF (within floating-point
// tolerance).
type Report struct {
	Year int `json:"year"`

	// Creditor identifies the single legal entity the report covers.
	CreditorName string `json:"creditorName"`
	CreditorUID  string `json:"creditorUID"`

	// TotalRevenue holds per-currency native totals, never converted.
	TotalRevenue map[string]float64 `json:"totalRevenue"`

	// TotalRevenueCHF is the grand total in the reporting currency.
	TotalRevenueCHF float64 `json:"totalRevenueCHF"`

	// MonthlyRevenue is keyed by two-digit month ("01".."12").
	MonthlyRevenue map[string]*MonthlySummary `json:"monthlyRevenue"`

	// Clients is keyed by debtor name.
	Clients map[string]*ClientSummary `json:"clients"`

	// Invoices lists every invoice of the run, sorted by date ascending.
	Invoices []InvoiceSummary `json:"invoices"`
}

// Quarters derives quarterly figures from the monthly buckets. Months
// group into quarter ceil(m/3); CHF totals are summed and the per-currency
// maps merged. For a report covering ref's own year, quarters after ref's
// quarter are omitted; for past years all four quarters are returned even
// when empty.
func (r *Report) Quarters(ref time.Time) []QuarterlySummary {
	last := 4
	if r.Year == ref.Year() {
		last = (int(ref.Month()) + 2) / 3
	}

	quarters := make([]QuarterlySummary, 0, last)
	for q := 1; q <= last; q++ {
		summary := QuarterlySummary{
			Quarter:    q,
			ByCurrency: map[string]float64{},
		}
		for m := (q-1)*3 + 1; m <= q*3; m++ {
			month, ok := r.MonthlyRevenue[fmt.Sprintf("%02d", m)]
			if !ok {
				continue
			}
			summary.TotalCHF += month.TotalCHF
			for currency, amount := range month.ByCurrency {
				summary.ByCurrency[currency] += amount
			}
		}
		quarters = append(quarters, summary)
	}

	return quarters
}

// Currencies returns the currency codes seen in the run, sorted.
func (r *Report) Currencies() []string {
	codes := make([]string, 0, len(r.TotalRevenue))
	for code := range r.TotalRevenue {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
