// Package rates provides the exchange-rate table used for CHF reporting
// and the arithmetic that converts invoice amounts between currencies.
package rates

import (
	"errors"
	"fmt"
)

// BaseCurrency is the fixed reporting currency for all tax aggregation.
const BaseCurrency = "CHF"

// ErrMissingRate is returned when a conversion involves a currency the
// rate table does not carry.
var ErrMissingRate = errors.New("currency missing from rate table")

// Table maps an ISO 4217 currency code to the CHF value of one unit of
// that currency. A valid table always contains "CHF" -> 1. Tables are a
// point-in-time snapshot, shared read-only across an aggregation run.
type Table map[string]float64

// Has reports whether the table carries a rate for the currency.
func (t Table) Has(currency string) bool {
	_, ok := t[currency]
	return ok
}

// Convert converts an amount between two currencies via the table's CHF
// base. When from and to match, the amount is returned untouched, without
// requiring a table entry. No rounding is applied at any step; display
// rounding is the caller's concern.
func Convert(amount float64, from, to string, table Table) (float64, error) {
	if from == to {
		return amount, nil
	}

	fromRate, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingRate, from)
	}
	toRate, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingRate, to)
	}

	return amount * fromRate / toRate, nil
}
