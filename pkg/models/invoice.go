package models

// Party identifies one side of an invoice. The creditor (issuer) carries
// the full payment identity; for debtors only the name and address fields
// are populated.
type Party struct {
	Name           string `json:"name"`
	UID            string `json:"uid,omitempty"` // Swiss tax UID (CHE-...), creditor only
	Address        string `json:"address"`
	BuildingNumber string `json:"buildingNumber"`
	Zip            string `json:"zip"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	IBAN           string `json:"iban,omitempty"`
	SWIFT          string `json:"swift,omitempty"`
	AccountName    string `json:"accountName,omitempty"`
}

// LineItem is a single billed position. Amount is in the invoice currency
// and must be non-negative.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// InvoiceRecord is the parsed content of one invoice file. Records are
// immutable after loading; derived data lives on ProcessedInvoice.
type InvoiceRecord struct {
	// Number is the explicit invoice number, if the file carries one.
	// Empty means a number is derived from the filename and content hash.
	Number string `json:"number,omitempty"`

	Creditor Party `json:"creditor"`
	Debtor   Party `json:"debtor"`

	// Columns are the table headers used by downstream renderers.
	Columns []string   `json:"columns"`
	Items   []LineItem `json:"items"`

	// Language selects the localized template: DE, EN, FR or IT.
	Language string `json:"language"`

	// Date is the invoice date as ISO 8601 (YYYY-MM-DD). Lexicographic
	// order on this field equals chronological order.
	Date string `json:"date"`

	// VATRate is the VAT percentage applied to the item subtotal.
	// Nil means no VAT line.
	VATRate *float64 `json:"vatRate"`

	// Currency is the ISO 4217 code; defaults to CHF when absent.
	Currency string `json:"currency,omitempty"`

	// SourceFile is the originating filename, kept for fallback
	// numbering (YYYY-MM-<freeform>.json convention).
	SourceFile string `json:"-"`
}

// Subtotal returns the sum of all line item amounts, before VAT.
func (r *InvoiceRecord) Subtotal() float64 {
	var sum float64
	for _, item := range r.Items {
		sum += item.Amount
	}
	return sum
}

// Total returns the invoice total in its native currency: the item
// subtotal plus VAT when a rate is set.
func (r *InvoiceRecord) Total() float64 {
	total := r.Subtotal()
	if r.VATRate != nil {
		total *= 1 + *r.VATRate/100
	}
	return total
}

// ProcessedInvoice is an InvoiceRecord with its derived identifiers and
// total attached. Owned by the aggregation run that created it.
type ProcessedInvoice struct {
	Record InvoiceRecord

	// Number is the assigned invoice number (explicit or derived).
	Number string

	// Reference is the ISO 11649 structured creditor reference (RFxx...).
	Reference string

	// Total is the invoice total in the invoice's native currency,
	// including VAT.
	Total float64
}
