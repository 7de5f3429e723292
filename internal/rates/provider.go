package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"rechnung/internal/logger"
)

// Provider fetches a snapshot of exchange rates from a remote quote
// service. The service reports how much of each currency one CHF buys;
// the provider inverts every non-CHF rate so the resulting Table holds
// the CHF value of one unit of each currency instead.
//
// Any transport or parse failure is returned as an error: a run that
// needs cross-currency totals must not proceed on a missing snapshot.
type Provider struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// quoteResponse is the wire shape of the rate service.
type quoteResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// NewProvider creates a Provider for the given quote endpoint. The
// endpoint must quote against a CHF base.
func NewProvider(url string) *Provider {
	return &Provider{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithComponent("rates"),
	}
}

// Fetch retrieves the current rate snapshot. The returned table always
// carries "CHF" -> 1 plus one inverted entry per currency the service
// reported.
func (p *Provider) Fetch(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate service returned %s", resp.Status)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decoding rate response: %w", err)
	}

	if quote.BaseCode != "" && quote.BaseCode != BaseCurrency {
		return nil, fmt.Errorf("rate service quoted base %s, want %s", quote.BaseCode, BaseCurrency)
	}
	if len(quote.Rates) == 0 {
		return nil, fmt.Errorf("rate service returned no rates")
	}

	table := Table{BaseCurrency: 1}
	for code, perCHF := range quote.Rates {
		if code == BaseCurrency {
			continue
		}
		if perCHF <= 0 {
			p.log.Warn().
				Str("currency", code).
				Float64("rate", perCHF).
				Msg("Skipping non-positive quoted rate")
			continue
		}
		// Quoted as units of code per CHF; table stores CHF per unit.
		table[code] = 1 / perCHF
	}

	p.log.Info().
		Int("currencies", len(table)).
		Str("url", p.url).
		Msg("Exchange rate snapshot fetched")

	return table, nil
}
