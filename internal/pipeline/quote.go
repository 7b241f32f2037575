package pipeline

import (
	"context"
	"errors"
	"strings"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/tonnage"
)

// PartnerFinder locates the closest service partners for an address.
// Implemented by partners.Locator; nil when no Maps key is configured.
type PartnerFinder interface {
	FindClosest(ctx context.Context, address string) ([]internal.PartnerMatch, error)
}

// Quoter runs the full parse-and-price pipeline over one text and
// merges in the partner lookup. Stateless per call apart from the
// read-only tonnage table, so one Quoter serves concurrent requests.
type Quoter struct {
	table  *tonnage.Table
	pricer *Pricer
	finder PartnerFinder
}

func NewQuoter(cfg config.Config, table *tonnage.Table, finder PartnerFinder) *Quoter {
	q := &Quoter{table: table, finder: finder}
	if table != nil {
		q.pricer = NewPricer(cfg, table)
	}
	return q
}

// Quote prices the models named in text and locates partners for the
// first address-shaped substring. A missing address or a locator
// failure degrades only the locator half of the result; per-model
// failures become clarification items, never errors.
func (q *Quoter) Quote(ctx context.Context, text string) (internal.QuoteResult, error) {
	address, found := ExtractAddress(text)
	return q.quote(ctx, text, address, found)
}

// QuoteAt is Quote with the service address supplied by the caller
// instead of extracted from the text.
func (q *Quoter) QuoteAt(ctx context.Context, text, address string) (internal.QuoteResult, error) {
	return q.quote(ctx, text, address, strings.TrimSpace(address) != "")
}

func (q *Quoter) quote(ctx context.Context, text, address string, found bool) (internal.QuoteResult, error) {
	if strings.TrimSpace(text) == "" {
		return internal.QuoteResult{}, errors.New("no text provided")
	}
	if q.pricer == nil {
		return internal.QuoteResult{}, errors.New("tonnage key not loaded")
	}

	tokens := ExtractModelTokens(ScrubSerials(text))
	pricing := q.pricer.Price(tokens)

	locator := internal.PartnerLocatorResult{}
	switch {
	case !found:
		locator.Error = "could not extract a valid address from the text"
	case q.finder == nil:
		locator.Address = address
		locator.Error = "partner locator not configured"
	default:
		locator.Address = address
		matches, err := q.finder.FindClosest(ctx, address)
		if err != nil {
			locator.Error = err.Error()
		} else {
			locator.Partners = matches
		}
	}

	return internal.QuoteResult{PricingAnalysis: pricing, PartnerLocator: locator}, nil
}
