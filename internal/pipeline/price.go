package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/tonnage"
)

const (
	TierSmall = "small_3_to_10"
	TierLarge = "large_12_5_to_27_5"
)

// The large tier is a discrete set of catalog sizes, not a range:
// 11.0 tons is out-of-tier even though it sits between the bands.
var largeTierTons = map[float64]struct{}{
	12.5: {}, 15: {}, 17.5: {}, 20: {}, 25: {}, 27.5: {},
}

func tierFor(tons float64) (string, bool) {
	if tons >= 3.0 && tons <= 10.0 {
		return TierSmall, true
	}
	if _, ok := largeTierTons[tons]; ok {
		return TierLarge, true
	}
	return "", false
}

// Pricer decodes tokens and applies tier pricing. Unit prices come
// from config so the business can correct them without a release.
type Pricer struct {
	decoder    *Decoder
	smallPrice decimal.Decimal
	largePrice decimal.Decimal
}

func NewPricer(cfg config.Config, table *tonnage.Table) *Pricer {
	return &Pricer{
		decoder:    NewDecoder(table),
		smallPrice: decimal.NewFromFloat(cfg.PriceSmallTier),
		largePrice: decimal.NewFromFloat(cfg.PriceLargeTier),
	}
}

// Price turns extracted tokens into a priced/needs-clarification split
// with quantity-aware totals. Every token lands in exactly one bucket,
// so summary counts always conserve quantities.
func (p *Pricer) Price(tokens []internal.ModelToken) internal.PricingResult {
	priced := make([]internal.PricedItem, 0, len(tokens))
	clarify := make([]internal.ClarificationItem, 0)

	grand := decimal.Zero
	pricedUnits := 0
	totalUnits := 0

	for _, token := range tokens {
		totalUnits += token.Quantity

		outcome := p.decoder.Decode(token)
		if !outcome.OK {
			clarify = append(clarify, internal.ClarificationItem{
				Model:    token.Raw,
				Quantity: token.Quantity,
				Reason:   outcome.Reason,
			})
			continue
		}

		tier, ok := tierFor(outcome.Tons)
		if !ok {
			clarify = append(clarify, internal.ClarificationItem{
				Model:    token.Raw,
				Quantity: token.Quantity,
				Reason:   fmt.Sprintf("Tonnage of %g is not in a valid pricing tier.", outcome.Tons),
			})
			continue
		}

		unit := p.smallPrice
		if tier == TierLarge {
			unit = p.largePrice
		}
		lineTotal := unit.Mul(decimal.NewFromInt(int64(token.Quantity)))

		priced = append(priced, internal.PricedItem{
			Model:     token.Raw,
			Quantity:  token.Quantity,
			Tons:      outcome.Tons,
			Tier:      tier,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		grand = grand.Add(lineTotal)
		pricedUnits += token.Quantity
	}

	return internal.PricingResult{
		PricedItems:        priced,
		NeedsClarification: clarify,
		Summary: internal.PricingSummary{
			GrandTotal:       grand,
			PricedUnitsCount: pricedUnits,
			TotalUnitsCount:  totalUnits,
		},
	}
}
