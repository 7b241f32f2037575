package pipeline

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hvacquote/internal/config"
)

func testPricer(t *testing.T) *Pricer {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.PriceSmallTier = 725
	cfg.PriceLargeTier = 850
	return NewPricer(cfg, testTable())
}

func TestPriceSingleSmallTierUnit(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("please quote one AB060X for the roof"))

	if len(result.PricedItems) != 1 || len(result.NeedsClarification) != 0 {
		t.Fatalf("result = %+v", result)
	}
	item := result.PricedItems[0]
	if item.Quantity != 1 || item.Tons != 5.0 || item.Tier != TierSmall {
		t.Fatalf("item = %+v", item)
	}
	if !item.UnitPrice.Equal(decimal.NewFromInt(725)) || !item.LineTotal.Equal(decimal.NewFromInt(725)) {
		t.Fatalf("item = %+v", item)
	}
	if !result.Summary.GrandTotal.Equal(decimal.NewFromInt(725)) {
		t.Fatalf("summary = %+v", result.Summary)
	}
}

func TestPriceRepeatedModelAggregates(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("AB060X on the east wing, AB060X on the west wing"))

	if len(result.PricedItems) != 1 {
		t.Fatalf("result = %+v", result)
	}
	item := result.PricedItems[0]
	if item.Quantity != 2 || !item.LineTotal.Equal(decimal.NewFromInt(1450)) {
		t.Fatalf("item = %+v", item)
	}
	if result.Summary.TotalUnitsCount != 2 || result.Summary.PricedUnitsCount != 2 {
		t.Fatalf("summary = %+v", result.Summary)
	}
}

func TestPriceLargeTier(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("one AB125C please"))

	if len(result.PricedItems) != 1 {
		t.Fatalf("result = %+v", result)
	}
	item := result.PricedItems[0]
	if item.Tier != TierLarge || !item.UnitPrice.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("item = %+v", item)
	}
}

func TestPriceUnknownCodeNeedsClarification(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("one AB099X please"))

	if len(result.PricedItems) != 0 || len(result.NeedsClarification) != 1 {
		t.Fatalf("result = %+v", result)
	}
	item := result.NeedsClarification[0]
	if !strings.Contains(item.Reason, "not found") {
		t.Fatalf("reason = %q", item.Reason)
	}
	if result.Summary.TotalUnitsCount != 1 || result.Summary.PricedUnitsCount != 0 {
		t.Fatalf("summary = %+v", result.Summary)
	}
	if !result.Summary.GrandTotal.IsZero() {
		t.Fatalf("grand total = %s", result.Summary.GrandTotal)
	}
}

func TestPriceOutOfTierTonnage(t *testing.T) {
	// 11.0 tons decodes fine but sits between the tiers.
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("one AB110C please"))

	if len(result.PricedItems) != 0 || len(result.NeedsClarification) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.NeedsClarification[0].Reason, "not in a valid pricing tier") {
		t.Fatalf("reason = %q", result.NeedsClarification[0].Reason)
	}
}

func TestPriceEmptyText(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("no equipment mentioned at all"))

	if len(result.PricedItems) != 0 || len(result.NeedsClarification) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if !result.Summary.GrandTotal.IsZero() || result.Summary.TotalUnitsCount != 0 {
		t.Fatalf("summary = %+v", result.Summary)
	}
}

func TestPriceMixedConservesUnits(t *testing.T) {
	p := testPricer(t)
	result := p.Price(ExtractModelTokens("AB060X, AB125C, AB099X and AB060X again"))

	pricedUnits := 0
	for _, item := range result.PricedItems {
		pricedUnits += item.Quantity
	}
	clarifyUnits := 0
	for _, item := range result.NeedsClarification {
		clarifyUnits += item.Quantity
	}
	if pricedUnits != result.Summary.PricedUnitsCount {
		t.Fatalf("priced units %d != summary %d", pricedUnits, result.Summary.PricedUnitsCount)
	}
	if pricedUnits+clarifyUnits != result.Summary.TotalUnitsCount {
		t.Fatalf("units not conserved: %d + %d != %d", pricedUnits, clarifyUnits, result.Summary.TotalUnitsCount)
	}
	if result.Summary.TotalUnitsCount != 4 {
		t.Fatalf("summary = %+v", result.Summary)
	}
}
