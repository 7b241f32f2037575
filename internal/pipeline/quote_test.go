package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hvacquote/internal"
	"hvacquote/internal/config"
)

type finderFunc func(ctx context.Context, address string) ([]internal.PartnerMatch, error)

func (f finderFunc) FindClosest(ctx context.Context, address string) ([]internal.PartnerMatch, error) {
	return f(ctx, address)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.PriceSmallTier = 725
	cfg.PriceLargeTier = 850
	return cfg
}

func TestQuoteWithPartners(t *testing.T) {
	finder := finderFunc(func(ctx context.Context, address string) ([]internal.PartnerMatch, error) {
		if !strings.Contains(address, "62704") {
			t.Fatalf("unexpected address %q", address)
		}
		return []internal.PartnerMatch{
			{Name: "Acme Mechanical", Address: "400 Oak Ave, Springfield, IL 62701", DistanceMiles: 2.5},
		}, nil
	})
	q := NewQuoter(testConfig(t), testTable(), finder)

	result, err := q.Quote(context.Background(), "Replace AB060X at 1234 Main Street, Springfield IL 62704 asap")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.PricingAnalysis.PricedItems) != 1 {
		t.Fatalf("pricing = %+v", result.PricingAnalysis)
	}
	if result.PartnerLocator.Error != "" || len(result.PartnerLocator.Partners) != 1 {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
	if result.PartnerLocator.Address != "1234 Main Street, Springfield IL 62704" {
		t.Fatalf("address = %q", result.PartnerLocator.Address)
	}
}

func TestQuoteNoAddressStillPrices(t *testing.T) {
	q := NewQuoter(testConfig(t), testTable(), finderFunc(func(context.Context, string) ([]internal.PartnerMatch, error) {
		t.Fatal("finder must not be called without an address")
		return nil, nil
	}))

	result, err := q.Quote(context.Background(), "please quote two units: AB060X and AB125C")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.PricingAnalysis.PricedItems) != 2 {
		t.Fatalf("pricing = %+v", result.PricingAnalysis)
	}
	if result.PartnerLocator.Error == "" || len(result.PartnerLocator.Partners) != 0 {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
}

func TestQuoteLocatorFailureDoesNotAffectPricing(t *testing.T) {
	q := NewQuoter(testConfig(t), testTable(), finderFunc(func(context.Context, string) ([]internal.PartnerMatch, error) {
		return nil, errors.New("geocoding failed")
	}))

	result, err := q.Quote(context.Background(), "AB060X at 1234 Main Street, Springfield IL 62704")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.PricingAnalysis.PricedItems) != 1 {
		t.Fatalf("pricing = %+v", result.PricingAnalysis)
	}
	if result.PartnerLocator.Error != "geocoding failed" {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
}

func TestQuoteNilFinder(t *testing.T) {
	q := NewQuoter(testConfig(t), testTable(), nil)

	result, err := q.Quote(context.Background(), "AB060X at 1234 Main Street, Springfield IL 62704")
	if err != nil {
		t.Fatal(err)
	}
	if result.PartnerLocator.Error != "partner locator not configured" {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
	if result.PartnerLocator.Address == "" {
		t.Fatalf("address should still be extracted: %+v", result.PartnerLocator)
	}
}

func TestQuoteAtOverridesExtraction(t *testing.T) {
	finder := finderFunc(func(ctx context.Context, address string) ([]internal.PartnerMatch, error) {
		if address != "900 Depot Rd, Peoria IL 61602" {
			t.Fatalf("address = %q, want the override", address)
		}
		return []internal.PartnerMatch{{Name: "Acme Mechanical", DistanceMiles: 4.2}}, nil
	})
	q := NewQuoter(testConfig(t), testTable(), finder)

	result, err := q.QuoteAt(context.Background(), "AB060X at 1234 Main Street, Springfield IL 62704", "900 Depot Rd, Peoria IL 61602")
	if err != nil {
		t.Fatal(err)
	}
	if result.PartnerLocator.Address != "900 Depot Rd, Peoria IL 61602" {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
	if len(result.PartnerLocator.Partners) != 1 {
		t.Fatalf("locator = %+v", result.PartnerLocator)
	}
}

func TestQuoteEmptyText(t *testing.T) {
	q := NewQuoter(testConfig(t), testTable(), nil)
	if _, err := q.Quote(context.Background(), "   "); err == nil {
		t.Fatal("want error for empty text")
	}
}

func TestQuoteWithoutTonnageKey(t *testing.T) {
	q := NewQuoter(testConfig(t), nil, nil)
	if _, err := q.Quote(context.Background(), "AB060X"); err == nil {
		t.Fatal("want error when the tonnage key is not loaded")
	}
}

func TestQuoteIdempotent(t *testing.T) {
	q := NewQuoter(testConfig(t), testTable(), nil)
	text := "AB060X and AB125C and AB060X"

	first, err := q.Quote(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := q.Quote(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if !first.PricingAnalysis.Summary.GrandTotal.Equal(second.PricingAnalysis.Summary.GrandTotal) {
		t.Fatalf("grand totals differ: %s vs %s",
			first.PricingAnalysis.Summary.GrandTotal, second.PricingAnalysis.Summary.GrandTotal)
	}
	if len(first.PricingAnalysis.PricedItems) != len(second.PricingAnalysis.PricedItems) {
		t.Fatalf("item counts differ")
	}
}
