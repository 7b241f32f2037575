package internal

import "github.com/shopspring/decimal"

// ModelFamily identifies which extraction rule produced a token and
// therefore which decoding path applies to it.
type ModelFamily string

const (
	// FamilyStandard is the two-letter-prefix family decoded positionally
	// against the tonnage key.
	FamilyStandard ModelFamily = "standard"
	// FamilyAlternate is the three-letter-prefix family decoded through a
	// fixed capacity map.
	FamilyAlternate ModelFamily = "alternate"
)

// ModelToken is one distinct model string found in a request, with how
// many times it appeared. Order is the zero-based index of its first
// appearance in the text.
type ModelToken struct {
	Raw      string
	Family   ModelFamily
	Quantity int
	Order    int
}

type PricedItem struct {
	Model     string          `json:"model"`
	Quantity  int             `json:"quantity"`
	Tons      float64         `json:"tons"`
	Tier      string          `json:"tier"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type ClarificationItem struct {
	Model    string `json:"model"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type PricingSummary struct {
	GrandTotal       decimal.Decimal `json:"grandTotal"`
	PricedUnitsCount int             `json:"pricedUnitsCount"`
	TotalUnitsCount  int             `json:"totalUnitsCount"`
}

type PricingResult struct {
	PricedItems        []PricedItem        `json:"pricedItems"`
	NeedsClarification []ClarificationItem `json:"needsClarification"`
	Summary            PricingSummary      `json:"summary"`
}

// PartnerLocatorResult is the locator half of a quote. Either Partners
// is populated or Error explains why the lookup did not happen; the
// pricing half is never affected either way.
type PartnerLocatorResult struct {
	Address  string         `json:"address,omitempty"`
	Partners []PartnerMatch `json:"partners,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type QuoteResult struct {
	PricingAnalysis PricingResult        `json:"pricingAnalysis"`
	PartnerLocator  PartnerLocatorResult `json:"partnerLocator"`
}

// Partner is one row of the service-partner roster. Coordinates are
// nil until partners:geocode backfills them.
type Partner struct {
	ID           int
	Name         string
	AddressLine1 string
	City         string
	State        string
	PostalCode   string
	Latitude     *float64
	Longitude    *float64
}

type PartnerMatch struct {
	Name          string  `json:"partnerName"`
	Address       string  `json:"address"`
	DistanceMiles float64 `json:"distanceMiles"`
}

// TonnageCode is one entry of the external capacity-code key. Code is
// the exact string from the source file; "03" and "3" are different
// entries.
type TonnageCode struct {
	Code string
	Tons float64
}

// RequestRow is a stored inbound RFQ email.
type RequestRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type MailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type QuoteLineStatus string

const (
	LinePriced  QuoteLineStatus = "PRICED"
	LineClarify QuoteLineStatus = "CLARIFY"
)

// QuoteLineRow is one persisted line of a processed request, priced or
// needing clarification, in first-appearance order.
type QuoteLineRow struct {
	Position  int
	Model     string
	Family    string
	Quantity  int
	Tons      *float64
	Tier      *string
	UnitPrice *string
	LineTotal *string
	Status    QuoteLineStatus
	Reason    *string
}
