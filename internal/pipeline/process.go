package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/storage"
	"hvacquote/internal/tonnage"
	"hvacquote/internal/util"
)

// ProcessingService turns stored RFQ mail into persisted quote lines.
type ProcessingService struct {
	db     *storage.DB
	cfg    config.Config
	quoter *Quoter
}

func NewProcessingService(db *storage.DB, cfg config.Config, table *tonnage.Table, finder PartnerFinder) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, quoter: NewQuoter(cfg, table, finder)}
}

type ProcessResult struct {
	RequestID int
	Lines     int
	Skipped   bool
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	req, err := s.db.MustRequestByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessRequest(ctx, req)
}

// ProcessPending processes requests in "fetched" state, oldest first.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListRequestsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}

	processedRequests := 0
	processedLines := 0
	for _, req := range pending {
		if provider != "" && req.Provider != provider {
			continue
		}
		res, err := s.ProcessRequest(ctx, req)
		if err != nil {
			return processedRequests, processedLines, err
		}
		processedRequests++
		processedLines += res.Lines
	}
	return processedRequests, processedLines, nil
}

// ProcessRequest reparses one stored message from its raw .eml,
// reprices it and replaces any previous quote lines. Non-RFQ mail is
// marked skipped. Partner lookup results are logged, not persisted;
// the pricing lines are the record of the quote.
func (s *ProcessingService) ProcessRequest(ctx context.Context, req internal.RequestRow) (ProcessResult, error) {
	start := time.Now()
	log := zap.L().With(zap.Int("requestId", req.ID), zap.String("provider", req.Provider))

	raw, err := os.ReadFile(req.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	content, err := TextFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := s.db.ClearRequestLines(req.ID); err != nil {
		return ProcessResult{}, err
	}

	detect := DetectRFQ(firstNonEmpty(content.Subject, req.Subject), content.Text, content.HTML, content.AttachmentNames)
	if !detect.IsRFQ || strings.TrimSpace(content.Text) == "" {
		_ = s.db.UpdateRequestStatus(req.ID, "skipped")
		_ = s.db.InsertRun(traceID(), req.ID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
			map[string]int{"extracted": 0, "priced": 0, "clarify": 0})
		log.Info("request skipped", zap.Float64("detectScore", detect.Score))
		return ProcessResult{RequestID: req.ID, Skipped: true}, nil
	}

	result, err := s.quoter.Quote(ctx, content.Text)
	if err != nil {
		return ProcessResult{}, err
	}

	lines := QuoteLinesFromPricing(result.PricingAnalysis)
	if err := s.db.InsertQuoteLines(req.ID, lines); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateRequestStatus(req.ID, "quoted"); err != nil {
		return ProcessResult{}, err
	}

	_ = s.db.InsertRun(traceID(), req.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{
			"extracted": len(lines),
			"priced":    len(result.PricingAnalysis.PricedItems),
			"clarify":   len(result.PricingAnalysis.NeedsClarification),
		})

	if result.PartnerLocator.Error != "" {
		log.Info("partner lookup unavailable", zap.String("reason", result.PartnerLocator.Error))
	} else {
		log.Info("partner lookup done",
			zap.String("address", result.PartnerLocator.Address),
			zap.Int("partners", len(result.PartnerLocator.Partners)))
	}
	log.Info("request quoted",
		zap.Int("lines", len(lines)),
		zap.String("grandTotal", result.PricingAnalysis.Summary.GrandTotal.String()))

	return ProcessResult{RequestID: req.ID, Lines: len(lines)}, nil
}

// QuoteLinesFromPricing flattens a pricing result into storage rows:
// priced items first, clarifications after, positions sequential.
func QuoteLinesFromPricing(pricing internal.PricingResult) []internal.QuoteLineRow {
	lines := make([]internal.QuoteLineRow, 0, len(pricing.PricedItems)+len(pricing.NeedsClarification))

	for _, item := range pricing.PricedItems {
		lines = append(lines, internal.QuoteLineRow{
			Position:  len(lines) + 1,
			Model:     item.Model,
			Family:    familyOf(item.Model),
			Quantity:  item.Quantity,
			Tons:      util.FloatPtr(item.Tons),
			Tier:      util.StringPtr(item.Tier),
			UnitPrice: util.StringPtr(item.UnitPrice.String()),
			LineTotal: util.StringPtr(item.LineTotal.String()),
			Status:    internal.LinePriced,
		})
	}
	for _, item := range pricing.NeedsClarification {
		lines = append(lines, internal.QuoteLineRow{
			Position: len(lines) + 1,
			Model:    item.Model,
			Family:   familyOf(item.Model),
			Quantity: item.Quantity,
			Status:   internal.LineClarify,
			Reason:   util.StringPtr(item.Reason),
		})
	}
	return lines
}

// familyOf re-derives the family from the stored model string; tokens
// always re-extract to the same rule that matched them originally.
func familyOf(model string) string {
	tokens := ExtractModelTokens(model)
	if len(tokens) == 1 {
		return string(tokens[0].Family)
	}
	return string(internal.FamilyStandard)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
