// Package listener polls a mailbox for RFQ mail and runs each new
// message through fetch, quote and export.
package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"hvacquote/internal/config"
	"hvacquote/internal/connectors"
	"hvacquote/internal/pipeline"
	"hvacquote/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config, processor *pipeline.ProcessingService) *Service {
	return &Service{db: db, cfg: cfg, processor: processor}
}

// Run polls until ctx is cancelled. A failed cycle is logged and the
// next tick retried; only cancellation stops the loop.
func (s *Service) Run(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "listener"))
	log.Info("listener started",
		zap.String("provider", s.cfg.ListenerProvider),
		zap.String("label", s.cfg.ListenerLabel),
		zap.Int("intervalSec", s.cfg.ListenerIntervalSec))

	for {
		if err := s.runCycle(ctx); err != nil {
			log.Warn("listener cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("listener stopped")
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := connectors.ForProvider(s.cfg, provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	processedRequests, processedLines, err := s.processor.ProcessPending(ctx, s.cfg.ListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport {
		if err := s.exportQuoted(provider); err != nil {
			return err
		}
	}

	zap.L().Info("listener cycle done",
		zap.String("provider", provider),
		zap.Int("fetched", fetchResult.Fetched),
		zap.Int("stored", fetchResult.Stored),
		zap.Int("processedRequests", processedRequests),
		zap.Int("processedLines", processedLines))
	return nil
}

func (s *Service) exportQuoted(provider string) error {
	requests, err := s.db.ListRequestsByStatus("quoted", 200)
	if err != nil {
		return err
	}

	for _, req := range requests {
		if req.Provider != provider {
			continue
		}
		rows, err := s.db.GetQuoteLines(req.ID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", req.ID, sanitizeMessageID(req.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportQuoteRowsToXLSX(rows, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateRequestStatus(req.ID, "exported")
	}
	return nil
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
