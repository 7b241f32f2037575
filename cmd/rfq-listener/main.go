package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hvacquote/internal/config"
	"hvacquote/internal/listener"
	"hvacquote/internal/logging"
	"hvacquote/internal/partners"
	"hvacquote/internal/pipeline"
	"hvacquote/internal/storage"
	"hvacquote/internal/tonnage"
)

func main() {
	logging.Init()
	defer logging.Sync()

	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	table, err := tonnage.LoadFromDB(db)
	must(err)

	var finder pipeline.PartnerFinder
	if cfg.GoogleMapsAPIKey != "" {
		finder = partners.NewLocator(db, partners.NewClient(cfg))
	}
	processor := pipeline.NewProcessingService(db, cfg, table, finder)

	svc := listener.NewService(db, cfg, processor)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
