package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/connectors"
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

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "tonnage:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "tonnage key file")
		format := fs.String("format", "", "csv|xlsx (default: by extension)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		codes, err := readTonnageKey(*file, *format)
		must(err)
		must(db.UpsertTonnageCodes(codes))
		fmt.Printf("tonnage key imported: %d codes\n", len(codes))
	case "partners:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "partner roster csv")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		roster := partners.NewRosterService(db, cfg)
		count, err := roster.Import(*file)
		must(err)
		fmt.Printf("partner roster imported: %d partners\n", count)
	case "partners:geocode":
		roster := partners.NewRosterService(db, cfg)
		updated, failed, err := roster.GeocodeMissing(context.Background())
		must(err)
		fmt.Printf("partner geocode done updated=%d failed=%d\n", updated, failed)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := connectors.ForProvider(cfg, strings.ToLower(strings.TrimSpace(*provider)))
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor, err := makeProcessor(db, cfg)
		must(err)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed request id=%d lines=%d skipped=%v\n", res.RequestID, res.Lines, res.Skipped)
			return
		}
		processedRequests, processedLines, err := processor.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending requests=%d lines=%d\n", processedRequests, processedLines)
	case "mail:listen":
		processor, err := makeProcessor(db, cfg)
		must(err)
		s := listener.NewService(db, cfg, processor)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		requestID := fs.Int("requestId", 0, "internal request id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *requestID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--requestId and --out are required"))
		}
		rows, err := db.GetQuoteLines(*requestID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no quote lines for requestId=%d", *requestID))
		}
		must(pipeline.ExportQuoteRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "quote:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "text", "text|email|xlsx|pdf")
		address := fs.String("address", "", "service address override")
		output := fs.String("output", "", "optional output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		text, err := pipeline.TextFromInput(*inType, *input)
		must(err)

		table, err := tonnage.LoadFromDB(db)
		must(err)
		quoter := pipeline.NewQuoter(cfg, table, makeFinder(db, cfg))
		var result internal.QuoteResult
		if strings.TrimSpace(*address) != "" {
			result, err = quoter.QuoteAt(context.Background(), text, *address)
		} else {
			result, err = quoter.Quote(context.Background(), text)
		}
		must(err)

		encoded, err := json.MarshalIndent(result, "", "  ")
		must(err)
		fmt.Println(string(encoded))

		if strings.TrimSpace(*output) != "" {
			rows := pipeline.QuoteLinesFromPricing(result.PricingAnalysis)
			must(pipeline.ExportQuoteRowsToXLSX(rows, *output))
			fmt.Printf("exported %d rows to %s\n", len(rows), *output)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func makeProcessor(db *storage.DB, cfg config.Config) (*pipeline.ProcessingService, error) {
	table, err := tonnage.LoadFromDB(db)
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessingService(db, cfg, table, makeFinder(db, cfg)), nil
}

// makeFinder returns nil when no Maps key is configured; quoting then
// degrades to pricing only.
func makeFinder(db *storage.DB, cfg config.Config) pipeline.PartnerFinder {
	if strings.TrimSpace(cfg.GoogleMapsAPIKey) == "" {
		return nil
	}
	return partners.NewLocator(db, partners.NewClient(cfg))
}

func readTonnageKey(file, format string) ([]internal.TonnageCode, error) {
	if format == "" {
		if strings.EqualFold(filepath.Ext(file), ".xlsx") {
			format = "xlsx"
		} else {
			format = "csv"
		}
	}
	switch format {
	case "csv":
		return tonnage.ReadCSV(file)
	case "xlsx":
		return tonnage.ReadXLSX(file)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func usage() {
	fmt.Println("usage: hvacquote <command>")
	fmt.Println("commands:")
	fmt.Println("  tonnage:import --file=./key.csv [--format=csv|xlsx]")
	fmt.Println("  partners:import --file=./partners.csv")
	fmt.Println("  partners:geocode")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --requestId=1 --out=./out/quote.xlsx")
	fmt.Println("  quote:run --input=... [--type=text|email|xlsx|pdf] [--address=...] [--output=...xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
