// Command scraper crawls the product catalog and writes the assessment
// data set the recommendation service loads at startup.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akoval/go_assess/internal/engine/catalog"
)

func main() {
	_ = godotenv.Load()

	var (
		outJSON = flag.String("out", "data/assessments.json", "output JSON path")
		outCSV  = flag.String("csv", "", "optional CSV output path")
		dbWrite = flag.Bool("db", false, "also store the catalog in Postgres (DATABASE_URL)")
		timeout = flag.Duration("timeout", 30*time.Minute, "overall crawl timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, err := catalog.NewScraper(nil).Run(ctx)
	if err != nil {
		slog.Error("catalog scrape failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := catalog.Save(*outJSON, items); err != nil {
		slog.Error("write catalog json failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("catalog written",
		slog.String("path", *outJSON),
		slog.Int("assessments", len(items)))

	if *outCSV != "" {
		if err := catalog.WriteCSV(*outCSV, items); err != nil {
			slog.Error("write catalog csv failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("catalog csv written", slog.String("path", *outCSV))
	}

	if *dbWrite {
		store, err := catalog.Connect(ctx, os.Getenv("DATABASE_URL"))
		if err != nil {
			slog.Error("postgres connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer store.Close()

		if err := store.ReplaceAll(ctx, items); err != nil {
			slog.Error("postgres store failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("catalog stored in postgres", slog.Int("assessments", len(items)))
	}
}
