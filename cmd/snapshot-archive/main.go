// One-shot tool: archive the current dashboard snapshot into dated parquet
// files so ticker mention history can be served later. Re-archiving the same
// scrape replaces its rows.
//
// Usage:
//
//	go run cmd/snapshot-archive/main.go [-f data/dashboard_data.json]
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"yarsdash/internal/config"
	"yarsdash/internal/snapshot"
	"yarsdash/internal/store"
	"yarsdash/internal/util"
)

func main() {
	file := flag.String("f", "", "snapshot file (default from config)")
	flag.Parse()

	cfgPath := "config/yarsdash.yaml"
	if p := os.Getenv("YARSDASH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.FromEnv()
	} else if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLoggerTo(os.Stdout, cfg.Logging.Level, "text")
	util.SetDefault(logger)

	path := cfg.Storage.SnapshotPath
	if *file != "" {
		path = *file
	}
	snap, err := snapshot.Load(path)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	for _, is := range snapshot.Validate(snap) {
		logger.Warn("snapshot issue", "field", is.Field, "message", is.Message)
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	date, err := ps.WriteSnapshot(context.Background(), snap)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	dates, err := ps.ListDates(context.Background())
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	logger.Info("snapshot archived",
		"date", date,
		"posts", len(snap.Posts),
		"tickers", snap.TickerMentions.Len(),
		"archived_dates", len(dates),
	)
}
