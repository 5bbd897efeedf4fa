package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"yarsdash/internal/analyze"
	"yarsdash/internal/api"
	"yarsdash/internal/config"
	"yarsdash/internal/dispatch"
	"yarsdash/internal/httpapi"
	"yarsdash/internal/metrics"
	"yarsdash/internal/news"
	"yarsdash/internal/store"
	"yarsdash/internal/util"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	cfgPath := "config/yarsdash.yaml"
	if p := os.Getenv("YARSDASH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := fmt.Sprintf("/tmp/dashboard-server-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := util.NewLoggerTo(w, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	if cfg.Errors.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Errors.SentryDSN,
			Environment: cfg.Errors.Environment,
		}); err != nil {
			logger.Warn("sentry disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		sentry.CaptureException(err)
	}
	logger.Info("dashboard server stopped")
}

// loadConfig reads the YAML file at path. A missing file falls back to the
// defaults with environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.FromEnv(), nil
	}
	return cfg, err
}

// run opens the stores, wires the API and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics.Init()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		return fmt.Errorf("creating sqlite dir: %w", err)
	}
	actions, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening action log: %w", err)
	}
	defer actions.Close()

	deps := httpapi.Deps{
		Analyzer:   analyze.NewClient(cfg.LLM, config.LLMCredentials, logger),
		Dispatcher: dispatch.NewClient(cfg.GitHub, config.GitHubCredentials, logger),
		News:       news.NewFetcher(cfg.Alpaca, logger),
		Archive:    store.NewParquetStore(cfg.Storage.DataDir),
		Actions:    actions,
	}
	dash := httpapi.NewDashboardServer(cfg, deps, logger)
	srv := api.NewServer(cfg, dash.Handler(), logger)

	logger.Info("dashboard server starting",
		"snapshot", cfg.Storage.SnapshotPath,
		"data_dir", cfg.Storage.DataDir,
		"port", cfg.Server.Port,
		"grpc_port", cfg.Server.GRPCPort,
	)
	return srv.ListenAndServe(ctx)
}
