package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"yarsdash/internal/config"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(filepath.Join("..", "..", "config", "yarsdash.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.GRPCPort != 9090 {
		t.Errorf("grpc port = %d, want 9090", cfg.Server.GRPCPort)
	}
	if cfg.Dashboard.Palette["stocks"] == "" {
		t.Error("sample palette not loaded")
	}

	cfg, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadConfig missing file: %v", err)
	}
	if cfg == nil || cfg.Storage.SnapshotPath == "" {
		t.Errorf("missing file should fall back to defaults, got %+v", cfg)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(bad); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.SnapshotPath = filepath.Join(dir, "dashboard_data.json")
	cfg.Storage.DataDir = dir
	cfg.Storage.SQLitePath = filepath.Join(dir, "db", "yarsdash.db")
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.GRPCPort = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, logger) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	if _, err := os.Stat(cfg.Storage.SQLitePath); err != nil {
		t.Errorf("action log not created: %v", err)
	}
}
