package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"yarsdash/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	s := NewServer(cfg, http.NotFoundHandler(), discard)
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.httpServer.Addr != "127.0.0.1:8080" {
		t.Errorf("http addr = %q", s.httpServer.Addr)
	}
	if s.grpcAddr != "127.0.0.1:9090" {
		t.Errorf("grpc addr = %q", s.grpcAddr)
	}

	cfg.Server.GRPCPort = 0
	if s := NewServer(cfg, http.NotFoundHandler(), discard); s.grpcAddr != "" {
		t.Errorf("grpc addr = %q, want disabled", s.grpcAddr)
	}
}

func TestSnapshotHealth(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	h := NewSnapshotHealth(path, discard)

	if got, err := h.Check(ctx, ""); err != nil || got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall = %v, %v; want SERVING", got, err)
	}
	if got, _ := h.Check(ctx, DashboardService); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("dashboard without snapshot = %v, want NOT_SERVING", got)
	}

	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if !h.Refresh() {
		t.Fatal("Refresh should see the snapshot")
	}
	if got, _ := h.Check(ctx, DashboardService); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("dashboard with snapshot = %v, want SERVING", got)
	}

	h.Shutdown()
	if got, _ := h.Check(ctx, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("after shutdown = %v, want NOT_SERVING", got)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.GRPCPort = 0
	s := NewServer(cfg, http.NotFoundHandler(), discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
