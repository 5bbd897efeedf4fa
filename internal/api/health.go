package api

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DashboardService is the gRPC health service name for the dashboard.
const DashboardService = "yarsdash.Dashboard"

// SnapshotHealth reports SERVING for the dashboard service while the
// snapshot file exists. The overall ("") status is SERVING until shutdown.
type SnapshotHealth struct {
	path   string
	server *health.Server
	log    *slog.Logger

	mu        sync.Mutex
	available bool
	checked   bool
}

// NewSnapshotHealth creates a health service for the snapshot at path and
// runs an initial check.
func NewSnapshotHealth(path string, log *slog.Logger) *SnapshotHealth {
	h := &SnapshotHealth{
		path:   path,
		server: health.NewServer(),
		log:    log.With("component", "health"),
	}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.Refresh()
	return h
}

// Register adds the health service to gs.
func (h *SnapshotHealth) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, h.server)
}

// Refresh re-checks the snapshot file and updates the dashboard status.
func (h *SnapshotHealth) Refresh() bool {
	_, err := os.Stat(h.path)
	ok := err == nil

	h.mu.Lock()
	changed := !h.checked || ok != h.available
	h.available, h.checked = ok, true
	h.mu.Unlock()

	if !changed {
		return ok
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(DashboardService, status)
	h.log.Info("snapshot availability", "path", h.path, "available", ok)
	return ok
}

// Watch refreshes the status every interval until ctx is done.
func (h *SnapshotHealth) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}

// Check answers a health check without going through gRPC.
func (h *SnapshotHealth) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Shutdown marks every service NOT_SERVING.
func (h *SnapshotHealth) Shutdown() {
	h.server.Shutdown()
}
