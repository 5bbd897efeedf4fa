// Package api hosts the dashboard's network listeners: the HTTP API and a
// gRPC health service that reports whether a snapshot is available.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"yarsdash/internal/config"
)

// Server is the main API server that hosts HTTP and gRPC endpoints.
type Server struct {
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *SnapshotHealth
	grpcAddr   string
	log        *slog.Logger
}

// NewServer creates a new Server configured from the given Config. handler
// serves every HTTP route.
func NewServer(cfg *config.Config, handler http.Handler, log *slog.Logger) *Server {
	health := NewSnapshotHealth(cfg.Storage.SnapshotPath, log)
	gs := grpc.NewServer()
	health.Register(gs)

	var grpcAddr string
	if cfg.Server.GRPCPort > 0 {
		grpcAddr = net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.GRPCPort))
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		grpcServer: gs,
		health:     health,
		grpcAddr:   grpcAddr,
		log:        log.With("component", "api"),
	}
}

// ListenAndServe starts the HTTP and gRPC listeners and blocks until the
// context is cancelled or a fatal error occurs. The gRPC listener is skipped
// when no gRPC port is configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lis net.Listener
	if s.grpcAddr != "" {
		var err error
		if lis, err = net.Listen("tcp", s.grpcAddr); err != nil {
			return fmt.Errorf("listening on %s: %w", s.grpcAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	if lis != nil {
		g.Go(func() error {
			s.log.Info("gRPC server listening", "addr", s.grpcAddr)
			if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		s.health.Watch(gctx, 30*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown performs a graceful shutdown of the HTTP and gRPC servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	err := s.httpServer.Shutdown(ctx)

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
	return err
}
