package yarsdash

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient queries the dashboard server's gRPC health service.
type HealthClient struct {
	addr string
}

// NewHealthClient creates a client targeting the given gRPC address.
func NewHealthClient(addr string) *HealthClient {
	return &HealthClient{addr: addr}
}

func (c *HealthClient) dial() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(c.addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	return conn, nil
}

// Check returns the current status of service ("" for the whole server).
func (c *HealthClient) Check(ctx context.Context, service string) (*healthpb.HealthCheckResponse, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return resp, nil
}

// Watch streams status changes of service to fn. It blocks until ctx is
// cancelled or the stream ends.
func (c *HealthClient) Watch(ctx context.Context, service string, fn func(*healthpb.HealthCheckResponse)) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stream, err := healthpb.NewHealthClient(conn).Watch(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receiving status: %w", err)
		}
		fn(resp)
	}
}
