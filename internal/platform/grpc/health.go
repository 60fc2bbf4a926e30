package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	healthProbeTimeout = time.Second
	healthFirstRetry   = 100 * time.Millisecond
	healthMaxRetry     = time.Second
)

// WaitForHealth polls the health service until service reports SERVING or
// ctx ends, doubling the pause between probes. logf, when set, hears about
// each change in the observed state. An empty service checks the whole
// server.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	pause := healthFirstRetry
	lastSeen := ""
	for {
		seen := probeHealth(ctx, client, service)
		if seen == grpc_health_v1.HealthCheckResponse_SERVING.String() {
			logf("gRPC health for %q is SERVING", service)
			return nil
		}
		if seen != lastSeen {
			logf("waiting for gRPC health of %q: %s", service, seen)
			lastSeen = seen
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health of %q (last %s): %w", service, lastSeen, ctx.Err())
		case <-time.After(pause):
		}
		pause = min(pause*2, healthMaxRetry)
	}
}

// probeHealth returns the reported status name, or the call error text.
func probeHealth(ctx context.Context, client grpc_health_v1.HealthClient, service string) string {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	resp, err := client.Check(probeCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return err.Error()
	}
	return resp.GetStatus().String()
}
