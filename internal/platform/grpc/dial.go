// Package grpc holds client-side helpers for reaching calcdeck gRPC services.
package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/calcdeck/internal/platform/requestctx"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientFactory creates a client connection for a target.
type ClientFactory func(target string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)

// DialStage says which part of DialWithHealth failed.
type DialStage string

const (
	DialStageConnect DialStage = "connect"
	DialStageHealth  DialStage = "health"
)

// DialError reports a failed DialWithHealth.
type DialError struct {
	Addr  string
	Stage DialStage
	Err   error
}

func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial failed"
	}
	return fmt.Sprintf("gRPC %s %s: %v", e.Stage, e.Addr, e.Err)
}

func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions are the options calcdeck clients dial with:
// plaintext transport, tracing, and request id forwarding.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		gogrpc.WithChainUnaryInterceptor(requestctx.UnaryClientInterceptor()),
	}
}

// DialWithHealth connects to addr and blocks until service reports SERVING
// or timeout passes. A nil factory uses grpc.NewClient and empty opts use
// DefaultClientDialOptions.
func DialWithHealth(ctx context.Context, factory ClientFactory, addr, service string, timeout time.Duration, logf func(string, ...any), opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if factory == nil {
		factory = gogrpc.NewClient
	}
	if len(opts) == 0 {
		opts = DefaultClientDialOptions()
	}

	conn, err := factory(addr, opts...)
	if err != nil {
		return nil, &DialError{Addr: addr, Stage: DialStageConnect, Err: err}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := WaitForHealth(ctx, conn, service, logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Addr: addr, Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
