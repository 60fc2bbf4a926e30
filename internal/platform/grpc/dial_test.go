package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func TestDialWithHealthSuccess(t *testing.T) {
	addr, _ := startHealthServer(t, grpc_health_v1.HealthCheckResponse_SERVING)

	conn, err := DialWithHealth(context.Background(), nil, addr, testService, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("dial with health: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close conn: %v", err)
	}
}

func TestDialWithHealthTimeoutBoundsWait(t *testing.T) {
	addr, _ := startHealthServer(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	start := time.Now()
	conn, err := DialWithHealth(context.Background(), nil, addr, testService, 150*time.Millisecond, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected timeout to bound health wait, took %v", elapsed)
	}
	var dialErr *DialError
	if !errors.As(err, &dialErr) || dialErr.Stage != DialStageHealth {
		t.Fatalf("error = %v, want health-stage DialError", err)
	}
}

func TestDialWithHealthConnectStage(t *testing.T) {
	factory := ClientFactory(func(string, ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
		return nil, fmt.Errorf("dial failure")
	})

	_, err := DialWithHealth(context.Background(), factory, "unused", "", time.Second, nil)
	var dialErr *DialError
	if !errors.As(err, &dialErr) {
		t.Fatalf("expected DialError, got %T", err)
	}
	if dialErr.Stage != DialStageConnect || dialErr.Addr != "unused" {
		t.Fatalf("dial error = %+v", dialErr)
	}
}

func TestDialErrorFormatting(t *testing.T) {
	wrapped := &DialError{Addr: "localhost:8095", Stage: DialStageHealth, Err: fmt.Errorf("boom")}
	if got := wrapped.Error(); got != "gRPC health localhost:8095: boom" {
		t.Fatalf("Error() = %q", got)
	}
	if wrapped.Unwrap() == nil {
		t.Fatal("expected wrapped error")
	}

	var nilErr *DialError
	if nilErr.Error() == "" {
		t.Fatal("expected fallback error message")
	}
	if nilErr.Unwrap() != nil {
		t.Fatal("expected nil unwrap for nil error")
	}
}

func TestDefaultClientDialOptions(t *testing.T) {
	if got := len(DefaultClientDialOptions()); got != 3 {
		t.Fatalf("len(DefaultClientDialOptions()) = %d, want 3", got)
	}
}
