// Package cmd holds startup helpers shared by calcdeck binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/louisbranch/calcdeck/internal/platform/config"
	"github.com/louisbranch/calcdeck/internal/platform/otel"
)

// TelemetryShutdownTimeout bounds the final span flush.
const TelemetryShutdownTimeout = 5 * time.Second

// Service names used for log prefixes and trace resources.
const (
	ServiceCalc     = "calc"
	ServiceMCP      = "mcp"
	ServiceScenario = "scenario"
	ServiceWeb      = "web"
)

// LogPrefix returns the bracketed log prefix for a service, e.g. "[CALC] ".
func LogPrefix(service string) string {
	return "[" + strings.ToUpper(strings.TrimSpace(service)) + "] "
}

// Start prefixes the standard logger for service and returns a context
// cancelled on SIGINT or SIGTERM.
func Start(service string) (context.Context, context.CancelFunc) {
	log.SetPrefix(LogPrefix(service))
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags over values already loaded from env.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, runs run, and flushes spans
// once it returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, "calcdeck-"+service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), TelemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()
	return run(ctx)
}
