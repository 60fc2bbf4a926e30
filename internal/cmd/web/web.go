// Package web parses web command flags and launches the browser calculator.
package web

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	"github.com/louisbranch/calcdeck/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/calcdeck/internal/platform/grpc"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"github.com/louisbranch/calcdeck/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr    string        `env:"CALCDECK_WEB_HTTP_ADDR"`
	CalcAddr    string        `env:"CALCDECK_CALC_ADDR"`
	DialTimeout time.Duration `env:"CALCDECK_CALC_DIAL_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.HTTPAddr = discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceWeb)
	cfg.CalcAddr = discovery.OrDefaultGRPCAddr(cfg.CalcAddr, discovery.ServiceCalc)

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.CalcAddr, "calc-addr", cfg.CalcAddr, "Calculator gRPC service address")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "How long to wait for the calculator service to report healthy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web server once the calculator service is healthy.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		conn, err := platformgrpc.DialWithHealth(ctx, nil, cfg.CalcAddr, calcapi.ServiceName, cfg.DialTimeout, log.Printf)
		if err != nil {
			return fmt.Errorf("dial calculator service: %w", err)
		}
		defer conn.Close()

		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr:   cfg.HTTPAddr,
			CalcClient: calcapi.NewClient(conn),
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
