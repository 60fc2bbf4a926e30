// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	"github.com/louisbranch/calcdeck/internal/platform/discovery"
	mcpservice "github.com/louisbranch/calcdeck/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	CalcAddr  string `env:"CALCDECK_CALC_ADDR"`
	HTTPAddr  string `env:"CALCDECK_MCP_HTTP_ADDR"`
	Transport string `env:"CALCDECK_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.CalcAddr = discovery.OrDefaultGRPCAddr(cfg.CalcAddr, discovery.ServiceCalc)
	cfg.HTTPAddr = discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceMCP)

	fs.StringVar(&cfg.CalcAddr, "calc-addr", cfg.CalcAddr, "Calculator gRPC service address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	transport, err := mcpservice.ParseTransport(cfg.Transport)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			CalcAddr:  cfg.CalcAddr,
			HTTPAddr:  cfg.HTTPAddr,
			Transport: transport,
		})
	})
}
