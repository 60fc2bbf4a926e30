// Package calc parses calculator service flags and launches the service.
package calc

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	server "github.com/louisbranch/calcdeck/internal/services/calc/app"
)

// Config holds calc command configuration.
type Config struct {
	Port int `env:"CALCDECK_CALC_PORT" envDefault:"8095"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The calculator gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the calculator gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCalc, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
