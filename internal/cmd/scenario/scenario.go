// Package scenario parses scenario command flags and runs Lua calculator scripts.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	"github.com/louisbranch/calcdeck/internal/platform/discovery"
	"github.com/louisbranch/calcdeck/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Driver     string        `env:"CALCDECK_SCENARIO_DRIVER"  envDefault:"local"`
	CalcAddr   string        `env:"CALCDECK_CALC_ADDR"`
	Scenarios  []string      `env:"CALCDECK_SCENARIO_FILES"   envSeparator:","`
	Assertions bool          `env:"CALCDECK_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool          `env:"CALCDECK_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"CALCDECK_SCENARIO_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config. Positional
// arguments name additional scenario files.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.CalcAddr = discovery.OrDefaultGRPCAddr(cfg.CalcAddr, discovery.ServiceCalc)

	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "Where to apply inputs: local or grpc")
	fs.StringVar(&cfg.CalcAddr, "calc-addr", cfg.CalcAddr, "Calculator gRPC service address (grpc driver)")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "Fail on the first wrong expectation (disable to log them)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every step")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout per step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Scenarios = append(cfg.Scenarios, fs.Args()...)
	return cfg, nil
}

// Run executes every configured scenario in order and stops at the first
// failing one.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Scenarios) == 0 {
		return errors.New("at least one scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	runCfg := scenario.Config{
		Driver:     scenario.DriverKind(cfg.Driver),
		CalcAddr:   cfg.CalcAddr,
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
	}
	for _, path := range cfg.Scenarios {
		if err := scenario.RunFile(ctx, runCfg, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(out, "ok  %s\n", path)
	}
	return nil
}
