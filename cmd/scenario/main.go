// Package main runs Lua calculator scenarios from the command line.
package main

import (
	"flag"
	"os"

	scenariocmd "github.com/louisbranch/calcdeck/internal/cmd/scenario"
	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	"github.com/louisbranch/calcdeck/internal/platform/config"
)

func main() {
	ctx, stop := entrypoint.Start(entrypoint.ServiceScenario)
	defer stop()

	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	if err := scenariocmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
