// Package main runs the calculator, web and MCP services in one container.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/louisbranch/calcdeck/internal/cmd/supervisor"
	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
	"github.com/louisbranch/calcdeck/internal/platform/config"
)

func main() {
	ctx, stop := entrypoint.Start("entrypoint")
	defer stop()

	cfg, err := supervisor.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	code, err := supervisor.Run(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		log.Printf("supervisor: %v", err)
	}
	stop()
	os.Exit(code)
}
