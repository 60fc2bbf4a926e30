// Package main exposes calculator tools over MCP on stdio or HTTP.
package main

import (
	"flag"
	"log"
	"os"

	mcpcmd "github.com/louisbranch/calcdeck/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
)

func main() {
	// stdout carries the stdio transport.
	log.SetOutput(os.Stderr)
	ctx, stop := entrypoint.Start(entrypoint.ServiceMCP)
	defer stop()

	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("mcp: %v", err)
	}
}
