// Package main runs the calculator gRPC service.
package main

import (
	"flag"
	"log"
	"os"

	calccmd "github.com/louisbranch/calcdeck/internal/cmd/calc"
	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
)

func main() {
	ctx, stop := entrypoint.Start(entrypoint.ServiceCalc)
	defer stop()

	cfg, err := calccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := calccmd.Run(ctx, cfg); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
