// Package main serves the browser calculator.
package main

import (
	"flag"
	"log"
	"os"

	webcmd "github.com/louisbranch/calcdeck/internal/cmd/web"
	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
)

func main() {
	ctx, stop := entrypoint.Start(entrypoint.ServiceWeb)
	defer stop()

	cfg, err := webcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := webcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("web: %v", err)
	}
}
