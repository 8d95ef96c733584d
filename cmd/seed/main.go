// Package main provides a CLI that bootstraps a local funnel workspace:
// the starter document, a seeded document database, and editor grants.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/funnelsmith/funnelsmith/internal/cmd/seed"
	"github.com/funnelsmith/funnelsmith/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("seed: %v", err)
	}
}
