// Package server parses editor server flags and starts the HTTP runtime.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/funnelsmith/funnelsmith/internal/platform/cmd"
	editorserver "github.com/funnelsmith/funnelsmith/internal/services/editor/app"
)

// Config holds editor server command configuration.
type Config struct {
	HTTPAddr         string `env:"FUNNELSMITH_HTTP_ADDR" envDefault:":8080"`
	DBPath           string `env:"FUNNELSMITH_DB_PATH"`
	DocumentPath     string `env:"FUNNELSMITH_DOCUMENT_PATH"`
	DocumentSlug     string `env:"FUNNELSMITH_DOCUMENT_SLUG" envDefault:"default"`
	AutosnapshotSpec string `env:"FUNNELSMITH_AUTOSNAPSHOT_SPEC"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "The editor HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The sqlite document database path (empty disables persistence)")
	fs.StringVar(&cfg.DocumentPath, "document", cfg.DocumentPath, "A funnel document file to load and watch")
	fs.StringVar(&cfg.DocumentSlug, "slug", cfg.DocumentSlug, "The document slug used for startup loads and snapshots")
	fs.StringVar(&cfg.AutosnapshotSpec, "autosnapshot", cfg.AutosnapshotSpec, "A cron spec for periodic revision snapshots, e.g. @every 5m")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the editor HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(context.Context) error {
		return editorserver.Run(ctx, editorserver.RuntimeConfig{
			HTTPAddr:         cfg.HTTPAddr,
			DBPath:           cfg.DBPath,
			DocumentPath:     cfg.DocumentPath,
			DocumentSlug:     cfg.DocumentSlug,
			AutosnapshotSpec: cfg.AutosnapshotSpec,
		})
	})
}
