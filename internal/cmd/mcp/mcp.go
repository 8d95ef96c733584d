// Package mcp parses MCP command flags and starts the stdio tool server.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/funnelsmith/funnelsmith/internal/platform/cmd"
	mcpservice "github.com/funnelsmith/funnelsmith/internal/services/mcp"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string `env:"FUNNELSMITH_DB_PATH"`
	DocumentPath string `env:"FUNNELSMITH_DOCUMENT_PATH"`
	DocumentSlug string `env:"FUNNELSMITH_DOCUMENT_SLUG" envDefault:"default"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The sqlite document database path (empty disables saving)")
	fs.StringVar(&cfg.DocumentPath, "document", cfg.DocumentPath, "A funnel document file to load at startup")
	fs.StringVar(&cfg.DocumentSlug, "slug", cfg.DocumentSlug, "The document slug used for startup loads and saves")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP stdio service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return mcpservice.Run(ctx, mcpservice.RuntimeConfig{
			DBPath:       cfg.DBPath,
			DocumentPath: cfg.DocumentPath,
			DocumentSlug: cfg.DocumentSlug,
		})
	})
}
