// Package mcp exposes the funnel editor to MCP clients as typed tools over
// stdio: inspect, mutate, validate, preview, and save the funnel being
// edited.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/render"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Funnelsmith MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// revisionKeep bounds stored revisions recorded by funnel_save.
	revisionKeep = 20
)

// Server hosts the funnel editing tools for one MCP session.
type Server struct {
	mcpServer *mcp.Server
}

// ServerConfig carries Server dependencies.
type ServerConfig struct {
	// Store is the live editing session. Required.
	Store *editor.Store
	// Engine renders previews. A nil engine uses the default registry.
	Engine *render.Engine
	// Documents persists funnel_save output. Nil leaves saving unavailable.
	Documents storage.DocumentStore
	// DocumentSlug is the slug funnel_save writes to when the call names
	// none.
	DocumentSlug string
}

// NewServer builds an MCP server with every funnel tool registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("editing store is required")
	}
	engine := cfg.Engine
	if engine == nil {
		engine = render.NewEngine(nil)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, FunnelOverviewTool(), FunnelOverviewHandler(cfg.Store))
	mcp.AddTool(server, FunnelValidateTool(), FunnelValidateHandler(cfg.Store))
	mcp.AddTool(server, PageAddTool(), PageAddHandler(cfg.Store))
	mcp.AddTool(server, PageUpdateTool(), PageUpdateHandler(cfg.Store))
	mcp.AddTool(server, PageDuplicateTool(), PageDuplicateHandler(cfg.Store))
	mcp.AddTool(server, PageDeleteTool(), PageDeleteHandler(cfg.Store))
	mcp.AddTool(server, PagesReorderTool(), PagesReorderHandler(cfg.Store))
	mcp.AddTool(server, RoutingSetTool(), RoutingSetHandler(cfg.Store))
	mcp.AddTool(server, UndoTool(), UndoHandler(cfg.Store))
	mcp.AddTool(server, RedoTool(), RedoHandler(cfg.Store))
	mcp.AddTool(server, PagePreviewTool(), PagePreviewHandler(cfg.Store, engine))
	mcp.AddTool(server, FunnelSaveTool(), FunnelSaveHandler(cfg.Store, cfg.Documents, cfg.DocumentSlug, revisionKeep))

	return &Server{mcpServer: server}, nil
}

// Serve runs the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the MCP server on the provided transport. Context
// cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
