package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestNewServerRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestServeWithTransportRejectsUnconfiguredServer(t *testing.T) {
	t.Parallel()

	var nilServer *Server
	if err := nilServer.serveWithTransport(context.Background(), &mcp.StdioTransport{}); err == nil {
		t.Fatal("expected error for nil server")
	}
	if err := (&Server{}).serveWithTransport(context.Background(), &mcp.StdioTransport{}); err == nil {
		t.Fatal("expected error for missing mcp server")
	}
}

// decodeStructuredContent round-trips a tool's structured output into T.
func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func TestServerServesToolsOverTransport(t *testing.T) {
	t.Parallel()

	server, err := NewServer(ServerConfig{Store: newTestStore()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(connectCtx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"funnel_overview", "funnel_validate", "page_add", "page_update",
		"page_duplicate", "page_delete", "pages_reorder", "routing_set",
		"undo", "redo", "page_preview", "funnel_save",
	} {
		if !names[want] {
			t.Fatalf("tool %q is not registered; got %v", want, names)
		}
	}

	result, err := session.CallTool(connectCtx, &mcp.CallToolParams{
		Name:      "funnel_overview",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("call funnel_overview: %v", err)
	}
	if result == nil || result.IsError {
		t.Fatalf("funnel_overview failed: %+v", result)
	}
	overview := decodeStructuredContent[FunnelOverviewResult](t, result.StructuredContent)
	if len(overview.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(overview.Pages))
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
