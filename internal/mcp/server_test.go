package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TestServerServesAndStops wires the server to a client over in-memory
// transports and exercises the protocol surface end to end.
func TestServerServesAndStops(t *testing.T) {
	store := newTestStore(t)
	server := New(store, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer clientCancel()

	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	// Every tool must be listed.
	tools, err := session.ListTools(clientCtx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	found := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		found[tool.Name] = true
	}
	for _, name := range []string{
		"session_new", "session_open", "session_delete", "session_snapshot",
		"set_card_state", "add_tokens", "set_tokens", "move_card",
		"discard_card", "add_card", "append_log",
	} {
		if !found[name] {
			t.Errorf("tool %q is not registered", name)
		}
	}

	// A mutation travels through the protocol and lands in the store.
	result, err := session.CallTool(clientCtx, &mcp.CallToolParams{
		Name: "set_card_state",
		Arguments: map[string]any{
			"session_id": "camp",
			"title":      "Topside Mast",
			"state":      "cleared",
		},
	})
	if err != nil {
		t.Fatalf("call set_card_state: %v", err)
	}
	if result.IsError {
		t.Fatalf("set_card_state returned a tool error: %v", result.Content)
	}

	// Errors come back as tool errors, not transport failures.
	result, err = session.CallTool(clientCtx, &mcp.CallToolParams{
		Name: "set_card_state",
		Arguments: map[string]any{
			"session_id": "camp",
			"title":      "No Such Card",
			"state":      "cleared",
		},
	})
	if err != nil {
		t.Fatalf("call set_card_state: %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error for an unknown card")
	}

	// The session listing resource is readable.
	resource, err := session.ReadResource(clientCtx, &mcp.ReadResourceParams{URI: "trailstate://sessions"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(resource.Contents) != 1 || !strings.Contains(resource.Contents[0].Text, "camp") {
		t.Errorf("resource contents = %#v", resource.Contents)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
