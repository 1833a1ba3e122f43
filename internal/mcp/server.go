// Package mcp exposes session documents to model-driven clients over the
// Model Context Protocol. Every mutation tool loads the session, applies
// one pure document transformation, and saves the result, so a crashed or
// cancelled call never leaves a half-edited session behind.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trailstate/trailstate/internal/storage"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "trailstate"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	store     storage.Store
	logger    *slog.Logger
}

// New creates a configured MCP server backed by the given store.
func New(store storage.Store, logger *slog.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, SessionNewTool(), SessionNewHandler(store, logger))
	mcp.AddTool(mcpServer, SessionOpenTool(), SessionOpenHandler(store))
	mcp.AddTool(mcpServer, SessionDeleteTool(), SessionDeleteHandler(store, logger))
	mcp.AddTool(mcpServer, SessionSnapshotTool(), SessionSnapshotHandler(store))
	mcp.AddTool(mcpServer, SetCardStateTool(), SetCardStateHandler(store, logger))
	mcp.AddTool(mcpServer, AddTokensTool(), AddTokensHandler(store, logger))
	mcp.AddTool(mcpServer, SetTokensTool(), SetTokensHandler(store, logger))
	mcp.AddTool(mcpServer, MoveCardTool(), MoveCardHandler(store, logger))
	mcp.AddTool(mcpServer, DiscardCardTool(), DiscardCardHandler(store, logger))
	mcp.AddTool(mcpServer, AddCardTool(), AddCardHandler(store, logger))
	mcp.AddTool(mcpServer, AppendLogTool(), AppendLogHandler(store, logger))

	mcpServer.AddResource(SessionListResource(), SessionListResourceHandler(store))

	return &Server{mcpServer: mcpServer, store: store, logger: logger}
}

// Run serves MCP on stdio and blocks until the context is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
