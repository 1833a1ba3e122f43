package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trailstate/trailstate/internal/storage"
	"github.com/trailstate/trailstate/pkg/state"
)

// loadSession fetches a session and turns the store's nil-for-absent
// convention into an explicit error, which is what tool callers need.
func loadSession(ctx context.Context, store storage.Store, id string) (state.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	doc, err := store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return doc, nil
}

// SessionNewInput represents the MCP tool input for creating a session.
type SessionNewInput struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"session identifier, generated when omitted"`
	Rangers   []string `json:"rangers,omitempty" jsonschema:"ranger identifiers for the party, defaults to ranger_1"`
}

// SessionNewResult represents the MCP tool output for creating a session.
type SessionNewResult struct {
	SessionID string   `json:"session_id" jsonschema:"identifier of the new session"`
	Rangers   []string `json:"rangers" jsonschema:"ranger identifiers seeded into the session"`
}

// SessionNewTool defines the MCP tool schema for creating sessions.
func SessionNewTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_new",
		Description: "Creates a fresh game session document with empty play zones and the given rangers",
	}
}

// SessionNewHandler creates and stores a fresh session document.
func SessionNewHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[SessionNewInput, SessionNewResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionNewInput) (*mcp.CallToolResult, SessionNewResult, error) {
		id := input.SessionID
		if id == "" {
			id = uuid.New().String()
		}

		existing, err := store.LoadSession(ctx, id)
		if err != nil {
			return nil, SessionNewResult{}, err
		}
		if existing != nil {
			return nil, SessionNewResult{}, fmt.Errorf("session already exists: %s", id)
		}

		rangers := input.Rangers
		doc := state.NewDocument(rangers...)
		if len(rangers) == 0 {
			rangers = []string{"ranger_1"}
		}

		if err := store.SaveSession(ctx, id, doc); err != nil {
			return nil, SessionNewResult{}, err
		}
		logger.Info("Session created", "session_id", id, "rangers", rangers)
		return nil, SessionNewResult{SessionID: id, Rangers: rangers}, nil
	}
}

// SessionOpenInput represents the MCP tool input for opening a session.
type SessionOpenInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session to open"`
}

// SessionOpenResult represents the MCP tool output for opening a session.
type SessionOpenResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Snapshot  string `json:"snapshot" jsonschema:"canonical YAML rendering of the whole session"`
}

// SessionOpenTool defines the MCP tool schema for opening sessions.
func SessionOpenTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_open",
		Description: "Loads a session and returns its full YAML snapshot, the usual first call of a conversation",
	}
}

// SessionOpenHandler loads a session and renders it.
func SessionOpenHandler(store storage.Store) mcp.ToolHandlerFor[SessionOpenInput, SessionOpenResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionOpenInput) (*mcp.CallToolResult, SessionOpenResult, error) {
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, SessionOpenResult{}, err
		}
		snap, err := state.Snapshot(doc)
		if err != nil {
			return nil, SessionOpenResult{}, err
		}
		return nil, SessionOpenResult{SessionID: input.SessionID, Snapshot: snap}, nil
	}
}

// SessionDeleteInput represents the MCP tool input for deleting a session.
type SessionDeleteInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session to delete"`
}

// SessionDeleteResult represents the MCP tool output for deleting a session.
type SessionDeleteResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the deleted session"`
}

// SessionDeleteTool defines the MCP tool schema for deleting sessions.
func SessionDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_delete",
		Description: "Deletes a stored session document",
	}
}

// SessionDeleteHandler removes a session from the store.
func SessionDeleteHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[SessionDeleteInput, SessionDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionDeleteInput) (*mcp.CallToolResult, SessionDeleteResult, error) {
		if _, err := loadSession(ctx, store, input.SessionID); err != nil {
			return nil, SessionDeleteResult{}, err
		}
		if err := store.DeleteSession(ctx, input.SessionID); err != nil {
			return nil, SessionDeleteResult{}, err
		}
		logger.Info("Session deleted", "session_id", input.SessionID)
		return nil, SessionDeleteResult{SessionID: input.SessionID}, nil
	}
}

// SessionSnapshotInput represents the MCP tool input for rendering a session.
type SessionSnapshotInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session to render"`
	Zone      string `json:"zone,omitempty" jsonschema:"optional dotted zone path to render instead of the whole session, e.g. rangers.ranger_1.hand"`
}

// SessionSnapshotResult represents the MCP tool output for rendering a session.
type SessionSnapshotResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Zone      string `json:"zone,omitempty" jsonschema:"zone that was rendered, empty for the whole session"`
	Snapshot  string `json:"snapshot" jsonschema:"canonical YAML rendering"`
}

// SessionSnapshotTool defines the MCP tool schema for rendering sessions.
func SessionSnapshotTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_snapshot",
		Description: "Renders a session, or one zone of it, as canonical YAML with sorted keys",
	}
}

// SessionSnapshotHandler renders a session or a zone of it.
func SessionSnapshotHandler(store storage.Store) mcp.ToolHandlerFor[SessionSnapshotInput, SessionSnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionSnapshotInput) (*mcp.CallToolResult, SessionSnapshotResult, error) {
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, SessionSnapshotResult{}, err
		}

		var snap string
		if input.Zone != "" {
			node, err := doc.At(state.ParsePath(input.Zone))
			if err != nil {
				return nil, SessionSnapshotResult{}, err
			}
			snap, err = state.SnapshotValue(node)
			if err != nil {
				return nil, SessionSnapshotResult{}, err
			}
		} else {
			snap, err = state.Snapshot(doc)
			if err != nil {
				return nil, SessionSnapshotResult{}, err
			}
		}
		return nil, SessionSnapshotResult{SessionID: input.SessionID, Zone: input.Zone, Snapshot: snap}, nil
	}
}

// AppendLogInput represents the MCP tool input for appending to the log.
type AppendLogInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Entry     string `json:"entry" jsonschema:"free-text line to append to the campaign log"`
}

// AppendLogResult represents the MCP tool output for appending to the log.
type AppendLogResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Entries   int    `json:"entries" jsonschema:"number of log entries after the append"`
}

// AppendLogTool defines the MCP tool schema for the campaign log.
func AppendLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "append_log",
		Description: "Appends one free-text entry to the campaign log",
	}
}

// AppendLogHandler appends a campaign log entry.
func AppendLogHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[AppendLogInput, AppendLogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AppendLogInput) (*mcp.CallToolResult, AppendLogResult, error) {
		if input.Entry == "" {
			return nil, AppendLogResult{}, fmt.Errorf("entry is required")
		}
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, AppendLogResult{}, err
		}

		next, err := state.AppendLog(doc, input.Entry)
		if err != nil {
			return nil, AppendLogResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, AppendLogResult{}, err
		}

		entries := 0
		if logAny, err := next.At(state.ParsePath("campaign.log")); err == nil {
			if seq, ok := logAny.([]any); ok {
				entries = len(seq)
			}
		}
		logger.Info("Log entry appended", "session_id", input.SessionID, "entries", entries)
		return nil, AppendLogResult{SessionID: input.SessionID, Entries: entries}, nil
	}
}
