package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trailstate/trailstate/internal/storage"
)

// SessionListPayload is the JSON body of the session listing resource.
type SessionListPayload struct {
	Sessions []string `json:"sessions"`
}

// SessionListResource defines the MCP resource for session listings.
func SessionListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "session_list",
		Title:       "Sessions",
		Description: "Readable listing of stored session identifiers",
		MIMEType:    "application/json",
		URI:         "trailstate://sessions",
	}
}

// SessionListResourceHandler returns a readable session listing resource.
func SessionListResourceHandler(store storage.Store) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if store == nil {
			return nil, fmt.Errorf("session store is not configured")
		}

		uri := SessionListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		ids, err := store.ListSessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("session list failed: %w", err)
		}

		data, err := json.MarshalIndent(SessionListPayload{Sessions: ids}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal session list: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
