package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trailstate/trailstate/internal/storage"
	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

// cardQuery assembles the locator query shared by every card tool. The
// zone is a dotted path; title matching is normalized, so "the topside
// mast" finds "Topside Mast".
func cardQuery(cardTitle, cardID, zone string) state.Query {
	q := state.Query{Title: cardTitle, ID: cardID}
	if zone != "" {
		q.Zone = state.ParsePath(zone)
	}
	return q
}

// SetCardStateInput represents the MCP tool input for setting a card state.
type SetCardStateInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Title     string `json:"title,omitempty" jsonschema:"card title, matched with normalization"`
	ID        string `json:"id,omitempty" jsonschema:"card instance id, pins one card when titles repeat"`
	Zone      string `json:"zone,omitempty" jsonschema:"optional dotted zone path restricting the search"`
	State     string `json:"state" jsonschema:"new state tag, open vocabulary (ready, exhausted, flipped, ...)"`
}

// SetCardStateResult represents the MCP tool output for setting a card state.
type SetCardStateResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string `json:"card_id" jsonschema:"instance id of the changed card"`
	Title     string `json:"title" jsonschema:"title of the changed card"`
	State     string `json:"state" jsonschema:"state tag now on the card"`
	Zone      string `json:"zone" jsonschema:"path of the card in the session"`
}

// SetCardStateTool defines the MCP tool schema for setting card states.
func SetCardStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_card_state",
		Description: "Sets the state tag of exactly one card, found by title or instance id",
	}
}

// SetCardStateHandler executes a card state change.
func SetCardStateHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[SetCardStateInput, SetCardStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetCardStateInput) (*mcp.CallToolResult, SetCardStateResult, error) {
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, SetCardStateResult{}, err
		}

		q := cardQuery(input.Title, input.ID, input.Zone)
		next, err := state.SetCardState(doc, q, input.State)
		if err != nil {
			return nil, SetCardStateResult{}, err
		}
		m, err := state.LocateOne(next, q)
		if err != nil {
			return nil, SetCardStateResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, SetCardStateResult{}, err
		}

		logger.Info("Card state set", "session_id", input.SessionID, "card_id", m.Card.ID(), "state", input.State)
		return nil, SetCardStateResult{
			SessionID: input.SessionID,
			CardID:    m.Card.ID(),
			Title:     m.Card.Title(),
			State:     m.Card.State(),
			Zone:      m.Path.String(),
		}, nil
	}
}

// AddTokensInput represents the MCP tool input for adjusting token counts.
type AddTokensInput struct {
	SessionID string         `json:"session_id" jsonschema:"identifier of the session"`
	Title     string         `json:"title,omitempty" jsonschema:"card title, matched with normalization"`
	ID        string         `json:"id,omitempty" jsonschema:"card instance id, pins one card when titles repeat"`
	Zone      string         `json:"zone,omitempty" jsonschema:"optional dotted zone path restricting the search"`
	Tokens    map[string]int `json:"tokens" jsonschema:"token deltas by name, negative to remove (e.g. {\"progress\": 2})"`
}

// AddTokensResult represents the MCP tool output for adjusting token counts.
type AddTokensResult struct {
	SessionID string         `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string         `json:"card_id" jsonschema:"instance id of the changed card"`
	Title     string         `json:"title" jsonschema:"title of the changed card"`
	Tokens    map[string]int `json:"tokens" jsonschema:"token counts on the card after the change, zeros pruned"`
}

// AddTokensTool defines the MCP tool schema for adding tokens.
func AddTokensTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_tokens",
		Description: "Adds token deltas to one card; counts that land on zero disappear",
	}
}

// AddTokensHandler executes a token adjustment.
func AddTokensHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[AddTokensInput, AddTokensResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddTokensInput) (*mcp.CallToolResult, AddTokensResult, error) {
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, AddTokensResult{}, err
		}

		q := cardQuery(input.Title, input.ID, input.Zone)
		next, err := state.AddTokens(doc, q, input.Tokens)
		if err != nil {
			return nil, AddTokensResult{}, err
		}
		m, err := state.LocateOne(next, q)
		if err != nil {
			return nil, AddTokensResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, AddTokensResult{}, err
		}

		logger.Info("Tokens adjusted", "session_id", input.SessionID, "card_id", m.Card.ID(), "deltas", input.Tokens)
		return nil, AddTokensResult{
			SessionID: input.SessionID,
			CardID:    m.Card.ID(),
			Title:     m.Card.Title(),
			Tokens:    m.Card.Tokens(),
		}, nil
	}
}

// SetTokensInput represents the MCP tool input for writing absolute counts.
type SetTokensInput struct {
	SessionID string         `json:"session_id" jsonschema:"identifier of the session"`
	Title     string         `json:"title,omitempty" jsonschema:"card title, matched with normalization"`
	ID        string         `json:"id,omitempty" jsonschema:"card instance id, pins one card when titles repeat"`
	Zone      string         `json:"zone,omitempty" jsonschema:"optional dotted zone path restricting the search"`
	Tokens    map[string]int `json:"tokens" jsonschema:"absolute token counts by name, zero removes the token"`
}

// SetTokensResult represents the MCP tool output for writing absolute counts.
type SetTokensResult struct {
	SessionID string         `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string         `json:"card_id" jsonschema:"instance id of the changed card"`
	Title     string         `json:"title" jsonschema:"title of the changed card"`
	Tokens    map[string]int `json:"tokens" jsonschema:"token counts on the card after the change, zeros pruned"`
}

// SetTokensTool defines the MCP tool schema for setting tokens.
func SetTokensTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_tokens",
		Description: "Writes absolute token counts on one card, replacing the named counts only",
	}
}

// SetTokensHandler executes an absolute token write.
func SetTokensHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[SetTokensInput, SetTokensResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetTokensInput) (*mcp.CallToolResult, SetTokensResult, error) {
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, SetTokensResult{}, err
		}

		q := cardQuery(input.Title, input.ID, input.Zone)
		next, err := state.SetTokens(doc, q, input.Tokens)
		if err != nil {
			return nil, SetTokensResult{}, err
		}
		m, err := state.LocateOne(next, q)
		if err != nil {
			return nil, SetTokensResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, SetTokensResult{}, err
		}

		logger.Info("Tokens set", "session_id", input.SessionID, "card_id", m.Card.ID(), "counts", input.Tokens)
		return nil, SetTokensResult{
			SessionID: input.SessionID,
			CardID:    m.Card.ID(),
			Title:     m.Card.Title(),
			Tokens:    m.Card.Tokens(),
		}, nil
	}
}

// MoveCardInput represents the MCP tool input for moving a card.
type MoveCardInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Title     string `json:"title,omitempty" jsonschema:"card title, matched with normalization"`
	ID        string `json:"id,omitempty" jsonschema:"card instance id, pins one card when titles repeat"`
	Zone      string `json:"zone,omitempty" jsonschema:"optional dotted zone path restricting the search"`
	To        string `json:"to" jsonschema:"dotted path of the destination container, created if missing"`
}

// MoveCardResult represents the MCP tool output for moving a card.
type MoveCardResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string `json:"card_id" jsonschema:"instance id of the moved card"`
	Title     string `json:"title" jsonschema:"title of the moved card"`
	From      string `json:"from" jsonschema:"path the card moved out of"`
	To        string `json:"to" jsonschema:"path the card now lives at"`
}

// MoveCardTool defines the MCP tool schema for moving cards.
func MoveCardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move_card",
		Description: "Moves one card to another zone, keeping its id, state, and tokens",
	}
}

// MoveCardHandler executes a card move.
func MoveCardHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[MoveCardInput, MoveCardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveCardInput) (*mcp.CallToolResult, MoveCardResult, error) {
		if input.To == "" {
			return nil, MoveCardResult{}, fmt.Errorf("to is required")
		}
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, MoveCardResult{}, err
		}

		q := cardQuery(input.Title, input.ID, input.Zone)
		before, err := state.LocateOne(doc, q)
		if err != nil {
			return nil, MoveCardResult{}, err
		}
		from := before.Path.String()

		next, err := state.MoveCard(doc, q, state.ParsePath(input.To))
		if err != nil {
			return nil, MoveCardResult{}, err
		}
		after, err := state.LocateOne(next, state.Query{ID: before.Card.ID()})
		if err != nil {
			return nil, MoveCardResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, MoveCardResult{}, err
		}

		logger.Info("Card moved", "session_id", input.SessionID, "card_id", after.Card.ID(), "from", from, "to", after.Path.String())
		return nil, MoveCardResult{
			SessionID: input.SessionID,
			CardID:    after.Card.ID(),
			Title:     after.Card.Title(),
			From:      from,
			To:        after.Path.String(),
		}, nil
	}
}

// DiscardCardInput represents the MCP tool input for discarding a card.
type DiscardCardInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Title     string `json:"title,omitempty" jsonschema:"card title, matched with normalization"`
	ID        string `json:"id,omitempty" jsonschema:"card instance id, pins one card when titles repeat"`
	Zone      string `json:"zone,omitempty" jsonschema:"optional dotted zone path restricting the search"`
	Ranger    string `json:"ranger" jsonschema:"ranger whose discard pile receives the card"`
}

// DiscardCardResult represents the MCP tool output for discarding a card.
type DiscardCardResult struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string `json:"card_id" jsonschema:"instance id of the discarded card"`
	Title     string `json:"title" jsonschema:"title of the discarded card"`
	Ranger    string `json:"ranger" jsonschema:"ranger whose discard pile received the card"`
}

// DiscardCardTool defines the MCP tool schema for discarding cards.
func DiscardCardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "discard_card",
		Description: "Moves one card to a ranger's discard pile and marks it discarded",
	}
}

// DiscardCardHandler executes a discard.
func DiscardCardHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[DiscardCardInput, DiscardCardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiscardCardInput) (*mcp.CallToolResult, DiscardCardResult, error) {
		if input.Ranger == "" {
			return nil, DiscardCardResult{}, fmt.Errorf("ranger is required")
		}
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, DiscardCardResult{}, err
		}

		q := cardQuery(input.Title, input.ID, input.Zone)
		before, err := state.LocateOne(doc, q)
		if err != nil {
			return nil, DiscardCardResult{}, err
		}

		next, err := state.DiscardCard(doc, q, input.Ranger)
		if err != nil {
			return nil, DiscardCardResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, DiscardCardResult{}, err
		}

		logger.Info("Card discarded", "session_id", input.SessionID, "card_id", before.Card.ID(), "ranger", input.Ranger)
		return nil, DiscardCardResult{
			SessionID: input.SessionID,
			CardID:    before.Card.ID(),
			Title:     before.Card.Title(),
			Ranger:    input.Ranger,
		}, nil
	}
}

// AddCardInput represents the MCP tool input for adding a card.
type AddCardInput struct {
	SessionID string `json:"session_id" jsonschema:"identifier of the session"`
	Catalog   string `json:"catalog,omitempty" jsonschema:"card database name to look the title up in, e.g. weather"`
	Title     string `json:"title" jsonschema:"title of the card to add"`
	To        string `json:"to" jsonschema:"dotted path of the destination container, e.g. surroundings.weather"`
	Type      string `json:"type,omitempty" jsonschema:"card type used when the database entry has none, e.g. weather"`
	State     string `json:"state,omitempty" jsonschema:"initial state tag, defaults to ready"`
}

// AddCardResult represents the MCP tool output for adding a card.
type AddCardResult struct {
	SessionID string         `json:"session_id" jsonschema:"identifier of the session"`
	CardID    string         `json:"card_id" jsonschema:"fresh instance id of the added card"`
	Title     string         `json:"title" jsonschema:"title of the added card"`
	Stub      bool           `json:"stub" jsonschema:"true when the title was not in the database and a minimal card was created"`
	Tokens    map[string]int `json:"tokens,omitempty" jsonschema:"token counts the card entered play with"`
}

// AddCardTool defines the MCP tool schema for adding cards.
func AddCardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_card",
		Description: "Instantiates a card from a card database and places it in a zone; unknown titles get a minimal stub",
	}
}

// AddCardHandler executes a card instantiation.
func AddCardHandler(store storage.Store, logger *slog.Logger) mcp.ToolHandlerFor[AddCardInput, AddCardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddCardInput) (*mcp.CallToolResult, AddCardResult, error) {
		if input.Title == "" {
			return nil, AddCardResult{}, fmt.Errorf("title is required")
		}
		if input.To == "" {
			return nil, AddCardResult{}, fmt.Errorf("to is required")
		}
		doc, err := loadSession(ctx, store, input.SessionID)
		if err != nil {
			return nil, AddCardResult{}, err
		}

		var cat *catalog.Catalog
		if input.Catalog != "" {
			cat, err = store.GetCatalog(ctx, input.Catalog)
			if err != nil {
				return nil, AddCardResult{}, err
			}
		}

		next, card, err := state.AddCard(doc, cat, input.Title, state.ParsePath(input.To), input.Type, input.State)
		if err != nil {
			return nil, AddCardResult{}, err
		}
		if err := store.SaveSession(ctx, input.SessionID, next); err != nil {
			return nil, AddCardResult{}, err
		}

		_, found := cat.Find(input.Title)
		logger.Info("Card added", "session_id", input.SessionID, "card_id", card.ID(), "title", card.Title(), "stub", !found)
		return nil, AddCardResult{
			SessionID: input.SessionID,
			CardID:    card.ID(),
			Title:     card.Title(),
			Stub:      !found,
			Tokens:    card.Tokens(),
		}, nil
	}
}
