package state

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/trailstate/trailstate/pkg/catalog"
)

// Card is a view over one card node in the document tree. A mapping is
// card-shaped when it carries string id and title fields; id is unique
// within a container, title need not be unique anywhere. Cards are
// self-contained: everything needed to reason about one lives in its node.
type Card map[string]any

func (c Card) ID() string    { s, _ := c["id"].(string); return s }
func (c Card) Title() string { s, _ := c["title"].(string); return s }
func (c Card) Type() string  { s, _ := c["type"].(string); return s }
func (c Card) State() string { s, _ := c["state"].(string); return s }

// Tokens returns a copy of the card's token counts. Values that are not
// whole numbers are skipped.
func (c Card) Tokens() map[string]int {
	raw, ok := c["tokens"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(raw))
	for name, v := range raw {
		if n, ok := asInt(v); ok {
			out[name] = n
		}
	}
	return out
}

// Rules returns the card's rule text lines.
func (c Card) Rules() []string {
	raw, ok := c["rules"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asCard reports whether v is a card-shaped mapping and returns the view.
func asCard(v any) (Card, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		if c, isCard := v.(Card); isCard {
			m = map[string]any(c)
		} else {
			return nil, false
		}
	}
	if _, ok := m["id"].(string); !ok {
		return nil, false
	}
	if _, ok := m["title"].(string); !ok {
		return nil, false
	}
	return Card(m), true
}

// idPrefixes maps card types to the short id prefixes session files use.
var idPrefixes = map[string]string{
	"weather":  "wx",
	"location": "loc",
}

// newCardID returns a fresh instance id, e.g. "card:1f3a9c2e".
func newCardID(cardType string) string {
	prefix, ok := idPrefixes[cardType]
	if !ok {
		prefix = "card"
	}
	id := uuid.New()
	return prefix + ":" + hex.EncodeToString(id[:4])
}

// NewCardFromEntry instantiates a fresh card node from a catalog entry.
// The type falls back to fallbackType when the entry has none; cardState
// defaults to ready. enters_play_with counts are seeded verbatim,
// including explicit zeros. That first snapshot is the one moment a
// zero-valued token key may exist, so a freshly played card shows every
// counter it tracks; the next token mutation prunes zeros as usual.
func NewCardFromEntry(e *catalog.Entry, fallbackType, cardState string) Card {
	cardType := e.Type
	if cardType == "" {
		cardType = fallbackType
	}
	if cardState == "" {
		cardState = StateReady
	}

	rules := make([]any, len(e.Rules))
	for i, r := range e.Rules {
		rules[i] = r
	}

	tokens := make(map[string]any, len(e.EntersPlayWith))
	for name, n := range e.EntersPlayWith {
		tokens[name] = n
	}

	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = cloneValue(v)
	}
	if e.ID != "" {
		data["card_ref_id"] = e.ID
	}

	return Card{
		"id":     newCardID(cardType),
		"title":  e.Title,
		"type":   cardType,
		"state":  cardState,
		"rules":  rules,
		"tokens": tokens,
		"data":   data,
	}
}

// NewStubCard builds the minimal card used when a title is missing from
// the catalog: empty rules, tokens, and data. The library tolerates
// unknown cards rather than failing the whole operation; recording
// provenance for stubs is the caller's concern.
func NewStubCard(cardTitle, fallbackType, cardState string) Card {
	if cardState == "" {
		cardState = StateReady
	}
	return Card{
		"id":     newCardID(fallbackType),
		"title":  cardTitle,
		"type":   fallbackType,
		"state":  cardState,
		"rules":  []any{},
		"tokens": map[string]any{},
		"data":   map[string]any{},
	}
}
