// Package catalog loads reference card databases: the lookup tables a
// session draws on when new cards enter play. A catalog file is JSON,
// either a mapping from title to entry or a flat sequence of entries, and
// is read tolerantly. Entries in the wild use loose field names; parsing
// normalizes them into one shape.
package catalog

import (
	"fmt"
	"sort"

	"github.com/trailstate/trailstate/pkg/jsonfile"
	"github.com/trailstate/trailstate/pkg/title"
)

// Entry is one normalized card database record.
type Entry struct {
	ID             string         // from "id" or "slug"
	Title          string         // from "title" or "name"
	Type           string         // from "card_type" or "type"
	Rules          []string       // rule text, copied verbatim at instantiation
	Data           map[string]any // descriptive fields: traits, thresholds, icons
	EntersPlayWith map[string]int // initial token counts, explicit zeros kept
}

// dataFields are the descriptive entry fields folded into Data, on top of
// anything the entry already nests under its own "data" key.
var dataFields = []string{
	"traits",
	"presence",
	"harm_threshold",
	"progress_threshold",
	"approach_icons",
	"aspect_requirement",
	"energy_cost",
}

// Catalog is a loaded card database. Entries keep a deterministic order:
// file order for sequence-form catalogs, sorted keys for mapping-form.
type Catalog struct {
	entries []*Entry
	byTitle map[string][]*Entry
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	v, err := jsonfile.Read(path)
	if err != nil {
		return nil, err
	}
	return build(v, path)
}

// Parse parses catalog JSON held in memory.
func Parse(data []byte) (*Catalog, error) {
	v, err := jsonfile.Decode(data)
	if err != nil {
		return nil, err
	}
	return build(v, "catalog")
}

// Find returns the first entry whose title matches the query by normalized
// equality, the same rule the card locator applies to the live document.
// A nil catalog knows no titles.
func (c *Catalog) Find(query string) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	if entries := c.byTitle[title.Normalize(query)]; len(entries) > 0 {
		return entries[0], true
	}
	return nil, false
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns all entries in catalog order. The slice is shared; treat
// it as read-only.
func (c *Catalog) Entries() []*Entry {
	if c == nil {
		return nil
	}
	return c.entries
}

func build(v any, src string) (*Catalog, error) {
	cat := &Catalog{byTitle: make(map[string][]*Entry)}

	add := func(raw any, fallbackTitle string, where string) error {
		e, err := parseEntry(raw, fallbackTitle)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", src, where, err)
		}
		cat.entries = append(cat.entries, e)
		norm := title.Normalize(e.Title)
		cat.byTitle[norm] = append(cat.byTitle[norm], e)
		return nil
	}

	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := add(t[k], k, fmt.Sprintf("entry %q", k)); err != nil {
				return nil, err
			}
		}
	case []any:
		for i, raw := range t {
			if err := add(raw, "", fmt.Sprintf("entry %d", i)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%s: catalog root must be an object or an array, got %T", src, v)
	}
	return cat, nil
}

// parseEntry normalizes one loose entry. In mapping-form catalogs the key
// stands in for a missing title field.
func parseEntry(v any, fallbackTitle string) (*Entry, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("entry must be an object, got %T", v)
	}

	e := &Entry{
		ID:    stringField(m, "id", "slug"),
		Title: stringField(m, "title", "name"),
		Type:  stringField(m, "card_type", "type"),
		Data:  map[string]any{},
	}
	if e.Title == "" {
		e.Title = fallbackTitle
	}
	if e.Title == "" {
		return nil, fmt.Errorf("entry has no title")
	}

	if rules, ok := m["rules"].([]any); ok {
		for _, r := range rules {
			if s, ok := r.(string); ok {
				e.Rules = append(e.Rules, s)
			}
		}
	}

	if d, ok := m["data"].(map[string]any); ok {
		for k, val := range d {
			e.Data[k] = val
		}
	}
	for _, f := range dataFields {
		if val, ok := m[f]; ok {
			e.Data[f] = val
		}
	}

	epw, err := parseEntersPlayWith(m["enters_play_with"])
	if err != nil {
		return nil, err
	}
	e.EntersPlayWith = epw
	return e, nil
}

// parseEntersPlayWith accepts the three shapes catalog files use: a plain
// mapping from token name to count, a single {type|token|name, count|amount}
// object, or a list of such objects. A missing count means 1. Explicit
// zeros are preserved; the instantiator seeds them as-is.
func parseEntersPlayWith(v any) (map[string]int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if name := tokenName(t); name != "" {
			n, err := tokenCount(t)
			if err != nil {
				return nil, err
			}
			return map[string]int{name: n}, nil
		}
		out := make(map[string]int, len(t))
		for name, raw := range t {
			n, ok := asInt(raw)
			if !ok {
				return nil, fmt.Errorf("enters_play_with count for %q is not an integer", name)
			}
			out[name] = n
		}
		return out, nil
	case []any:
		out := make(map[string]int, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("enters_play_with entry %d must be an object", i)
			}
			name := tokenName(m)
			if name == "" {
				return nil, fmt.Errorf("enters_play_with entry %d has no token name", i)
			}
			n, err := tokenCount(m)
			if err != nil {
				return nil, err
			}
			out[name] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported enters_play_with shape %T", v)
	}
}

func tokenName(m map[string]any) string {
	for _, k := range []string{"type", "token", "name"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func tokenCount(m map[string]any) (int, error) {
	for _, k := range []string{"count", "amount"} {
		if raw, ok := m[k]; ok {
			n, ok := asInt(raw)
			if !ok {
				return 0, fmt.Errorf("enters_play_with %s is not an integer", k)
			}
			return n, nil
		}
	}
	return 1, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	default:
		return 0, false
	}
}
