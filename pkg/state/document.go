// Package state holds the session document model and the elemental
// mutations that operate on it. Every mutator is a pure function: it deep
// copies the input document, applies exactly one change to the copy, and
// returns it. The input is never observably altered, so callers can keep
// old document values around for undo or comparison at no extra cost.
package state

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/trailstate/trailstate/pkg/jsonfile"
)

// Document is the root session state: a generic JSON tree. The recognized
// sections are metadata, campaign (with its log), surroundings (location
// and weather single-card slots plus the missions sequence), along_the_way,
// within_reach (ranger id to sequence), and rangers (ranger id to hand and
// discard_pile). Unknown keys pass through every operation verbatim.
type Document map[string]any

// Section and field names the library itself reads or writes.
const (
	keyMetadata     = "metadata"
	keyCampaign     = "campaign"
	keyLog          = "log"
	keySurroundings = "surroundings"
	keyAlongTheWay  = "along_the_way"
	keyWithinReach  = "within_reach"
	keyRangers      = "rangers"
	keyHand         = "hand"
	keyDiscardPile  = "discard_pile"
)

// Well-known card states. The state vocabulary is open and never validated;
// these are only the values the library writes itself.
const (
	StateReady     = "ready"
	StateDiscarded = "discarded"
)

var errNotObject = errors.New("document root is not a JSON object")

// NewDocument builds an empty session: one entry per ranger id (ranger_1
// when none are given), empty play zones, and explicit null weather and
// location slots. The nulls matter: a slot that exists as null receives a
// single card on write, while a missing key would grow a sequence.
func NewDocument(rangerIDs ...string) Document {
	if len(rangerIDs) == 0 {
		rangerIDs = []string{"ranger_1"}
	}
	rangers := make(map[string]any, len(rangerIDs))
	within := make(map[string]any, len(rangerIDs))
	for _, id := range rangerIDs {
		rangers[id] = map[string]any{
			keyHand:        []any{},
			keyDiscardPile: []any{},
		}
		within[id] = []any{}
	}
	return Document{
		keyMetadata: map[string]any{},
		keyCampaign: map[string]any{keyLog: []any{}},
		keySurroundings: map[string]any{
			"location": nil,
			"weather":  nil,
			"missions": []any{},
		},
		keyAlongTheWay: []any{},
		keyWithinReach: within,
		keyRangers:     rangers,
	}
}

// Load reads a session document from a JSON file, tolerantly.
func Load(path string) (Document, error) {
	v, err := jsonfile.Read(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &jsonfile.ParseError{Path: path, Err: errNotObject}
	}
	return Document(m), nil
}

// Save writes the document as human-readable JSON with stable key order,
// creating or overwriting the target file.
func Save(doc Document, path string) error {
	return jsonfile.Write(path, map[string]any(doc))
}

// Clone returns an independently owned deep copy of the document. All
// mutators clone before touching anything.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(doc)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case Card:
		return cloneValue(map[string]any(t))
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}

// Equal reports deep equality of two documents, insensitive to map key
// order and to whether a whole number is held as an int or a float64.
// Both are compared through their canonical JSON encoding.
func Equal(a, b Document) bool {
	ab, err := json.Marshal(map[string]any(a))
	if err != nil {
		return false
	}
	bb, err := json.Marshal(map[string]any(b))
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// asInt coerces the numeric representations a decoded JSON tree may hold
// into an int. Fractional values do not coerce.
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
