package state

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/trailstate/trailstate/pkg/jsonfile"
)

// sampleDoc is the shared fixture: one location in play, one feature along
// the way, a being within reach, and two rangers whose hands each hold a
// card titled Perceptive.
func sampleDoc() Document {
	return Document{
		"metadata": map[string]any{"name": "lure of the valley"},
		"campaign": map[string]any{"log": []any{"Day 1 began."}},
		"surroundings": map[string]any{
			"location": map[string]any{
				"id":    "loc:boulder",
				"title": "Boulder Field",
				"type":  "location",
				"state": "ready",
			},
			"weather":  nil,
			"missions": []any{},
		},
		"along_the_way": []any{
			map[string]any{
				"id":     "card:mast",
				"title":  "Topside Mast",
				"type":   "feature",
				"state":  "ready",
				"tokens": map[string]any{"progress": float64(2)},
			},
		},
		"within_reach": map[string]any{
			"ranger_1": []any{
				map[string]any{
					"id":    "card:moth",
					"title": "Silver Moth",
					"type":  "being",
					"state": "ready",
				},
			},
		},
		"rangers": map[string]any{
			"ranger_1": map[string]any{
				"hand": []any{
					map[string]any{
						"id":    "card:perc1",
						"title": "Perceptive",
						"type":  "attribute",
						"state": "in_hand",
					},
				},
				"discard_pile": []any{},
			},
			"ranger_2": map[string]any{
				"hand": []any{
					map[string]any{
						"id":    "card:perc2",
						"title": "Perceptive",
						"type":  "attribute",
						"state": "in_hand",
					},
				},
				"discard_pile": []any{},
			},
		},
	}
}

// normalize round-trips a value through JSON so int and float64 collapse
// into one representation for diffing.
func normalize(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal for diff: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal for diff: %v", err)
	}
	return out
}

func docDiff(t *testing.T, want, got Document) string {
	t.Helper()
	return cmp.Diff(normalize(t, want), normalize(t, got))
}

// assertUnchanged fails the test when a mutator observably altered its
// input document.
func assertUnchanged(t *testing.T, before, after Document) {
	t.Helper()
	if !Equal(before, after) {
		t.Errorf("input document was mutated (-before +after):\n%s", docDiff(t, before, after))
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument()

	for _, section := range []string{"metadata", "campaign", "surroundings", "along_the_way", "within_reach", "rangers"} {
		if _, ok := doc[section]; !ok {
			t.Errorf("NewDocument missing section %q", section)
		}
	}

	surroundings, ok := doc["surroundings"].(map[string]any)
	if !ok {
		t.Fatal("surroundings is not a mapping")
	}
	for _, slot := range []string{"weather", "location"} {
		v, present := surroundings[slot]
		if !present {
			t.Errorf("surroundings.%s slot missing; it must exist as an explicit null", slot)
		}
		if v != nil {
			t.Errorf("surroundings.%s = %v, want null", slot, v)
		}
	}

	rangers := doc["rangers"].(map[string]any)
	if _, ok := rangers["ranger_1"]; !ok {
		t.Error("default document should carry ranger_1")
	}

	named := NewDocument("kestrel", "fen")
	rangers = named["rangers"].(map[string]any)
	if len(rangers) != 2 {
		t.Errorf("expected 2 rangers, got %d", len(rangers))
	}
	within := named["within_reach"].(map[string]any)
	if _, ok := within["fen"]; !ok {
		t.Error("within_reach should have an entry per ranger")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDoc()
	orig := Clone(doc)

	clone := Clone(doc)
	hand := clone["rangers"].(map[string]any)["ranger_1"].(map[string]any)["hand"].([]any)
	card := hand[0].(map[string]any)
	card["state"] = "exhausted"
	card["tokens"] = map[string]any{"harm": 3}
	clone["along_the_way"] = append(clone["along_the_way"].([]any), map[string]any{"id": "x", "title": "X"})

	assertUnchanged(t, orig, doc)
}

func TestEqual(t *testing.T) {
	a := Document{"tokens": map[string]any{"progress": float64(2)}}
	b := Document{"tokens": map[string]any{"progress": 2}}
	if !Equal(a, b) {
		t.Error("whole-number float and int should compare equal")
	}

	c := Document{"tokens": map[string]any{"progress": 3}}
	if Equal(a, c) {
		t.Error("different counts should not compare equal")
	}

	if !Equal(nil, nil) {
		t.Error("two nil documents should compare equal")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := sampleDoc()
	// Unknown sections must survive the trip untouched.
	doc["homestead"] = map[string]any{"built": []any{"workshop"}}

	path := filepath.Join(t.TempDir(), "session.json")
	if err := Save(doc, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !Equal(doc, loaded) {
		t.Errorf("round-trip mismatch (-saved +loaded):\n%s", docDiff(t, doc, loaded))
	}

	// Write the loaded document back out and reload once more.
	path2 := filepath.Join(t.TempDir(), "again.json")
	if err := Save(loaded, path2); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	again, err := Load(path2)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if !Equal(loaded, again) {
		t.Errorf("second round-trip mismatch:\n%s", docDiff(t, loaded, again))
	}
}

func TestLoadRejectsNonObjectRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	if err := jsonfile.Write(path, []any{"not", "a", "document"}); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var pe *jsonfile.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load error = %v (%T), want *jsonfile.ParseError", err, err)
	}
}
