package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const weatherCatalog = `{
  "A Perfect Day": {
    "id": "weather-001",
    "card_type": "weather",
    "rules": ["Clear skies. No additional effects."],
    "traits": ["Clear"],
    "enters_play_with": {"sun": 3, "cloud": 0}
  },
  "Downpour": {
    "name": "Downpour",
    "type": "weather",
    "data": {"flavor": "The rain hammers the canopy."},
    "harm_threshold": 4,
    "enters_play_with": [
      {"type": "rain", "count": 4},
      {"token": "cloud"}
    ]
  },
  "Gusting Wind": {
    "slug": "weather-wind",
    "enters_play_with": {"type": "wind", "amount": 2}
  }
}`

func TestParseMappingForm(t *testing.T) {
	cat, err := Parse([]byte(weatherCatalog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cat.Len())
	}

	// Mapping keys come out sorted so catalog order is stable.
	var titles []string
	for _, e := range cat.Entries() {
		titles = append(titles, e.Title)
	}
	wantOrder := []string{"A Perfect Day", "Downpour", "Gusting Wind"}
	if diff := cmp.Diff(wantOrder, titles); diff != "" {
		t.Errorf("entry order (-want +got):\n%s", diff)
	}

	perfect, ok := cat.Find("A Perfect Day")
	if !ok {
		t.Fatal("A Perfect Day not found")
	}
	if perfect.ID != "weather-001" || perfect.Type != "weather" {
		t.Errorf("id/type = %q/%q", perfect.ID, perfect.Type)
	}
	if len(perfect.Rules) != 1 {
		t.Errorf("rules = %#v", perfect.Rules)
	}
	if _, ok := perfect.Data["traits"]; !ok {
		t.Error("traits should be folded into Data")
	}
	if diff := cmp.Diff(map[string]int{"sun": 3, "cloud": 0}, perfect.EntersPlayWith); diff != "" {
		t.Errorf("enters_play_with (-want +got):\n%s", diff)
	}

	downpour, ok := cat.Find("Downpour")
	if !ok {
		t.Fatal("Downpour not found")
	}
	if downpour.Title != "Downpour" || downpour.Type != "weather" {
		t.Errorf("name/type aliases not honored: %q/%q", downpour.Title, downpour.Type)
	}
	if downpour.Data["flavor"] != "The rain hammers the canopy." {
		t.Errorf("nested data lost: %#v", downpour.Data)
	}
	if _, ok := downpour.Data["harm_threshold"]; !ok {
		t.Error("top-level harm_threshold should be folded into Data")
	}
	// List form, with a missing count defaulting to one.
	if diff := cmp.Diff(map[string]int{"rain": 4, "cloud": 1}, downpour.EntersPlayWith); diff != "" {
		t.Errorf("enters_play_with (-want +got):\n%s", diff)
	}

	wind, ok := cat.Find("Gusting Wind")
	if !ok {
		t.Fatal("Gusting Wind not found")
	}
	if wind.ID != "weather-wind" {
		t.Errorf("slug alias not honored: %q", wind.ID)
	}
	if wind.Title != "Gusting Wind" {
		t.Errorf("mapping key should stand in for a missing title, got %q", wind.Title)
	}
	// Single-object form, with the amount alias.
	if diff := cmp.Diff(map[string]int{"wind": 2}, wind.EntersPlayWith); diff != "" {
		t.Errorf("enters_play_with (-want +got):\n%s", diff)
	}
}

func TestParseSequenceForm(t *testing.T) {
	data := `[
  {"title": "Silver Moth", "card_type": "being"},
  {"title": "Boulder Field", "card_type": "location", "presence": 3}
]`
	cat, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cat.Len())
	}
	if cat.Entries()[0].Title != "Silver Moth" {
		t.Error("sequence catalogs keep file order")
	}
	if _, ok := cat.Entries()[1].Data["presence"]; !ok {
		t.Error("presence should be folded into Data")
	}
}

func TestFind(t *testing.T) {
	cat, err := Parse([]byte(weatherCatalog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"A Perfect Day", "A Perfect Day", true},
		{"a PERFECT day", "A Perfect Day", true},
		{"Perfect Day", "A Perfect Day", true}, // leading article stripped on both sides
		{"The Downpour", "Downpour", true},
		{"gusting  wind", "Gusting Wind", true},
		{"Perfect", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			e, ok := cat.Find(tc.query)
			if ok != tc.found {
				t.Fatalf("Find(%q) found = %v, want %v", tc.query, ok, tc.found)
			}
			if ok && e.Title != tc.want {
				t.Errorf("Find(%q) = %q, want %q", tc.query, e.Title, tc.want)
			}
		})
	}
}

func TestNilCatalog(t *testing.T) {
	var cat *Catalog
	if _, ok := cat.Find("anything"); ok {
		t.Error("a nil catalog should know no titles")
	}
	if cat.Len() != 0 {
		t.Error("a nil catalog is empty")
	}
	if cat.Entries() != nil {
		t.Error("a nil catalog has no entries")
	}
}

func TestLoadTolerant(t *testing.T) {
	// A BOM and a trailing comma, the two defects hand-maintained catalog
	// files actually ship with.
	raw := "\xef\xbb\xbf" + `{
  "Downpour": {"card_type": "weather",},
}`
	path := filepath.Join(t.TempDir(), "weather.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := cat.Find("Downpour"); !ok {
		t.Error("Downpour not found after tolerant parse")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"scalar root", `42`, "must be an object or an array"},
		{"scalar entry", `["just a string"]`, "entry 0"},
		{"entry without title", `[{"card_type": "being"}]`, "no title"},
		{"bad token count", `{"X": {"enters_play_with": {"sun": "three"}}}`, "not an integer"},
		{"bad token shape", `{"X": {"enters_play_with": 7}}`, "unsupported enters_play_with shape"},
		{"nameless token object", `{"X": {"enters_play_with": [{"count": 2}]}}`, "no token name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}
