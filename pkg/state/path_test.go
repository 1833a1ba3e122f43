package state

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{"empty means root", "", nil},
		{"single segment", "along_the_way", Path{"along_the_way"}},
		{"nested", "rangers.ranger_1.hand", Path{"rangers", "ranger_1", "hand"}},
		{"numeric segment", "along_the_way.2", Path{"along_the_way", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePath(tt.input)
			if got.String() != tt.want.String() || len(got) != len(tt.want) {
				t.Errorf("ParsePath(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDocumentAt(t *testing.T) {
	doc := sampleDoc()

	t.Run("resolves a container", func(t *testing.T) {
		v, err := doc.At(ParsePath("rangers.ranger_1.hand"))
		if err != nil {
			t.Fatalf("At failed: %v", err)
		}
		hand, ok := v.([]any)
		if !ok || len(hand) != 1 {
			t.Errorf("expected hand with one card, got %#v", v)
		}
	})

	t.Run("resolves a sequence index", func(t *testing.T) {
		v, err := doc.At(ParsePath("along_the_way.0"))
		if err != nil {
			t.Fatalf("At failed: %v", err)
		}
		card, ok := asCard(v)
		if !ok || card.Title() != "Topside Mast" {
			t.Errorf("expected the Topside Mast card, got %#v", v)
		}
	})

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := doc.At(ParsePath("rangers.ranger_9.hand"))
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("error = %v (%T), want *NotFoundError", err, err)
		}
		if nf.Name != "rangers.ranger_9" {
			t.Errorf("NotFoundError.Name = %q, want the first unresolved prefix", nf.Name)
		}
	})

	t.Run("index out of range is not found", func(t *testing.T) {
		_, err := doc.At(ParsePath("along_the_way.5"))
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("error = %v (%T), want *NotFoundError", err, err)
		}
	})

	t.Run("scalar mid-path is not found", func(t *testing.T) {
		_, err := doc.At(ParsePath("metadata.name.deeper"))
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("error = %v (%T), want *NotFoundError", err, err)
		}
	})
}

func TestPlaceCard(t *testing.T) {
	card := Card{"id": "card:new", "title": "New Arrival"}

	t.Run("missing key becomes a sequence", func(t *testing.T) {
		doc := sampleDoc()
		if err := placeCard(doc, ParsePath("within_reach.ranger_2"), card); err != nil {
			t.Fatalf("placeCard failed: %v", err)
		}
		v, err := doc.At(ParsePath("within_reach.ranger_2"))
		if err != nil {
			t.Fatal(err)
		}
		seq, ok := v.([]any)
		if !ok || len(seq) != 1 {
			t.Errorf("expected a new one-card sequence, got %#v", v)
		}
	})

	t.Run("null slot takes the card directly", func(t *testing.T) {
		doc := sampleDoc()
		if err := placeCard(doc, ParsePath("surroundings.weather"), card); err != nil {
			t.Fatalf("placeCard failed: %v", err)
		}
		v, _ := doc.At(ParsePath("surroundings.weather"))
		got, ok := asCard(v)
		if !ok || got.Title() != "New Arrival" {
			t.Errorf("slot should hold the card itself, got %#v", v)
		}
	})

	t.Run("occupied slot is replaced", func(t *testing.T) {
		doc := sampleDoc()
		if err := placeCard(doc, ParsePath("surroundings.location"), card); err != nil {
			t.Fatalf("placeCard failed: %v", err)
		}
		v, _ := doc.At(ParsePath("surroundings.location"))
		got, _ := asCard(v)
		if got.ID() != "card:new" {
			t.Errorf("slot should hold the replacement, got id %q", got.ID())
		}
	})

	t.Run("existing sequence is appended to", func(t *testing.T) {
		doc := sampleDoc()
		if err := placeCard(doc, ParsePath("along_the_way"), card); err != nil {
			t.Fatalf("placeCard failed: %v", err)
		}
		seqAny, _ := doc.At(ParsePath("along_the_way"))
		seq := seqAny.([]any)
		if len(seq) != 2 {
			t.Fatalf("expected 2 cards along the way, got %d", len(seq))
		}
		last, _ := asCard(seq[1])
		if last.ID() != "card:new" {
			t.Errorf("append should land at the end, got %q", last.ID())
		}
	})

	t.Run("intermediate containers are created", func(t *testing.T) {
		doc := sampleDoc()
		if err := placeCard(doc, ParsePath("rangers.ranger_9.hand"), card); err != nil {
			t.Fatalf("placeCard failed: %v", err)
		}
		v, err := doc.At(ParsePath("rangers.ranger_9.hand"))
		if err != nil {
			t.Fatal(err)
		}
		if seq, ok := v.([]any); !ok || len(seq) != 1 {
			t.Errorf("expected created hand with the card, got %#v", v)
		}
	})

	t.Run("scalar destination is never overwritten", func(t *testing.T) {
		doc := sampleDoc()
		err := placeCard(doc, ParsePath("metadata.name"), card)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("error = %v (%T), want *IntegrityError", err, err)
		}
	})

	t.Run("scalar in the middle of the path is refused", func(t *testing.T) {
		doc := sampleDoc()
		err := placeCard(doc, ParsePath("metadata.name.deeper"), card)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("error = %v (%T), want *IntegrityError", err, err)
		}
	})

	t.Run("non-card mapping destination is refused", func(t *testing.T) {
		doc := sampleDoc()
		err := placeCard(doc, ParsePath("rangers.ranger_1"), card)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("error = %v (%T), want *IntegrityError", err, err)
		}
	})

	t.Run("sequence position destination is refused", func(t *testing.T) {
		doc := sampleDoc()
		err := placeCard(doc, ParsePath("along_the_way.0"), card)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("error = %v (%T), want *IntegrityError", err, err)
		}
	})
}

func TestRemoveAt(t *testing.T) {
	t.Run("sequence parent splices", func(t *testing.T) {
		doc := sampleDoc()
		node, err := removeAt(doc, ParsePath("along_the_way.0"))
		if err != nil {
			t.Fatalf("removeAt failed: %v", err)
		}
		card, _ := asCard(node)
		if card.Title() != "Topside Mast" {
			t.Errorf("removed wrong node: %#v", node)
		}
		seqAny, _ := doc.At(ParsePath("along_the_way"))
		if seq := seqAny.([]any); len(seq) != 0 {
			t.Errorf("sequence should be empty after removal, got %d elements", len(seq))
		}
	})

	t.Run("slot parent keeps the key as null", func(t *testing.T) {
		doc := sampleDoc()
		node, err := removeAt(doc, ParsePath("surroundings.location"))
		if err != nil {
			t.Fatalf("removeAt failed: %v", err)
		}
		card, _ := asCard(node)
		if card.ID() != "loc:boulder" {
			t.Errorf("removed wrong node: %#v", node)
		}
		surroundings := doc["surroundings"].(map[string]any)
		v, present := surroundings["location"]
		if !present {
			t.Error("slot key should survive removal as an explicit null")
		}
		if v != nil {
			t.Errorf("slot should be null after removal, got %#v", v)
		}
	})

	t.Run("missing node is not found", func(t *testing.T) {
		doc := sampleDoc()
		_, err := removeAt(doc, ParsePath("along_the_way.7"))
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("error = %v (%T), want *NotFoundError", err, err)
		}
	})
}
