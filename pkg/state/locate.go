package state

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/trailstate/trailstate/pkg/title"
)

// Match is one located card: the node itself (a live view into the
// document it was found in) and its full path from the root.
type Match struct {
	Card Card
	Path Path
}

// Zone returns the path of the container holding the matched card.
func (m Match) Zone() Path {
	if len(m.Path) == 0 {
		return nil
	}
	return m.Path[:len(m.Path)-1]
}

// Position returns the matched card's final path segment: its index within
// a sequence, or its key when it sits in a single-card slot.
func (m Match) Position() string {
	if len(m.Path) == 0 {
		return ""
	}
	return m.Path[len(m.Path)-1]
}

// Locate finds every card matching q, in deterministic document order
// (mapping keys sorted, sequences by index). With an id, only exact id
// equality is considered; otherwise titles compare by normalized equality.
// A zone that does not resolve is a NotFoundError.
func Locate(doc Document, q Query) ([]Match, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	root := any(map[string]any(doc))
	base := Path(nil)
	if len(q.Zone) > 0 {
		sub, err := doc.At(q.Zone)
		if err != nil {
			return nil, err
		}
		root = sub
		base = q.Zone
	}

	wantTitle := title.Normalize(q.Title)
	var matches []Match
	walkCards(root, base, func(c Card, p Path) {
		if q.ID != "" {
			if c.ID() == q.ID {
				matches = append(matches, Match{Card: c, Path: p})
			}
			return
		}
		if title.Normalize(c.Title()) == wantTitle {
			matches = append(matches, Match{Card: c, Path: p})
		}
	})
	return matches, nil
}

// LocateOne applies the single-target policy every mutator shares: exactly
// one card comes back, or a typed error explains how to narrow the query.
// An id must land on exactly one node; two nodes sharing an id is an
// IntegrityError, and an id hit whose title disagrees with a supplied
// title is flagged ambiguous rather than silently resolved either way.
func LocateOne(doc Document, q Query) (Match, error) {
	matches, err := Locate(doc, q)
	if err != nil {
		return Match{}, err
	}

	if q.ID != "" {
		switch len(matches) {
		case 0:
			return Match{}, &NotFoundError{What: "card", Name: q.describe()}
		case 1:
			m := matches[0]
			if q.Title != "" && !title.Equal(q.Title, m.Card.Title()) {
				return Match{}, &AmbiguousError{
					Query:      q.describe(),
					Reason:     "id and title identify different cards",
					Candidates: candidates(matches),
				}
			}
			return m, nil
		default:
			return Match{}, &IntegrityError{
				Msg: fmt.Sprintf("%d cards share id %q", len(matches), q.ID),
			}
		}
	}

	switch len(matches) {
	case 0:
		return Match{}, &NotFoundError{What: "card", Name: q.describe()}
	case 1:
		return matches[0], nil
	default:
		return Match{}, &AmbiguousError{Query: q.describe(), Candidates: candidates(matches)}
	}
}

// Cards enumerates every card in the document, in the same deterministic
// order Locate uses. Useful for inventory views and integrity checks.
func Cards(doc Document) []Match {
	var matches []Match
	walkCards(map[string]any(doc), nil, func(c Card, p Path) {
		matches = append(matches, Match{Card: c, Path: p})
	})
	return matches
}

// walkCards calls fn for every card-shaped node under v, depth-first.
// Mapping keys are visited in sorted order so traversal, and with it every
// candidate listing, is deterministic. The walk descends into card nodes
// too; card-shaped mappings buried in free-form data are still cards as
// far as selection is concerned.
func walkCards(v any, path Path, fn func(Card, Path)) {
	switch node := v.(type) {
	case map[string]any:
		if c, ok := asCard(node); ok {
			fn(c, path)
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkCards(node[k], path.child(k), fn)
		}
	case []any:
		for i, item := range node {
			walkCards(item, path.child(strconv.Itoa(i)), fn)
		}
	}
}

func candidates(matches []Match) []Candidate {
	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = Candidate{
			Title: m.Card.Title(),
			ID:    m.Card.ID(),
			Zone:  m.Path.String(),
		}
	}
	return out
}
