package state

import (
	"errors"
	"fmt"

	"github.com/trailstate/trailstate/pkg/catalog"
)

// SetCardState sets the state tag of exactly one card. The vocabulary is
// open: any state may follow any other, and game-rule validity of the
// transition is entirely the caller's concern.
func SetCardState(doc Document, q Query, newState string) (Document, error) {
	next := Clone(doc)
	m, err := LocateOne(next, q)
	if err != nil {
		return nil, err
	}
	m.Card["state"] = newState
	return next, nil
}

// AddTokens adjusts token counts on exactly one card. Each delta adds to
// the current count, absent counting as zero. A count that lands on
// exactly zero is pruned; negative counts are kept, the library imposes no
// floor. A tokens mapping is never created just to hold nothing, so a zero
// delta on an absent token leaves the document equal to its input.
func AddTokens(doc Document, q Query, deltas map[string]int) (Document, error) {
	next := Clone(doc)
	m, err := LocateOne(next, q)
	if err != nil {
		return nil, err
	}
	err = writeTokens(m.Card, func(counts map[string]int) {
		for name, delta := range deltas {
			counts[name] += delta
		}
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// SetTokens writes absolute token counts on exactly one card, replacing
// the current value for each named token only. Zero removes the token.
func SetTokens(doc Document, q Query, counts map[string]int) (Document, error) {
	next := Clone(doc)
	m, err := LocateOne(next, q)
	if err != nil {
		return nil, err
	}
	err = writeTokens(m.Card, func(current map[string]int) {
		for name, n := range counts {
			current[name] = n
		}
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// MoveCard relocates exactly one card to the container addressed by dest,
// creating intermediate containers on the write path. The node itself
// moves unmodified; combine with SetCardState when game rules attach a
// status change to the relocation.
func MoveCard(doc Document, q Query, dest Path) (Document, error) {
	if len(dest) == 0 {
		return nil, errors.New("move requires a destination zone")
	}
	next := Clone(doc)
	m, err := LocateOne(next, q)
	if err != nil {
		return nil, err
	}
	node, err := removeAt(next, m.Path)
	if err != nil {
		return nil, err
	}
	card, ok := asCard(node)
	if !ok {
		return nil, &IntegrityError{Msg: fmt.Sprintf("node at %s is not a card", m.Path)}
	}
	if err := placeCard(next, dest, card); err != nil {
		return nil, err
	}
	return next, nil
}

// DiscardCard relocates exactly one card to the named ranger's discard
// pile and stamps its state discarded. The ranger entry must already exist
// in the document; the discard pile itself is created on first use.
func DiscardCard(doc Document, q Query, rangerID string) (Document, error) {
	if rangerID == "" {
		return nil, errors.New("discard requires a ranger id")
	}
	next := Clone(doc)

	rangers, ok := next[keyRangers].(map[string]any)
	if !ok {
		return nil, &NotFoundError{What: "ranger", Name: rangerID}
	}
	entryAny, ok := rangers[rangerID]
	if !ok {
		return nil, &NotFoundError{What: "ranger", Name: rangerID}
	}
	entry, ok := entryAny.(map[string]any)
	if !ok {
		return nil, &IntegrityError{Msg: fmt.Sprintf("ranger %s is not a mapping", rangerID)}
	}

	m, err := LocateOne(next, q)
	if err != nil {
		return nil, err
	}
	node, err := removeAt(next, m.Path)
	if err != nil {
		return nil, err
	}
	card, ok := asCard(node)
	if !ok {
		return nil, &IntegrityError{Msg: fmt.Sprintf("node at %s is not a card", m.Path)}
	}
	card["state"] = StateDiscarded

	pileAny, present := entry[keyDiscardPile]
	var pile []any
	if present && pileAny != nil {
		pile, ok = pileAny.([]any)
		if !ok {
			return nil, &IntegrityError{
				Msg: fmt.Sprintf("discard pile of ranger %s is not a sequence", rangerID),
			}
		}
	}
	entry[keyDiscardPile] = append(pile, map[string]any(card))
	return next, nil
}

// AddCard looks a title up in the catalog, instantiates a card from the
// entry, and inserts it at dest. Unknown titles get a minimal stub instead
// of failing the operation; a nil catalog knows no titles. cardState
// defaults to ready. Returns the new document together with the card now
// living in it.
func AddCard(doc Document, cat *catalog.Catalog, cardTitle string, dest Path, fallbackType, cardState string) (Document, Card, error) {
	if len(dest) == 0 {
		return nil, nil, errors.New("add requires a destination zone")
	}
	next := Clone(doc)

	var card Card
	if entry, ok := cat.Find(cardTitle); ok {
		card = NewCardFromEntry(entry, fallbackType, cardState)
	} else {
		card = NewStubCard(cardTitle, fallbackType, cardState)
	}

	if err := placeCard(next, dest, card); err != nil {
		return nil, nil, err
	}
	return next, card, nil
}

// AppendLog appends one entry to the campaign log, creating the campaign
// section and its log on first use.
func AppendLog(doc Document, entry string) (Document, error) {
	next := Clone(doc)

	campaignAny, present := next[keyCampaign]
	var campaign map[string]any
	if present && campaignAny != nil {
		var ok bool
		campaign, ok = campaignAny.(map[string]any)
		if !ok {
			return nil, &IntegrityError{Msg: "campaign section is not a mapping"}
		}
	} else {
		campaign = map[string]any{}
		next[keyCampaign] = campaign
	}

	logAny, present := campaign[keyLog]
	var log []any
	if present && logAny != nil {
		var ok bool
		log, ok = logAny.([]any)
		if !ok {
			return nil, &IntegrityError{Msg: "campaign log is not a sequence"}
		}
	}
	campaign[keyLog] = append(log, entry)
	return next, nil
}

// writeTokens reads a card's counts, hands them to fn, prunes every count
// that is exactly zero, and stores the result. The tokens key is created
// only when a nonzero count needs to live there; an existing key stays
// even when it empties out.
func writeTokens(c Card, fn func(map[string]int)) error {
	var counts map[string]int
	rawAny, present := c["tokens"]
	hadTokens := present && rawAny != nil // a null tokens field counts as absent
	if hadTokens {
		raw, ok := rawAny.(map[string]any)
		if !ok {
			return &IntegrityError{Msg: fmt.Sprintf("card %s has a non-mapping tokens field", c.ID())}
		}
		counts = make(map[string]int, len(raw))
		for name, v := range raw {
			n, ok := asInt(v)
			if !ok {
				return &IntegrityError{Msg: fmt.Sprintf("card %s token %q is not an integer", c.ID(), name)}
			}
			counts[name] = n
		}
	} else {
		counts = make(map[string]int)
	}

	fn(counts)

	for name, n := range counts {
		if n == 0 {
			delete(counts, name)
		}
	}
	if len(counts) == 0 && !hadTokens {
		return nil
	}
	out := make(map[string]any, len(counts))
	for name, n := range counts {
		out[name] = n
	}
	c["tokens"] = out
	return nil
}
