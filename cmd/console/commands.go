package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

// commandResult is the outcome of one document command: the new document
// and a transcript line describing what changed.
type commandResult struct {
	doc     state.Document
	summary string
}

// executeCommand parses one console command and applies it to the
// document. Commands that do not change the document (help, undo, save)
// are handled by the UI; everything here returns a fresh document, so the
// caller can keep the old one on its undo stack.
func executeCommand(doc state.Document, cat *catalog.Catalog, input string) (commandResult, error) {
	verb, args := splitVerb(input)

	switch verb {
	case "state":
		if len(args) < 2 {
			return commandResult{}, errors.New("usage: state <new-state> <card>")
		}
		q, err := parseSelector(args[1:])
		if err != nil {
			return commandResult{}, err
		}
		next, err := state.SetCardState(doc, q, args[0])
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, fmt.Sprintf("%s is now %s", cardName(next, q), args[0])}, nil

	case "tokens":
		counts, rest, err := parseCounts(args)
		if err != nil {
			return commandResult{}, errors.New("usage: tokens <name=delta>... <card>")
		}
		q, err := parseSelector(rest)
		if err != nil {
			return commandResult{}, err
		}
		next, err := state.AddTokens(doc, q, counts)
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, tokenSummary(next, q)}, nil

	case "settokens":
		counts, rest, err := parseCounts(args)
		if err != nil {
			return commandResult{}, errors.New("usage: settokens <name=count>... <card>")
		}
		q, err := parseSelector(rest)
		if err != nil {
			return commandResult{}, err
		}
		next, err := state.SetTokens(doc, q, counts)
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, tokenSummary(next, q)}, nil

	case "move":
		if len(args) < 2 {
			return commandResult{}, errors.New("usage: move <zone> <card>")
		}
		q, err := parseSelector(args[1:])
		if err != nil {
			return commandResult{}, err
		}
		next, err := state.MoveCard(doc, q, state.ParsePath(args[0]))
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, fmt.Sprintf("%s moved to %s", cardName(next, q), args[0])}, nil

	case "discard":
		if len(args) < 2 {
			return commandResult{}, errors.New("usage: discard <ranger> <card>")
		}
		q, err := parseSelector(args[1:])
		if err != nil {
			return commandResult{}, err
		}
		next, err := state.DiscardCard(doc, q, args[0])
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, fmt.Sprintf("%s went to %s's discard pile", cardName(next, q), args[0])}, nil

	case "add":
		if len(args) < 2 {
			return commandResult{}, errors.New("usage: add <zone> <title> [type=...] [state=...]")
		}
		dest := args[0]
		cardTitle, cardType, cardState := parseAddWords(args[1:])
		if cardTitle == "" {
			return commandResult{}, errors.New("usage: add <zone> <title> [type=...] [state=...]")
		}
		next, card, err := state.AddCard(doc, cat, cardTitle, state.ParsePath(dest), cardType, cardState)
		if err != nil {
			return commandResult{}, err
		}
		summary := fmt.Sprintf("%s (%s) entered play in %s", card.Title(), card.ID(), dest)
		if tokens := card.Tokens(); len(tokens) > 0 {
			summary += "\nstarting tokens: " + formatTokens(tokens)
		}
		return commandResult{next, summary}, nil

	case "log":
		if len(args) == 0 {
			return commandResult{}, errors.New("usage: log <entry>")
		}
		entry := strings.Join(args, " ")
		next, err := state.AppendLog(doc, entry)
		if err != nil {
			return commandResult{}, err
		}
		return commandResult{next, "logged: " + entry}, nil

	default:
		return commandResult{}, fmt.Errorf("unknown command %q, try help", verb)
	}
}

func splitVerb(input string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// parseSelector builds a card query from the remaining words: id= and in=
// words narrow the selection, everything else is the title.
func parseSelector(words []string) (state.Query, error) {
	var q state.Query
	var titleWords []string
	for _, w := range words {
		switch {
		case strings.HasPrefix(w, "id="):
			q.ID = strings.TrimPrefix(w, "id=")
		case strings.HasPrefix(w, "in="):
			q.Zone = state.ParsePath(strings.TrimPrefix(w, "in="))
		default:
			titleWords = append(titleWords, w)
		}
	}
	q.Title = strings.Join(titleWords, " ")
	if q.Title == "" && q.ID == "" {
		return state.Query{}, errors.New("name a card by title or id=")
	}
	return q, nil
}

// parseCounts consumes leading name=integer words and returns the counts
// with the remaining selector words. The first word that is not a count
// starts the card selector.
func parseCounts(words []string) (map[string]int, []string, error) {
	counts := map[string]int{}
	rest := words
	for len(rest) > 0 {
		name, val, ok := strings.Cut(rest[0], "=")
		if !ok || name == "" || name == "id" || name == "in" {
			break
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			break
		}
		counts[name] = n
		rest = rest[1:]
	}
	if len(counts) == 0 {
		return nil, nil, errors.New("no name=count pairs given")
	}
	return counts, rest, nil
}

// parseAddWords separates type= and state= words from the new card's
// title.
func parseAddWords(words []string) (title, cardType, cardState string) {
	var titleWords []string
	for _, w := range words {
		switch {
		case strings.HasPrefix(w, "type="):
			cardType = strings.TrimPrefix(w, "type=")
		case strings.HasPrefix(w, "state="):
			cardState = strings.TrimPrefix(w, "state=")
		default:
			titleWords = append(titleWords, w)
		}
	}
	return strings.Join(titleWords, " "), cardType, cardState
}

// cardName names the selected card for the transcript, preferring the
// title as it is written on the card itself.
func cardName(doc state.Document, q state.Query) string {
	if m, err := state.LocateOne(doc, q); err == nil {
		return m.Card.Title()
	}
	if q.Title != "" {
		return q.Title
	}
	return q.ID
}

func tokenSummary(doc state.Document, q state.Query) string {
	m, err := state.LocateOne(doc, q)
	if err != nil {
		return "tokens updated"
	}
	return fmt.Sprintf("%s tokens: %s", m.Card.Title(), formatTokens(m.Card.Tokens()))
}

func formatTokens(tokens map[string]int) string {
	if len(tokens) == 0 {
		return "none"
	}
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, tokens[name])
	}
	return strings.Join(parts, " ")
}
