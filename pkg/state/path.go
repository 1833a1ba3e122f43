package state

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a container or node inside the document, one key per
// segment, e.g. {"within_reach", "ranger_1"}. The equivalent dotted string
// form is "within_reach.ranger_1". Numeric segments index into sequences;
// they appear in located-card paths and may be used on read paths, but
// zones passed to the mutators address containers, never positions.
type Path []string

// ParsePath splits a dotted zone string into a Path. Empty input means the
// document root.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// child returns p extended by one segment, backed by its own array.
func (p Path) child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

func isIndex(seg string) bool {
	_, err := strconv.Atoi(seg)
	return err == nil
}

// At walks the document along path without creating anything and returns
// the value found there. A path that does not resolve is a NotFoundError.
func (d Document) At(path Path) (any, error) {
	var cur any = map[string]any(d)
	for i, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, &NotFoundError{What: "zone", Name: path[:i+1].String()}
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, &NotFoundError{What: "zone", Name: path[:i+1].String()}
			}
			cur = node[idx]
		default:
			return nil, &NotFoundError{What: "zone", Name: path[:i+1].String()}
		}
	}
	return cur, nil
}

// ensureParent walks to the parent of dest's final segment, creating
// missing or null intermediate containers on the way. A created container
// takes its shape from the following segment: numeric means a sequence,
// anything else a mapping. Sequences cannot be conjured at a particular
// index, so a numeric segment must already resolve. A scalar sitting where
// a container belongs is never silently overwritten.
func ensureParent(doc Document, dest Path) (any, error) {
	var cur any = map[string]any(doc)
	for i, seg := range dest[:len(dest)-1] {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok || next == nil {
				if isIndex(dest[i+1]) {
					next = []any{}
				} else {
					next = map[string]any{}
				}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, &NotFoundError{What: "zone", Name: dest[:i+1].String()}
			}
			cur = node[idx]
		default:
			return nil, &IntegrityError{
				Msg: fmt.Sprintf("zone %s holds a %T, not a container", dest[:i+1], node),
			}
		}
	}
	return cur, nil
}

// placeCard inserts a card at the container addressed by dest, creating
// intermediate containers as needed. The final key follows the container
// rules: an existing sequence is appended to, a key that exists as null or
// holds a card is a single-card slot and is set, and a missing key becomes
// a new sequence holding the card. Anything else at the destination is an
// IntegrityError, never an overwrite.
func placeCard(doc Document, dest Path, c Card) error {
	if len(dest) == 0 {
		return &IntegrityError{Msg: "empty destination path"}
	}
	parent, err := ensureParent(doc, dest)
	if err != nil {
		return err
	}
	key := dest[len(dest)-1]
	node := map[string]any(c)

	var container map[string]any
	switch p := parent.(type) {
	case map[string]any:
		container = p
	case []any:
		return &IntegrityError{
			Msg: fmt.Sprintf("destination %s addresses a sequence position; address the container instead", dest),
		}
	default:
		return &IntegrityError{
			Msg: fmt.Sprintf("zone %s holds a %T, not a container", dest[:len(dest)-1], parent),
		}
	}

	existing, present := container[key]
	switch target := existing.(type) {
	case nil:
		if present {
			// Explicit null: a keyed single-card slot.
			container[key] = node
		} else {
			container[key] = []any{node}
		}
	case []any:
		container[key] = append(target, node)
	case map[string]any:
		if _, isCard := asCard(target); isCard {
			// Occupied single-card slot: the new card replaces the old.
			container[key] = node
		} else {
			return &IntegrityError{
				Msg: fmt.Sprintf("destination %s is a mapping, not a card container", dest),
			}
		}
	default:
		return &IntegrityError{
			Msg: fmt.Sprintf("destination %s holds a %T, not a container", dest, existing),
		}
	}
	return nil
}

// setAt writes v at path. The parent container must already exist.
func setAt(doc Document, path Path, v any) error {
	if len(path) == 0 {
		return &IntegrityError{Msg: "cannot replace the document root"}
	}
	parent, err := doc.At(path[:len(path)-1])
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	switch container := parent.(type) {
	case map[string]any:
		container[last] = v
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(container) {
			return &NotFoundError{What: "zone", Name: path.String()}
		}
		container[idx] = v
	default:
		return &IntegrityError{
			Msg: fmt.Sprintf("zone %s holds a %T, not a container", path[:len(path)-1], parent),
		}
	}
	return nil
}

// removeAt detaches the node at path from its parent container and returns
// it. A sequence parent is spliced; a mapping parent keeps the key as an
// explicit null, so single-card slots stay slots after the card leaves.
func removeAt(doc Document, path Path) (any, error) {
	if len(path) == 0 {
		return nil, &IntegrityError{Msg: "cannot remove the document root"}
	}
	parentPath := path[:len(path)-1]
	parent, err := doc.At(parentPath)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]

	switch container := parent.(type) {
	case map[string]any:
		node, ok := container[last]
		if !ok {
			return nil, &NotFoundError{What: "zone", Name: path.String()}
		}
		container[last] = nil
		return node, nil
	case []any:
		idx, aerr := strconv.Atoi(last)
		if aerr != nil || idx < 0 || idx >= len(container) {
			return nil, &NotFoundError{What: "zone", Name: path.String()}
		}
		node := container[idx]
		spliced := append(container[:idx:idx], container[idx+1:]...)
		if err := setAt(doc, parentPath, spliced); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, &IntegrityError{
			Msg: fmt.Sprintf("zone %s holds a %T, not a container", parentPath, parent),
		}
	}
}
