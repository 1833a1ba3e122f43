package state

import (
	"fmt"
	"strings"
)

// NotFoundError reports a selection, zone, or ranger that matched nothing.
type NotFoundError struct {
	What string // "card", "zone", "ranger"
	Name string // what was searched: a query description, path, or id
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Name)
}

// Candidate is one card an ambiguous query matched.
type Candidate struct {
	Title string `json:"title"`
	ID    string `json:"id"`
	Zone  string `json:"zone"`
}

// AmbiguousError reports a query that did not pin down a single card. The
// candidate list carries everything the caller needs to narrow the query;
// the library never guesses among candidates.
type AmbiguousError struct {
	Query      string
	Reason     string // set when the query itself conflicts, e.g. id vs title
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	b.WriteString("ambiguous selection ")
	b.WriteString(e.Query)
	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(e.Reason)
		b.WriteString(")")
	}
	b.WriteString(". Candidates:")
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n - %s (id=%s) @ %s", c.Title, c.ID, c.Zone)
	}
	b.WriteString("\nDisambiguate with an id or a more specific zone.")
	return b.String()
}

// IntegrityError reports a document that violates an invariant the library
// depends on, e.g. two cards sharing one id, or a scalar sitting where a
// container belongs.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string {
	return "document integrity: " + e.Msg
}
