package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Query selects one card for a mutation. At least one of Title or ID is
// required. Title matches by normalized equality anywhere in the document;
// ID matches exactly and short-circuits title comparison on each node;
// Zone restricts the search to one container and its descendants.
type Query struct {
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
	Zone  Path   `json:"zone,omitempty"`
}

// UnmarshalJSON accepts the zone either as a dotted string or as a list
// of path segments.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title string          `json:"title"`
		ID    string          `json:"id"`
		Zone  json.RawMessage `json:"zone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Title = raw.Title
	q.ID = raw.ID
	q.Zone = nil

	if len(raw.Zone) == 0 || string(raw.Zone) == "null" {
		return nil
	}
	var dotted string
	if err := json.Unmarshal(raw.Zone, &dotted); err == nil {
		q.Zone = ParsePath(dotted)
		return nil
	}
	var segments []string
	if err := json.Unmarshal(raw.Zone, &segments); err == nil {
		q.Zone = Path(segments)
		return nil
	}
	return errors.New("zone must be a dotted string or a list of path segments")
}

func (q Query) validate() error {
	if q.Title == "" && q.ID == "" {
		return errors.New("selection query requires a title or an id")
	}
	return nil
}

// describe renders the query for error messages.
func (q Query) describe() string {
	parts := make([]string, 0, 3)
	if q.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", q.Title))
	}
	if q.ID != "" {
		parts = append(parts, fmt.Sprintf("id=%q", q.ID))
	}
	if len(q.Zone) > 0 {
		parts = append(parts, fmt.Sprintf("zone=%q", q.Zone.String()))
	}
	return strings.Join(parts, " ")
}
