package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailstate/trailstate/pkg/state"
)

// validateCmd checks a session file against the document invariants
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a session file for integrity problems",
	Long: `Loads the session document and checks the invariants every other
command relies on: section shapes, card titles, token counts, and id
uniqueness within each zone. Without an argument the --file session is
checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := sessionFile
	if len(args) > 0 {
		filename = args[0]
	}

	validator := &sessionValidator{}
	if err := validator.validateFile(filename); err != nil {
		return err
	}

	fmt.Println("Session file is valid!")
	return nil
}

type sessionValidator struct {
	errors []string
}

func (v *sessionValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	doc, err := state.Load(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateSections(doc)
	v.validateCards(doc)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateSections checks the shape of each recognized root section. A
// section may be absent; one that is present with the wrong shape would
// break the commands that touch it.
func (v *sessionValidator) validateSections(doc state.Document) {
	v.requireMapping(doc, "metadata")
	v.requireSequence(doc, "along_the_way", "along_the_way")

	if campaign, ok := v.requireMapping(doc, "campaign"); ok {
		v.requireSequence(campaign, "log", "campaign.log")
	}

	if surroundings, ok := v.requireMapping(doc, "surroundings"); ok {
		v.requireSequence(surroundings, "missions", "surroundings.missions")
	}

	if within, ok := v.requireMapping(doc, "within_reach"); ok {
		for _, id := range sortedKeys(within) {
			v.requireSequence(within, id, "within_reach."+id)
		}
	}

	if rangers, ok := v.requireMapping(doc, "rangers"); ok {
		for _, id := range sortedKeys(rangers) {
			entry, ok := rangers[id].(map[string]any)
			if !ok {
				v.addError(fmt.Sprintf("ranger %s is not a mapping", id))
				continue
			}
			v.requireSequence(entry, "hand", "rangers."+id+".hand")
			v.requireSequence(entry, "discard_pile", "rangers."+id+".discard_pile")
		}
	}
}

// validateCards walks every card node and checks the card invariants.
func (v *sessionValidator) validateCards(doc state.Document) {
	seen := map[string]map[string]bool{} // zone -> id -> present
	for _, m := range state.Cards(doc) {
		where := m.Path.String()

		if m.Card.Title() == "" {
			v.addError(fmt.Sprintf("card at %s has an empty title", where))
		}
		if raw, present := m.Card["state"]; present && raw != nil {
			if _, ok := raw.(string); !ok {
				v.addError(fmt.Sprintf("card at %s has a non-string state", where))
			}
		}
		v.validateTokens(m.Card, where)

		zone := m.Zone().String()
		id := m.Card.ID()
		if seen[zone] == nil {
			seen[zone] = map[string]bool{}
		}
		if seen[zone][id] {
			v.addError(fmt.Sprintf("zone %s holds two cards with id %s", zone, id))
		}
		seen[zone][id] = true
	}
}

// validateTokens checks that counts are integers and that no key sits at
// zero. Zero counts are pruned after every token change; one that made it
// into the file was written by something else and will confuse players.
func (v *sessionValidator) validateTokens(c state.Card, where string) {
	rawAny, present := c["tokens"]
	if !present || rawAny == nil {
		return
	}
	raw, ok := rawAny.(map[string]any)
	if !ok {
		v.addError(fmt.Sprintf("card at %s has a non-mapping tokens field", where))
		return
	}
	for _, name := range sortedKeys(raw) {
		n, ok := asCount(raw[name])
		if !ok {
			v.addError(fmt.Sprintf("card at %s token %q is not an integer", where, name))
			continue
		}
		if n == 0 {
			v.addError(fmt.Sprintf("card at %s token %q is zero and should be pruned", where, name))
		}
	}
}

// requireMapping checks that the named key, when present and non-null,
// holds a mapping.
func (v *sessionValidator) requireMapping(container map[string]any, key string) (map[string]any, bool) {
	raw, present := container[key]
	if !present || raw == nil {
		return nil, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.addError(fmt.Sprintf("%s is not a mapping", key))
		return nil, false
	}
	return m, true
}

// requireSequence checks that the named key, when present and non-null,
// holds a sequence. path is the dotted form used in the error message.
func (v *sessionValidator) requireSequence(container map[string]any, key, path string) {
	raw, present := container[key]
	if !present || raw == nil {
		return
	}
	if _, ok := raw.([]any); !ok {
		v.addError(fmt.Sprintf("%s is not a sequence", path))
	}
}

func (v *sessionValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asCount coerces decoded JSON numbers to an int.
func asCount(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	default:
		return 0, false
	}
}
