// Card mutation commands: each loads the session, applies one elemental
// change through pkg/state, and writes the file back.
package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

// setStateCmd sets a card's state tag
var setStateCmd = &cobra.Command{
	Use:   "set-state <state>",
	Short: "Set the state tag of one card",
	Long: `Sets the card's state to the given tag. The vocabulary is open:
ready, exhausted, flipped, or whatever the table needs.

Example:
  trailstate set-state exhausted --title "Silver Moth"`,
	Args: cobra.ExactArgs(1),
	RunE: runSetState,
}

// addTokensCmd adjusts token counts
var addTokensCmd = &cobra.Command{
	Use:   "add-tokens <name=delta>...",
	Short: "Adjust token counts on one card",
	Long: `Each argument names a token and a signed delta. A count that lands
on exactly zero is removed from the card.

Example:
  trailstate add-tokens progress=2 harm=-1 --title "Topside Mast"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddTokens,
}

// setTokensCmd writes absolute token counts
var setTokensCmd = &cobra.Command{
	Use:   "set-tokens <name=count>...",
	Short: "Set token counts on one card",
	Long: `Writes absolute counts for the named tokens, leaving every other
token on the card alone. A count of zero removes the token.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetTokens,
}

// moveCmd relocates a card to another zone
var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move one card to another zone",
	Long: `Moves the card to the destination zone, unmodified. Missing
intermediate containers are created on the way.

Example:
  trailstate move --title "Silver Moth" --to along_the_way`,
	RunE: runMove,
}

var moveTo string

// discardCmd sends a card to a ranger's discard pile
var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Send one card to a ranger's discard pile",
	Long: `Moves the card to the named ranger's discard pile and marks it
discarded. The ranger must already exist in the session.`,
	RunE: runDiscard,
}

var discardRanger string

// addCmd brings a new card into play
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Bring a new card into play",
	Long: `Instantiates a fresh card and places it in the destination zone.
With --catalog, the title is looked up in the given card database file
and the new card inherits its type, rules, and starting tokens. Titles
the catalog does not know still enter play, as minimal stubs.

Example:
  trailstate add "A Perfect Day" --to surroundings.weather --catalog data/catalogs/weather.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAddCard,
}

var (
	addTo       string
	catalogFile string
	addType     string
	addState    string
)

func init() {
	addCardFlags(setStateCmd)
	addCardFlags(addTokensCmd)
	addCardFlags(setTokensCmd)
	addCardFlags(moveCmd)
	addCardFlags(discardCmd)

	moveCmd.Flags().StringVar(&moveTo, "to", "", "Destination zone, e.g. along_the_way (required)")
	moveCmd.MarkFlagRequired("to")

	discardCmd.Flags().StringVar(&discardRanger, "ranger", "", "Ranger whose discard pile receives the card (required)")
	discardCmd.MarkFlagRequired("ranger")

	addCmd.Flags().StringVar(&addTo, "to", "", "Destination zone (required)")
	addCmd.Flags().StringVar(&catalogFile, "catalog", "", "Card database file to look the title up in")
	addCmd.Flags().StringVar(&addType, "type", "", "Card type when the catalog has none, e.g. weather")
	addCmd.Flags().StringVar(&addState, "state", "", "Initial state (default ready)")
	addCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(setStateCmd)
	rootCmd.AddCommand(addTokensCmd)
	rootCmd.AddCommand(setTokensCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(addCmd)
}

func runSetState(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	next, err := state.SetCardState(doc, cardSelector(), args[0])
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	fmt.Printf("%s is now %s\n", describeTarget(), args[0])
	return nil
}

func runAddTokens(cmd *cobra.Command, args []string) error {
	deltas, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	doc, err := loadSession()
	if err != nil {
		return err
	}

	next, err := state.AddTokens(doc, cardSelector(), deltas)
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	reportTokens(next)
	return nil
}

func runSetTokens(cmd *cobra.Command, args []string) error {
	counts, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	doc, err := loadSession()
	if err != nil {
		return err
	}

	next, err := state.SetTokens(doc, cardSelector(), counts)
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	reportTokens(next)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	next, err := state.MoveCard(doc, cardSelector(), state.ParsePath(moveTo))
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	fmt.Printf("%s moved to %s\n", describeTarget(), moveTo)
	return nil
}

func runDiscard(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	next, err := state.DiscardCard(doc, cardSelector(), discardRanger)
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	fmt.Printf("%s went to %s's discard pile\n", describeTarget(), discardRanger)
	return nil
}

func runAddCard(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	var cat *catalog.Catalog
	if catalogFile != "" {
		cat, err = catalog.Load(catalogFile)
		if err != nil {
			return err
		}
	}

	next, card, err := state.AddCard(doc, cat, args[0], state.ParsePath(addTo), addType, addState)
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	fmt.Printf("%s (%s) entered play in %s\n", card.Title(), card.ID(), addTo)
	if tokens := card.Tokens(); len(tokens) > 0 {
		fmt.Printf("Starting tokens: %s\n", formatTokens(tokens))
	}
	return nil
}

// parseTokenArgs turns name=count arguments into a count map.
func parseTokenArgs(args []string) (map[string]int, error) {
	counts := make(map[string]int, len(args))
	for _, arg := range args {
		name, val, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("token argument %q must look like name=count", arg)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("token count in %q must be an integer", arg)
		}
		counts[name] = n
	}
	return counts, nil
}

// reportTokens prints the selected card's counts after a token change.
func reportTokens(doc state.Document) {
	m, err := state.LocateOne(doc, cardSelector())
	if err != nil {
		return
	}
	fmt.Printf("%s tokens: %s\n", m.Card.Title(), formatTokens(m.Card.Tokens()))
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
