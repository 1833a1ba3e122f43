package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailstate/trailstate/pkg/state"
)

var (
	// Global flags
	sessionFile string

	// Card selection flags, shared by every command that targets one card
	cardTitle string
	cardID    string
	cardZone  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trailstate",
	Short: "Edit an Earthborne Rangers session document from the command line",
	Long: `trailstate keeps a campaign's shared session file up to date one
elemental change at a time: flip a card's state, adjust its tokens, move
it between zones, send it to a discard pile, or bring a new card into
play from a reference catalog.

Every command loads the session JSON, applies exactly one change, and
writes the file back. Cards are picked by --title (fuzzy matched), with
--id or --zone to narrow the search when two cards share a title.`,
}

// initCmd creates a fresh session file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a fresh session file",
	Long: `Creates a new session document: one entry per ranger, empty play
zones, and empty weather and location slots. Refuses to overwrite an
existing file unless --force is given.

Example:
  trailstate init --ranger kestrel --ranger fen -f day_one.json`,
	RunE: runInit,
}

var (
	initRangers []string
	initForce   bool
)

// showCmd renders the session as YAML
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the session as readable YAML",
	Long: `Prints a canonical YAML snapshot of the session, suitable for
pasting into a shared campaign canvas. With --zone, only that part of
the document is shown.`,
	RunE: runShow,
}

var showZone string

// logCmd appends to the campaign log
var logCmd = &cobra.Command{
	Use:   "log [entry...]",
	Short: "Append an entry to the campaign log",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLog,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&sessionFile, "file", "f", "session.json", "Session document path")

	// Init flags
	initCmd.Flags().StringSliceVar(&initRangers, "ranger", nil, "Ranger id to seat (repeatable; default ranger_1)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing session file")

	// Show flags
	showCmd.Flags().StringVarP(&showZone, "zone", "z", "", "Show only this zone, e.g. within_reach.ranger_1")

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(logCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	if !initForce {
		if _, err := os.Stat(sessionFile); err == nil {
			return fmt.Errorf("%s already exists, pass --force to overwrite", sessionFile)
		}
	}

	doc := state.NewDocument(initRangers...)
	if err := saveSession(doc); err != nil {
		return err
	}

	fmt.Printf("New session written to %s\n", sessionFile)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	view := any(map[string]any(doc))
	if showZone != "" {
		view, err = doc.At(state.ParsePath(showZone))
		if err != nil {
			return err
		}
	}

	out, err := state.SnapshotValue(view)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	doc, err := loadSession()
	if err != nil {
		return err
	}

	entry := strings.Join(args, " ")
	next, err := state.AppendLog(doc, entry)
	if err != nil {
		return err
	}
	if err := saveSession(next); err != nil {
		return err
	}

	fmt.Printf("Logged: %s\n", entry)
	return nil
}

// loadSession reads the session document named by --file.
func loadSession() (state.Document, error) {
	doc, err := state.Load(sessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionFile, err)
	}
	return doc, nil
}

// saveSession writes the document back to the --file path.
func saveSession(doc state.Document) error {
	if err := state.Save(doc, sessionFile); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionFile, err)
	}
	return nil
}

// cardSelector builds the selection query from the shared card flags.
func cardSelector() state.Query {
	return state.Query{
		Title: cardTitle,
		ID:    cardID,
		Zone:  state.ParsePath(cardZone),
	}
}

// addCardFlags registers the shared selection flags on a card command.
func addCardFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cardTitle, "title", "t", "", "Card title (fuzzy matched)")
	cmd.Flags().StringVar(&cardID, "id", "", "Exact card id, when the title alone is ambiguous")
	cmd.Flags().StringVarP(&cardZone, "zone", "z", "", "Restrict the search to one zone, e.g. within_reach.ranger_1")
}

// describeTarget names the selected card for confirmation output.
func describeTarget() string {
	if cardTitle != "" {
		return cardTitle
	}
	return cardID
}
