package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

type ConsoleConfig struct {
	SessionFile string
	CatalogFile string
}

func main() {
	cfg := &ConsoleConfig{
		SessionFile: getEnv("SESSION_FILE", "session.json"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
	}
	if len(os.Args) > 1 {
		cfg.SessionFile = os.Args[1]
	}

	doc, fresh, err := loadOrCreate(cfg.SessionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load session %s: %v\n", cfg.SessionFile, err)
		os.Exit(1)
	}

	var cat *catalog.Catalog
	if cfg.CatalogFile != "" {
		cat, err = catalog.Load(cfg.CatalogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load catalog %s: %v\n", cfg.CatalogFile, err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(NewConsoleUI(cfg, doc, cat, fresh),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadOrCreate reads the session file, or starts a fresh document when the
// file does not exist yet. The second return reports the fresh case.
func loadOrCreate(path string) (state.Document, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return state.NewDocument(), true, nil
	}
	doc, err := state.Load(path)
	if err != nil {
		return nil, false, err
	}
	return doc, false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
