package runner

import (
	"time"

	"github.com/trailstate/trailstate/pkg/state"
)

// TestSuite defines one scripted session: the table setup, a sequence of
// document operations, and the state expected once they have all run.
type TestSuite struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Rangers     []string      `json:"rangers,omitempty"`
	Catalog     string        `json:"catalog,omitempty"` // catalog name, resolved by the store
	Steps       []TestStep    `json:"steps"`
	Expect      []Expectation `json:"expect,omitempty"`
}

// TestStep is one operation applied to the session document. Which fields
// matter depends on op: set_card_state, add_tokens, set_tokens, move_card,
// discard_card, add_card, append_log.
type TestStep struct {
	Name   string         `json:"name,omitempty"`
	Op     string         `json:"op"`
	Card   *state.Query   `json:"card,omitempty"`
	Title  string         `json:"title,omitempty"` // add_card: title to instantiate
	Dest   string         `json:"dest,omitempty"`
	State  string         `json:"state,omitempty"`
	Type   string         `json:"type,omitempty"`
	Ranger string         `json:"ranger,omitempty"`
	Entry  string         `json:"entry,omitempty"`
	Tokens map[string]int `json:"tokens,omitempty"`

	// WantError flips the step into a negative test: the operation must
	// fail with an error carrying this substring, and the session must
	// stay as it was.
	WantError string `json:"want_error,omitempty"`
}

// Expectation checks one fact about the final document.
type Expectation struct {
	Card        *state.Query   `json:"card,omitempty"`
	Zone        string         `json:"zone,omitempty"`   // container path the card must sit in
	State       string         `json:"state,omitempty"`  // card state tag
	Tokens      map[string]int `json:"tokens,omitempty"` // exact token counts
	NoTokens    bool           `json:"no_tokens,omitempty"`
	LogContains string         `json:"log_contains,omitempty"`
	SlotEmpty   string         `json:"slot_empty,omitempty"` // path that must hold an explicit null
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID string // session the suite ran against
}
