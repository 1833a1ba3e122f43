package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trailstate/trailstate/internal/storage"
	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes scripted sessions against a live storage backend. Every
// step loads the session from storage, applies one operation, and saves
// the result back, so each case exercises the full persistence round trip
// and not just the in-memory library.
type Runner struct {
	Store             storage.Store
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(store storage.Store) *Runner {
	return &Runner{
		Store:             store,
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	sessionID := "itest-" + uuid.New().String()
	result.SessionID = sessionID

	doc := state.NewDocument(suite.Rangers...)
	if err := r.Store.SaveSession(ctx, sessionID, doc); err != nil {
		result.Error = fmt.Errorf("failed to seed session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	defer func() {
		_ = r.Store.DeleteSession(context.Background(), sessionID)
	}()

	var cat *catalog.Catalog
	if suite.Catalog != "" {
		var err error
		cat, err = r.Store.GetCatalog(ctx, suite.Catalog)
		if err != nil {
			result.Error = fmt.Errorf("failed to load catalog %s: %w", suite.Catalog, err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), stepName(step))
		stepResult := r.runStep(ctx, sessionID, cat, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), stepName(step), stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, stepName(step), stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), stepName(step), stepResult.Duration)
	}

	// Check expectations against what storage actually holds now.
	final, err := r.Store.LoadSession(ctx, sessionID)
	if err != nil {
		if result.Error == nil {
			result.Error = fmt.Errorf("failed to load final session: %w", err)
		}
	} else if final == nil {
		if result.Error == nil {
			result.Error = fmt.Errorf("session %s disappeared from storage", sessionID)
		}
	} else {
		for _, exp := range suite.Expect {
			if err := checkExpectation(final, exp); err != nil && result.Error == nil {
				result.Error = fmt.Errorf("expectation failed: %w", err)
			}
		}
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep loads the session, applies one operation, and saves the result.
func (r *Runner) runStep(ctx context.Context, sessionID string, cat *catalog.Catalog, step TestStep) TestResult {
	start := time.Now()
	res := TestResult{StepName: stepName(step)}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	doc, err := r.Store.LoadSession(stepCtx, sessionID)
	if err != nil {
		res.Error = fmt.Errorf("failed to load session: %w", err)
		res.Duration = time.Since(start)
		return res
	}
	if doc == nil {
		res.Error = fmt.Errorf("session %s not found", sessionID)
		res.Duration = time.Since(start)
		return res
	}

	next, opErr := applyStep(doc, cat, step)

	if step.WantError != "" {
		switch {
		case opErr == nil:
			res.Error = fmt.Errorf("operation should have failed with %q", step.WantError)
		case !strings.Contains(opErr.Error(), step.WantError):
			res.Error = fmt.Errorf("operation failed with %q, want %q", opErr, step.WantError)
		default:
			res.Success = true
		}
		res.Duration = time.Since(start)
		return res
	}

	if opErr != nil {
		res.Error = opErr
		res.Duration = time.Since(start)
		return res
	}

	if err := r.Store.SaveSession(stepCtx, sessionID, next); err != nil {
		res.Error = fmt.Errorf("failed to save session: %w", err)
		res.Duration = time.Since(start)
		return res
	}

	res.Success = true
	res.Duration = time.Since(start)
	return res
}

// applyStep dispatches one operation to the state library.
func applyStep(doc state.Document, cat *catalog.Catalog, step TestStep) (state.Document, error) {
	var q state.Query
	if step.Card != nil {
		q = *step.Card
	}

	switch step.Op {
	case "set_card_state":
		return state.SetCardState(doc, q, step.State)
	case "add_tokens":
		return state.AddTokens(doc, q, step.Tokens)
	case "set_tokens":
		return state.SetTokens(doc, q, step.Tokens)
	case "move_card":
		return state.MoveCard(doc, q, state.ParsePath(step.Dest))
	case "discard_card":
		return state.DiscardCard(doc, q, step.Ranger)
	case "add_card":
		next, _, err := state.AddCard(doc, cat, step.Title, state.ParsePath(step.Dest), step.Type, step.State)
		return next, err
	case "append_log":
		return state.AppendLog(doc, step.Entry)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func stepName(step TestStep) string {
	if step.Name != "" {
		return step.Name
	}
	return step.Op
}

// checkExpectation verifies one fact about the final document.
func checkExpectation(doc state.Document, exp Expectation) error {
	if exp.LogContains != "" {
		if !logContains(doc, exp.LogContains) {
			return fmt.Errorf("campaign log does not mention %q", exp.LogContains)
		}
	}

	if exp.SlotEmpty != "" {
		v, err := doc.At(state.ParsePath(exp.SlotEmpty))
		if err != nil {
			return fmt.Errorf("slot %s: %w", exp.SlotEmpty, err)
		}
		if v != nil {
			return fmt.Errorf("slot %s should hold an explicit null, holds %v", exp.SlotEmpty, v)
		}
	}

	if exp.Card == nil {
		return nil
	}

	m, err := state.LocateOne(doc, *exp.Card)
	if err != nil {
		return err
	}
	if exp.Zone != "" && m.Zone().String() != exp.Zone {
		return fmt.Errorf("card %q sits in %s, want %s", m.Card.Title(), m.Zone(), exp.Zone)
	}
	if exp.State != "" && m.Card.State() != exp.State {
		return fmt.Errorf("card %q state is %q, want %q", m.Card.Title(), m.Card.State(), exp.State)
	}
	if exp.NoTokens && len(m.Card.Tokens()) > 0 {
		return fmt.Errorf("card %q should have no tokens, has %v", m.Card.Title(), m.Card.Tokens())
	}
	if exp.Tokens != nil {
		got := m.Card.Tokens()
		if len(got) != len(exp.Tokens) {
			return fmt.Errorf("card %q tokens are %v, want %v", m.Card.Title(), got, exp.Tokens)
		}
		for name, n := range exp.Tokens {
			if got[name] != n {
				return fmt.Errorf("card %q token %s is %d, want %d", m.Card.Title(), name, got[name], n)
			}
		}
	}
	return nil
}

func logContains(doc state.Document, want string) bool {
	campaign, ok := doc["campaign"].(map[string]any)
	if !ok {
		return false
	}
	entries, ok := campaign["log"].([]any)
	if !ok {
		return false
	}
	for _, e := range entries {
		if s, ok := e.(string); ok && strings.Contains(s, want) {
			return true
		}
	}
	return false
}
