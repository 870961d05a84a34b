package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/kseq/internal/alphabet"
	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/store"
	"github.com/roach88/kseq/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a fixed run id so recorded rows are reproducible.
type Harness struct {
	store  *store.Store // nil unless the scenario records
	runIDs engine.RunIDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each recording scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Build the raw input (tokens and text go through an Alphabet)
//  2. Induce with a fresh engine
//  3. Check the universal properties
//  4. Record and replay, if requested
//  5. Evaluate the scenario's assertions
//
// A rejected input is not an error: it is reported on the Result and can be
// asserted with an error assertion. The returned error is reserved for
// infrastructure failures such as an unusable store.
func Run(scenario *Scenario) (*Result, error) {
	h := &Harness{
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	if scenario.Record {
		st, err := store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		h.store = st
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	input, alpha, err := prepareInput(scenario)
	if err != nil {
		return h.rejected(result, scenario, err)
	}

	eng := engine.New()
	base := eng.NextRuleID()
	res, err := eng.Induce(input, scenario.Threshold())
	if err != nil {
		return h.rejected(result, scenario, err)
	}

	g, err := res.Grammar()
	if err != nil {
		return nil, fmt.Errorf("build grammar: %w", err)
	}
	hash, err := ir.GrammarHash(g)
	if err != nil {
		return nil, err
	}

	decode := func(s ir.Symbol) string { return s.String() }
	if alpha != nil {
		decode = alpha.Token
	}

	out := newOutcome(res, g, decode)
	result.Grammar = g
	result.GrammarHash = hash
	result.Decoded = out.decoded
	result.Layers = out.layers

	h.logger.Debug("scenario induced",
		"scenario", scenario.Name,
		"input_len", len(input),
		"final_len", len(res.Sequence),
		"rules", len(res.Rules),
	)

	for _, msg := range checkProperties(eng, res) {
		result.AddError(msg)
	}

	if h.store != nil {
		if err := h.record(ctx, result, g, base, alpha); err != nil {
			return nil, err
		}
	}

	for _, msg := range evaluateAssertions(out, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// rejected records an engine rejection and evaluates the assertions against
// it. Errors that did not come from input validation are returned as is.
func (h *Harness) rejected(result *Result, scenario *Scenario, err error) (*Result, error) {
	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		return nil, err
	}
	h.logger.Debug("scenario rejected", "scenario", scenario.Name, "error", err)

	result.InductionError = err
	for _, msg := range evaluateAssertions(&outcome{err: err}, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// prepareInput converts the scenario's input source into raw terminals.
// The returned alphabet is nil for integer input.
func prepareInput(s *Scenario) ([]int, *alphabet.Alphabet, error) {
	if len(s.Tokens) == 0 && s.Text == "" {
		return s.Input, nil, nil
	}

	alpha := alphabet.New(s.EndOfEpisode)
	if len(s.Alphabet) > 0 {
		var err error
		if alpha, err = alphabet.NewFixed(s.EndOfEpisode, s.Alphabet); err != nil {
			return nil, nil, err
		}
	}

	tokens := s.Tokens
	if s.Text != "" {
		tokens = alphabet.Chars(s.Text)
	}
	input, err := alpha.Encode(tokens)
	if err != nil {
		return nil, nil, err
	}
	return input, alpha, nil
}

// record writes the run, reads it back and replays it. Mismatches are
// reported on result; store failures are returned.
func (h *Harness) record(ctx context.Context, result *Result, g *ir.Grammar, base ir.RuleID, alpha *alphabet.Alphabet) error {
	run, err := ir.NewRun(h.runIDs.Generate(), g, base)
	if err != nil {
		return err
	}
	if alpha != nil {
		run.Alphabet = alpha.Tokens()
		run.EndOfEpisodeToken = alpha.EndOfEpisode()
	}

	if _, err := h.store.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	stored, err := h.store.ReadRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.RunID = stored.ID

	storedHash, err := ir.GrammarHash(stored.Grammar())
	if err != nil {
		return err
	}
	if storedHash != run.GrammarHash {
		result.AddError(fmt.Sprintf("record: stored grammar hashes to %s, recorded %s", storedHash, run.GrammarHash))
	}

	outcome, err := engine.Replay(stored)
	if err != nil {
		result.AddError(fmt.Sprintf("replay: %v", err))
		return nil
	}
	if !outcome.Match() {
		result.AddError(fmt.Sprintf("replay: grammar hash %s, recorded %s", outcome.Actual, outcome.Expected))
	}
	return nil
}
