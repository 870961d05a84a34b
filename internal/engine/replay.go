package engine

import (
	"fmt"

	"github.com/roach88/kseq/internal/ir"
)

// # Replay
//
// Induction is deterministic: the same input, k, marker and first rule id
// always yield the same grammar. A recorded run stores all four, so replay is
// just induction again with the counter resumed at the run's RuleBase:
//
//	eng := New(
//		WithEndOfEpisode(run.EndOfEpisode),
//		WithRuleCounter(NewRuleCounterAt(run.RuleBase)),
//	)
//	res, _ := eng.Induce(input, run.K)
//
// The replayed grammar is hashed with ir.GrammarHash and compared with the
// recorded hash. Any difference means the engine's behavior changed between
// the recording and the replay.

// ReplayOutcome reports whether a recorded run was reproduced.
type ReplayOutcome struct {
	RunID    string
	Expected string // recorded grammar hash
	Actual   string // replayed grammar hash
	Result   *Result
}

// Match reports whether the replay reproduced the recorded grammar.
func (o *ReplayOutcome) Match() bool {
	return o.Expected == o.Actual
}

// Replay re-runs the induction described by run.
//
// Returns INVALID_INPUT if the recorded input contains rule references; only
// runs over raw terminals can be replayed.
func Replay(run ir.Run) (*ReplayOutcome, error) {
	input, at, ok := ir.RawValues(run.Input)
	if !ok {
		return nil, NewInvalidInputError("recorded input contains a rule reference", at, run.Input[at].String())
	}

	eng := New(
		WithEndOfEpisode(run.EndOfEpisode),
		WithRuleCounter(NewRuleCounterAt(run.RuleBase)),
	)
	res, err := eng.Induce(input, run.K)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", run.ID, err)
	}

	g, err := res.Grammar()
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", run.ID, err)
	}
	hash, err := ir.GrammarHash(g)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", run.ID, err)
	}

	return &ReplayOutcome{
		RunID:    run.ID,
		Expected: run.GrammarHash,
		Actual:   hash,
		Result:   res,
	}, nil
}
