package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
)

// checkProperties verifies the properties every induction result must have,
// whatever the input. eng must be the engine that produced res; the
// idempotence check continues induction on it.
func checkProperties(eng *engine.Engine, res *engine.Result) []string {
	var failures []string

	expanded, err := engine.ExpandSequence(res.Sequence, res.Rules)
	switch {
	case err != nil:
		failures = append(failures, fmt.Sprintf("round trip: %v", err))
	case !slices.Equal(expanded, res.Input):
		failures = append(failures, fmt.Sprintf("round trip: expansion %s differs from input %s",
			ir.SequenceString(expanded), ir.SequenceString(res.Input)))
	}

	for _, l := range res.Layers {
		if l.OutputLen > l.InputLen {
			failures = append(failures, fmt.Sprintf("monotonicity: layer %d grew from %d to %d symbols",
				l.Layer, l.InputLen, l.OutputLen))
		}
	}

	marker := ir.Raw(res.EndOfEpisode)
	for _, id := range res.Rules.IDs() {
		if res.Rules[id].Contains(marker) {
			failures = append(failures, fmt.Sprintf("marker: rule %s = %s contains the end-of-episode marker",
				id, res.Rules[id]))
		}
	}

	again, err := eng.InduceSymbols(res.Sequence, res.K, res.Rules)
	switch {
	case err != nil:
		failures = append(failures, fmt.Sprintf("idempotence: %v", err))
	case !slices.Equal(again.Sequence, res.Sequence) || len(again.Rules) != len(res.Rules):
		failures = append(failures, fmt.Sprintf("idempotence: re-induction changed %s to %s",
			ir.SequenceString(res.Sequence), ir.SequenceString(again.Sequence)))
	}

	return failures
}
