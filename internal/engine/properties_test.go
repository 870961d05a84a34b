package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/testutil"
)

// sampleInputs returns deterministic pseudo-random sequences over small
// alphabets, some sprinkled with the end-of-episode marker.
func sampleInputs() [][]int {
	inputs := testutil.RandomSequences(1, 2, testutil.SequenceOptions{
		Count:       60,
		MaxLen:      80,
		MaxAlphabet: 4,
		MarkerEvery: 3,
	})
	return append(inputs, testutil.Repeat(3, 33), []int{0, 1, 2, 0, 1, 2, 2, 2, 2})
}

func countMarkers(seq []ir.Symbol) int {
	n := 0
	for _, s := range seq {
		if s == ir.Raw(ir.DefaultEndOfEpisode) {
			n++
		}
	}
	return n
}

func TestProperty_RoundTripExpansion(t *testing.T) {
	for k := 1; k <= 4; k++ {
		for _, input := range sampleInputs() {
			res, err := New().Induce(input, k)
			require.NoError(t, err)

			expanded, err := ExpandSequence(res.Sequence, res.Rules)
			require.NoError(t, err)
			require.Equal(t, ir.RawSequence(input), expanded, "k=%d input=%v", k, input)
			assert.Equal(t, countMarkers(res.Input), countMarkers(res.Sequence), "markers pass through unchanged")
		}
	}
}

func TestProperty_LengthMonotonicity(t *testing.T) {
	for k := 1; k <= 4; k++ {
		for _, input := range sampleInputs() {
			res, err := New().Induce(input, k)
			require.NoError(t, err)

			assert.LessOrEqual(t, len(res.Sequence), len(input))
			if len(res.Rules) > 0 {
				assert.Less(t, len(res.Sequence), len(input), "k=%d input=%v", k, input)
			}
			for _, layer := range res.Layers {
				assert.LessOrEqual(t, layer.OutputLen, layer.InputLen)
				if len(layer.Minted) > 0 {
					assert.Less(t, layer.OutputLen, layer.InputLen, "a minted rule always fires")
				}
			}
		}
	}
}

func TestProperty_FixpointIdempotence(t *testing.T) {
	for k := 1; k <= 4; k++ {
		for _, input := range sampleInputs() {
			e := New()
			res, err := e.Induce(input, k)
			require.NoError(t, err)

			again, err := e.InduceSymbols(res.Sequence, k, res.Rules)
			require.NoError(t, err)
			assert.Equal(t, res.Sequence, again.Sequence)
			assert.Len(t, again.Rules, len(res.Rules), "no new rules at the fixpoint")
		}
	}
}

func TestProperty_ThresholdRespect(t *testing.T) {
	for k := 1; k <= 4; k++ {
		for _, input := range sampleInputs() {
			e := New()
			current := ir.RawSequence(input)
			for {
				occurrences := make(map[ir.Pair]int)
				for i := 0; i+1 < len(current); i++ {
					occurrences[pair(current[i], current[i+1])]++
				}

				lr := e.buildLayer(current, k)
				for id, p := range lr.rules {
					assert.GreaterOrEqual(t, occurrences[p], k, "rule %s %s minted below threshold", id, p)
					assert.False(t, p.Contains(ir.Raw(ir.DefaultEndOfEpisode)))
				}

				next, _ := rewrite(current, lr.reverse)
				if len(next) == len(current) {
					break
				}
				current = next
			}
		}
	}
}

func TestProperty_UsageMatchesReplacements(t *testing.T) {
	for _, input := range sampleInputs() {
		res, err := New().Induce(input, 2)
		require.NoError(t, err)

		total := 0
		for _, u := range res.Usage {
			total += u.Count
		}
		fired := 0
		for _, n := range res.RuleUsage {
			fired += n
		}
		assert.Equal(t, fired, total)
		assert.Equal(t, len(input)-fired, len(res.Sequence), "every replacement removes exactly one symbol")
	}
}
