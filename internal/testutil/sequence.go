package testutil

import (
	"math/rand/v2"

	"github.com/roach88/kseq/internal/ir"
)

// Repeat returns n copies of v.
func Repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Cycle returns pattern concatenated times times.
//
//	Cycle([]int{0, 1}, 3) // [0 1 0 1 0 1]
func Cycle(pattern []int, times int) []int {
	out := make([]int, 0, len(pattern)*times)
	for range times {
		out = append(out, pattern...)
	}
	return out
}

// Episodes joins episodes with the default end-of-episode marker.
//
//	Episodes([]int{0, 1}, []int{2}) // [0 1 -1 2]
func Episodes(episodes ...[]int) []int {
	var out []int
	for i, ep := range episodes {
		if i > 0 {
			out = append(out, ir.DefaultEndOfEpisode)
		}
		out = append(out, ep...)
	}
	return out
}

// SequenceOptions shapes the sequences produced by RandomSequences.
type SequenceOptions struct {
	Count       int // number of sequences
	MaxLen      int // lengths are drawn from [1, MaxLen]
	MaxAlphabet int // alphabet sizes are drawn from [1, MaxAlphabet]
	// MarkerEvery adds end-of-episode markers (about one in eight symbols)
	// to every MarkerEvery-th sequence. Zero disables markers.
	MarkerEvery int
}

// RandomSequences returns pseudo-random raw sequences that are identical for
// identical seeds and options.
func RandomSequences(seed1, seed2 uint64, opts SequenceOptions) [][]int {
	rng := rand.New(rand.NewPCG(seed1, seed2))
	out := make([][]int, 0, opts.Count)
	for n := range opts.Count {
		length := 1 + rng.IntN(opts.MaxLen)
		alphabet := 1 + rng.IntN(opts.MaxAlphabet)
		withMarker := opts.MarkerEvery > 0 && n%opts.MarkerEvery == 0
		seq := make([]int, length)
		for i := range seq {
			if withMarker && rng.IntN(8) == 0 {
				seq[i] = ir.DefaultEndOfEpisode
				continue
			}
			seq[i] = rng.IntN(alphabet)
		}
		out = append(out, seq)
	}
	return out
}
