package engine

import "github.com/roach88/kseq/internal/ir"

// rewrite performs one greedy, non-overlapping, left-to-right substitution
// pass over seq using the reverse lookup of a single layer.
//
// A symbol consumed as the second half of a substitution is never reused by
// the next position. Returns the new sequence (never longer than seq) and
// how many times each rule fired in this pass.
func rewrite(seq []ir.Symbol, reverse map[ir.Pair]ir.RuleID) ([]ir.Symbol, map[ir.RuleID]int) {
	out := make([]ir.Symbol, 0, len(seq))
	usage := make(map[ir.RuleID]int)

	for i := 0; i < len(seq); i++ {
		if i == len(seq)-1 {
			out = append(out, seq[i])
			break
		}

		id, ok := reverse[ir.Pair{Left: seq[i], Right: seq[i+1]}]
		if !ok {
			out = append(out, seq[i])
			continue
		}

		out = append(out, ir.Ref(id))
		usage[id]++
		i++ // seq[i+1] was consumed by this substitution
	}

	return out, usage
}
