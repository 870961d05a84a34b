package engine

import "github.com/roach88/kseq/internal/ir"

// layerRules holds the rules minted by one buildLayer scan.
type layerRules struct {
	// ids lists minted rule ids in mint order.
	ids []ir.RuleID

	// rules maps each minted id to its pair.
	rules ir.RuleTable

	// reverse is the per-layer lookup used by rewrite. Each pair maps to at
	// most one id within a layer.
	reverse map[ir.Pair]ir.RuleID
}

// buildLayer scans seq once and mints a rule for every adjacent pair whose
// running count reaches k.
//
// The bookkeeping, in order, for each index i in [0, len(seq)-2]:
//   - skip i if the previous index just consumed it as the second half of a
//     rule pair
//   - skip i if seq[i+1] is the end-of-episode marker
//   - skip i if seq[i] is the marker, clearing the preceding-pair slot
//   - count the pair unless it equals the preceding counted pair (runs of
//     three or more identical symbols); an equal pair clears the slot instead
//   - once the count is >= k: decrement the count of (seq[i-1], seq[i]) when
//     i >= 1, mark i+1 as consumed, and mint an id for the pair if this scan
//     has not minted one for it yet
//
// Counts may go negative after a decrement; they are never clamped.
func (e *Engine) buildLayer(seq []ir.Symbol, k int) layerRules {
	counts := make(map[ir.Pair]int)
	var last ir.Pair
	hasLast := false
	skipNext := false

	out := layerRules{
		rules:   make(ir.RuleTable),
		reverse: make(map[ir.Pair]ir.RuleID),
	}

	for i := 0; i < len(seq)-1; i++ {
		if skipNext {
			skipNext = false
			continue
		}
		if seq[i+1] == e.marker {
			continue
		}
		if seq[i] == e.marker {
			hasLast = false
			continue
		}

		pair := ir.Pair{Left: seq[i], Right: seq[i+1]}
		if hasLast && pair == last {
			hasLast = false
		} else {
			counts[pair]++
			last = pair
			hasLast = true
		}

		if counts[pair] < k {
			continue
		}

		if i >= 1 {
			counts[ir.Pair{Left: seq[i-1], Right: seq[i]}]--
		}
		skipNext = true

		if _, minted := out.reverse[pair]; !minted {
			id := e.counter.Next()
			out.ids = append(out.ids, id)
			out.rules[id] = pair
			out.reverse[pair] = id
		}
	}

	return out
}
