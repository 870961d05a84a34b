package engine

import (
	"slices"

	"github.com/roach88/kseq/internal/ir"
)

// Expand unfolds sym into the raw terminals it represents.
//
// Expansion is an iterative fixpoint over a working buffer: every pass
// replaces each rule reference with its two right-hand side symbols, and
// passes repeat until one changes nothing. No recursion is used, so deeply
// nested grammars cannot exhaust the stack.
//
// Raw terminals (including the end-of-episode marker) expand to themselves.
// Returns an UNKNOWN_SYMBOL error if a rule reference is missing from rules.
func Expand(sym ir.Symbol, rules ir.RuleTable) ([]ir.Symbol, error) {
	current := []ir.Symbol{sym}
	next := make([]ir.Symbol, 0, 2)

	for {
		next = next[:0]
		changed := false
		for _, s := range current {
			id, ok := s.RuleID()
			if !ok {
				next = append(next, s)
				continue
			}
			pair, ok := rules[id]
			if !ok {
				return nil, NewUnknownSymbolError(s.String())
			}
			next = append(next, pair.Left, pair.Right)
			changed = true
		}
		if !changed {
			return slices.Clone(next), nil
		}
		current, next = next, current
	}
}

// ExpandSequence expands every symbol of seq and concatenates the results.
// For an induction result this reconstructs the original input.
func ExpandSequence(seq []ir.Symbol, rules ir.RuleTable) ([]ir.Symbol, error) {
	out := make([]ir.Symbol, 0, len(seq))
	for _, s := range seq {
		expanded, err := Expand(s, rules)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}
