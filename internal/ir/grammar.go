package ir

import (
	"maps"
	"slices"
)

// RuleTable maps every rule id minted during a run to its right-hand side.
//
// INVARIANT: a rule's right-hand side never changes once inserted.
type RuleTable map[RuleID]Pair

// IDs returns the rule ids in ascending (mint) order.
func (t RuleTable) IDs() []RuleID {
	return slices.Sorted(maps.Keys(t))
}

// Clone returns an independent copy of the table.
func (t RuleTable) Clone() RuleTable {
	return maps.Clone(t)
}

// Merge adds every rule in other that t does not already define and reports
// the ids that were already present with a different right-hand side.
func (t RuleTable) Merge(other RuleTable) []RuleID {
	var conflicts []RuleID
	for id, pair := range other {
		if existing, ok := t[id]; ok {
			if existing != pair {
				conflicts = append(conflicts, id)
			}
			continue
		}
		t[id] = pair
	}
	slices.Sort(conflicts)
	return conflicts
}

// PatternUsage is how often the raw-symbol pattern behind one or more rules
// was produced as a replacement, summed over every layer.
type PatternUsage struct {
	Pattern []Symbol `json:"pattern"`
	Rules   []RuleID `json:"rules"`
	Count   int      `json:"count"`
}

// RuleRecord is one rule as reported in a Grammar document.
type RuleRecord struct {
	ID        RuleID   `json:"id"`
	Layer     int      `json:"layer"`
	Left      Symbol   `json:"left"`
	Right     Symbol   `json:"right"`
	Expansion []Symbol `json:"expansion"`
	Usage     int      `json:"usage"`
}

// Grammar is the complete, serializable outcome of one induction run.
// Rules are kept in ascending id order.
type Grammar struct {
	K            int          `json:"k"`
	EndOfEpisode int          `json:"end_of_episode"`
	Input        []Symbol     `json:"input"`
	Sequence     []Symbol     `json:"sequence"`
	Rules        []RuleRecord `json:"rules"`
}

// Table rebuilds the RuleTable described by the grammar's rule records.
func (g *Grammar) Table() RuleTable {
	t := make(RuleTable, len(g.Rules))
	for _, r := range g.Rules {
		t[r.ID] = Pair{Left: r.Left, Right: r.Right}
	}
	return t
}

// ToIR converts the grammar to an IRObject for canonical serialization.
// Raw terminals become integers and rule references become "R<n>" strings.
func (g *Grammar) ToIR() IRObject {
	rules := make(IRArray, len(g.Rules))
	for i, r := range g.Rules {
		rules[i] = IRObject{
			"id":        IRString(r.ID.String()),
			"layer":     IRInt(r.Layer),
			"left":      SymbolValue(r.Left),
			"right":     SymbolValue(r.Right),
			"expansion": SymbolsValue(r.Expansion),
			"usage":     IRInt(r.Usage),
		}
	}
	return IRObject{
		"k":              IRInt(g.K),
		"end_of_episode": IRInt(g.EndOfEpisode),
		"input":          SymbolsValue(g.Input),
		"sequence":       SymbolsValue(g.Sequence),
		"rules":          rules,
	}
}

// SymbolValue converts a symbol to its IR form.
func SymbolValue(s Symbol) IRValue {
	if id, ok := s.RuleID(); ok {
		return IRString(id.String())
	}
	v, _ := s.RawValue()
	return IRInt(v)
}

// SymbolsValue converts a sequence to an IRArray.
func SymbolsValue(seq []Symbol) IRArray {
	arr := make(IRArray, len(seq))
	for i, s := range seq {
		arr[i] = SymbolValue(s)
	}
	return arr
}
