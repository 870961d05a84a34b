package engine

import (
	"log/slog"
	"slices"

	"github.com/roach88/kseq/internal/ir"
)

// Engine runs k-Sequitur induction.
//
// The only state an Engine carries between calls is its RuleCounter, so rule
// ids minted by successive Induce calls on one Engine never collide. Create a
// new Engine to start ids from R0 again.
//
// INVARIANTS:
//   - the end-of-episode marker never appears in a rule's right-hand side
//   - rule ids are never reused by one Engine
//   - a failed call mutates nothing, including the counter
type Engine struct {
	counter *RuleCounter
	marker  ir.Symbol
}

// Option configures an Engine.
type Option func(*Engine)

// WithEndOfEpisode sets the raw value reserved as the end-of-episode marker.
//
// Default: ir.DefaultEndOfEpisode (-1).
// The value must not collide with any terminal of the caller's alphabet.
func WithEndOfEpisode(v int) Option {
	return func(e *Engine) {
		e.marker = ir.Raw(v)
	}
}

// WithRuleCounter makes the engine mint ids from c instead of a fresh counter.
// Use NewRuleCounterAt to reproduce the ids of a recorded run.
func WithRuleCounter(c *RuleCounter) Option {
	return func(e *Engine) {
		e.counter = c
	}
}

// New creates an Engine whose first minted rule is R0.
func New(opts ...Option) *Engine {
	e := &Engine{
		counter: NewRuleCounter(),
		marker:  ir.Raw(ir.DefaultEndOfEpisode),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EndOfEpisode returns the raw value of the configured marker.
func (e *Engine) EndOfEpisode() int {
	v, _ := e.marker.RawValue()
	return v
}

// NextRuleID returns the id the next minted rule will receive.
func (e *Engine) NextRuleID() ir.RuleID {
	return e.counter.Peek()
}

// LayerStats describes one Layer Builder + Rewriter pass.
type LayerStats struct {
	Layer     int         `json:"layer"`
	InputLen  int         `json:"input_len"`
	OutputLen int         `json:"output_len"`
	Minted    []ir.RuleID `json:"minted"`
}

// Result is the outcome of one induction run.
type Result struct {
	// K is the repetition threshold used.
	K int

	// EndOfEpisode is the raw marker value used.
	EndOfEpisode int

	// Input is a copy of the sequence the run started from.
	Input []ir.Symbol

	// Sequence is the final, fixpoint sequence.
	Sequence []ir.Symbol

	// Rules holds every rule minted during the run, plus any prior rules
	// passed to InduceSymbols.
	Rules ir.RuleTable

	// RuleLayers records the layer (1-based) each rule was minted in.
	// Prior rules have no entry.
	RuleLayers map[ir.RuleID]int

	// RuleUsage counts replacements per rule, summed across layers.
	// Rules that never fired are absent.
	RuleUsage map[ir.RuleID]int

	// Usage maps raw-symbol patterns to replacement counts, in ascending
	// order of the first rule producing each pattern. Rules expanding to the
	// same pattern are summed into one entry rather than the last rule's
	// count replacing the earlier ones.
	Usage []ir.PatternUsage

	// Layers holds per-layer statistics, including the final unchanged pass.
	Layers []LayerStats
}

// Induce runs induction over a sequence of raw terminals.
//
// Returns INVALID_INPUT for an empty sequence and INVALID_CONFIG for k < 1.
// k == 1 is valid: every pair reaches the threshold on its first occurrence.
func (e *Engine) Induce(seq []int, k int) (*Result, error) {
	if err := validateThreshold(k); err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, NewInvalidInputError("sequence must contain at least one symbol", -1, "")
	}
	return e.induceWith(ir.RawSequence(seq), k, make(ir.RuleTable))
}

// InduceSymbols continues induction over a sequence that may contain rule
// references, e.g. the final sequence of a previous run together with that
// run's rule table as prior. Every rule reference must be defined in prior
// and must have been minted by this engine; anything else is INVALID_INPUT.
//
// The returned Rules extend prior with the rules minted by this call.
func (e *Engine) InduceSymbols(seq []ir.Symbol, k int, prior ir.RuleTable) (*Result, error) {
	if err := validateThreshold(k); err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, NewInvalidInputError("sequence must contain at least one symbol", -1, "")
	}
	for id, pair := range prior {
		if !e.counter.Issued(id) {
			return nil, NewInvalidInputError("prior rule was not minted by this engine", -1, id.String())
		}
		if pair.Contains(e.marker) {
			return nil, NewInvalidInputError("prior rule contains the end-of-episode marker", -1, id.String())
		}
		for _, s := range []ir.Symbol{pair.Left, pair.Right} {
			ref, ok := s.RuleID()
			if !ok {
				continue
			}
			if _, defined := prior[ref]; !defined {
				return nil, NewInvalidInputError("prior rule "+id.String()+" refers to a rule not defined in prior", -1, s.String())
			}
			// Rules only ever refer to rules minted before them.
			if ref >= id {
				return nil, NewInvalidInputError("prior rule "+id.String()+" refers to a later rule", -1, s.String())
			}
		}
	}
	for i, s := range seq {
		if id, ok := s.RuleID(); ok {
			if _, defined := prior[id]; !defined {
				return nil, NewInvalidInputError("rule reference not defined in prior rule table", i, s.String())
			}
		}
	}

	rules := make(ir.RuleTable, len(prior))
	rules.Merge(prior)
	return e.induceWith(slices.Clone(seq), k, rules)
}

func validateThreshold(k int) error {
	if k < 1 {
		return NewInvalidConfigError("repetition threshold k must be >= 1")
	}
	return nil
}

// induceWith is the fixpoint driver. It owns seq and rules; newly minted
// rules are added to rules.
func (e *Engine) induceWith(seq []ir.Symbol, k int, rules ir.RuleTable) (*Result, error) {
	res := &Result{
		K:            k,
		EndOfEpisode: e.EndOfEpisode(),
		Input:        slices.Clone(seq),
		Rules:        rules,
		RuleLayers:   make(map[ir.RuleID]int),
		RuleUsage:    make(map[ir.RuleID]int),
	}

	current := seq
	for layer := 1; ; layer++ {
		lr := e.buildLayer(current, k)
		next, usage := rewrite(current, lr.reverse)

		for _, id := range lr.ids {
			res.Rules[id] = lr.rules[id]
			res.RuleLayers[id] = layer
		}
		for id, n := range usage {
			res.RuleUsage[id] += n
		}
		res.Layers = append(res.Layers, LayerStats{
			Layer:     layer,
			InputLen:  len(current),
			OutputLen: len(next),
			Minted:    lr.ids,
		})

		slog.Debug("layer complete",
			"layer", layer,
			"input_len", len(current),
			"output_len", len(next),
			"minted", len(lr.ids),
		)

		if slices.Equal(next, current) {
			break
		}
		current = next
	}

	res.Sequence = current

	usage, err := patternUsage(res.Rules, res.RuleUsage)
	if err != nil {
		return nil, err
	}
	res.Usage = usage

	return res, nil
}

// patternUsage expands every rule that fired at least once and sums usage
// per raw-symbol pattern.
func patternUsage(rules ir.RuleTable, ruleUsage map[ir.RuleID]int) ([]ir.PatternUsage, error) {
	var out []ir.PatternUsage
	index := make(map[string]int)

	for _, id := range rules.IDs() {
		n := ruleUsage[id]
		if n == 0 {
			continue
		}
		pattern, err := Expand(ir.Ref(id), rules)
		if err != nil {
			return nil, err
		}
		key := ir.PatternKey(pattern)
		if i, ok := index[key]; ok {
			out[i].Count += n
			out[i].Rules = append(out[i].Rules, id)
			continue
		}
		index[key] = len(out)
		out = append(out, ir.PatternUsage{Pattern: pattern, Rules: []ir.RuleID{id}, Count: n})
	}

	return out, nil
}

// UsageOf returns the replacement count of the raw-symbol pattern, or 0.
func (r *Result) UsageOf(pattern ...ir.Symbol) int {
	key := ir.PatternKey(pattern)
	for _, u := range r.Usage {
		if ir.PatternKey(u.Pattern) == key {
			return u.Count
		}
	}
	return 0
}

// Grammar converts the result into its serializable document form.
func (r *Result) Grammar() (*ir.Grammar, error) {
	g := &ir.Grammar{
		K:            r.K,
		EndOfEpisode: r.EndOfEpisode,
		Input:        r.Input,
		Sequence:     r.Sequence,
		Rules:        make([]ir.RuleRecord, 0, len(r.Rules)),
	}
	for _, id := range r.Rules.IDs() {
		pair := r.Rules[id]
		expansion, err := Expand(ir.Ref(id), r.Rules)
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, ir.RuleRecord{
			ID:        id,
			Layer:     r.RuleLayers[id],
			Left:      pair.Left,
			Right:     pair.Right,
			Expansion: expansion,
			Usage:     r.RuleUsage[id],
		})
	}
	return g, nil
}
