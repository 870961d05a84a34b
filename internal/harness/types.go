package harness

import "github.com/roach88/kseq/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains assertion and property failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// InductionError is set when the engine rejected the input. Scenarios
	// asserting an error pass only when this is set with the expected code.
	InductionError error `json:"-"`

	// Grammar is the induced grammar; nil when induction failed.
	Grammar *ir.Grammar `json:"grammar,omitempty"`

	// GrammarHash is the content-addressed identity of Grammar.
	GrammarHash string `json:"grammar_hash,omitempty"`

	// Decoded is the final sequence rendered token by token: alphabet tokens
	// for token and text inputs, decimal values otherwise, "R<n>" for rules.
	Decoded []string `json:"decoded,omitempty"`

	// Layers is the number of Layer Builder passes, including the final
	// unchanged one.
	Layers int `json:"layers"`

	// RunID is the id the run was recorded under, if recorded.
	RunID string `json:"run_id,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
