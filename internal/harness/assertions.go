package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the decoded final sequence to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Sequence []string // Decoded final sequence, if induction succeeded
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Sequence != nil {
		fmt.Fprintf(&buf, "  Final sequence: [%s]\n", strings.Join(e.Sequence, " "))
	}

	return buf.String()
}

// outcome is what assertions are evaluated against. Patterns and expansions
// are kept in decoded form so scenarios can state them as tokens.
type outcome struct {
	err        error
	grammar    *ir.Grammar
	decoded    []string
	layers     int
	usage      map[string]int      // patternKey(decoded pattern) -> count
	expansions map[string][]string // "R<n>" -> decoded expansion
}

func newOutcome(res *engine.Result, g *ir.Grammar, decode func(ir.Symbol) string) *outcome {
	out := &outcome{
		grammar:    g,
		decoded:    decodeAll(res.Sequence, decode),
		layers:     len(res.Layers),
		usage:      make(map[string]int),
		expansions: make(map[string][]string),
	}
	for _, u := range res.Usage {
		out.usage[patternKey(decodeAll(u.Pattern, decode))] += u.Count
	}
	for _, r := range g.Rules {
		out.expansions[r.ID.String()] = decodeAll(r.Expansion, decode)
	}
	return out
}

func decodeAll(seq []ir.Symbol, decode func(ir.Symbol) string) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = decode(s)
	}
	return out
}

func patternKey(symbols []string) string {
	return strings.Join(symbols, "\x1f")
}

// evaluateAssertions runs every assertion and returns one message per
// failure. When induction failed, only error assertions can pass.
func evaluateAssertions(out *outcome, assertions []Assertion) []string {
	var failures []string
	expectsError := false

	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
		if out.err != nil && a.Type != AssertError {
			continue
		}
		if err := evaluateAssertion(out, a); err != nil {
			failures = append(failures, err.Error())
		}
	}

	if out.err != nil && !expectsError {
		failures = append(failures, fmt.Sprintf("induction failed: %v", out.err))
	}
	return failures
}

func evaluateAssertion(out *outcome, a Assertion) error {
	switch a.Type {
	case AssertFinalLength:
		return assertCount(out, a.Type, a.Count, len(out.decoded))
	case AssertRuleCount:
		return assertCount(out, a.Type, a.Count, len(out.grammar.Rules))
	case AssertLayerCount:
		return assertCount(out, a.Type, a.Count, out.layers)
	case AssertSequence:
		if !slices.Equal(a.Symbols, out.decoded) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("[%s]", strings.Join(a.Symbols, " ")),
				Actual:   fmt.Sprintf("[%s]", strings.Join(out.decoded, " ")),
				Sequence: out.decoded,
			}
		}
	case AssertUsage:
		got := out.usage[patternKey(a.Symbols)]
		if got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("pattern [%s] used %d times", strings.Join(a.Symbols, " "), a.Count),
				Actual:   fmt.Sprintf("used %d times", got),
				Sequence: out.decoded,
			}
		}
	case AssertRule:
		expansion, ok := out.expansions[a.Rule]
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("rule %s expanding to [%s]", a.Rule, strings.Join(a.Symbols, " ")),
				Actual:   "rule not minted",
				Sequence: out.decoded,
			}
		}
		if !slices.Equal(expansion, a.Symbols) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("rule %s expanding to [%s]", a.Rule, strings.Join(a.Symbols, " ")),
				Actual:   fmt.Sprintf("[%s]", strings.Join(expansion, " ")),
				Sequence: out.decoded,
			}
		}
	case AssertError:
		return assertError(out, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertCount(out *outcome, typ string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Sequence: out.decoded,
	}
}

func assertError(out *outcome, a Assertion) error {
	if out.err == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("induction fails with %s", a.Code),
			Actual:   "induction succeeded",
			Sequence: out.decoded,
		}
	}

	var engErr *engine.Error
	if !errors.As(out.err, &engErr) || string(engErr.Code) != a.Code {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("induction fails with %s", a.Code),
			Actual:   out.err.Error(),
		}
	}
	return nil
}
