package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
)

func induceOutcome(t *testing.T, input []int, k int) *outcome {
	t.Helper()
	res, err := engine.New().Induce(input, k)
	require.NoError(t, err)
	g, err := res.Grammar()
	require.NoError(t, err)
	return newOutcome(res, g, func(s ir.Symbol) string { return s.String() })
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	out := induceOutcome(t, []int{0, 1, 2, 0, 1, 2, 2, 2, 2}, 2)

	failures := evaluateAssertions(out, []Assertion{
		{Type: AssertFinalLength, Count: 5},
		{Type: AssertRuleCount, Count: 2},
		{Type: AssertLayerCount, Count: 2},
		{Type: AssertSequence, Symbols: []string{"R0", "2", "R0", "R1", "R1"}},
		{Type: AssertUsage, Symbols: []string{"0", "1"}, Count: 2},
		{Type: AssertRule, Rule: "R1", Symbols: []string{"2", "2"}},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	out := induceOutcome(t, []int{0, 1, 0, 1}, 2)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"length", Assertion{Type: AssertFinalLength, Count: 3}, "Expected: 3"},
		{"sequence", Assertion{Type: AssertSequence, Symbols: []string{"0"}}, "Actual: [R0 R0]"},
		{"usage", Assertion{Type: AssertUsage, Symbols: []string{"0", "1"}, Count: 5}, "used 2 times"},
		{"missing rule", Assertion{Type: AssertRule, Rule: "R9", Symbols: []string{"0", "1"}}, "rule not minted"},
		{"wrong expansion", Assertion{Type: AssertRule, Rule: "R0", Symbols: []string{"1", "0"}}, "Actual: [0 1]"},
		{"error expected", Assertion{Type: AssertError, Code: "INVALID_INPUT"}, "induction succeeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := evaluateAssertions(out, []Assertion{tt.assertion})
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], tt.want)
			assert.Contains(t, failures[0], "Final sequence: [R0 R0]")
		})
	}
}

func TestEvaluateAssertions_OnRejection(t *testing.T) {
	out := &outcome{err: engine.NewInvalidConfigError("repetition threshold k must be >= 1")}

	assert.Empty(t, evaluateAssertions(out, []Assertion{{Type: AssertError, Code: "INVALID_CONFIG"}}))

	failures := evaluateAssertions(out, []Assertion{{Type: AssertError, Code: "INVALID_INPUT"}})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "INVALID_CONFIG")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "final_length", Expected: "3", Actual: "2"}
	assert.Equal(t, "Assertion failed: final_length\n  Expected: 3\n  Actual: 2\n", err.Error())
}
