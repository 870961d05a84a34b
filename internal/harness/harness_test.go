package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kseq/internal/engine"
)

func intPtr(v int) *int { return &v }

func TestRun_TestdataScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_RecordsAndReplays(t *testing.T) {
	scenario := &Scenario{
		Name:        "recorded",
		Description: "recorded run",
		Input:       []int{4, 5, 4, 5, 4, 5},
		Record:      true,
		RunID:       "run-recorded",
		Assertions:  []Assertion{{Type: AssertRuleCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "run-recorded", result.RunID)
	assert.NotEmpty(t, result.GrammarHash)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "expectations that do not hold",
		Input:       []int{0, 1, 0, 1},
		Assertions: []Assertion{
			{Type: AssertFinalLength, Count: 4},
			{Type: AssertSequence, Symbols: []string{"R0", "R0"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "final_length")
}

func TestRun_UnexpectedRejection(t *testing.T) {
	scenario := &Scenario{
		Name:        "rejected",
		Description: "k below one without an error assertion",
		K:           intPtr(0),
		Input:       []int{1, 2},
		Assertions:  []Assertion{{Type: AssertFinalLength, Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.True(t, engine.IsInvalidConfig(result.InductionError))
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "induction failed")
}

func TestRun_ErrorAssertionOnSuccess(t *testing.T) {
	scenario := &Scenario{
		Name:        "not rejected",
		Description: "valid input with an error assertion",
		Input:       []int{1, 2},
		Assertions:  []Assertion{{Type: AssertError, Code: string(engine.ErrCodeInvalidInput)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "induction succeeded")
}

func TestRun_WrongErrorCode(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "empty input asserted as a config error",
		Assertions:  []Assertion{{Type: AssertError, Code: string(engine.ErrCodeInvalidConfig)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.True(t, engine.IsInvalidInput(result.InductionError))
}

func TestRun_TextWithMarker(t *testing.T) {
	scenario := &Scenario{
		Name:         "text",
		Description:  "text split into characters with a marker",
		EndOfEpisode: ".",
		Text:         "ab.ab.ab",
		Assertions: []Assertion{
			{Type: AssertSequence, Symbols: []string{"R0", ".", "R0", ".", "R0"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"R0", ".", "R0", ".", "R0"}, result.Decoded)
}
