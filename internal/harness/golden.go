package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kseq/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
// The grammar hash is left out: it is derived from the grammar itself.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	if result.Grammar == nil {
		return nil, fmt.Errorf("scenario %s produced no grammar", scenarioName)
	}

	decoded := make(ir.IRArray, len(result.Decoded))
	for i, tok := range result.Decoded {
		decoded[i] = ir.IRString(tok)
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario": ir.IRString(scenarioName),
		"decoded":  decoded,
		"grammar":  result.Grammar.ToIR(),
	})
}

// RunWithGolden executes a scenario and compares the grammar against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the grammar doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
