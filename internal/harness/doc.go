// Package harness runs YAML conformance scenarios against the induction
// engine.
//
// A scenario names an input (raw integers, tokens or a text string split into
// characters), a threshold k and a list of assertions about the outcome:
//
//	name: two_patterns
//	description: Two repeated pairs become two rules
//	k: 2
//	input: [0, 1, 2, 0, 1, 2, 2, 2, 2]
//	assertions:
//	  - type: final_length
//	    count: 5
//	  - type: sequence
//	    symbols: ["R0", "2", "R0", "R1", "R1"]
//
// Besides the declared assertions, every successful run is checked for the
// properties that hold for any input:
//
//   - expanding the final sequence reproduces the input
//   - no layer makes the sequence longer
//   - re-running induction on the final sequence changes nothing
//   - no rule contains the end-of-episode marker
//
// Scenarios with record: true are also written to an in-memory store, read
// back and replayed; the replayed grammar hash must match the recorded one.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the induced grammar against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
