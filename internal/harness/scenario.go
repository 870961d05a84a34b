package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kseq/internal/engine"
)

// DefaultK is the threshold used when a scenario omits k.
const DefaultK = 2

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// K is the repetition threshold. Nil means DefaultK; an explicit value
	// below 1 is passed through so error scenarios can exercise it.
	K *int `yaml:"k,omitempty"`

	// EndOfEpisode is the token that maps to the end-of-episode marker for
	// token and text inputs.
	EndOfEpisode string `yaml:"end_of_episode,omitempty"`

	// Alphabet fixes the token alphabet; unknown tokens are then rejected.
	Alphabet []string `yaml:"alphabet,omitempty"`

	// Exactly one input source may be set. A scenario with none induces
	// over the empty sequence, which only makes sense with an error assertion.
	Input  []int    `yaml:"input,omitempty"`
	Tokens []string `yaml:"tokens,omitempty"`
	Text   string   `yaml:"text,omitempty"`

	// Record writes the run to an in-memory store and verifies its replay.
	Record bool `yaml:"record,omitempty"`

	// RunID is the fixed id used when recording.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the induced grammar.
	Assertions []Assertion `yaml:"assertions"`
}

// Threshold returns the effective k.
func (s *Scenario) Threshold() int {
	if s.K == nil {
		return DefaultK
	}
	return *s.K
}

// Assertion validates one aspect of the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number (final_length, rule_count, layer_count,
	// usage).
	Count int `yaml:"count,omitempty"`

	// Symbols is the expected decoded final sequence (sequence), the
	// pattern whose usage is checked (usage) or the expected expansion of a
	// rule (rule).
	Symbols []string `yaml:"symbols,omitempty"`

	// Rule is the rule id checked by a rule assertion, e.g. "R0".
	Rule string `yaml:"rule,omitempty"`

	// Code is the expected error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalLength = "final_length"
	AssertRuleCount   = "rule_count"
	AssertLayerCount  = "layer_count"
	AssertSequence    = "sequence"
	AssertUsage       = "usage"
	AssertRule        = "rule"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir in lexical order.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	sources := 0
	if len(s.Input) > 0 {
		sources++
	}
	if len(s.Tokens) > 0 {
		sources++
	}
	if s.Text != "" {
		sources++
	}
	if sources > 1 {
		return fmt.Errorf("at most one of input, tokens and text may be set")
	}
	if len(s.Input) > 0 && (s.EndOfEpisode != "" || len(s.Alphabet) > 0) {
		return fmt.Errorf("end_of_episode and alphabet apply to tokens and text only")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalLength, AssertRuleCount, AssertLayerCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertSequence:
		if len(a.Symbols) == 0 {
			return fmt.Errorf("assertions[%d]: symbols list is required for sequence", index)
		}
	case AssertUsage:
		if len(a.Symbols) < 2 {
			return fmt.Errorf("assertions[%d]: usage pattern needs at least two symbols", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for usage", index)
		}
	case AssertRule:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for rule", index)
		}
		if len(a.Symbols) < 2 {
			return fmt.Errorf("assertions[%d]: rule expansion needs at least two symbols", index)
		}
	case AssertError:
		switch engine.ErrorCode(a.Code) {
		case engine.ErrCodeInvalidInput, engine.ErrCodeInvalidConfig, engine.ErrCodeUnknownSymbol:
		default:
			return fmt.Errorf("assertions[%d]: unknown error code %q", index, a.Code)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
