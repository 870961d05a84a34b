package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEndOfEpisode is the raw value reserved for the end-of-episode
// marker when no other value is configured.
const DefaultEndOfEpisode = -1

// RulePrefix starts the text form of every rule reference ("R0", "R1", ...).
const RulePrefix = "R"

// RuleID identifies a rule minted during induction.
// IDs are assigned by a monotonic counter and never reused within one engine.
type RuleID int64

// String returns the text form of the rule id, e.g. "R3".
func (id RuleID) String() string {
	return RulePrefix + strconv.FormatInt(int64(id), 10)
}

// SymbolKind discriminates the two Symbol variants.
type SymbolKind uint8

const (
	// KindRaw marks a raw terminal from the input alphabet.
	KindRaw SymbolKind = iota
	// KindRule marks a reference to a rule in a RuleTable.
	KindRule
)

// Symbol is the alphabet element of every sequence: either a raw terminal
// or a rule reference.
//
// Symbol is comparable and usable as a map key. A raw terminal never equals
// a rule reference, even when their underlying integers match.
type Symbol struct {
	kind  SymbolKind
	value int64
}

// Raw creates a raw terminal symbol.
func Raw(v int) Symbol {
	return Symbol{kind: KindRaw, value: int64(v)}
}

// Ref creates a rule reference symbol.
func Ref(id RuleID) Symbol {
	return Symbol{kind: KindRule, value: int64(id)}
}

// Kind reports which variant s is.
func (s Symbol) Kind() SymbolKind {
	return s.kind
}

// IsRule reports whether s is a rule reference.
func (s Symbol) IsRule() bool {
	return s.kind == KindRule
}

// RawValue returns the terminal value and true for raw symbols.
func (s Symbol) RawValue() (int, bool) {
	if s.kind != KindRaw {
		return 0, false
	}
	return int(s.value), true
}

// RuleID returns the rule id and true for rule references.
func (s Symbol) RuleID() (RuleID, bool) {
	if s.kind != KindRule {
		return 0, false
	}
	return RuleID(s.value), true
}

// String renders raw terminals as decimal integers and rule references as "R<n>".
func (s Symbol) String() string {
	if s.kind == KindRule {
		return RuleID(s.value).String()
	}
	return strconv.FormatInt(s.value, 10)
}

// ParseSymbol is the inverse of Symbol.String.
func ParseSymbol(text string) (Symbol, error) {
	if rest, ok := strings.CutPrefix(text, RulePrefix); ok {
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || n < 0 {
			return Symbol{}, fmt.Errorf("invalid rule reference %q", text)
		}
		return Ref(RuleID(n)), nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol %q", text)
	}
	return Raw(n), nil
}

// RawSequence converts raw terminal values into symbols.
func RawSequence(values []int) []Symbol {
	seq := make([]Symbol, len(values))
	for i, v := range values {
		seq[i] = Raw(v)
	}
	return seq
}

// RawValues is the inverse of RawSequence. It reports false, with the index
// of the offending symbol, if seq contains a rule reference.
func RawValues(seq []Symbol) ([]int, int, bool) {
	values := make([]int, len(seq))
	for i, s := range seq {
		v, ok := s.RawValue()
		if !ok {
			return nil, i, false
		}
		values[i] = v
	}
	return values, -1, true
}

// Pair is an ordered pair of adjacent symbols; the right-hand side of a rule.
type Pair struct {
	Left  Symbol
	Right Symbol
}

// String renders the pair as "(left right)".
func (p Pair) String() string {
	return "(" + p.Left.String() + " " + p.Right.String() + ")"
}

// Contains reports whether either element of the pair equals s.
func (p Pair) Contains(s Symbol) bool {
	return p.Left == s || p.Right == s
}

// SequenceString renders symbols separated by single spaces.
func SequenceString(seq []Symbol) string {
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// PatternKey returns a map key for a tuple of symbols.
// Equal tuples always produce equal keys.
func PatternKey(pattern []Symbol) string {
	return SequenceString(pattern)
}

// MarshalText renders the id as "R<n>", so JSON object keys and values read
// the same as the CLI text output.
func (id RuleID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses "R<n>".
func (id *RuleID) UnmarshalText(text []byte) error {
	s, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	rid, ok := s.RuleID()
	if !ok {
		return fmt.Errorf("invalid rule reference %q", text)
	}
	*id = rid
	return nil
}

// MarshalJSON encodes raw terminals as JSON numbers and rule references as
// "R<n>" strings.
func (s Symbol) MarshalJSON() ([]byte, error) {
	if s.kind == KindRule {
		return []byte(strconv.Quote(s.String())), nil
	}
	return []byte(s.String()), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Symbol) UnmarshalJSON(data []byte) error {
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		parsed, err := ParseSymbol(unquoted)
		if err != nil {
			return err
		}
		if !parsed.IsRule() {
			return fmt.Errorf("raw symbol must be a JSON number, got %s", text)
		}
		*s = parsed
		return nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("invalid symbol %s", text)
	}
	*s = Raw(n)
	return nil
}
