// Package alphabet maps string tokens to the raw terminals the engine works on.
//
// Tokens are NFC normalized before lookup, so visually identical tokens
// always map to the same terminal. Terminals are assigned 0, 1, 2, ... in
// first-seen order unless the alphabet is fixed up front. The end-of-episode
// token maps to the engine's marker value and is never assigned a terminal.
package alphabet

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
)

// Alphabet is a bidirectional token <-> raw terminal mapping.
// Not safe for concurrent use.
type Alphabet struct {
	tokens       []string
	index        map[string]int
	endOfEpisode string
	fixed        bool
}

// New creates an open alphabet: unknown tokens are added on first sight.
// endOfEpisode is the token that delimits episodes; empty disables it.
func New(endOfEpisode string) *Alphabet {
	return &Alphabet{
		index:        make(map[string]int),
		endOfEpisode: norm.NFC.String(endOfEpisode),
	}
}

// NewFixed creates a closed alphabet whose terminals are the positions of
// tokens. Encoding an unknown token fails with INVALID_INPUT.
//
// Returns INVALID_CONFIG if tokens repeat (after normalization) or contain
// the end-of-episode token.
func NewFixed(endOfEpisode string, tokens []string) (*Alphabet, error) {
	a := New(endOfEpisode)
	for _, tok := range tokens {
		n := norm.NFC.String(tok)
		if n == "" {
			return nil, engine.NewInvalidConfigError("alphabet tokens must be non-empty")
		}
		if a.endOfEpisode != "" && n == a.endOfEpisode {
			return nil, engine.NewInvalidConfigError(fmt.Sprintf("alphabet contains the end-of-episode token %q", tok))
		}
		if _, dup := a.index[n]; dup {
			return nil, engine.NewInvalidConfigError(fmt.Sprintf("alphabet token %q appears twice", tok))
		}
		a.add(n)
	}
	a.fixed = true
	return a, nil
}

// FromProfile builds the alphabet a compiled profile describes.
func FromProfile(p ir.Profile) (*Alphabet, error) {
	if len(p.Alphabet) == 0 {
		return New(p.EndOfEpisode), nil
	}
	return NewFixed(p.EndOfEpisode, p.Alphabet)
}

func (a *Alphabet) add(tok string) int {
	v := len(a.tokens)
	a.tokens = append(a.tokens, tok)
	a.index[tok] = v
	return v
}

// EndOfEpisode returns the normalized end-of-episode token.
func (a *Alphabet) EndOfEpisode() string {
	return a.endOfEpisode
}

// Tokens returns the known tokens; a token's position is its terminal value.
func (a *Alphabet) Tokens() []string {
	return slices.Clone(a.tokens)
}

// Len returns the number of known tokens.
func (a *Alphabet) Len() int {
	return len(a.tokens)
}

// Encode converts tokens into raw terminals. The end-of-episode token becomes
// ir.DefaultEndOfEpisode. The alphabet is left unchanged when an error is
// returned.
func (a *Alphabet) Encode(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	added := 0
	for i, tok := range tokens {
		n := norm.NFC.String(tok)
		if a.endOfEpisode != "" && n == a.endOfEpisode {
			out[i] = ir.DefaultEndOfEpisode
			continue
		}
		if v, ok := a.index[n]; ok {
			out[i] = v
			continue
		}
		if a.fixed || n == "" {
			a.truncate(len(a.tokens) - added)
			return nil, engine.NewInvalidInputError("token not in alphabet", i, tok)
		}
		out[i] = a.add(n)
		added++
	}
	return out, nil
}

func (a *Alphabet) truncate(n int) {
	for _, tok := range a.tokens[n:] {
		delete(a.index, tok)
	}
	a.tokens = a.tokens[:n]
}

// Token renders one symbol: raw terminals as their token, the marker as the
// end-of-episode token and rule references as "R<n>".
func (a *Alphabet) Token(s ir.Symbol) string {
	v, ok := s.RawValue()
	if !ok {
		return s.String()
	}
	if v == ir.DefaultEndOfEpisode && a.endOfEpisode != "" {
		return a.endOfEpisode
	}
	if v >= 0 && v < len(a.tokens) {
		return a.tokens[v]
	}
	return s.String()
}

// Decode renders a sequence token by token.
func (a *Alphabet) Decode(seq []ir.Symbol) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = a.Token(s)
	}
	return out
}

// Chars splits s into one token per rune, e.g. "abde" -> ["a" "b" "d" "e"].
// s is NFC normalized first so combining sequences stay a single rune where
// a precomposed form exists.
func Chars(s string) []string {
	n := norm.NFC.String(s)
	out := make([]string, 0, len(n))
	for _, r := range n {
		out = append(out, string(r))
	}
	return out
}
