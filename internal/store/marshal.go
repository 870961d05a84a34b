package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/kseq/internal/ir"
)

// marshalSymbols converts a sequence to canonical JSON TEXT for storage.
func marshalSymbols(seq []ir.Symbol) (string, error) {
	data, err := ir.MarshalSymbols(seq)
	if err != nil {
		return "", fmt.Errorf("marshal symbols: %w", err)
	}
	return string(data), nil
}

func unmarshalSymbols(data string) ([]ir.Symbol, error) {
	seq, err := ir.UnmarshalSymbols([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal symbols: %w", err)
	}
	return seq, nil
}

// marshalAlphabet converts the token list to JSON TEXT.
// HTML escaping is disabled so tokens like "<" are stored verbatim.
func marshalAlphabet(tokens []string) (string, error) {
	if tokens == nil {
		tokens = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tokens); err != nil {
		return "", fmt.Errorf("marshal alphabet: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalAlphabet(data string) ([]string, error) {
	tokens := []string{}
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal alphabet: %w", err)
	}
	return tokens, nil
}
