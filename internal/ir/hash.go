package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainGrammar = "kseq/grammar/v1"
	DomainInput   = "kseq/input/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GrammarHash computes the content-addressed identity of a grammar.
// Two runs with the same input, k, marker and rule ids hash identically,
// which is what replay verification relies on.
func GrammarHash(g *Grammar) (string, error) {
	canonical, err := MarshalCanonical(g.ToIR())
	if err != nil {
		return "", fmt.Errorf("GrammarHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGrammar, canonical), nil
}

// InputHash identifies an input sequence independent of k and the marker.
func InputHash(seq []Symbol) (string, error) {
	canonical, err := MarshalSymbols(seq)
	if err != nil {
		return "", fmt.Errorf("InputHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInput, canonical), nil
}

// MustGrammarHash is like GrammarHash but panics on error.
// Use only in tests or when the grammar is known to be valid.
func MustGrammarHash(g *Grammar) string {
	h, err := GrammarHash(g)
	if err != nil {
		panic(err)
	}
	return h
}
