package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrammar() *Grammar {
	return &Grammar{
		K:            2,
		EndOfEpisode: DefaultEndOfEpisode,
		Input:        RawSequence([]int{0, 1, 0, 1}),
		Sequence:     []Symbol{Ref(0), Ref(0)},
		Rules: []RuleRecord{
			{ID: 0, Layer: 1, Left: Raw(0), Right: Raw(1), Expansion: RawSequence([]int{0, 1}), Usage: 2},
		},
	}
}

func TestGrammarHashDeterminism(t *testing.T) {
	h1, err := GrammarHash(sampleGrammar())
	require.NoError(t, err)
	h2, err := GrammarHash(sampleGrammar())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "GrammarHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestGrammarHashChangesWithContent(t *testing.T) {
	base := MustGrammarHash(sampleGrammar())

	differentK := sampleGrammar()
	differentK.K = 3

	differentUsage := sampleGrammar()
	differentUsage.Rules[0].Usage = 1

	differentID := sampleGrammar()
	differentID.Rules[0].ID = 5

	assert.NotEqual(t, base, MustGrammarHash(differentK))
	assert.NotEqual(t, base, MustGrammarHash(differentUsage))
	assert.NotEqual(t, base, MustGrammarHash(differentID))
}

func TestGrammarCanonicalForm(t *testing.T) {
	data, err := MarshalCanonical(sampleGrammar().ToIR())
	require.NoError(t, err)

	expected := `{"end_of_episode":-1,"input":[0,1,0,1],"k":2,` +
		`"rules":[{"expansion":[0,1],"id":"R0","layer":1,"left":0,"right":1,"usage":2}],` +
		`"sequence":["R0","R0"]}`
	assert.Equal(t, expected, string(data))
}

func TestHashDomainSeparation(t *testing.T) {
	seq := RawSequence([]int{0, 1})
	inputHash, err := InputHash(seq)
	require.NoError(t, err)

	data, err := MarshalSymbols(seq)
	require.NoError(t, err)

	assert.Equal(t, inputHash, hashWithDomain(DomainInput, data))
	assert.NotEqual(t, inputHash, hashWithDomain(DomainGrammar, data))
}
