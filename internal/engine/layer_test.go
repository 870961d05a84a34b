package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/kseq/internal/ir"
)

func raws(vals ...int) []ir.Symbol {
	return ir.RawSequence(vals)
}

func pair(l, r ir.Symbol) ir.Pair {
	return ir.Pair{Left: l, Right: r}
}

func TestBuildLayer_MintsInScanOrder(t *testing.T) {
	e := New()
	lr := e.buildLayer(raws(0, 1, 2, 0, 1, 2, 2, 2, 2), 2)

	assert.Equal(t, []ir.RuleID{0, 1}, lr.ids)
	assert.Equal(t, ir.RuleTable{
		0: pair(ir.Raw(0), ir.Raw(1)),
		1: pair(ir.Raw(2), ir.Raw(2)),
	}, lr.rules)
	assert.Equal(t, map[ir.Pair]ir.RuleID{
		pair(ir.Raw(0), ir.Raw(1)): 0,
		pair(ir.Raw(2), ir.Raw(2)): 1,
	}, lr.reverse)
}

func TestBuildLayer_MotivatingExample(t *testing.T) {
	// "abddddeabde" with a=0 b=1 d=2 e=3. The run of four d's reaches k=2
	// on its third overlapping pair, before (a b) is seen a second time.
	e := New()
	lr := e.buildLayer(raws(0, 1, 2, 2, 2, 2, 3, 0, 1, 2, 3), 2)

	assert.Equal(t, ir.RuleTable{
		0: pair(ir.Raw(2), ir.Raw(2)),
		1: pair(ir.Raw(0), ir.Raw(1)),
	}, lr.rules)
}

func TestBuildLayer_ThreeInARowCountsOnce(t *testing.T) {
	e := New()
	lr := e.buildLayer(raws(5, 5, 5), 2)
	assert.Empty(t, lr.ids, "5 5 5 holds one countable (5 5) pair, not two")

	lr = e.buildLayer(raws(5, 5, 5, 5), 2)
	assert.Equal(t, ir.RuleTable{0: pair(ir.Raw(5), ir.Raw(5))}, lr.rules)
}

func TestBuildLayer_LongRunMintsOneRule(t *testing.T) {
	e := New()
	seq := make([]ir.Symbol, 10)
	for i := range seq {
		seq[i] = ir.Raw(7)
	}

	lr := e.buildLayer(seq, 2)
	assert.Equal(t, []ir.RuleID{0}, lr.ids, "a pair is minted at most once per layer")
	assert.Equal(t, ir.RuleID(1), e.NextRuleID())
}

func TestBuildLayer_DecrementsPrecedingPair(t *testing.T) {
	// (1 2) occurs twice, but each occurrence precedes a (2 0) that reaches
	// the threshold and consumes the 2, so (1 2) is discounted both times.
	e := New()
	lr := e.buildLayer(raws(2, 0, 1, 2, 0, 1, 2, 0), 2)

	assert.Equal(t, ir.RuleTable{0: pair(ir.Raw(2), ir.Raw(0))}, lr.rules)
}

func TestBuildLayer_FirstIndexHasNoPrecedingPair(t *testing.T) {
	e := New()
	lr := e.buildLayer(raws(1, 2, 3), 1)

	// (1 2) crosses k=1 at index 0; index 1 is consumed, so (2 3) is never formed.
	assert.Equal(t, ir.RuleTable{0: pair(ir.Raw(1), ir.Raw(2))}, lr.rules)
}

func TestBuildLayer_EndOfEpisodeBlocksPairs(t *testing.T) {
	e := New()
	lr := e.buildLayer(raws(0, -1, 0, -1, 0, -1), 1)
	assert.Empty(t, lr.ids, "the marker never participates in a pair, even with k=1")

	lr = e.buildLayer(raws(0, 1, -1, 0, 1), 2)
	assert.Equal(t, ir.RuleTable{0: pair(ir.Raw(0), ir.Raw(1))}, lr.rules)
}

func TestBuildLayer_CustomMarker(t *testing.T) {
	e := New(WithEndOfEpisode(9))
	lr := e.buildLayer(raws(0, 9, 0, 9), 1)
	assert.Empty(t, lr.ids)

	// -1 is an ordinary terminal for this engine.
	lr = e.buildLayer(raws(-1, -1), 1)
	assert.Equal(t, ir.RuleTable{0: pair(ir.Raw(-1), ir.Raw(-1))}, lr.rules)
}

func TestBuildLayer_ShortSequences(t *testing.T) {
	e := New()
	assert.Empty(t, e.buildLayer(raws(4), 1).ids)
	assert.Empty(t, e.buildLayer(raws(), 1).ids)
	assert.Equal(t, ir.RuleID(0), e.NextRuleID())
}
