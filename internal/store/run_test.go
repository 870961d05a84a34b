package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kseq/internal/ir"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, "run-1", 0, 1, 2, 0, 1, 2, 2, 2, 2)
	run.Profile = "digits"
	run.Alphabet = []string{"a", "<b>", "c"}
	run.EndOfEpisodeToken = "/"

	seq, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)

	run.Seq = 1
	assert.Equal(t, run, got)
	assert.Equal(t, []ir.Symbol{ir.Ref(0), ir.Raw(2), ir.Ref(0), ir.Ref(1), ir.Ref(1)}, got.Sequence)
	assert.Equal(t, "R0 2 R0 R1 R1", ir.SequenceString(got.Sequence))
	require.Len(t, got.Rules, 2)
	assert.Equal(t, ir.Pair{Left: ir.Raw(0), Right: ir.Raw(1)}, ir.Pair{Left: got.Rules[0].Left, Right: got.Rules[0].Right})
}

func TestWriteRun_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"b", "a", "c"} {
		seq, err := s.WriteRun(ctx, createTestRun(t, id, 7, 7, 7, 7))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)
	assert.Equal(t, "c", runs[2].ID)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, "same", 1, 2, 1, 2)

	first, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	second, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RejectsInvalidK(t *testing.T) {
	s := createTestStore(t)
	run := createTestRun(t, "bad", 1, 2)
	run.K = 0

	_, err := s.WriteRun(context.Background(), run)
	assert.Error(t, err)

	_, err = s.ReadRun(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.WriteRun(ctx, createTestRun(t, "z-first", 1, 1, 1))
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, createTestRun(t, "a-second", 2, 2, 2))
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-second", latest.ID)
	assert.Equal(t, int64(2), latest.Seq)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestFindRunsByGrammarHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestRun(t, "a", 3, 4, 3, 4)
	b := createTestRun(t, "b", 3, 4, 3, 4)
	c := createTestRun(t, "c", 5, 6, 5, 6)
	require.Equal(t, a.GrammarHash, b.GrammarHash)
	require.NotEqual(t, a.GrammarHash, c.GrammarHash)

	for _, r := range []ir.Run{a, b, c} {
		_, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	runs, err := s.FindRunsByGrammarHash(ctx, a.GrammarHash)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestRunsSinceAndForInput(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun(t, "first", 1, 2, 1, 2)
	second := createTestRun(t, "second", 9, 9, 9)
	third := createTestRun(t, "third", 1, 2, 1, 2)
	third.K = 3
	for _, r := range []ir.Run{first, second, third} {
		_, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	since, err := s.RunsSince(ctx, 1)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "second", since[0].ID)
	assert.Equal(t, "third", since[1].ID)

	sameInput, err := s.RunsForInput(ctx, first.InputHash)
	require.NoError(t, err)
	require.Len(t, sameInput, 2)
	assert.Equal(t, "first", sameInput[0].ID)
	assert.Equal(t, "third", sameInput[1].ID)
}

func TestDeleteRun_CascadesRules(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun(t, "gone", 1, 2, 1, 2))
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, "gone"))

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM rules WHERE run_id = 'gone'").Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteRun(ctx, "gone"), ErrRunNotFound)
}

func TestMarshalAlphabet_NoHTMLEscape(t *testing.T) {
	got, err := marshalAlphabet([]string{"<", "&"})
	require.NoError(t, err)
	assert.Equal(t, `["<","&"]`, got)

	empty, err := marshalAlphabet(nil)
	require.NoError(t, err)
	assert.Equal(t, `[]`, empty)
}
