package store

import (
	"context"

	"github.com/roach88/kseq/internal/ir"
)

// RunsSince returns the runs recorded after the given seq, in recording
// order. RunsSince(ctx, 0) returns every run.
func (s *Store) RunsSince(ctx context.Context, afterSeq int64) ([]ir.Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE seq > ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, afterSeq)
}

// RunsForInput returns the runs recorded over the same input sequence.
func (s *Store) RunsForInput(ctx context.Context, inputHash string) ([]ir.Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE input_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, inputHash)
}
