package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/kseq/internal/ir"
)

// WriteRun records a run and its rules in one transaction and returns the
// logical seq assigned to it.
//
// Writing a run whose ID already exists is a no-op that returns the existing
// seq, so a retried write never duplicates a run.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) (int64, error) {
	alphabetJSON, err := marshalAlphabet(run.Alphabet)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	inputJSON, err := marshalSymbols(run.Input)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	sequenceJSON, err := marshalSymbols(run.Sequence)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("write run: lookup: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, profile, k, rule_base, end_of_episode, end_of_episode_token,
		 alphabet, input, sequence, input_hash, grammar_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.Profile,
		run.K,
		int64(run.RuleBase),
		run.EndOfEpisode,
		run.EndOfEpisodeToken,
		alphabetJSON,
		inputJSON,
		sequenceJSON,
		run.InputHash,
		run.GrammarHash,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules (run_id, rule_id, layer, left_symbol, right_symbol, expansion, usage)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("write run: prepare rules: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Rules {
		expansionJSON, err := marshalSymbols(r.Expansion)
		if err != nil {
			return 0, fmt.Errorf("write run: rule %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			int64(r.ID),
			r.Layer,
			r.Left.String(),
			r.Right.String(),
			expansionJSON,
			r.Usage,
		); err != nil {
			return 0, fmt.Errorf("write run: rule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// DeleteRun removes a run and, through the foreign key, its rules.
// Deleting an unknown id returns ErrRunNotFound.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
