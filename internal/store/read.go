package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/kseq/internal/ir"
)

// ErrRunNotFound is returned when no run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, profile, k, rule_base, end_of_episode, end_of_episode_token,
	alphabet, input, sequence, input_hash, grammar_hash, engine_version, ir_version`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a run and its rules by id.
// Returns an error wrapping ErrRunNotFound if the id is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	rules, err := s.readRules(ctx, id)
	if err != nil {
		return ir.Run{}, err
	}
	run.Rules = rules
	return run, nil
}

// LatestRun returns the run with the highest seq.
// Returns an error wrapping ErrRunNotFound if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (ir.Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("latest run: %w", err)
	}
	return s.ReadRun(ctx, id)
}

// ListRuns returns every run with its rules in recording order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// FindRunsByGrammarHash returns the runs that produced the given grammar.
func (s *Store) FindRunsByGrammarHash(ctx context.Context, hash string) ([]ir.Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE grammar_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, hash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	// Rules are read after the runs cursor is closed: the pool has a single
	// connection.
	for i := range runs {
		rules, err := s.readRules(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Rules = rules
	}
	return runs, nil
}

func (s *Store) readRules(ctx context.Context, runID string) ([]ir.RuleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, layer, left_symbol, right_symbol, expansion, usage
		FROM rules
		WHERE run_id = ?
		ORDER BY rule_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []ir.RuleRecord{}
	for rows.Next() {
		var (
			id                    int64
			layer, usage          int
			left, right, expanded string
		)
		if err := rows.Scan(&id, &layer, &left, &right, &expanded, &usage); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r := ir.RuleRecord{ID: ir.RuleID(id), Layer: layer, Usage: usage}
		if r.Left, err = ir.ParseSymbol(left); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.Right, err = ir.ParseSymbol(right); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.Expansion, err = unmarshalSymbols(expanded); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run                       ir.Run
		ruleBase                  int64
		alphabet, input, sequence string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Profile,
		&run.K,
		&ruleBase,
		&run.EndOfEpisode,
		&run.EndOfEpisodeToken,
		&alphabet,
		&input,
		&sequence,
		&run.InputHash,
		&run.GrammarHash,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, err
		}
		return ir.Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.RuleBase = ir.RuleID(ruleBase)

	if run.Alphabet, err = unmarshalAlphabet(alphabet); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if run.Input, err = unmarshalSymbols(input); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: input: %w", run.ID, err)
	}
	if run.Sequence, err = unmarshalSymbols(sequence); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: sequence: %w", run.ID, err)
	}
	return run, nil
}
