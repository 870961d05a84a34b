package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
	Since    int64  // only runs recorded after this seq
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID      string `json:"run_id"`
	Seq        int64  `json:"seq"`
	Expected   string `json:"expected_hash"`
	Actual     string `json:"actual_hash"`
	Reproduced bool   `json:"reproduced"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	TotalRuns     int               `json:"total_runs"`
	AllReproduced bool              `json:"all_reproduced"`
}

// String renders the result for text mode.
func (r ReplayResult) String() string {
	if r.TotalRuns == 0 {
		return "No runs found in database."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Replay Summary: %d run(s)\n", r.TotalRuns)
	for _, run := range r.Runs {
		status := "ok  "
		if !run.Reproduced {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "\n%s %d %s", status, run.Seq, run.RunID)
		if !run.Reproduced {
			fmt.Fprintf(&b, "\n     recorded %s\n     replayed %s", run.Expected, run.Actual)
		}
	}
	if r.AllReproduced {
		b.WriteString("\n\nAll runs reproduced")
	} else {
		b.WriteString("\n\nReplay diverged from the recorded grammar")
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-induce recorded runs and verify the grammar is reproduced",
		Long: `Re-run the induction of recorded runs and compare grammar hashes.

Each run is induced again from its recorded input, threshold, marker and
first rule id. A different grammar hash means the engine no longer produces
the grammar it recorded.

Exit codes:
  0 - All runs reproduced
  1 - At least one run diverged
  2 - Command error (database not found, unknown run, etc.)

Examples:
  kseq replay --db ./kseq.db
  kseq replay --db ./kseq.db --run 0190d6a2-...
  kseq replay --db ./kseq.db --since 10 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "replay only runs recorded after this seq")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []ir.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read run", err)
		}
		runs = []ir.Run{run}
	} else {
		runs, err = st.RunsSince(ctx, opts.Since)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:          make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:     len(runs),
		AllReproduced: true,
	}

	for _, run := range runs {
		outcome, err := engine.Replay(run)
		if err != nil {
			return formatter.Fail(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		slog.Debug("run replayed", "run_id", run.ID, "match", outcome.Match())

		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:      run.ID,
			Seq:        run.Seq,
			Expected:   outcome.Expected,
			Actual:     outcome.Actual,
			Reproduced: outcome.Match(),
		})
		if !outcome.Match() {
			result.AllReproduced = false
		}
	}

	if result.AllReproduced {
		return formatter.Success(result)
	}

	if opts.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeDivergence,
				Message: "replay diverged from the recorded grammar",
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}
	return &ExitError{Code: ExitFailure, Message: "replay diverged from the recorded grammar", Reported: true}
}
