package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kseq/internal/alphabet"
	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunSummary is one row of the runs listing.
type RunSummary struct {
	Seq         int64  `json:"seq"`
	ID          string `json:"id"`
	Profile     string `json:"profile,omitempty"`
	K           int    `json:"k"`
	InputLen    int    `json:"input_len"`
	FinalLen    int    `json:"final_len"`
	Rules       int    `json:"rules"`
	GrammarHash string `json:"grammar_hash"`
}

// RunsOutput is the result of the runs command.
type RunsOutput struct {
	Runs []RunSummary `json:"runs"`
}

// String renders the output for text mode.
func (o RunsOutput) String() string {
	if len(o.Runs) == 0 {
		return "No runs found in database."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-36s %-12s %3s %6s %6s %5s  %s", "SEQ", "ID", "PROFILE", "K", "INPUT", "FINAL", "RULES", "GRAMMAR")
	for _, r := range o.Runs {
		hash := r.GrammarHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		profile := r.Profile
		if profile == "" {
			profile = "-"
		}
		fmt.Fprintf(&b, "\n%-4d %-36s %-12s %3d %6d %6d %5d  %s",
			r.Seq, r.ID, profile, r.K, r.InputLen, r.FinalLen, r.Rules, hash)
	}
	return b.String()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded induction runs",
		Long: `List the induction runs recorded with "kseq induce --db", in recording order.

Examples:
  kseq runs --db ./kseq.db
  kseq runs --db ./kseq.db --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd))
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to list runs", err)
	}

	out := RunsOutput{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunSummary{
			Seq:         r.Seq,
			ID:          r.ID,
			Profile:     r.Profile,
			K:           r.K,
			InputLen:    len(r.Input),
			FinalLen:    len(r.Sequence),
			Rules:       len(r.Rules),
			GrammarHash: r.GrammarHash,
		})
	}
	return formatter.Success(out)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// selectRun reads the run with the given id, or the latest run if id is empty.
func selectRun(ctx context.Context, st *store.Store, id string) (ir.Run, error) {
	if id == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, id)
}

// runDecoder renders symbols of a recorded run with its alphabet, if any.
func runDecoder(run ir.Run) (func(ir.Symbol) string, error) {
	if len(run.Alphabet) == 0 {
		return func(s ir.Symbol) string { return s.String() }, nil
	}
	alpha, err := alphabet.NewFixed(run.EndOfEpisodeToken, run.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return alpha.Token, nil
}
