package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/store"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Database string
	RunID    string // defaults to the latest run
}

// ExpandOutput is the result of the expand command.
type ExpandOutput struct {
	RunID     string   `json:"run_id"`
	Symbols   []string `json:"symbols"`
	Expansion []string `json:"expansion"`
}

// String renders the output for text mode.
func (o ExpandOutput) String() string {
	return fmt.Sprintf("%s => %s", strings.Join(o.Symbols, " "), strings.Join(o.Expansion, " "))
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand [symbols...]",
		Short: "Expand rule references of a recorded run",
		Long: `Expand symbols back into terminals using the rule table of a recorded run.

Symbols are rule references (R0, R1, ...) or raw terminal values. Without
arguments the run's whole final sequence is expanded, which reproduces its
input.

Examples:
  kseq expand --db ./kseq.db R3
  kseq expand --db ./kseq.db --run 0190d6a2-... R0 R1
  kseq expand --db ./kseq.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")

	return cmd
}

func runExpand(opts *ExpandOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := selectRun(commandContext(cmd), st, opts.RunID)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read run", err)
	}

	symbols := run.Sequence
	if len(args) > 0 {
		symbols = make([]ir.Symbol, len(args))
		for i, arg := range args {
			s, err := ir.ParseSymbol(arg)
			if err != nil {
				return formatter.Fail(ExitCommandError, "invalid symbol",
					engine.NewInvalidInputError(err.Error(), i, arg))
			}
			symbols[i] = s
		}
	}

	expansion, err := engine.ExpandSequence(symbols, run.Grammar().Table())
	if err != nil {
		return formatter.Fail(ExitCommandError, "expansion failed", err)
	}

	decode, err := runDecoder(run)
	if err != nil {
		return formatter.Fail(ExitCommandError, "expansion failed", err)
	}

	return formatter.Success(ExpandOutput{
		RunID:     run.ID,
		Symbols:   decodeSymbols(symbols, decode),
		Expansion: decodeSymbols(expansion, decode),
	})
}
