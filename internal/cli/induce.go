package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kseq/internal/alphabet"
	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
	"github.com/roach88/kseq/internal/store"
)

// InduceOptions holds flags for the induce command.
type InduceOptions struct {
	*RootOptions
	K            int
	EndOfEpisode string
	Chars        string // induce over the characters of this string
	Ints         bool   // arguments are raw integers
	Profile      string
	ProfilesDir  string
	Database     string // record the run when set

	// RunIDs generates ids for recorded runs. Defaults to UUIDv7.
	RunIDs engine.RunIDGenerator
}

// RuleOutput is one rule in induce output.
type RuleOutput struct {
	ID        string   `json:"id"`
	Layer     int      `json:"layer"`
	Left      string   `json:"left"`
	Right     string   `json:"right"`
	Expansion []string `json:"expansion"`
	Usage     int      `json:"usage"`
}

// UsageOutput is the replacement count of one expanded pattern.
type UsageOutput struct {
	Pattern []string `json:"pattern"`
	Rules   []string `json:"rules"`
	Count   int      `json:"count"`
}

// InduceOutput is the result of the induce command.
type InduceOutput struct {
	RunID       string              `json:"run_id,omitempty"`
	Profile     string              `json:"profile,omitempty"`
	K           int                 `json:"k"`
	InputLen    int                 `json:"input_len"`
	Sequence    []string            `json:"sequence"`
	Rules       []RuleOutput        `json:"rules"`
	Usage       []UsageOutput       `json:"usage"`
	Layers      []engine.LayerStats `json:"layers"`
	GrammarHash string              `json:"grammar_hash"`
}

// String renders the output for text mode.
func (o InduceOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sequence (%d -> %d symbols, %d layers): %s\n",
		o.InputLen, len(o.Sequence), len(o.Layers), strings.Join(o.Sequence, " "))
	if len(o.Rules) == 0 {
		b.WriteString("No rules\n")
	} else {
		b.WriteString("Rules:\n")
		for _, r := range o.Rules {
			fmt.Fprintf(&b, "  %s -> %s %s  [%s] layer=%d usage=%d\n",
				r.ID, r.Left, r.Right, strings.Join(r.Expansion, " "), r.Layer, r.Usage)
		}
	}
	if len(o.Usage) > 0 {
		b.WriteString("Usage:\n")
		for _, u := range o.Usage {
			fmt.Fprintf(&b, "  [%s] %d\n", strings.Join(u.Pattern, " "), u.Count)
		}
	}
	fmt.Fprintf(&b, "Grammar hash: %s", o.GrammarHash)
	if o.RunID != "" {
		fmt.Fprintf(&b, "\nRecorded run: %s", o.RunID)
	}
	return b.String()
}

// NewInduceCommand creates the induce command.
func NewInduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "induce [tokens...]",
		Short: "Induce a grammar from a token sequence",
		Long: `Induce a k-Sequitur grammar from tokens given as arguments.

Tokens are mapped to terminals in order of first appearance. The
end-of-episode token (--eoe) separates episodes and never joins a rule.
With --ints the arguments are raw integers and -1 marks an episode end;
put them after "--" so negative values are not read as flags.

Exit codes:
  0 - Grammar induced
  2 - Invalid input, threshold or profile

Examples:
  kseq induce --chars abddddeabde
  kseq induce -k 3 left right jump left right jump left right jump
  kseq induce --ints 0 1 2 0 1 2 2 2 2
  kseq induce --ints -- 0 1 -1 0 1 -1 0 1
  kseq induce --profiles ./profiles --profile actions left right / left right
  kseq induce --chars abab --db ./kseq.db --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInduce(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.K, "threshold", "k", 2, "repetition threshold (>= 1)")
	cmd.Flags().StringVar(&opts.EndOfEpisode, "eoe", "/", "end-of-episode token")
	cmd.Flags().StringVar(&opts.Chars, "chars", "", "induce over the characters of this string")
	cmd.Flags().BoolVar(&opts.Ints, "ints", false, "treat arguments as raw integers")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile to apply")
	cmd.Flags().StringVar(&opts.ProfilesDir, "profiles", ".", "directory containing CUE profiles")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

// induceConfig is the effective configuration after applying the profile
// and explicitly set flags.
type induceConfig struct {
	profile      string
	k            int
	endOfEpisode string
	alphabet     []string
}

func resolveInduceConfig(opts *InduceOptions, cmd *cobra.Command) (induceConfig, error) {
	cfg := induceConfig{k: opts.K, endOfEpisode: opts.EndOfEpisode}
	if opts.Profile == "" {
		return cfg, nil
	}

	result, errs := LoadProfiles(opts.ProfilesDir, LoadModeFailFast)
	if len(errs) > 0 {
		return cfg, errs[0]
	}
	p, ok := result.Profile(opts.Profile)
	if !ok {
		return cfg, &LoadError{Code: ErrCodeNoProfiles, Message: fmt.Sprintf("profile %q not found in %s", opts.Profile, opts.ProfilesDir)}
	}

	cfg.profile = p.Name
	cfg.alphabet = p.Alphabet
	if !cmd.Flags().Changed("threshold") {
		cfg.k = p.K
	}
	if !cmd.Flags().Changed("eoe") {
		cfg.endOfEpisode = p.EndOfEpisode
	}
	return cfg, nil
}

func runInduce(ctx context.Context, opts *InduceOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := resolveInduceConfig(opts, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to load profile", err)
	}

	input, alpha, err := encodeInput(opts, cfg, args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid input", err)
	}

	eng := engine.New()
	base := eng.NextRuleID()
	res, err := eng.Induce(input, cfg.k)
	if err != nil {
		return formatter.Fail(ExitCommandError, "induction failed", err)
	}

	g, err := res.Grammar()
	if err != nil {
		return formatter.Fail(ExitCommandError, "induction failed", err)
	}

	decode := func(s ir.Symbol) string { return s.String() }
	if alpha != nil {
		decode = alpha.Token
	}
	out, err := buildInduceOutput(res, g, decode)
	if err != nil {
		return formatter.Fail(ExitCommandError, "induction failed", err)
	}
	out.Profile = cfg.profile

	if opts.Database != "" {
		runID, err := recordRun(ctx, opts, cfg, g, base, alpha)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to record run", err)
		}
		out.RunID = runID
	}

	return formatter.Success(out)
}

// encodeInput turns the command arguments into raw terminals.
func encodeInput(opts *InduceOptions, cfg induceConfig, args []string) ([]int, *alphabet.Alphabet, error) {
	if opts.Ints {
		if opts.Chars != "" {
			return nil, nil, engine.NewInvalidInputError("--ints and --chars are mutually exclusive", -1, "")
		}
		input := make([]int, len(args))
		for i, arg := range args {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return nil, nil, engine.NewInvalidInputError("not an integer", i, arg)
			}
			input[i] = v
		}
		return input, nil, nil
	}

	tokens := args
	if opts.Chars != "" {
		if len(args) > 0 {
			return nil, nil, engine.NewInvalidInputError("--chars does not take token arguments", -1, "")
		}
		tokens = alphabet.Chars(opts.Chars)
	}

	alpha := alphabet.New(cfg.endOfEpisode)
	if len(cfg.alphabet) > 0 {
		var err error
		if alpha, err = alphabet.NewFixed(cfg.endOfEpisode, cfg.alphabet); err != nil {
			return nil, nil, err
		}
	}
	input, err := alpha.Encode(tokens)
	if err != nil {
		return nil, nil, err
	}
	return input, alpha, nil
}

func buildInduceOutput(res *engine.Result, g *ir.Grammar, decode func(ir.Symbol) string) (InduceOutput, error) {
	hash, err := ir.GrammarHash(g)
	if err != nil {
		return InduceOutput{}, err
	}

	out := InduceOutput{
		K:           res.K,
		InputLen:    len(res.Input),
		Sequence:    decodeSymbols(res.Sequence, decode),
		Rules:       make([]RuleOutput, 0, len(g.Rules)),
		Usage:       make([]UsageOutput, 0, len(res.Usage)),
		Layers:      res.Layers,
		GrammarHash: hash,
	}
	for _, r := range g.Rules {
		out.Rules = append(out.Rules, RuleOutput{
			ID:        r.ID.String(),
			Layer:     r.Layer,
			Left:      decode(r.Left),
			Right:     decode(r.Right),
			Expansion: decodeSymbols(r.Expansion, decode),
			Usage:     r.Usage,
		})
	}
	for _, u := range res.Usage {
		ids := make([]string, len(u.Rules))
		for i, id := range u.Rules {
			ids[i] = id.String()
		}
		out.Usage = append(out.Usage, UsageOutput{
			Pattern: decodeSymbols(u.Pattern, decode),
			Rules:   ids,
			Count:   u.Count,
		})
	}
	return out, nil
}

func decodeSymbols(seq []ir.Symbol, decode func(ir.Symbol) string) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = decode(s)
	}
	return out
}

func recordRun(ctx context.Context, opts *InduceOptions, cfg induceConfig, g *ir.Grammar, base ir.RuleID, alpha *alphabet.Alphabet) (string, error) {
	gen := opts.RunIDs
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}

	run, err := ir.NewRun(gen.Generate(), g, base)
	if err != nil {
		return "", err
	}
	run.Profile = cfg.profile
	if alpha != nil {
		run.Alphabet = alpha.Tokens()
		run.EndOfEpisodeToken = alpha.EndOfEpisode()
	}

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	seq, err := st.WriteRun(ctx, run)
	if err != nil {
		return "", err
	}
	slog.Info("run recorded", "run_id", run.ID, "seq", seq, "grammar_hash", run.GrammarHash)
	return run.ID, nil
}
