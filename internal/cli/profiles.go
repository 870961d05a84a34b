package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
}

// ProfileSummary describes one compiled profile.
type ProfileSummary struct {
	Name         string   `json:"name"`
	K            int      `json:"k"`
	EndOfEpisode string   `json:"end_of_episode"`
	Alphabet     []string `json:"alphabet,omitempty"`
}

// ProfilesOutput is the result of the profiles command.
type ProfilesOutput struct {
	Files    int              `json:"files"`
	Profiles []ProfileSummary `json:"profiles"`
}

// String renders the output for text mode.
func (o ProfilesOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %d profile(s) in %d file(s)", len(o.Profiles), o.Files)
	for _, p := range o.Profiles {
		fmt.Fprintf(&b, "\n  %s: k=%d end_of_episode=%q", p.Name, p.K, p.EndOfEpisode)
		if len(p.Alphabet) > 0 {
			fmt.Fprintf(&b, " alphabet=[%s]", strings.Join(p.Alphabet, " "))
		}
	}
	return b.String()
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles <dir>",
		Short: "Validate and list CUE induction profiles",
		Long: `Load every CUE file in <dir>, validate the declared profiles and list them.

A profile fixes the threshold, the end-of-episode token and optionally a
closed alphabet:

  profile: words: {
      k: 3
      end_of_episode: "."
      alphabet: ["the", "cat", "sat"]
  }

Exit codes:
  0 - All profiles valid
  1 - One or more profiles invalid
  2 - Command error (directory not found, no CUE files, etc.)

Examples:
  kseq profiles ./profiles
  kseq profiles ./profiles --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, args[0], cmd)
		},
	}

	return cmd
}

func runProfiles(opts *ProfilesOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result, errs := LoadProfiles(dir, LoadModeCollectAll)
	if len(errs) > 0 {
		exitCode := ExitFailure
		if result == nil {
			exitCode = ExitCommandError
		}
		return reportLoadErrors(formatter, exitCode, errs)
	}

	out := ProfilesOutput{
		Files:    result.FileCount,
		Profiles: make([]ProfileSummary, 0, len(result.Profiles)),
	}
	for _, p := range result.Profiles {
		out.Profiles = append(out.Profiles, ProfileSummary{
			Name:         p.Name,
			K:            p.K,
			EndOfEpisode: p.EndOfEpisode,
			Alphabet:     p.Alphabet,
		})
	}
	return formatter.Success(out)
}

// reportLoadErrors writes every load error and returns a reported ExitError.
func reportLoadErrors(f *OutputFormatter, exitCode int, errs []error) error {
	details := make([]CLIError, 0, len(errs))
	for _, err := range errs {
		details = append(details, CLIError{Code: ErrorCode(err), Message: err.Error()})
	}

	if f.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    details[0].Code,
				Message: fmt.Sprintf("%d profile error(s)", len(errs)),
				Details: details,
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %d profile error(s)\n", len(errs))
		for _, d := range details {
			fmt.Fprintf(f.Writer, "  [%s] %s\n", d.Code, d.Message)
		}
	}
	return &ExitError{Code: exitCode, Message: "invalid profiles", Err: errs[0], Reported: true}
}
