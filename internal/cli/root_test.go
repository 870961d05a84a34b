package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kseq", cmd.Use)
	assert.Contains(t, cmd.Long, "repeats at least k times")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"induce", "expand", "runs", "replay", "test", "profiles"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInduceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	induceCmd, _, err := cmd.Find([]string{"induce"})
	require.NoError(t, err)

	threshold := induceCmd.Flags().Lookup("threshold")
	require.NotNil(t, threshold)
	assert.Equal(t, "k", threshold.Shorthand)
	assert.Equal(t, "2", threshold.DefValue)

	eoe := induceCmd.Flags().Lookup("eoe")
	require.NotNil(t, eoe)
	assert.Equal(t, "/", eoe.DefValue)

	for _, name := range []string{"chars", "ints", "profile", "profiles", "db"} {
		assert.NotNil(t, induceCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kseq.db")

	_, err := execute(t, NewRootCommand(), "runs", "--db", dbPath, "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootRunsInduce(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "induce", "--chars", "abab")
	require.NoError(t, err)
	assert.Contains(t, out, "Sequence (4 -> 2 symbols")
	assert.Contains(t, out, "R0 -> a b")
}
