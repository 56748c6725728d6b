package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "ls", "cat", "cp", "mkdir", "rm"} {
		require.True(t, names[want], "expected %q to be registered", want)
	}
}

func TestCatRequiresExactlyOneArg(t *testing.T) {
	require.NoError(t, catCmd.Args(catCmd, []string{"/a/b"}))
	require.Error(t, catCmd.Args(catCmd, nil))
	require.Error(t, catCmd.Args(catCmd, []string{"/a", "/b"}))
}

func TestRmRequiresAtLeastOneArg(t *testing.T) {
	require.Error(t, rmCmd.Args(rmCmd, nil))
	require.NoError(t, rmCmd.Args(rmCmd, []string{"/a"}))
	require.NoError(t, rmCmd.Args(rmCmd, []string{"/a", "/b"}))
}

func TestCpRequiresExactlyTwoArgs(t *testing.T) {
	require.Error(t, cpCmd.Args(cpCmd, []string{"/a"}))
	require.NoError(t, cpCmd.Args(cpCmd, []string{"/a", "/b"}))
}
