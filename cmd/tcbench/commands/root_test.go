package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "writev", "readv"} {
		require.True(t, names[want], "expected %q to be registered", want)
	}
}

func TestWritevFlagsAcceptOverrides(t *testing.T) {
	require.NoError(t, writevCmd.Flags().Set("files", "8"))
	require.NoError(t, writevCmd.Flags().Set("batch", "4"))
	f, err := writevCmd.Flags().GetInt("files")
	require.NoError(t, err)
	require.Equal(t, 8, f)
}

func TestBenchReportDoesNotDivideByZero(t *testing.T) {
	require.NotPanics(t, func() {
		benchReport("test", 1, 1, 1024, 0)
	})
}

func TestBenchReportHandlesElapsedTime(t *testing.T) {
	require.NotPanics(t, func() {
		benchReport("test", 4, 1, 4096, 10*time.Millisecond)
	})
}
