// Package commands implements the tcctl CLI: a thin interactive driver over
// pkg/tcclient for poking at a mounted export from a shell.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootFlags struct {
	configPath string
	logPath    string
	exportID   string
}

var rootCmd = &cobra.Command{
	Use:   "tcctl",
	Short: "tcctl - interactive client for a vectorized NFSv4.1 export",
	Long: `tcctl is a command-line driver over the tcnfs client library.

Use it to list directories, read or copy files, and exercise the
vectorized calls (ls, cat, cp) against a mounted export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "path to the client configuration file")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logPath, "log", "", "path to the log output (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.exportID, "export", "", "export identifier to mount")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
}

// withClient opens a Context for the duration of run, and always deinits it
// afterward regardless of run's outcome.
func withClient(run func(ctx context.Context, c *tcclient.Context) error) error {
	ctx := context.Background()
	c, err := tcclient.Init(ctx, rootFlags.configPath, rootFlags.logPath, rootFlags.exportID)
	if err != nil {
		return err
	}
	defer c.Deinit()

	return run(ctx, c)
}
