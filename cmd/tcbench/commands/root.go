// Package commands implements tcbench: a thin throughput driver that runs a
// configurable batch of writev/readv calls through pkg/tcclient and reports
// how many compounds it took and how fast they ran.
package commands

import (
	"github.com/spf13/cobra"
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
	Use:           "tcbench",
	Short:         "tcbench - throughput driver for the vectorized NFSv4.1 client",
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
	rootCmd.AddCommand(writevCmd)
	rootCmd.AddCommand(readvCmd)
}
