package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var lsFlags struct {
	long       bool
	maxEntries int
}

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List a directory's entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		mask := tcfile.AttrMode | tcfile.AttrSize
		if lsFlags.long {
			mask = tcfile.AttrAll
		}

		return withClient(func(ctx context.Context, c *tcclient.Context) error {
			entries, err := c.Listdir(ctx, tcclient.FileFromPath(dir), mask, lsFlags.maxEntries)
			if err != nil {
				return fmt.Errorf("listdir %s: %w", dir, err)
			}
			for _, e := range entries {
				if lsFlags.long {
					fmt.Fprintf(os.Stdout, "%6o %10d %s\n", e.Attrs.Mode, e.Attrs.Size, e.Name)
				} else {
					fmt.Fprintln(os.Stdout, e.Name)
				}
			}
			return nil
		})
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsFlags.long, "long", "l", false, "show attributes alongside each name")
	lsCmd.Flags().IntVar(&lsFlags.maxEntries, "max-entries", 0, "stop after this many entries (0 means no limit)")
}
