package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Remove one or more files in one removev batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refs := make([]tcfile.FileRef, len(args))
		for i, p := range args {
			refs[i] = tcclient.FileFromPath(p)
		}

		return withClient(func(ctx context.Context, c *tcclient.Context) error {
			res := c.Removev(ctx, refs)
			if !res.OK {
				return fmt.Errorf("remove %s: errno %d", args[res.FailedIndex], res.Errno)
			}
			return nil
		})
	},
}
