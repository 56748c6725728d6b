package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		return withClient(func(ctx context.Context, c *tcclient.Context) error {
			attrs := tcclient.AttrsSetMode(tcfile.Attrs{}, 0o755)
			specs := []tcfile.AttrSpec{{File: tcclient.FileFromPath(path), Attrs: attrs}}
			if res := c.Mkdirv(ctx, specs); !res.OK {
				return fmt.Errorf("mkdir %s: errno %d", path, res.Errno)
			}
			return nil
		})
	},
}
