package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var cpFlags struct {
	length int64
}

var cpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy a file by reading it through the client and writing it back",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]

		return withClient(func(ctx context.Context, c *tcclient.Context) error {
			length := uint32(cpFlags.length)
			if cpFlags.length <= 0 {
				specs := []tcfile.AttrSpec{{File: tcclient.FileFromPath(src), Attrs: tcfile.Attrs{Mask: tcfile.AttrSize}}}
				if res := c.Getattrsv(ctx, specs); !res.OK {
					return fmt.Errorf("stat %s: errno %d", src, res.Errno)
				}
				length = uint32(specs[0].Attrs.Size)
			}

			specs := []tcfile.CopySpec{{
				Src:    tcclient.FileFromPath(src),
				Dst:    tcclient.FileFromPath(dst),
				Length: length,
			}}
			if res := c.Copyv(ctx, specs); !res.OK {
				return fmt.Errorf("copy %s -> %s: errno %d", src, dst, res.Errno)
			}
			return nil
		})
	},
}

func init() {
	cpCmd.Flags().Int64Var(&cpFlags.length, "length", 0, "bytes to copy (0 means the whole source file)")
}
