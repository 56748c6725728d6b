package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's contents to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		return withClient(func(ctx context.Context, c *tcclient.Context) error {
			specs := []tcfile.AttrSpec{{File: tcclient.FileFromPath(path), Attrs: tcfile.Attrs{Mask: tcfile.AttrSize}}}
			if res := c.Getattrsv(ctx, specs); !res.OK {
				return fmt.Errorf("stat %s: errno %d", path, res.Errno)
			}

			size := specs[0].Attrs.Size
			buf := make([]byte, size)
			vecs := []tcfile.IoVec{{File: tcclient.FileFromPath(path), Offset: 0, Length: uint32(size), Buffer: buf}}
			if res := c.Readv(ctx, vecs); !res.OK {
				return fmt.Errorf("read %s: errno %d", path, res.Errno)
			}

			_, err := os.Stdout.Write(buf)
			return err
		})
	},
}
