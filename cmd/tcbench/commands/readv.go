package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var readvFlags struct {
	dir       string
	fileCount int
	fileSize  int
	batch     int
	setup     bool
}

var readvCmd = &cobra.Command{
	Use:   "readv",
	Short: "Read a batch of files back, reporting read throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Deinit()

		if readvFlags.setup {
			if err := seedFiles(ctx, c, readvFlags.dir, readvFlags.fileCount, readvFlags.fileSize); err != nil {
				return fmt.Errorf("seeding files: %w", err)
			}
		}

		start := time.Now()
		var totalBytes int64
		compounds := 0

		for lo := 0; lo < readvFlags.fileCount; lo += readvFlags.batch {
			hi := lo + readvFlags.batch
			if hi > readvFlags.fileCount {
				hi = readvFlags.fileCount
			}

			bufs := make([][]byte, hi-lo)
			vecs := make([]tcfile.IoVec, 0, hi-lo)
			for i := lo; i < hi; i++ {
				bufs[i-lo] = make([]byte, readvFlags.fileSize)
				vecs = append(vecs, tcfile.IoVec{
					File:   tcclient.FileFromPath(fmt.Sprintf("%s/bench-%d", readvFlags.dir, i)),
					Offset: 0,
					Length: uint32(readvFlags.fileSize),
					Buffer: bufs[i-lo],
				})
			}

			res := c.Readv(ctx, vecs)
			compounds++
			if !res.OK {
				return fmt.Errorf("readv batch at file %d: errno %d", lo+res.FailedIndex, res.Errno)
			}
			totalBytes += int64(readvFlags.fileSize * (hi - lo))
		}

		benchReport("readv", readvFlags.fileCount, compounds, totalBytes, time.Since(start))
		return nil
	},
}

func seedFiles(ctx context.Context, c *tcclient.Context, dir string, count, size int) error {
	payload := make([]byte, size)
	vecs := make([]tcfile.IoVec, count)
	for i := range vecs {
		vecs[i] = tcfile.IoVec{
			File:       tcclient.FileFromPath(fmt.Sprintf("%s/bench-%d", dir, i)),
			Buffer:     payload,
			IsCreation: true,
		}
	}
	if res := c.Writev(ctx, vecs); !res.OK {
		return fmt.Errorf("errno %d at file %d", res.Errno, res.FailedIndex)
	}
	return nil
}

func init() {
	readvCmd.Flags().StringVar(&readvFlags.dir, "dir", "/tcbench", "directory files were written under")
	readvCmd.Flags().IntVar(&readvFlags.fileCount, "files", 16, "number of files to read")
	readvCmd.Flags().IntVar(&readvFlags.fileSize, "size", 4096, "bytes per file")
	readvCmd.Flags().IntVar(&readvFlags.batch, "batch", 10, "files per readv call")
	readvCmd.Flags().BoolVar(&readvFlags.setup, "setup", true, "write the files first before reading them back")
}
