package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/tcnfs/pkg/tcclient"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

var writevFlags struct {
	dir         string
	fileCount   int
	fileSize    int
	batch       int
	writeStable bool
}

var writevCmd = &cobra.Command{
	Use:   "writev",
	Short: "Create and write a batch of files, reporting write throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Deinit()

		payload := make([]byte, writevFlags.fileSize)
		for i := range payload {
			payload[i] = byte(i)
		}

		start := time.Now()
		var totalBytes int64
		compounds := 0

		for lo := 0; lo < writevFlags.fileCount; lo += writevFlags.batch {
			hi := lo + writevFlags.batch
			if hi > writevFlags.fileCount {
				hi = writevFlags.fileCount
			}

			vecs := make([]tcfile.IoVec, 0, hi-lo)
			for i := lo; i < hi; i++ {
				vecs = append(vecs, tcfile.IoVec{
					File:          tcclient.FileFromPath(fmt.Sprintf("%s/bench-%d", writevFlags.dir, i)),
					Offset:        0,
					Buffer:        payload,
					IsCreation:    true,
					IsWriteStable: writevFlags.writeStable,
				})
			}

			res := c.Writev(ctx, vecs)
			compounds++
			if !res.OK {
				return fmt.Errorf("writev batch at file %d: errno %d", lo+res.FailedIndex, res.Errno)
			}
			totalBytes += int64(len(payload) * (hi - lo))
		}

		benchReport("writev", writevFlags.fileCount, compounds, totalBytes, time.Since(start))
		return nil
	},
}

func init() {
	writevCmd.Flags().StringVar(&writevFlags.dir, "dir", "/tcbench", "directory under which to create files")
	writevCmd.Flags().IntVar(&writevFlags.fileCount, "files", 16, "number of files to write")
	writevCmd.Flags().IntVar(&writevFlags.fileSize, "size", 4096, "bytes per file")
	writevCmd.Flags().IntVar(&writevFlags.batch, "batch", 10, "files per writev call (shards above the compound's read/write capacity)")
	writevCmd.Flags().BoolVar(&writevFlags.writeStable, "stable", false, "use DATA_SYNC4 writes instead of UNSTABLE4+COMMIT")
}
