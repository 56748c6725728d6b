package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/tcnfs/pkg/tcclient"
)

// benchReport prints the throughput a timed run achieved: megabytes per
// second, and the batches-to-ops ratio that shows how much coalescing the
// compound sharding bought.
func benchReport(label string, files, ops int, bytes int64, elapsed time.Duration) {
	mb := float64(bytes) / (1024 * 1024)
	seconds := elapsed.Seconds()
	if seconds == 0 {
		seconds = 1e-9
	}
	fmt.Printf("%s: %d files, %d compound(s), %.2f MiB in %s (%.2f MiB/s, %.1f files/compound)\n",
		label, files, ops, mb, elapsed, mb/seconds, float64(files)/float64(ops))
}

func connect(ctx context.Context) (*tcclient.Context, error) {
	return tcclient.Init(ctx, rootFlags.configPath, rootFlags.logPath, rootFlags.exportID)
}
