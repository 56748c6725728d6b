package tcclient

import "github.com/marmos91/tcnfs/pkg/tcfile"

// The attrs_set_* helpers are re-exported here for API parity with
// spec.md §6's entry-point list; pkg/tcfile carries the actual
// implementations since Attrs itself lives there.
var (
	AttrsSetMode  = tcfile.AttrsSetMode
	AttrsSetSize  = tcfile.AttrsSetSize
	AttrsSetUID   = tcfile.AttrsSetUID
	AttrsSetGID   = tcfile.AttrsSetGID
	AttrsSetAtime = tcfile.AttrsSetAtime
	AttrsSetMtime = tcfile.AttrsSetMtime
)
