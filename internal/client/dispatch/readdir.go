package dispatch

import (
	"context"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// ReaddirPage runs a single READDIR against dir, starting at (cookie,
// cookieVerf), and returns the decoded page. internal/client/listdir drives
// the cookie/cookieverf bookkeeping across pages; this method only resolves
// dir once and issues one compound. A cookie verifier mismatch
// (NFS4ERR_BAD_COOKIE) surfaces through Errno as ESTALE, same as a stale
// filehandle, since both mean "the server's namespace moved out from under
// a reference this caller was still holding".
func (d *Dispatcher) ReaddirPage(ctx context.Context, dir tcfile.FileRef, cwd string, mask tcfile.AttrMask, cookie uint64, cookieVerf [8]byte, maxCount uint32) (nfs4.ReaddirResult, Result) {
	ops := []compound.IntendedOp{{
		Kind:              compound.KindReaddir,
		File:              dir,
		AttrMask:          mask,
		ReaddirCookie:     cookie,
		ReaddirCookieVerf: cookieVerf,
		ReaddirMaxCount:   maxCount,
	}}

	payloads, result := d.runBatch(ctx, ops, cwd)
	if !result.OK {
		return nfs4.ReaddirResult{}, result
	}
	rr, ok := payloads[0].Result.(nfs4.ReaddirResult)
	if !ok {
		return nfs4.ReaddirResult{}, failResult(0, EIO)
	}
	return rr, result
}
