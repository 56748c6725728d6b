package dispatch

import (
	"context"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Getattrsv fetches attrs for each entry in specs, writing the decoded
// result back into specs[i].Attrs on success.
func (d *Dispatcher) Getattrsv(ctx context.Context, specs []tcfile.AttrSpec, cwd string) Result {
	ops := make([]compound.IntendedOp, len(specs))
	for i, s := range specs {
		ops[i] = compound.IntendedOp{Kind: compound.KindGetAttr, File: s.File, AttrMask: s.Attrs.Mask}
	}

	payloads, result := d.runBatch(ctx, ops, cwd)
	for i := range specs {
		ga, ok := payloads[i].Result.(nfs4.GetAttrResult)
		if !ok {
			continue
		}
		specs[i].Attrs = fattrToAttrs(ga.Attrs, specs[i].Attrs.Mask)
	}
	return result
}

// Setattrsv applies specs[i].Attrs to each entry's file.
func (d *Dispatcher) Setattrsv(ctx context.Context, specs []tcfile.AttrSpec, cwd string) Result {
	ops := make([]compound.IntendedOp, len(specs))
	for i, s := range specs {
		ops[i] = compound.IntendedOp{Kind: compound.KindSetAttr, File: s.File, Attrs: s.Attrs}
	}
	_, result := d.runBatch(ctx, ops, cwd)
	return result
}

func fattrToAttrs(f nfs4.Fattr, mask tcfile.AttrMask) tcfile.Attrs {
	a := tcfile.Attrs{Mask: mask}
	if mask.Has(tcfile.AttrMode) {
		a.Mode = f.Mode
	}
	if mask.Has(tcfile.AttrSize) {
		a.Size = f.Size
	}
	if mask.Has(tcfile.AttrUID) {
		a.UID = f.Owner
	}
	if mask.Has(tcfile.AttrGID) {
		a.GID = f.Group
	}
	if mask.Has(tcfile.AttrRdev) {
		a.Rdev = f.Rawdev
	}
	if mask.Has(tcfile.AttrNlink) {
		a.Nlink = f.Nlink
	}
	if mask.Has(tcfile.AttrAtime) {
		a.Atime = tcfile.Timespec{Sec: f.Atime.Seconds, Nsec: f.Atime.Nseconds}
	}
	if mask.Has(tcfile.AttrMtime) {
		a.Mtime = tcfile.Timespec{Sec: f.Mtime.Seconds, Nsec: f.Mtime.Nseconds}
	}
	if mask.Has(tcfile.AttrCtime) {
		a.Ctime = tcfile.Timespec{Sec: f.Ctime.Seconds, Nsec: f.Ctime.Nseconds}
	}
	return a
}
