package dispatch

import (
	"context"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/client/handlecache"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// OpenSpec is one openv entry: the path to open, the NFSv4 share access
// bits, and whether a missing file should be created.
type OpenSpec struct {
	Path        string
	ShareAccess uint32
	Create      bool
	Attrs       tcfile.Attrs
}

// Openv opens each spec's path, standalone from any read/write, and returns
// one Descriptor per successful open. Unlike readv/writev's is_creation
// path, the OPEN here carries no payload op of its own: it exists purely to
// populate the Descriptor Table so a later RefDescriptor reference can skip
// OPEN entirely.
func (d *Dispatcher) Openv(ctx context.Context, specs []OpenSpec, cwd string) ([]tcfile.Descriptor, Result) {
	fds := make([]tcfile.Descriptor, len(specs))

	for i, spec := range specs {
		r, err := d.resolvePath(ctx, spec.Path, cwd)
		if err != nil {
			return fds, failResult(i, ENOENT)
		}

		owner := compound.OwnerString(d.ClientID, 0)
		createMode := uint32(nfs4.OPEN4_NOCREATE)
		if spec.Create {
			createMode = nfs4.OPEN4_CREATE
		}

		plan := compound.CompoundPlan{
			Ops: []compound.PlanOp{
				{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: r.parentHandle}}, Role: compound.RoleSetup, BackIndex: -1},
				{Op: nfs4.Op{Code: nfs4.OP_OPEN, Arg: nfs4.OpenArgs{
					ShareAccess: spec.ShareAccess,
					ShareDeny:   nfs4.OPEN4_SHARE_DENY_NONE,
					Owner:       nfs4.OpenOwner{Owner: owner},
					CreateMode:  createMode,
					CreateAttrs: compound.AttrsToFattr(spec.Attrs, nfs4.NF4REG),
					Name:        r.name,
				}}, Role: compound.RolePayload, BackIndex: i},
				{Op: nfs4.Op{Code: nfs4.OP_GETFH}, Role: compound.RolePayload, BackIndex: i},
			},
			OpIndices: []int{i},
		}

		res, err := d.Executor.Execute(ctx, plan)
		if err != nil {
			return fds, failResult(i, EIO)
		}
		if res.Status != nfs4.NFS4_OK {
			return fds, failResult(i, ErrnoForStatus(res.Status))
		}
		if len(res.Ops) < 3 {
			return fds, failResult(i, EIO)
		}

		openRes, ok := res.Ops[1].Result.(nfs4.OpenResult)
		if !ok {
			return fds, failResult(i, EIO)
		}
		fhRes, ok := res.Ops[2].Result.(nfs4.GetFHResult)
		if !ok {
			return fds, failResult(i, EIO)
		}

		handle := tcfile.FileHandle(fhRes.Handle)
		state := &handlecache.OpenState{
			Path:        r.path,
			Handle:      handle,
			Stateid:     openRes.Stateid,
			ShareAccess: spec.ShareAccess,
		}
		fds[i] = d.Descriptors.Insert(state)
		d.Handles.Insert(r.path, handle)
	}

	return fds, okResult()
}

// Closev closes each fd, dropping it from the Descriptor Table once its
// CLOSE has completed.
func (d *Dispatcher) Closev(ctx context.Context, fds []tcfile.Descriptor) Result {
	for i, fd := range fds {
		state, ok := d.Descriptors.Get(fd)
		if !ok {
			return failResult(i, EBADF)
		}

		plan := compound.CompoundPlan{
			Ops: []compound.PlanOp{
				{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: state.Handle}}, Role: compound.RoleSetup, BackIndex: -1},
				{Op: nfs4.Op{Code: nfs4.OP_CLOSE, Arg: nfs4.CloseArgs{Stateid: state.Stateid}}, Role: compound.RolePayload, BackIndex: i},
			},
			OpIndices: []int{i},
		}

		res, err := d.Executor.Execute(ctx, plan)
		if err != nil {
			return failResult(i, EIO)
		}
		if res.Status != nfs4.NFS4_OK {
			return failResult(i, ErrnoForStatus(res.Status))
		}

		d.Descriptors.Remove(fd)
	}
	return okResult()
}
