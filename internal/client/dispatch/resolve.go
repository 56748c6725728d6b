package dispatch

import (
	"context"
	"fmt"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
	"github.com/marmos91/tcnfs/pkg/tcpath"
)

// resolved is what file-reference resolution produces for one FileRef: the
// parent directory's handle plus the base name (for OPEN/CREATE/REMOVE/
// RENAME, which address an object by name relative to a directory handle),
// and the object's own handle when it is already known (for GETATTR/SETATTR/
// READDIR, and for descriptor/handle refs that never need a name at all).
type resolved struct {
	path         string // normalized absolute path, "" for a bare handle ref
	parentHandle tcfile.FileHandle
	name         string
	objectHandle tcfile.FileHandle
	hasObject    bool
	stateid      nfs4.Stateid // set only when ref resolved through an open descriptor
}

// resolveRef reduces ref to a resolved value, consulting the handle cache
// for path lookups and the descriptor table for already-open files. prev is
// the previous IntendedOp's resolution in the same batch, used to satisfy a
// RefCurrent; it must be non-nil whenever ref.Kind == RefCurrent (the
// builder's Validate rejects Current at batch position 0, and the
// dispatcher resolves in batch order, so prev is always available by then).
func (d *Dispatcher) resolveRef(ctx context.Context, ref tcfile.FileRef, cwd string, prev *resolved) (resolved, error) {
	switch ref.Kind {
	case tcfile.RefPath:
		return d.resolvePath(ctx, ref.Path, cwd)

	case tcfile.RefDescriptor:
		state, ok := d.Descriptors.Get(ref.Descriptor)
		if !ok {
			return resolved{}, fmt.Errorf("descriptor %d is not open", ref.Descriptor)
		}
		return resolved{path: state.Path, objectHandle: state.Handle, hasObject: true, stateid: state.Stateid}, nil

	case tcfile.RefHandle:
		return resolved{objectHandle: ref.Handle, hasObject: true}, nil

	case tcfile.RefCurrent:
		if prev == nil {
			return resolved{}, fmt.Errorf("current reference with no preceding op")
		}
		return *prev, nil

	default:
		return resolved{}, fmt.Errorf("unknown file reference kind %v", ref.Kind)
	}
}

// resolvePath normalizes path against cwd when relative, splits it into a
// parent directory and base name, and looks up both the parent's handle
// (required) and the object's own handle (best effort: a nonexistent
// target, as in a creating writev, is not an error here).
func (d *Dispatcher) resolvePath(ctx context.Context, path, cwd string) (resolved, error) {
	full := path
	switch {
	case len(path) > 0 && path[0] == '/':
		norm, ok := tcpath.NormalizeString(path)
		if !ok {
			return resolved{}, fmt.Errorf("invalid path %q", path)
		}
		full = norm
	default:
		joined, ok := tcpath.JoinString(cwd, path)
		if !ok {
			return resolved{}, fmt.Errorf("invalid path %q relative to %q", path, cwd)
		}
		full = joined
	}

	dir, name := splitParent(full)
	parentHandle, err := d.Handles.Lookup(ctx, dir)
	if err != nil {
		d.Metrics.IncCacheMiss()
		return resolved{}, err
	}

	r := resolved{path: full, parentHandle: parentHandle, name: name}
	if h, ok := d.Handles.Peek(full); ok {
		d.Metrics.IncCacheHit()
		r.objectHandle = h
		r.hasObject = true
	} else {
		d.Metrics.IncCacheMiss()
	}
	return r, nil
}

// splitParent divides an absolute, normalized path into its parent
// directory and final component. "/a" splits into ("/", "a"); "/" itself
// (no final component) splits into ("/", "").
func splitParent(path string) (dir, name string) {
	if path == "/" {
		return "/", ""
	}
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/", path[1:]
			}
			return path[:i], path[i+1:]
		}
	}
	return "/", path
}

// handleCacheResolver adapts Dispatcher into a handlecache.Resolver: a
// single compound walking PUTROOTFH followed by one LOOKUP per path
// component, returning the final GETFH. This is what the Handle Cache
// calls on a miss.
func (d *Dispatcher) handleCacheResolver(ctx context.Context, path string) (tcfile.FileHandle, error) {
	components, _, ok := tcpath.Tokenize(path)
	if !ok {
		return nil, fmt.Errorf("invalid path %q", path)
	}

	ops := make([]compound.PlanOp, 0, len(components)*2+1)
	ops = append(ops, compound.PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTROOTFH}, Role: compound.RoleSetup, BackIndex: -1})
	for _, c := range components {
		ops = append(ops, compound.PlanOp{
			Op:        nfs4.Op{Code: nfs4.OP_LOOKUP, Arg: nfs4.LookupArgs{Name: c}},
			Role:      compound.RoleSetup,
			BackIndex: -1,
		})
	}
	ops = append(ops, compound.PlanOp{Op: nfs4.Op{Code: nfs4.OP_GETFH}, Role: compound.RolePayload, BackIndex: 0})

	plan := compound.CompoundPlan{Ops: ops, OpIndices: []int{0}}

	res, err := d.Executor.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}
	if res.Status != nfs4.NFS4_OK {
		return nil, &NFSError{Status: res.Status}
	}
	if len(res.Ops) == 0 {
		return nil, fmt.Errorf("lookup chain for %q returned no results", path)
	}

	last := res.Ops[len(res.Ops)-1]
	gf, ok := last.Result.(nfs4.GetFHResult)
	if !ok {
		return nil, fmt.Errorf("lookup chain for %q: unexpected result type %T", path, last.Result)
	}
	return tcfile.FileHandle(gf.Handle), nil
}
