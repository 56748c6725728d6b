// Package dispatch is the Vector Dispatcher: it turns a caller's array of
// IoVecs/AttrSpecs/RenamePairs into IntendedOps, resolves every FileRef to
// the handles the Compound Builder needs, hands the result to
// internal/client/compound and internal/client/exec, and folds the decoded
// replies back into the Handle Cache, the Descriptor Table, and the
// caller's own buffers.
//
// A vectorized call is all-or-nothing in the sense the original API
// specifies: it runs ops in order and stops at the first failure, reporting
// which batch index failed rather than a full per-op status vector. Ops
// before the failure have already taken effect; ops after it were never
// attempted.
package dispatch

import (
	"context"
	"fmt"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/client/exec"
	"github.com/marmos91/tcnfs/internal/client/handlecache"
	"github.com/marmos91/tcnfs/internal/metrics"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// NFSError wraps a raw NFSv4 status that ErrnoForStatus couldn't resolve to
// anything more specific than the caller needs to know the wire code for
// (logging, debugging).
type NFSError struct {
	Status uint32
}

func (e *NFSError) Error() string {
	return fmt.Sprintf("nfs status %d", e.Status)
}

// Result is the outcome of one vectorized call: either every op in the
// batch succeeded, or the call stopped at FailedIndex with Errno set.
type Result struct {
	OK          bool
	FailedIndex int // -1 when OK
	Errno       int
}

func okResult() Result { return Result{OK: true, FailedIndex: -1} }

func failResult(index int, errno int) Result {
	return Result{OK: false, FailedIndex: index, Errno: errno}
}

// Dispatcher holds everything a vectorized call needs to resolve file
// references, build compounds, and execute them.
type Dispatcher struct {
	Handles     *handlecache.HandleCache
	Descriptors *handlecache.DescriptorTable
	Executor    *exec.Executor
	Capacity    compound.Capacity
	ClientID    uint64
	Metrics     *metrics.Metrics

	// Transactional, when true, requires the whole batch to fit in a
	// single compound; if the Compound Builder would shard it, the call
	// fails fast with E2BIG rather than applying only part of the batch.
	Transactional bool
}

// New builds a Dispatcher wired to the given collaborators, installing
// itself as the Handle Cache's miss resolver.
func New(descriptors *handlecache.DescriptorTable, executor *exec.Executor, clientID uint64, m *metrics.Metrics) *Dispatcher {
	d := &Dispatcher{
		Descriptors: descriptors,
		Executor:    executor,
		Capacity:    compound.DefaultCapacity,
		ClientID:    clientID,
		Metrics:     m,
	}
	d.Handles = handlecache.New(d.handleCacheResolver)
	return d
}

// resolveBatch resolves every op's File (and Target, for rename) FileRef in
// order, filling in ResolvedHandle/ResolvedTarget and, where the op needs a
// name rather than a direct object handle, substituting File/Target with a
// concrete PathRef so the builder's name derivation still works even when
// the original ref was RefCurrent.
func (d *Dispatcher) resolveBatch(ctx context.Context, ops []compound.IntendedOp, cwd string) error {
	var prevPrimary, prevTarget *resolved

	for i := range ops {
		op := &ops[i]

		primary, err := d.resolveRef(ctx, op.File, cwd, prevPrimary)
		if err != nil {
			return fmt.Errorf("intended op %d: resolve file: %w", i, err)
		}
		if objectAddressed(op.Kind) && !primary.hasObject && primary.path != "" {
			// GETATTR/SETATTR/READDIR PUTFH the object's own handle, not its
			// parent's: a cache miss on the bare path still needs a real
			// LOOKUP here, unlike a creating write where a missing object is
			// expected and left to the server's OPEN(CREATE)/CREATE to report.
			h, err := d.Handles.Lookup(ctx, primary.path)
			if err != nil {
				return fmt.Errorf("intended op %d: resolve object: %w", i, err)
			}
			primary.objectHandle, primary.hasObject = h, true
		}
		applyResolution(op, &op.File, &op.ResolvedHandle, primary)
		op.Stateid = primary.stateid
		prevPrimary = &primary

		if op.Kind == compound.KindRename {
			target, err := d.resolveRef(ctx, op.Target, cwd, prevTarget)
			if err != nil {
				return fmt.Errorf("intended op %d: resolve target: %w", i, err)
			}
			applyResolution(op, &op.Target, &op.ResolvedTarget, target)
			prevTarget = &target
		}
	}
	return nil
}

// applyResolution picks the handle the builder actually needs for op's
// kind: object handles for GETATTR/SETATTR/READDIR and for read/write
// against an already-open descriptor or raw handle, parent-directory
// handles (plus a rewritten name-bearing ref) for everything addressed by
// name.
func applyResolution(op *compound.IntendedOp, ref *tcfile.FileRef, resolvedHandle *tcfile.FileHandle, r resolved) {
	needsName := ref.Kind == tcfile.RefPath ||
		(ref.Kind == tcfile.RefCurrent && r.path != "" && !objectAddressed(op.Kind))

	switch {
	case objectAddressed(op.Kind) && r.hasObject:
		*resolvedHandle = r.objectHandle
	case objectAddressed(op.Kind):
		// No object handle yet (e.g. a path that doesn't exist): fall back
		// to the parent so GETATTR/SETATTR at least surface NFS4ERR_NOENT
		// from the server rather than a client-side resolution failure.
		*resolvedHandle = r.parentHandle
	case needsName:
		*resolvedHandle = r.parentHandle
		*ref = tcfile.PathRef(joinName(r))
	default:
		if r.hasObject {
			*resolvedHandle = r.objectHandle
		} else {
			*resolvedHandle = r.parentHandle
			*ref = tcfile.PathRef(joinName(r))
		}
	}
}

func joinName(r resolved) string {
	if r.path != "" {
		return r.path
	}
	if r.name == "" {
		return "/"
	}
	return "/" + r.name
}

// objectAddressed reports whether op.Kind's builder expansion PUTFHs the
// object's own handle directly (GETATTR/SETATTR/READDIR) rather than a
// parent directory handle plus a name.
func objectAddressed(k compound.Kind) bool {
	return k == compound.KindGetAttr || k == compound.KindSetAttr || k == compound.KindReaddir
}

// runBatch resolves, builds, and executes ops in order, stopping at the
// first shard that fails to complete cleanly. It returns the decoded
// per-opcode result for every payload op that actually ran, keyed by the
// op's original batch index, along with the batch's overall Result.
// When Transactional is set, a batch that builds into more than one plan
// fails with E2BIG before anything is sent.
func (d *Dispatcher) runBatch(ctx context.Context, ops []compound.IntendedOp, cwd string) (map[int]nfs4.OpResult, Result) {
	payloadResults := make(map[int]nfs4.OpResult)

	if err := d.resolveBatch(ctx, ops, cwd); err != nil {
		return payloadResults, failResult(0, EIO)
	}

	owner := compound.OwnerString(d.ClientID, 0)
	plans, err := compound.Build(ops, owner, d.Capacity)
	if err != nil {
		return payloadResults, failResult(0, EINVAL)
	}
	if d.Transactional && len(plans) > 1 {
		return payloadResults, failResult(0, E2BIG)
	}

	for _, plan := range plans {
		d.Metrics.IncShard()
		res, err := d.Executor.Execute(ctx, plan)
		if err != nil {
			return payloadResults, failResult(firstIndex(plan), EIO)
		}

		for j, decoded := range res.Ops {
			if j >= len(plan.Ops) {
				break
			}
			po := plan.Ops[j]
			if po.Role == compound.RolePayload && po.BackIndex >= 0 {
				payloadResults[po.BackIndex] = decoded
			}
		}

		if res.Status != nfs4.NFS4_OK {
			return payloadResults, failResult(failedOpIndex(plan, res), ErrnoForStatus(res.Status))
		}
	}
	return payloadResults, okResult()
}

func firstIndex(plan compound.CompoundPlan) int {
	if len(plan.OpIndices) == 0 {
		return 0
	}
	return plan.OpIndices[0]
}

// failedOpIndex maps the position of the first non-OK op in a decoded
// result back to the original batch index via the plan's PlanOps.
func failedOpIndex(plan compound.CompoundPlan, res exec.Result) int {
	if len(res.Ops) == 0 || len(plan.Ops) == 0 {
		return firstIndex(plan)
	}
	failedPos := len(res.Ops) - 1
	if failedPos < len(plan.Ops) && plan.Ops[failedPos].BackIndex >= 0 {
		return plan.Ops[failedPos].BackIndex
	}
	return firstIndex(plan)
}
