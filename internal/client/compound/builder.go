package compound

import (
	"fmt"

	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Capacity bounds how many payload ops a single compound may carry.
// READ/WRITE get a tighter cap than other op kinds per §4.3: their
// payloads (file data) dominate compound size, so the default keeps
// compounds well under the transport's fragment limit even at max
// read/write length.
type Capacity struct {
	ReadWrite int
	Other     int
}

// DefaultCapacity matches the spec's concrete defaults: 10 ops for
// READ/WRITE-bearing compounds, 64 for everything else.
var DefaultCapacity = Capacity{ReadWrite: 10, Other: 64}

func (c Capacity) limitFor(k Kind) int {
	if k == KindRead || k == KindWrite {
		return c.ReadWrite
	}
	return c.Other
}

// OwnerString builds OPEN's deterministic owner string "<clientID>.<pid>"
// so OPEN/CLOSE pairs use the same owner. The dispatcher passes its
// per-Context client ID and a pid of 0, so every goroutine using one
// Context shares a single owner and the process id does not appear in it.
func OwnerString(clientID uint64, pid uint32) string {
	return fmt.Sprintf("%d.%d", clientID, pid)
}

// Build expands ops into one or more capacity-bounded CompoundPlans.
// Every op must already carry a ResolvedHandle (and ResolvedTarget for
// rename): file-reference resolution is the caller's responsibility (see
// internal/client/dispatch), since it may itself require LOOKUP opcodes
// that count against the very capacity this function enforces.
func Build(ops []IntendedOp, owner string, cap Capacity) ([]CompoundPlan, error) {
	for i, op := range ops {
		if err := op.Validate(i); err != nil {
			return nil, err
		}
	}

	var plans []CompoundPlan
	cur := newShard()
	limit := 0

	flush := func() {
		if len(cur.Ops) > 0 {
			plans = append(plans, *cur)
		}
		cur = newShard()
	}

	i := 0
	for i < len(ops) {
		group, next := sameHandleGroup(ops, i)
		groupPayload := payloadOpsIn(group)

		groupLimit := cap.limitFor(group[0].Kind)
		if groupPayload > groupLimit {
			return nil, fmt.Errorf("intended op %d: single file's %d payload ops exceed capacity %d",
				i, groupPayload, groupLimit)
		}

		if cur.PayloadCount()+groupPayload > minPositive(limit, groupLimit) {
			flush()
			limit = 0
		}
		// limit is the tightest kind-specific limit among the groups in the
		// current shard, so mixed-kind shards use the tighter of the two
		// when both appear; it starts over with each new shard.
		limit = minPositive(limit, groupLimit)

		if err := emitGroup(cur, group, i, owner); err != nil {
			return nil, err
		}

		i = next
	}
	flush()

	return plans, nil
}

func minPositive(a, b int) int {
	if a == 0 {
		return b
	}
	if b < a {
		return b
	}
	return a
}

func newShard() *CompoundPlan { return &CompoundPlan{} }

// sameHandleGroup returns the maximal run of consecutive ops starting at i
// that share a ResolvedHandle and a read/write Kind (and, for path refs, the
// same path, since a path ref's ResolvedHandle is its parent directory's),
// along with the index just past the run. Ops of any other Kind always form a group of one,
// since RENAME/SETATTR/etc. don't benefit from PUTFH sharing the way
// sequential I/O on one descriptor does.
func sameHandleGroup(ops []IntendedOp, i int) ([]IntendedOp, int) {
	if ops[i].Kind != KindRead && ops[i].Kind != KindWrite {
		return ops[i : i+1], i + 1
	}
	j := i + 1
	for j < len(ops) &&
		(ops[j].Kind == KindRead || ops[j].Kind == KindWrite) &&
		ops[j].ResolvedHandle.Equal(ops[i].ResolvedHandle) &&
		(ops[j].File.Kind != tcfile.RefPath || ops[j].File.Path == ops[i].File.Path) {
		j++
	}
	return ops[i:j], j
}

func payloadOpsIn(group []IntendedOp) int { return len(group) }

// emitGroup appends the opcode sequence for one sharing group to plan,
// recording each op's original batch index in plan.OpIndices.
func emitGroup(plan *CompoundPlan, group []IntendedOp, baseIndex int, owner string) error {
	switch group[0].Kind {
	case KindRead, KindWrite:
		return emitIOGroup(plan, group, baseIndex, owner)
	case KindGetAttr:
		return emitGetAttr(plan, group[0], baseIndex)
	case KindSetAttr:
		return emitSetAttr(plan, group[0], baseIndex)
	case KindRename:
		return emitRename(plan, group[0], baseIndex)
	case KindRemove:
		return emitRemove(plan, group[0], baseIndex)
	case KindMkdir:
		return emitMkdir(plan, group[0], baseIndex)
	case KindReaddir:
		return emitReaddir(plan, group[0], baseIndex)
	default:
		return fmt.Errorf("intended op %d: unsupported kind %s", baseIndex, group[0].Kind)
	}
}

// emitIOGroup shares one PUTFH across every READ/WRITE targeting the same
// handle and defers CLOSE until the group's last op, per the sharing rule
// in §4.3. When any member op is_creation, an OPEN(CREATE) is issued for
// the first op in the group only.
func emitIOGroup(plan *CompoundPlan, group []IntendedOp, baseIndex int, owner string) error {
	first := group[0]
	needsOpen := first.File.Kind == tcfile.RefPath

	plan.Ops = append(plan.Ops, PlanOp{
		Op:        nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: first.ResolvedHandle}},
		Role:      RoleSetup,
		BackIndex: -1,
	})

	if needsOpen {
		shareAccess := first.ShareMode
		if shareAccess == 0 {
			if first.Kind == KindWrite {
				shareAccess = nfs4.OPEN4_SHARE_ACCESS_WRITE
			} else {
				shareAccess = nfs4.OPEN4_SHARE_ACCESS_READ
			}
		}
		createMode := uint32(nfs4.OPEN4_NOCREATE)
		for _, op := range group {
			if op.IsCreation {
				createMode = nfs4.OPEN4_CREATE
				break
			}
		}
		plan.Ops = append(plan.Ops, PlanOp{
			Op: nfs4.Op{Code: nfs4.OP_OPEN, Arg: nfs4.OpenArgs{
				ShareAccess: shareAccess,
				ShareDeny:   nfs4.OPEN4_SHARE_DENY_NONE,
				Owner:       nfs4.OpenOwner{Owner: owner},
				CreateMode:  createMode,
				CreateAttrs: AttrsToFattr(first.Attrs, nfs4.NF4REG),
				Name:        baseNameOf(first.File),
			}},
			Role: RoleSetup, BackIndex: -1,
		})
		plan.Ops = append(plan.Ops, PlanOp{
			Op: nfs4.Op{Code: nfs4.OP_GETFH}, Role: RoleSetup, BackIndex: -1,
		})
	}

	unstable := false
	for idx, op := range group {
		backIndex := baseIndex + idx
		stateid := stateidFor(op.File.Kind == tcfile.RefDescriptor, op.Stateid)
		if op.Kind == KindRead {
			plan.Ops = append(plan.Ops, PlanOp{
				Op: nfs4.Op{Code: nfs4.OP_READ, Arg: nfs4.ReadArgs{
					Stateid: stateid, Offset: uint64(op.Offset), Count: op.Length,
				}},
				Role: RolePayload, BackIndex: backIndex,
			})
		} else {
			stable := uint32(nfs4.UNSTABLE4)
			if op.IsWriteStable {
				stable = nfs4.DATA_SYNC4
			} else {
				unstable = true
			}
			plan.Ops = append(plan.Ops, PlanOp{
				Op: nfs4.Op{Code: nfs4.OP_WRITE, Arg: nfs4.WriteArgs{
					Stateid: stateid, Offset: uint64(op.Offset), Stable: stable, Data: op.Buffer,
				}},
				Role: RolePayload, BackIndex: backIndex,
			})
		}
		plan.OpIndices = append(plan.OpIndices, backIndex)
	}

	if needsOpen {
		plan.Ops = append(plan.Ops, PlanOp{
			Op: nfs4.Op{Code: nfs4.OP_CLOSE, Arg: nfs4.CloseArgs{}}, Role: RoleTeardown, BackIndex: -1,
		})
	}
	if unstable {
		plan.Ops = append(plan.Ops, PlanOp{
			Op: nfs4.Op{Code: nfs4.OP_COMMIT, Arg: nfs4.CommitArgs{}}, Role: RoleTeardown, BackIndex: -1,
		})
		plan.UnstableWritePending = true
	}
	return nil
}

func emitGetAttr(plan *CompoundPlan, op IntendedOp, index int) error {
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_GETATTR, Arg: nfs4.GetAttrArgs{AttrMask: attrMaskToBitmap(op.AttrMask)}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

func emitSetAttr(plan *CompoundPlan, op IntendedOp, index int) error {
	stateid := stateidFor(op.File.Kind == tcfile.RefDescriptor, op.Stateid)
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_SETATTR, Arg: nfs4.SetAttrArgs{Stateid: stateid, Attrs: AttrsToFattr(op.Attrs, 0)}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

// emitRename implements PUTFH(olddir) SAVEFH PUTFH(newdir) RENAME exactly
// as tabulated in §4.3: ResolvedHandle is the source directory handle,
// ResolvedTarget the destination directory handle.
func emitRename(plan *CompoundPlan, op IntendedOp, index int) error {
	oldName, newName := baseNameOf(op.File), baseNameOf(op.Target)
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_SAVEFH}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedTarget}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_RENAME, Arg: nfs4.RenameArgs{OldName: oldName, NewName: newName}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

func emitRemove(plan *CompoundPlan, op IntendedOp, index int) error {
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_REMOVE, Arg: nfs4.RemoveArgs{Name: baseNameOf(op.File)}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

func emitMkdir(plan *CompoundPlan, op IntendedOp, index int) error {
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_CREATE, Arg: nfs4.CreateArgs{
			Type: nfs4.NF4DIR, Name: baseNameOf(op.File), Attrs: AttrsToFattr(op.Attrs, nfs4.NF4DIR),
		}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

func emitReaddir(plan *CompoundPlan, op IntendedOp, index int) error {
	plan.Ops = append(plan.Ops,
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_PUTFH, Arg: nfs4.PutFHArgs{Handle: op.ResolvedHandle}}, Role: RoleSetup, BackIndex: -1},
		PlanOp{Op: nfs4.Op{Code: nfs4.OP_READDIR, Arg: nfs4.ReaddirArgs{
			Cookie: op.ReaddirCookie, CookieVerf: op.ReaddirCookieVerf,
			DirCount: op.ReaddirMaxCount * 64, MaxCount: op.ReaddirMaxCount * 256,
			AttrMask: attrMaskToBitmap(op.AttrMask),
		}}, Role: RolePayload, BackIndex: index},
	)
	plan.OpIndices = append(plan.OpIndices, index)
	return nil
}

// baseNameOf returns the final path component of a FileRef's path, which is
// all CREATE/REMOVE/RENAME/OPEN need once the parent directory has already
// been resolved to ResolvedHandle.
func baseNameOf(ref tcfile.FileRef) string {
	p := ref.Path
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

func attrMaskToBitmap(mask tcfile.AttrMask) uint64 {
	var bits uint64
	if mask.Has(tcfile.AttrMode) {
		bits |= 1 << nfs4.FATTR4_MODE
	}
	if mask.Has(tcfile.AttrSize) {
		bits |= 1 << nfs4.FATTR4_SIZE
	}
	if mask.Has(tcfile.AttrUID) {
		bits |= 1 << nfs4.FATTR4_OWNER
	}
	if mask.Has(tcfile.AttrGID) {
		bits |= 1 << nfs4.FATTR4_OWNER_GROUP
	}
	if mask.Has(tcfile.AttrRdev) {
		bits |= 1 << nfs4.FATTR4_RAWDEV
	}
	if mask.Has(tcfile.AttrNlink) {
		bits |= 1 << nfs4.FATTR4_NUMLINKS
	}
	if mask.Has(tcfile.AttrAtime) {
		bits |= 1 << nfs4.FATTR4_TIME_ACCESS
	}
	if mask.Has(tcfile.AttrMtime) {
		bits |= 1 << nfs4.FATTR4_TIME_MODIFY
	}
	if mask.Has(tcfile.AttrCtime) {
		bits |= 1 << nfs4.FATTR4_TIME_METADATA
	}
	return bits
}

// AttrsToFattr converts tcfile.Attrs into the wire Fattr shape, tagging
// fileType for opcodes (OPEN's CreateAttrs, CREATE) that need a type even
// when the caller's mask didn't ask for one.
func AttrsToFattr(a tcfile.Attrs, fileType uint32) nfs4.Fattr {
	f := nfs4.Fattr{Present: attrMaskToBitmap(a.Mask), Type: fileType}
	if a.Mask.Has(tcfile.AttrMode) {
		f.Mode = a.Mode
	}
	if a.Mask.Has(tcfile.AttrSize) {
		f.Size = a.Size
	}
	if a.Mask.Has(tcfile.AttrUID) {
		f.Owner = a.UID
	}
	if a.Mask.Has(tcfile.AttrGID) {
		f.Group = a.GID
	}
	if a.Mask.Has(tcfile.AttrRdev) {
		f.Rawdev = a.Rdev
	}
	if a.Mask.Has(tcfile.AttrNlink) {
		f.Nlink = a.Nlink
	}
	if a.Mask.Has(tcfile.AttrAtime) {
		f.Atime = nfs4.NfsTime{Seconds: a.Atime.Sec, Nseconds: a.Atime.Nsec}
	}
	if a.Mask.Has(tcfile.AttrMtime) {
		f.Mtime = nfs4.NfsTime{Seconds: a.Mtime.Sec, Nseconds: a.Mtime.Nsec}
	}
	return f
}

// Encode serializes plan into a full COMPOUND4args, delegating the actual
// opcode/argument marshaling to internal/nfs4.
func Encode(tag string, plan CompoundPlan) ([]byte, error) {
	ops := make([]nfs4.Op, len(plan.Ops))
	for i, po := range plan.Ops {
		ops[i] = po.Op
	}
	return nfs4.EncodeCompound(tag, 1, ops)
}
