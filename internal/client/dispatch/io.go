package dispatch

import (
	"context"
	"fmt"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/client/handlecache"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Readv issues one READ per vecs entry, sharing PUTFH/OPEN/CLOSE across runs
// of entries that target the same file (the Compound Builder's job), and
// copies each successful READ's data into the corresponding vecs[i].Buffer.
func (d *Dispatcher) Readv(ctx context.Context, vecs []tcfile.IoVec, cwd string) Result {
	ops := make([]compound.IntendedOp, len(vecs))
	for i, v := range vecs {
		offset := v.Offset
		if offset == tcfile.OffsetCurrent {
			if state, ok := descriptorFor(d, v.File); ok {
				offset = state.Offset()
			} else {
				offset = 0
			}
		}
		ops[i] = compound.IntendedOp{
			Kind:   compound.KindRead,
			File:   v.File,
			Offset: offset,
			Length: v.Length,
		}
	}

	payloads, result := d.runBatch(ctx, ops, cwd)
	for i := range vecs {
		rr, ok := payloads[i].Result.(nfs4.ReadResult)
		if !ok {
			continue
		}
		vecs[i].Buffer = rr.Data
		if state, open := descriptorFor(d, vecs[i].File); open {
			state.Advance(int64(len(rr.Data)))
		}
	}
	return result
}

// Writev issues one WRITE per vecs entry. An entry with IsCreation set
// expands to OPEN(CREATE)+WRITE+CLOSE for that file; consecutive entries on
// the same file share the OPEN/CLOSE pair. OffsetCurrent/OffsetAppend
// sentinels are resolved to concrete byte offsets before the batch is
// built, since NFSv4's WRITE4args carries only a plain offset.
func (d *Dispatcher) Writev(ctx context.Context, vecs []tcfile.IoVec, cwd string) Result {
	ops := make([]compound.IntendedOp, len(vecs))
	for i, v := range vecs {
		offset, err := d.resolveWriteOffset(ctx, v, cwd)
		if err != nil {
			return failResult(i, EIO)
		}
		ops[i] = compound.IntendedOp{
			Kind:          compound.KindWrite,
			File:          v.File,
			Offset:        offset,
			Buffer:        v.Buffer,
			IsCreation:    v.IsCreation,
			IsWriteStable: v.IsWriteStable,
		}
	}

	payloads, result := d.runBatch(ctx, ops, cwd)
	for i := range vecs {
		if wr, ok := payloads[i].Result.(nfs4.WriteResult); ok {
			if state, open := descriptorFor(d, vecs[i].File); open {
				state.Advance(int64(wr.Count))
			}
		}
	}
	return result
}

// resolveWriteOffset turns OffsetCurrent/OffsetAppend into a concrete byte
// offset. OffsetCurrent reads the descriptor's tracked position directly.
// OffsetAppend requires knowing the file's current size, which a
// descriptor doesn't track locally, so it costs one GETATTR round trip.
func (d *Dispatcher) resolveWriteOffset(ctx context.Context, v tcfile.IoVec, cwd string) (int64, error) {
	switch v.Offset {
	case tcfile.OffsetCurrent:
		if state, ok := descriptorFor(d, v.File); ok {
			return state.Offset(), nil
		}
		return 0, nil

	case tcfile.OffsetAppend:
		attrs, err := d.statForAppend(ctx, v.File, cwd)
		if err != nil {
			return 0, err
		}
		return int64(attrs.Size), nil

	default:
		return v.Offset, nil
	}
}

// statForAppend runs a single GETATTR(SIZE) compound to learn the current
// end-of-file position for an append write.
func (d *Dispatcher) statForAppend(ctx context.Context, ref tcfile.FileRef, cwd string) (tcfile.Attrs, error) {
	ops := []compound.IntendedOp{{Kind: compound.KindGetAttr, File: ref, AttrMask: tcfile.AttrSize}}
	payloads, result := d.runBatch(ctx, ops, cwd)
	if !result.OK {
		return tcfile.Attrs{}, fmt.Errorf("stat for append: errno %d", result.Errno)
	}
	ga, ok := payloads[0].Result.(nfs4.GetAttrResult)
	if !ok {
		return tcfile.Attrs{}, fmt.Errorf("stat for append: unexpected result type %T", payloads[0].Result)
	}
	return tcfile.Attrs{Mask: tcfile.AttrSize, Size: ga.Attrs.Size}, nil
}

// descriptorFor returns the OpenState backing ref, if ref names an already
// open descriptor.
func descriptorFor(d *Dispatcher, ref tcfile.FileRef) (*handlecache.OpenState, bool) {
	if ref.Kind != tcfile.RefDescriptor {
		return nil, false
	}
	return d.Descriptors.Get(ref.Descriptor)
}
