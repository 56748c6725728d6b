package compound

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

func readOp(handle byte, offset int64) IntendedOp {
	return IntendedOp{
		Kind:           KindRead,
		File:           tcfile.PathRef("/t/a"),
		ResolvedHandle: tcfile.FileHandle{handle},
		Offset:         offset,
		Length:         4096,
	}
}

func TestBuildSharesPUTFHAcrossSameHandleReads(t *testing.T) {
	ops := []IntendedOp{readOp(1, 0), readOp(1, 4096), readOp(1, 8192)}

	plans, err := Build(ops, OwnerString(1, 100), DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	putfhCount := 0
	readCount := 0
	for _, op := range plans[0].Ops {
		switch op.Op.Code {
		case nfs4.OP_PUTFH:
			putfhCount++
		case nfs4.OP_READ:
			readCount++
		}
	}
	require.Equal(t, 1, putfhCount)
	require.Equal(t, 3, readCount)
}

func TestBuildShardsAtCapacity(t *testing.T) {
	cap := Capacity{ReadWrite: 2, Other: 64}
	ops := []IntendedOp{
		readOp(1, 0), readOp(2, 4096), readOp(3, 8192),
	}

	plans, err := Build(ops, OwnerString(1, 100), cap)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(plans), 2)

	for _, p := range plans {
		require.LessOrEqual(t, p.PayloadCount(), cap.ReadWrite)
	}
}

func TestBuildShardsTwentyFiveOpsIntoThreeCompounds(t *testing.T) {
	cap := Capacity{ReadWrite: 10, Other: 64}
	ops := make([]IntendedOp, 25)
	for i := range ops {
		ops[i] = readOp(byte(i+1), int64(i)*4096)
	}

	plans, err := Build(ops, OwnerString(1, 100), cap)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	require.Equal(t, opIndexRange(0, 10), plans[0].OpIndices)
	require.Equal(t, opIndexRange(10, 20), plans[1].OpIndices)
	require.Equal(t, opIndexRange(20, 25), plans[2].OpIndices)

	for _, p := range plans {
		require.LessOrEqual(t, p.PayloadCount(), cap.ReadWrite)
	}
}

func opIndexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestBuildRejectsCurrentAtPositionZero(t *testing.T) {
	ops := []IntendedOp{{Kind: KindRead, File: tcfile.CurrentRef()}}
	_, err := Build(ops, "owner", DefaultCapacity)
	require.Error(t, err)
}

func TestBuildRenameEmitsSaveFHRestoreSequence(t *testing.T) {
	ops := []IntendedOp{{
		Kind:           KindRename,
		File:           tcfile.PathRef("/t/old.txt"),
		Target:         tcfile.PathRef("/t/new.txt"),
		ResolvedHandle: tcfile.FileHandle{0xaa},
		ResolvedTarget: tcfile.FileHandle{0xbb},
	}}

	plans, err := Build(ops, "owner", DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	codes := make([]uint32, len(plans[0].Ops))
	for i, op := range plans[0].Ops {
		codes[i] = op.Op.Code
	}
	require.Equal(t, []uint32{nfs4.OP_PUTFH, nfs4.OP_SAVEFH, nfs4.OP_PUTFH, nfs4.OP_RENAME}, codes)
}

func TestBuildWriteGroupAppendsCommitOnUnstable(t *testing.T) {
	ops := []IntendedOp{{
		Kind:           KindWrite,
		File:           tcfile.PathRef("/t/a"),
		ResolvedHandle: tcfile.FileHandle{0x01},
		Offset:         0,
		Buffer:         []byte("hello"),
		IsWriteStable:  false,
	}}

	plans, err := Build(ops, "owner", DefaultCapacity)
	require.NoError(t, err)
	require.True(t, plans[0].UnstableWritePending)

	last := plans[0].Ops[len(plans[0].Ops)-1]
	require.Equal(t, uint32(nfs4.OP_COMMIT), last.Op.Code)
}

func TestBuildEncodeProducesWireBytes(t *testing.T) {
	ops := []IntendedOp{readOp(1, 0)}
	plans, err := Build(ops, "owner", DefaultCapacity)
	require.NoError(t, err)

	wire, err := Encode("tag", plans[0])
	require.NoError(t, err)
	require.NotEmpty(t, wire)
}
