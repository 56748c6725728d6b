package dispatch

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	xdr2 "github.com/rasky/go-xdr/xdr2"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tcnfs/internal/client/exec"
	"github.com/marmos91/tcnfs/internal/client/handlecache"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/internal/rpc"
	"github.com/marmos91/tcnfs/internal/xdr"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// scriptedOp describes one (opcode, status, result-bytes) triple a
// scriptedTransport writes into a canned reply. Payload may be nil for
// opcodes with no result beyond their status (PUTFH, PUTROOTFH, LOOKUP,
// CLOSE, COMMIT, RENAME, REMOVE, CREATE, SETATTR in this module's subset).
type scriptedOp struct {
	code    uint32
	status  uint32
	payload func(*bytes.Buffer)
}

// scriptedTransport answers each Call with the next canned reply in
// sequence, ignoring the request bytes entirely. This mirrors the fixed
// call order the dispatcher actually produces (one Execute per Handle
// Cache miss, then one per compound shard) without needing a request
// decoder.
type scriptedTransport struct {
	replies [][]scriptedOp
	next    atomic.Int32
}

func (t *scriptedTransport) Close() error { return nil }

func (t *scriptedTransport) Call(ctx context.Context, xid uint32, message []byte) ([]byte, error) {
	i := int(t.next.Add(1)) - 1
	if i >= len(t.replies) {
		panic("scriptedTransport: more calls than scripted replies")
	}
	overall := uint32(nfs4.NFS4_OK)
	for _, op := range t.replies[i] {
		if op.status != nfs4.NFS4_OK {
			overall = op.status
		}
	}
	return encodeReply(xid, overall, t.replies[i]), nil
}

func encodeReply(xid uint32, overallStatus uint32, ops []scriptedOp) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, xid)
	_ = xdr.WriteUint32(buf, rpc.RPCReply)
	_ = xdr.WriteUint32(buf, rpc.RPCMsgAccepted)
	_ = xdr.WriteUint32(buf, rpc.AuthNull)
	_ = xdr.WriteXDROpaque(buf, nil)
	_ = xdr.WriteUint32(buf, rpc.RPCSuccess)

	_ = xdr.WriteUint32(buf, overallStatus)
	_ = xdr.WriteXDRString(buf, "")
	_ = xdr.WriteUint32(buf, uint32(len(ops)))
	for _, op := range ops {
		_ = xdr.WriteUint32(buf, op.code)
		_ = xdr.WriteUint32(buf, op.status)
		if op.status != nfs4.NFS4_OK {
			break
		}
		if op.payload != nil {
			op.payload(buf)
		}
	}
	return buf.Bytes()
}

func none(code uint32, status uint32) scriptedOp { return scriptedOp{code: code, status: status} }

func getfh(handle []byte) scriptedOp {
	return scriptedOp{code: nfs4.OP_GETFH, status: nfs4.NFS4_OK, payload: func(b *bytes.Buffer) {
		_ = xdr.WriteXDROpaque(b, handle)
	}}
}

func openOK() scriptedOp {
	return scriptedOp{code: nfs4.OP_OPEN, status: nfs4.NFS4_OK, payload: func(b *bytes.Buffer) {
		_, _ = xdr2.Marshal(b, nfs4.Stateid{})
		_ = xdr.WriteUint32(b, 0)
	}}
}

func readOK(data []byte, eof bool) scriptedOp {
	return scriptedOp{code: nfs4.OP_READ, status: nfs4.NFS4_OK, payload: func(b *bytes.Buffer) {
		_ = xdr.WriteBool(b, eof)
		_ = xdr.WriteXDROpaque(b, data)
	}}
}

func writeOK(n uint32) scriptedOp {
	return scriptedOp{code: nfs4.OP_WRITE, status: nfs4.NFS4_OK, payload: func(b *bytes.Buffer) {
		_ = xdr.WriteUint32(b, n)
		_ = xdr.WriteUint32(b, nfs4.UNSTABLE4)
	}}
}

func getattrOK(size uint64) scriptedOp {
	return scriptedOp{code: nfs4.OP_GETATTR, status: nfs4.NFS4_OK, payload: func(b *bytes.Buffer) {
		_, _ = xdr2.Marshal(b, nfs4.Fattr{Present: 1 << nfs4.FATTR4_SIZE, Size: size})
	}}
}

func newDispatcherForTest(replies [][]scriptedOp) *Dispatcher {
	transport := &scriptedTransport{replies: replies}
	executor := exec.New(transport, nil, rpc.UnixAuth{MachineName: "test"}, nil)
	d := New(handlecache.NewDescriptorTable(), executor, 1, nil)
	return d
}

func TestDispatcherWritevCreatesFileInExistingDirectory(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0d})}, // lookup "/t"
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), openOK(), getfh([]byte{0x0f}), writeOK(5), none(nfs4.OP_CLOSE, nfs4.NFS4_OK), none(nfs4.OP_COMMIT, nfs4.NFS4_OK)},
	})

	vecs := []tcfile.IoVec{{File: tcfile.PathRef("/t/new.txt"), Offset: 0, Buffer: []byte("hello"), IsCreation: true}}
	res := d.Writev(context.Background(), vecs, "/")
	require.True(t, res.OK)
}

func TestDispatcherReadvReturnsDataIntoBuffer(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0d})},
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), openOK(), getfh([]byte{0x0f}), readOK([]byte("hi"), false), none(nfs4.OP_CLOSE, nfs4.NFS4_OK)},
	})

	vecs := []tcfile.IoVec{{File: tcfile.PathRef("/t/a.txt"), Offset: 0, Length: 2}}
	res := d.Readv(context.Background(), vecs, "/")
	require.True(t, res.OK)
	require.Equal(t, []byte("hi"), vecs[0].Buffer)
}

func TestDispatcherGetattrsvFillsAttrs(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0d})}, // lookup "/t" (parent)
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0f})}, // lookup "/t/a.txt" (object)
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), getattrOK(1024)},
	})

	specs := []tcfile.AttrSpec{{File: tcfile.PathRef("/t/a.txt"), Attrs: tcfile.Attrs{Mask: tcfile.AttrSize}}}
	res := d.Getattrsv(context.Background(), specs, "/")
	require.True(t, res.OK)
	require.Equal(t, uint64(1024), specs[0].Attrs.Size)
}

func TestDispatcherStopsAtFirstFailureAndReportsIndex(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0d})},
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), none(nfs4.OP_REMOVE, nfs4.NFS4ERR_NOENT)},
	})

	refs := []tcfile.FileRef{tcfile.PathRef("/t/missing.txt")}
	res := d.Removev(context.Background(), refs, "/")
	require.False(t, res.OK)
	require.Equal(t, 0, res.FailedIndex)
	require.Equal(t, ENOENT, res.Errno)
}

// TestDispatcherShardsTwentyFiveOpsAndStopsAtInducedFailure exercises the
// concrete 25-op/MAX_OPS_PER_COMPOUND=10 scenario: the batch shards into
// three compounds, and a failure injected at op 15 leaves ops 0..14 with
// real data delivered and ops 15..24 untouched.
func TestDispatcherShardsTwentyFiveOpsAndStopsAtInducedFailure(t *testing.T) {
	firstShard := make([]scriptedOp, 0, 20)
	for i := 0; i < 10; i++ {
		firstShard = append(firstShard, none(nfs4.OP_PUTFH, nfs4.NFS4_OK), readOK([]byte{byte(i)}, false))
	}

	secondShard := make([]scriptedOp, 0, 12)
	for i := 10; i < 15; i++ {
		secondShard = append(secondShard, none(nfs4.OP_PUTFH, nfs4.NFS4_OK), readOK([]byte{byte(i)}, false))
	}
	secondShard = append(secondShard, none(nfs4.OP_PUTFH, nfs4.NFS4_OK), none(nfs4.OP_READ, nfs4.NFS4ERR_IO))

	d := newDispatcherForTest([][]scriptedOp{firstShard, secondShard})

	vecs := make([]tcfile.IoVec, 25)
	for i := range vecs {
		vecs[i] = tcfile.IoVec{File: tcfile.HandleRef(tcfile.FileHandle{byte(i + 1)}), Offset: int64(i) * 4096, Length: 1}
	}

	res := d.Readv(context.Background(), vecs, "/")
	require.False(t, res.OK)
	require.Equal(t, 15, res.FailedIndex)
	require.Equal(t, EIO, res.Errno)

	for i := 0; i < 15; i++ {
		require.Equal(t, []byte{byte(i)}, vecs[i].Buffer, "op %d should have a real result", i)
	}
	for i := 15; i < 25; i++ {
		require.Nil(t, vecs[i].Buffer, "op %d should be NOT_EXECUTED", i)
	}
}

func TestDispatcherTransactionalRejectsOversizedBatch(t *testing.T) {
	d := newDispatcherForTest(nil)
	d.Transactional = true
	d.Capacity.ReadWrite = 1

	ops := make([]tcfile.IoVec, 3)
	for i := range ops {
		ops[i] = tcfile.IoVec{File: tcfile.HandleRef(tcfile.FileHandle{byte(i)}), Offset: 0, Length: 8}
	}
	res := d.Readv(context.Background(), ops, "/")
	require.False(t, res.OK)
	require.Equal(t, E2BIG, res.Errno)
}
