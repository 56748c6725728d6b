package exec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	xdr2 "github.com/rasky/go-xdr/xdr2"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/internal/rpc"
	"github.com/marmos91/tcnfs/internal/xdr"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// fakeTransport ignores the outgoing call and answers with a canned
// COMPOUND4res wrapped in an RPC accepted-reply envelope, so Executor's
// retry and decode logic can be exercised without a real server.
type fakeTransport struct {
	overallStatus uint32
	opStatuses    []uint32
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) Call(ctx context.Context, xid uint32, message []byte) ([]byte, error) {
	return buildReply(xid, f.overallStatus, f.opStatuses), nil
}

// buildReply hand-encodes a full RPC REPLY message: fragment-free payload
// (the caller's TCPTransport would add framing; Executor.Execute works
// directly on unframed payloads handed back by Transport.Call) wrapping an
// accepted reply around a COMPOUND4res with one entry per opStatus.
func buildReply(xid uint32, overallStatus uint32, opStatuses []uint32) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, xid)
	_ = xdr.WriteUint32(buf, rpc.RPCReply)
	_ = xdr.WriteUint32(buf, rpc.RPCMsgAccepted)
	_ = xdr.WriteUint32(buf, rpc.AuthNull)
	_ = xdr.WriteXDROpaque(buf, nil)
	_ = xdr.WriteUint32(buf, rpc.RPCSuccess)

	_ = xdr.WriteUint32(buf, overallStatus)
	_ = xdr.WriteXDRString(buf, "")
	_ = xdr.WriteUint32(buf, uint32(len(opStatuses)))
	codes := []uint32{nfs4.OP_SEQUENCE, nfs4.OP_PUTFH, nfs4.OP_OPEN, nfs4.OP_GETFH, nfs4.OP_READ, nfs4.OP_CLOSE}
	for i, st := range opStatuses {
		code := uint32(nfs4.OP_ILLEGAL)
		if i < len(codes) {
			code = codes[i]
		}
		_ = xdr.WriteUint32(buf, code)
		_ = xdr.WriteUint32(buf, st)
		if st != nfs4.NFS4_OK {
			break
		}
		switch code {
		case nfs4.OP_SEQUENCE:
			_ = xdr.WriteXDROpaque(buf, make([]byte, 16))
			_ = xdr.WriteUint32(buf, 0)
			_ = xdr.WriteUint32(buf, 0)
			_ = xdr.WriteUint32(buf, 0)
			_ = xdr.WriteUint32(buf, 0)
			_ = xdr.WriteUint32(buf, 0)
		case nfs4.OP_OPEN:
			_, _ = xdr2.Marshal(buf, nfs4.Stateid{})
			_ = xdr.WriteUint32(buf, 0) // rflags
		case nfs4.OP_GETFH:
			_ = xdr.WriteXDROpaque(buf, []byte{0x01})
		case nfs4.OP_READ:
			_ = xdr.WriteBool(buf, true)
			_ = xdr.WriteXDROpaque(buf, []byte("hi"))
		}
	}
	return buf.Bytes()
}

func allOK(n int) []uint32 {
	st := make([]uint32, n)
	for i := range st {
		st[i] = nfs4.NFS4_OK
	}
	return st
}

func TestExecutorExecuteSuccess(t *testing.T) {
	transport := &fakeTransport{overallStatus: nfs4.NFS4_OK, opStatuses: allOK(6)}
	session := NewSession(4)
	e := New(transport, session, rpc.UnixAuth{MachineName: "test"}, nil)

	ops := []compound.IntendedOp{{
		Kind:           compound.KindRead,
		File:           tcfile.PathRef("/t/a"),
		ResolvedHandle: tcfile.FileHandle{0x01},
		Offset:         0,
		Length:         10,
	}}
	plans, err := compound.Build(ops, compound.OwnerString(1, 1), compound.DefaultCapacity)
	require.NoError(t, err)

	res, err := e.Execute(context.Background(), plans[0])
	require.NoError(t, err)
	require.Equal(t, uint32(nfs4.NFS4_OK), res.Status)
}

func TestExecutorRetriesOnDelay(t *testing.T) {
	transport := &fakeTransport{overallStatus: nfs4.NFS4ERR_DELAY, opStatuses: []uint32{nfs4.NFS4ERR_DELAY}}
	session := NewSession(2)
	e := New(transport, session, rpc.UnixAuth{}, nil)
	e.Retry = RetryPolicy{MaxRetries: 1, InitialBackoff: 0, MaxBackoff: 0, BackoffMultiplier: 1}

	ops := []compound.IntendedOp{{
		Kind: compound.KindGetAttr, File: tcfile.PathRef("/t/a"),
		ResolvedHandle: tcfile.FileHandle{0x01}, AttrMask: tcfile.AttrMode,
	}}
	plans, err := compound.Build(ops, "owner", compound.DefaultCapacity)
	require.NoError(t, err)

	_, err = e.Execute(context.Background(), plans[0])
	require.Error(t, err)
}

func TestRetryPolicyBackoffGrowsAndCaps(t *testing.T) {
	p := DefaultRetryPolicy
	b0 := p.Backoff(0)
	b1 := p.Backoff(1)
	require.Greater(t, b1, b0)

	bMax := p.Backoff(20)
	require.LessOrEqual(t, bMax, p.MaxBackoff)
}
