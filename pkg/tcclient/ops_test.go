package tcclient

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	xdr2 "github.com/rasky/go-xdr/xdr2"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/client/copy"
	"github.com/marmos91/tcnfs/internal/client/dispatch"
	"github.com/marmos91/tcnfs/internal/client/exec"
	"github.com/marmos91/tcnfs/internal/client/handlecache"
	"github.com/marmos91/tcnfs/internal/client/listdir"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/internal/rpc"
	"github.com/marmos91/tcnfs/internal/xdr"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

type scriptedTransport struct {
	replies [][]byte
	next    atomic.Int32
}

func (t *scriptedTransport) Close() error { return nil }

func (t *scriptedTransport) Call(ctx context.Context, xid uint32, message []byte) ([]byte, error) {
	i := int(t.next.Add(1)) - 1
	return t.replies[i], nil
}

func encodeAcceptedReply(payload []byte) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, 0)
	_ = xdr.WriteUint32(buf, rpc.RPCReply)
	_ = xdr.WriteUint32(buf, rpc.RPCMsgAccepted)
	_ = xdr.WriteUint32(buf, rpc.AuthNull)
	_ = xdr.WriteXDROpaque(buf, nil)
	_ = xdr.WriteUint32(buf, rpc.RPCSuccess)
	buf.Write(payload)
	return buf.Bytes()
}

func lookupReply(handle []byte) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteXDRString(buf, "")
	_ = xdr.WriteUint32(buf, 3)
	_ = xdr.WriteUint32(buf, nfs4.OP_PUTROOTFH)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteUint32(buf, nfs4.OP_LOOKUP)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteUint32(buf, nfs4.OP_GETFH)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteXDROpaque(buf, handle)
	return buf.Bytes()
}

// writeReply scripts the 6-op reply for an IsCreation write whose
// IsWriteStable is left at its zero value (unstable): PUTFH, OPEN, GETFH,
// WRITE, CLOSE, COMMIT, matching emitIOGroup's shape for that case.
func writeReply(n uint32) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteXDRString(buf, "")
	_ = xdr.WriteUint32(buf, 6)
	_ = xdr.WriteUint32(buf, nfs4.OP_PUTFH)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteUint32(buf, nfs4.OP_OPEN)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_, _ = xdr2.Marshal(buf, nfs4.Stateid{})
	_ = xdr.WriteUint32(buf, 0)
	_ = xdr.WriteUint32(buf, nfs4.OP_GETFH)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteXDROpaque(buf, []byte{0x0f})
	_ = xdr.WriteUint32(buf, nfs4.OP_WRITE)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteUint32(buf, n)
	_ = xdr.WriteUint32(buf, nfs4.UNSTABLE4)
	_ = xdr.WriteUint32(buf, nfs4.OP_CLOSE)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	_ = xdr.WriteUint32(buf, nfs4.OP_COMMIT)
	_ = xdr.WriteUint32(buf, nfs4.NFS4_OK)
	return buf.Bytes()
}

func newContextForTest(replies [][]byte) *Context {
	transport := &scriptedTransport{replies: replies}
	executor := exec.New(transport, nil, rpc.UnixAuth{MachineName: "test"}, nil)
	descriptors := handlecache.NewDescriptorTable()
	d := dispatch.New(descriptors, executor, 1, nil)
	d.Capacity = compound.DefaultCapacity
	return &Context{
		transport:  transport,
		dispatcher: d,
		lister:     listdir.New(d),
		copier:     copy.New(d),
		cwd:        "/",
	}
}

func TestContextChdirGetcwd(t *testing.T) {
	c := newContextForTest(nil)
	require.Equal(t, "/", c.Getcwd())
	c.Chdir("/t")
	require.Equal(t, "/t", c.Getcwd())
}

func TestContextWritevCreatesFile(t *testing.T) {
	c := newContextForTest([][]byte{
		encodeAcceptedReply(lookupReply([]byte{0x0d})),
		encodeAcceptedReply(writeReply(5)),
	})

	vecs := []tcfile.IoVec{{File: FileFromPath("/t/a.txt"), Offset: 0, Buffer: []byte("hello"), IsCreation: true}}
	res := c.Writev(context.Background(), vecs)
	require.True(t, res.OK)
}

func TestFileRefConstructors(t *testing.T) {
	require.Equal(t, tcfile.RefPath, FileFromPath("/a").Kind)
	require.Equal(t, tcfile.RefCurrent, FileCurrent().Kind)
	require.Equal(t, tcfile.RefDescriptor, FileFromFd(tcfile.Descriptor(3)).Kind)
}
