package nfs4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCompoundPutFHLookupGetFH(t *testing.T) {
	ops := []Op{
		{Code: OP_PUTROOTFH},
		{Code: OP_LOOKUP, Arg: LookupArgs{Name: "export"}},
		{Code: OP_GETFH},
	}

	wire, err := EncodeCompound("tag", 1, ops)
	require.NoError(t, err)
	require.NotEmpty(t, wire)
}

func TestEncodeCompoundRejectsUnknownArgType(t *testing.T) {
	_, err := EncodeCompound("tag", 1, []Op{{Code: OP_PUTFH, Arg: "not a PutFHArgs"}})
	require.Error(t, err)
}

func TestDecodeCompoundReplyStopsAtFirstFailure(t *testing.T) {
	buf := buildFakeReply(t, NFS4ERR_NOENT, []fakeOpReply{
		{code: OP_PUTROOTFH, status: NFS4_OK},
		{code: OP_LOOKUP, status: NFS4ERR_NOENT},
		{code: OP_GETFH, status: NFS4_OK},
	})

	status, results, err := DecodeCompoundReply(buf, []Op{
		{Code: OP_PUTROOTFH}, {Code: OP_LOOKUP}, {Code: OP_GETFH},
	})
	require.NoError(t, err)
	require.Equal(t, uint32(NFS4ERR_NOENT), status)
	require.Len(t, results, 2)
	require.Equal(t, uint32(NFS4_OK), results[0].Status)
	require.Equal(t, uint32(NFS4ERR_NOENT), results[1].Status)
}

func TestDecodeCompoundReplyGetFH(t *testing.T) {
	handle := []byte{0xde, 0xad, 0xbe, 0xef}
	buf := buildFakeGetFHReply(t, handle)

	_, results, err := DecodeCompoundReply(buf, []Op{{Code: OP_GETFH}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	got, ok := results[0].Result.(GetFHResult)
	require.True(t, ok)
	require.Equal(t, handle, got.Handle)
}

// fakeOpReply and the builders below hand-encode a minimal COMPOUND4res so
// the decoder can be exercised without a live server.
type fakeOpReply struct {
	code   uint32
	status uint32
}

func buildFakeReply(t *testing.T, overallStatus uint32, ops []fakeOpReply) []byte {
	t.Helper()
	buf := newTestBuffer()
	writeUint32(buf, overallStatus)
	writeString(buf, "")
	writeUint32(buf, uint32(len(ops)))
	for _, op := range ops {
		writeUint32(buf, op.code)
		writeUint32(buf, op.status)
	}
	return buf.Bytes()
}

func buildFakeGetFHReply(t *testing.T, handle []byte) []byte {
	t.Helper()
	buf := newTestBuffer()
	writeUint32(buf, NFS4_OK)
	writeString(buf, "")
	writeUint32(buf, 1)
	writeUint32(buf, OP_GETFH)
	writeUint32(buf, NFS4_OK)
	writeOpaque(buf, handle)
	return buf.Bytes()
}
