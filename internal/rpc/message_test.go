package rpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/tcnfs/internal/xdr"
)

func TestEncodeCallRoundTripsHeaderFields(t *testing.T) {
	h := CallHeader{
		XID:  0xCAFEBABE,
		Prog: NFSProgram,
		Vers: NFSV4Version,
		Proc: 1,
		Cred: UnixAuth{Stamp: 42, MachineName: "client", UID: 1000, GID: 1000},
	}

	msg, err := EncodeCall(h, []byte{0x01, 0x02})
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(msg, []byte{0x01, 0x02}))

	r := bytes.NewReader(msg)
	xid, err := xdr.DecodeUint32(r)
	require.NoError(t, err)
	require.EqualValues(t, h.XID, xid)

	msgType, err := xdr.DecodeUint32(r)
	require.NoError(t, err)
	require.EqualValues(t, RPCCall, msgType)
}

func TestDecodeReplySuccess(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, 0x11223344) // xid
	_ = xdr.WriteUint32(buf, RPCReply)
	_ = xdr.WriteUint32(buf, RPCMsgAccepted)
	_ = xdr.WriteUint32(buf, AuthNull) // verifier flavor
	_ = xdr.WriteXDROpaque(buf, nil)   // verifier body
	_ = xdr.WriteUint32(buf, RPCSuccess)
	_ = xdr.WriteUint32(buf, 0xAA) // payload marker

	hdr, rest, err := DecodeReply(buf.Bytes())
	require.NoError(t, err)
	require.False(t, hdr.Denied)
	require.EqualValues(t, RPCSuccess, hdr.AcceptStat)
	require.EqualValues(t, 0x11223344, hdr.XID)

	r := bytes.NewReader(rest)
	marker, err := xdr.DecodeUint32(r)
	require.NoError(t, err)
	require.EqualValues(t, 0xAA, marker)
}

func TestDecodeReplyRejectsCallMessage(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, 1)
	_ = xdr.WriteUint32(buf, RPCCall)

	_, _, err := DecodeReply(buf.Bytes())
	require.Error(t, err)
}

func TestNextXIDNeverReturnsZero(t *testing.T) {
	for i := 0; i < 1000; i++ {
		require.NotZero(t, NextXID())
	}
}
