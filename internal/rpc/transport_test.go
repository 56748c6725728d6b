package rpc

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer echoes back a REPLY for every CALL fragment it receives, using
// the XID from the request so TCPTransport.Call can match it.
func fakeServer(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		for {
			var header [4]byte
			if _, err := conn.Read(header[:]); err != nil {
				return
			}
			length := binary.BigEndian.Uint32(header[:]) & 0x7fffffff
			body := make([]byte, length)
			n := 0
			for n < len(body) {
				m, err := conn.Read(body[n:])
				if err != nil {
					return
				}
				n += m
			}

			xid := binary.BigEndian.Uint32(body[0:4])
			reply := make([]byte, 8)
			binary.BigEndian.PutUint32(reply[0:4], xid)
			binary.BigEndian.PutUint32(reply[4:8], RPCReply)

			var replyHeader [4]byte
			binary.BigEndian.PutUint32(replyHeader[:], uint32(len(reply))|0x80000000)
			if _, err := conn.Write(replyHeader[:]); err != nil {
				return
			}
			if _, err := conn.Write(reply); err != nil {
				return
			}
		}
	}()
}

func TestTCPTransportCallMatchesReplyByXID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fakeServer(t, server)

	tr := &TCPTransport{
		addr:    "pipe",
		conn:    client,
		pending: make(map[uint32]chan pendingReply),
		closed:  make(chan struct{}),
	}
	go tr.readLoop()

	xid := uint32(0x42)
	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, xid)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := tr.Call(ctx, xid, req)
	require.NoError(t, err)
	require.Len(t, reply, 8)
	require.Equal(t, xid, binary.BigEndian.Uint32(reply[0:4]))
}

func TestTCPTransportCallContextCancel(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := &TCPTransport{
		addr:    "pipe",
		conn:    client,
		pending: make(map[uint32]chan pendingReply),
		closed:  make(chan struct{}),
	}
	go tr.readLoop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Call(ctx, 1, []byte{0, 0, 0, 1})
	require.Error(t, err)
}
