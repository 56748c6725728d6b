package rpc

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/marmos91/tcnfs/internal/logger"
)

// MaxFragmentSize bounds a single reassembled RPC message. It mirrors the
// server-side limit this client talks to: large enough for a full
// MAX_OPS_PER_COMPOUND compound carrying near-maximum READ/WRITE payloads,
// with headroom for RPC and NFS header overhead.
const MaxFragmentSize = (1 << 20) + (1 << 18)

// Transport sends one RPC call and waits for its matching reply. A single
// Transport instance multiplexes calls from many goroutines over one TCP
// connection, matching replies to calls by XID.
type Transport interface {
	// Call sends an RPC call and blocks until the matching reply arrives,
	// ctx is done, or the connection fails.
	Call(ctx context.Context, xid uint32, message []byte) ([]byte, error)
	Close() error
}

// NextXID returns a process-wide unique, non-zero transaction ID.
func NextXID() uint32 {
	for {
		v := uint32(atomic.AddUint64(&xidCounter, 1))
		if v != 0 {
			return v
		}
	}
}

var xidCounter uint64

// TCPTransport implements Transport over a single TCP connection using RPC
// record marking: each message is split into one or more length-prefixed
// fragments, the last of which has its top bit set.
type TCPTransport struct {
	addr string

	mu      sync.Mutex
	conn    net.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[uint32]chan pendingReply

	closeOnce sync.Once
	closed    chan struct{}
}

type pendingReply struct {
	data []byte
	err  error
}

// DialTCP opens a TCP connection to addr and starts the background reader
// that demultiplexes replies by XID.
func DialTCP(ctx context.Context, addr string) (*TCPTransport, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := configureKeepalive(tcpConn); err != nil {
			logger.Warn("failed to configure keepalive", "addr", addr, "error", err)
		}
	}

	t := &TCPTransport{
		addr:    addr,
		conn:    conn,
		pending: make(map[uint32]chan pendingReply),
		closed:  make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// Call writes message (already encoded, sans fragment header) as one or
// more record-marked fragments and waits for the reply matching xid.
func (t *TCPTransport) Call(ctx context.Context, xid uint32, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan pendingReply, 1)
	t.pendingMu.Lock()
	t.pending[xid] = ch
	t.pendingMu.Unlock()
	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, xid)
		t.pendingMu.Unlock()
	}()

	if err := t.writeFragmented(message); err != nil {
		return nil, &TransientError{Op: "write", Err: err}
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, &ConnectionClosedError{Addr: t.addr}
	}
}

// writeFragmented sends message as a single fragment marked last. Compound
// requests built by this client stay well under MaxFragmentSize, so
// multi-fragment call messages are never produced.
func (t *TCPTransport) writeFragmented(message []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(message))|0x80000000)

	if _, err := t.conn.Write(header[:]); err != nil {
		return err
	}
	_, err := t.conn.Write(message)
	return err
}

// readLoop reassembles fragments into complete RPC messages and routes each
// to the goroutine awaiting its XID.
func (t *TCPTransport) readLoop() {
	r := bufio.NewReaderSize(t.conn, 64*1024)
	var message []byte

	for {
		var headerBuf [4]byte
		if _, err := io.ReadFull(r, headerBuf[:]); err != nil {
			t.failAll(fmt.Errorf("connection read: %w", err))
			return
		}

		raw := binary.BigEndian.Uint32(headerBuf[:])
		last := raw&0x80000000 != 0
		length := raw & 0x7fffffff

		if uint32(len(message))+length > MaxFragmentSize {
			t.failAll(fmt.Errorf("reassembled message exceeds %d bytes", MaxFragmentSize))
			return
		}

		frag := make([]byte, length)
		if _, err := io.ReadFull(r, frag); err != nil {
			t.failAll(fmt.Errorf("connection read: %w", err))
			return
		}
		message = append(message, frag...)

		if !last {
			continue
		}

		t.dispatch(message)
		message = nil
	}
}

func (t *TCPTransport) dispatch(message []byte) {
	if len(message) < 4 {
		logger.Warn("dropping undersized RPC reply", "bytes", len(message))
		return
	}
	xid := binary.BigEndian.Uint32(message[0:4])

	t.pendingMu.Lock()
	ch, ok := t.pending[xid]
	t.pendingMu.Unlock()
	if !ok {
		logger.Debug("dropping reply for unknown xid", "xid", fmt.Sprintf("0x%x", xid))
		return
	}
	ch <- pendingReply{data: message}
}

func (t *TCPTransport) failAll(err error) {
	t.closeOnce.Do(func() { close(t.closed) })
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	for xid, ch := range t.pending {
		ch <- pendingReply{err: &TransientError{Op: "read", Err: err}}
		delete(t.pending, xid)
	}
}

// Close shuts down the underlying connection and unblocks any callers
// waiting on a reply.
func (t *TCPTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return t.conn.Close()
}

// ============================================================================
// Transient error types
// ============================================================================
//
// The executor's retry policy distinguishes three failure shapes: a
// transport-level send/receive failure that may succeed on a fresh
// connection, a session that the server has discarded, and a slot replay
// mismatch. All three are safe to retry with a rebuilt compound; any other
// error is treated as terminal.

// TransientError wraps a network I/O failure encountered while sending or
// receiving an RPC message.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("rpc %s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying error was a network timeout.
func (e *TransientError) Timeout() bool {
	te, ok := e.Err.(interface{ Timeout() bool })
	return ok && te.Timeout()
}

// ConnectionClosedError reports that the transport was closed while a call
// was still in flight.
type ConnectionClosedError struct {
	Addr string
}

func (e *ConnectionClosedError) Error() string {
	return fmt.Sprintf("rpc connection to %s closed", e.Addr)
}

// SessionExpiredError reports NFS4ERR_BADSESSION or NFS4ERR_STALE_CLIENTID:
// the server has discarded client state and the caller must re-establish a
// session before retrying.
type SessionExpiredError struct {
	Status uint32
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("nfs session expired (status %d)", e.Status)
}
