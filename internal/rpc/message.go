package rpc

import (
	"bytes"
	"fmt"

	"github.com/marmos91/tcnfs/internal/xdr"
)

// Message types, RFC 5531 Section 9.
const (
	RPCCall  = 0
	RPCReply = 1
)

// Reply states, RFC 5531 Section 9.
const (
	RPCMsgAccepted = 0
	RPCMsgDenied   = 1
)

// Accept statuses, RFC 5531 Section 9.
const (
	RPCSuccess      = 0
	RPCProgUnavail  = 1
	RPCProgMismatch = 2
	RPCProcUnavail  = 3
	RPCGarbageArgs  = 4
	RPCSystemErr    = 5
)

// NFS program number and the two versions this client ever negotiates.
const (
	NFSProgram    = 100003
	NFSV4Version  = 4
	NFSV41Minor   = 1
)

// CallHeader is the fixed portion of an RPC call that precedes the
// procedure-specific arguments: xid, program/version/proc, and the
// credential/verifier pair. This client always sends AUTH_SYS credentials
// with an AUTH_NULL verifier.
type CallHeader struct {
	XID     uint32
	Prog    uint32
	Vers    uint32
	Proc    uint32
	Cred    UnixAuth
}

// Encode renders the call header (everything up to, but not including, the
// procedure-specific argument bytes) into buf.
func (h CallHeader) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, h.XID); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, RPCCall); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, 2); err != nil { // rpcvers
		return err
	}
	if err := xdr.WriteUint32(buf, h.Prog); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, h.Vers); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, h.Proc); err != nil {
		return err
	}

	credBody, err := encodeUnixAuthBody(h.Cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := encodeOpaqueAuth(buf, AuthUnix, credBody); err != nil {
		return fmt.Errorf("encode credential wrapper: %w", err)
	}
	if err := encodeOpaqueAuth(buf, AuthNull, nil); err != nil {
		return fmt.Errorf("encode verifier: %w", err)
	}
	return nil
}

// EncodeCall assembles a full RPC call message: the call header followed by
// the already-encoded procedure argument bytes.
func EncodeCall(h CallHeader, args []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	if _, err := buf.Write(args); err != nil {
		return nil, fmt.Errorf("append args: %w", err)
	}
	return buf.Bytes(), nil
}

// ReplyHeader is the fixed portion of an RPC reply preceding the
// procedure-specific result bytes.
type ReplyHeader struct {
	XID        uint32
	Denied     bool
	AcceptStat uint32
}

// DecodeReply parses the RPC reply envelope at the front of message and
// returns the header plus the remaining bytes, which are the
// procedure-specific result payload when AcceptStat == RPCSuccess.
func DecodeReply(message []byte) (ReplyHeader, []byte, error) {
	r := bytes.NewReader(message)

	xid, err := xdr.DecodeUint32(r)
	if err != nil {
		return ReplyHeader{}, nil, fmt.Errorf("decode xid: %w", err)
	}
	msgType, err := xdr.DecodeUint32(r)
	if err != nil {
		return ReplyHeader{}, nil, fmt.Errorf("decode msg_type: %w", err)
	}
	if msgType != RPCReply {
		return ReplyHeader{}, nil, fmt.Errorf("expected REPLY message, got type %d", msgType)
	}

	replyState, err := xdr.DecodeUint32(r)
	if err != nil {
		return ReplyHeader{}, nil, fmt.Errorf("decode reply_stat: %w", err)
	}

	hdr := ReplyHeader{XID: xid}
	if replyState == RPCMsgDenied {
		hdr.Denied = true
		rest := make([]byte, r.Len())
		_, _ = r.Read(rest)
		return hdr, rest, nil
	}

	// MSG_ACCEPTED: skip the verifier (opaque_auth: flavor + opaque body).
	if _, err := xdr.DecodeUint32(r); err != nil { // verifier flavor
		return ReplyHeader{}, nil, fmt.Errorf("decode verifier flavor: %w", err)
	}
	if _, err := xdr.DecodeOpaque(r); err != nil {
		return ReplyHeader{}, nil, fmt.Errorf("decode verifier body: %w", err)
	}

	acceptStat, err := xdr.DecodeUint32(r)
	if err != nil {
		return ReplyHeader{}, nil, fmt.Errorf("decode accept_stat: %w", err)
	}
	hdr.AcceptStat = acceptStat

	rest := make([]byte, r.Len())
	_, _ = r.Read(rest)
	return hdr, rest, nil
}
