package rpc

import (
	"bytes"

	"github.com/marmos91/tcnfs/internal/xdr"
)

// RPC authentication flavors, RFC 5531 Section 8.
const (
	AuthNull = 0
	AuthUnix = 1
	AuthShort = 2
	AuthDES   = 3
)

// UnixAuth is AUTH_SYS credential data (auth_unix in RFC 5531 Section 8.2),
// the only flavor this client speaks. The server never needs to parse its
// own client's credentials back, so unlike the teacher's ParseUnixAuth this
// side only ever encodes.
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// Encode writes the auth_unix body (not including the opaque_auth flavor/
// length wrapper, which Call.Encode adds separately).
func (a UnixAuth) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, a.Stamp); err != nil {
		return err
	}
	if err := xdr.WriteXDRString(buf, a.MachineName); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.UID); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.GID); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, uint32(len(a.GIDs))); err != nil {
		return err
	}
	for _, g := range a.GIDs {
		if err := xdr.WriteUint32(buf, g); err != nil {
			return err
		}
	}
	return nil
}

// encodeOpaqueAuth encodes an RFC 5531 opaque_auth: a flavor tag followed
// by an XDR opaque body, written as given (the AUTH_NULL verifier is sent
// with a nil body).
func encodeOpaqueAuth(buf *bytes.Buffer, flavor uint32, body []byte) error {
	if err := xdr.WriteUint32(buf, flavor); err != nil {
		return err
	}
	return xdr.WriteXDROpaque(buf, body)
}

// encodeUnixAuthBody renders a UnixAuth to its raw opaque body bytes so it
// can be wrapped by encodeOpaqueAuth.
func encodeUnixAuthBody(a UnixAuth) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := a.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
