package nfs4

import (
	"bytes"

	"github.com/marmos91/tcnfs/internal/xdr"
)

func newTestBuffer() *bytes.Buffer { return new(bytes.Buffer) }

func writeUint32(buf *bytes.Buffer, v uint32) { _ = xdr.WriteUint32(buf, v) }

func writeString(buf *bytes.Buffer, s string) { _ = xdr.WriteXDRString(buf, s) }

func writeOpaque(buf *bytes.Buffer, data []byte) { _ = xdr.WriteXDROpaque(buf, data) }
