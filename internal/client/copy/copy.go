// Package copy drives copyv: for each (src, dst) pair it reads Length bytes
// from src at SrcOffset and writes them to Dst at DstOffset. Server-side
// COPY (RFC 7862) is not among the opcodes this module's wire layer speaks
// (see SPEC_FULL.md's XDR wire layer section), so every copy goes through
// client memory: a READ compound followed by a WRITE compound, with the
// READ side retried on a partial read until the caller's requested length
// has actually been observed.
package copy

import (
	"context"
	"fmt"

	"github.com/marmos91/tcnfs/internal/client/dispatch"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// maxReadChunk bounds a single READ's requested length, matching the
// transport's per-fragment ceiling; longer copies page through this many
// bytes at a time rather than asking for the whole length in one READ.
const maxReadChunk = 1 << 20

// Copier drives copyv on top of a Dispatcher's Readv/Writev primitives.
type Copier struct {
	Dispatcher *dispatch.Dispatcher
}

// New builds a Copier over d.
func New(d *dispatch.Dispatcher) *Copier {
	return &Copier{Dispatcher: d}
}

// Copyv performs every spec in order, stopping at the first failure and
// reporting its index exactly like the other vectorized calls: the
// per-pair copy itself is not atomic with the batch (a copy that partially
// read before failing on the write has not modified dst), but the batch as
// a whole follows the same stop-on-first-failure contract.
func (c *Copier) Copyv(ctx context.Context, specs []tcfile.CopySpec, cwd string) dispatch.Result {
	for i, spec := range specs {
		data, err := c.readAll(ctx, spec, cwd)
		if err != nil {
			return dispatch.Result{OK: false, FailedIndex: i, Errno: dispatch.EIO}
		}

		vecs := []tcfile.IoVec{{
			File:          spec.Dst,
			Offset:        spec.DstOffset,
			Buffer:        data,
			IsCreation:    false,
			IsWriteStable: true,
		}}
		result := c.Dispatcher.Writev(ctx, vecs, cwd)
		if !result.OK {
			return dispatch.Result{OK: false, FailedIndex: i, Errno: result.Errno}
		}
	}
	return dispatch.Result{OK: true, FailedIndex: -1}
}

// readAll issues READs against spec.Src starting at SrcOffset until
// spec.Length bytes have been observed or the server reports EOF early
// (a short file, which surfaces as an error: the caller asked for more
// bytes than the source actually has).
func (c *Copier) readAll(ctx context.Context, spec tcfile.CopySpec, cwd string) ([]byte, error) {
	out := make([]byte, 0, spec.Length)
	offset := spec.SrcOffset
	remaining := spec.Length

	for remaining > 0 {
		chunk := remaining
		if chunk > maxReadChunk {
			chunk = maxReadChunk
		}

		vecs := []tcfile.IoVec{{File: spec.Src, Offset: offset, Length: chunk}}
		result := c.Dispatcher.Readv(ctx, vecs, cwd)
		if !result.OK {
			return nil, fmt.Errorf("copyv read: errno %d", result.Errno)
		}

		n := uint32(len(vecs[0].Buffer))
		if n == 0 {
			return nil, fmt.Errorf("copyv read: source exhausted with %d bytes still requested", remaining)
		}

		out = append(out, vecs[0].Buffer...)
		offset += int64(n)
		remaining -= n
	}
	return out, nil
}
