package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the client.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Public call & compound plumbing
	// ========================================================================
	KeyCall      = "call"      // public call name: READV, WRITEV, LISTDIR, ...
	KeyShard     = "shard"     // shard index within the batch
	KeyShards    = "shards"    // total number of shards/compounds emitted
	KeyOpCount   = "op_count"  // number of NFSv4 opcodes in a compound
	KeyOpIndex   = "op_index"  // index of an opcode within a compound
	KeyBatchSize = "batch_len" // number of IntendedOps in the caller's batch

	// ========================================================================
	// File identity
	// ========================================================================
	KeyPath       = "path"        // full file/directory path
	KeyOldPath    = "old_path"    // source path for rename operations
	KeyNewPath    = "new_path"    // destination path for rename operations
	KeyHandle     = "handle"      // NFSv4 file handle (hex)
	KeyDescriptor = "descriptor"  // library-issued descriptor integer
	KeyStateid    = "stateid"     // open stateid (hex)

	// ========================================================================
	// I/O
	// ========================================================================
	KeyOffset       = "offset"
	KeyLength       = "length"
	KeyBytesDone    = "bytes_done"
	KeyEOF          = "eof"
	KeyStable       = "stable"

	// ========================================================================
	// Protocol status
	// ========================================================================
	KeyNFSStatus = "nfs_status" // raw NFS4ERR_* code
	KeyErrno     = "errno"      // mapped POSIX errno

	// ========================================================================
	// Session / transport
	// ========================================================================
	KeySessionID = "session_id"
	KeySlot      = "slot"
	KeySeqID     = "seqid"
	KeyXID       = "xid"
	KeyServer    = "server"

	// ========================================================================
	// Retry / backoff
	// ========================================================================
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
	KeyReason     = "reason"

	// ========================================================================
	// General
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyCacheHit   = "cache_hit"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Call returns a slog.Attr for the public call name
func Call(name string) slog.Attr { return slog.String(KeyCall, name) }

// Shard returns a slog.Attr for a shard index
func Shard(i int) slog.Attr { return slog.Int(KeyShard, i) }

// Shards returns a slog.Attr for the total shard count
func Shards(n int) slog.Attr { return slog.Int(KeyShards, n) }

// OpCount returns a slog.Attr for the number of opcodes in a compound
func OpCount(n int) slog.Attr { return slog.Int(KeyOpCount, n) }

// OpIndex returns a slog.Attr for an opcode's position in a compound
func OpIndex(i int) slog.Attr { return slog.Int(KeyOpIndex, i) }

// BatchSize returns a slog.Attr for the caller's batch length
func BatchSize(n int) slog.Attr { return slog.Int(KeyBatchSize, n) }

// Path returns a slog.Attr for a file/directory path
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// OldPath returns a slog.Attr for the source path of a rename
func OldPath(p string) slog.Attr { return slog.String(KeyOldPath, p) }

// NewPath returns a slog.Attr for the destination path of a rename
func NewPath(p string) slog.Attr { return slog.String(KeyNewPath, p) }

// Handle returns a slog.Attr for a file handle, hex-encoded
func Handle(h []byte) slog.Attr { return slog.String(KeyHandle, fmt.Sprintf("%x", h)) }

// Descriptor returns a slog.Attr for a library-issued descriptor
func Descriptor(fd uint32) slog.Attr { return slog.Any(KeyDescriptor, fd) }

// Stateid returns a slog.Attr for a stateid's "other" field, hex-encoded
func Stateid(other [12]byte) slog.Attr {
	return slog.String(KeyStateid, fmt.Sprintf("%x", other))
}

// Offset returns a slog.Attr for an I/O offset
func Offset(off int64) slog.Attr { return slog.Int64(KeyOffset, off) }

// Length returns a slog.Attr for an I/O length
func Length(n uint32) slog.Attr { return slog.Any(KeyLength, n) }

// BytesDone returns a slog.Attr for bytes actually transferred
func BytesDone(n uint32) slog.Attr { return slog.Any(KeyBytesDone, n) }

// EOF returns a slog.Attr for an end-of-file indicator
func EOF(eof bool) slog.Attr { return slog.Bool(KeyEOF, eof) }

// Stable returns a slog.Attr for write stability mode
func Stable(stable bool) slog.Attr { return slog.Bool(KeyStable, stable) }

// NFSStatus returns a slog.Attr for a raw NFS4ERR_* status
func NFSStatus(code uint32) slog.Attr { return slog.Any(KeyNFSStatus, code) }

// Errno returns a slog.Attr for a mapped POSIX errno
func Errno(e int) slog.Attr { return slog.Int(KeyErrno, e) }

// SessionID returns a slog.Attr for the session identifier, hex-encoded
func SessionID(id []byte) slog.Attr { return slog.String(KeySessionID, fmt.Sprintf("%x", id)) }

// Slot returns a slog.Attr for a session slot index
func Slot(i int) slog.Attr { return slog.Int(KeySlot, i) }

// SeqID returns a slog.Attr for a sequence id
func SeqID(seq uint32) slog.Attr { return slog.Any(KeySeqID, seq) }

// XID returns a slog.Attr for an RPC transaction id
func XID(xid uint32) slog.Attr { return slog.Any(KeyXID, xid) }

// Server returns a slog.Attr for the server address
func Server(addr string) slog.Attr { return slog.String(KeyServer, addr) }

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for the maximum retry attempts
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetries, n) }

// Reason returns a slog.Attr for a retry/failure reason
func Reason(r string) slog.Attr { return slog.String(KeyReason, r) }

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// CacheHit returns a slog.Attr for a handle-cache hit/miss indicator
func CacheHit(hit bool) slog.Attr { return slog.Bool(KeyCacheHit, hit) }
