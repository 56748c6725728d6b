// Package compound turns a batch of IntendedOps into one or more NFSv4
// CompoundPlans: ordered opcode/argument lists whose payload ops are capped
// per shard by a configured Capacity, with a back-index from each opcode to the
// IntendedOp that produced it so the executor can route decoded results
// back to the caller's input order.
package compound

import (
	"fmt"

	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Kind tags which NFSv4 opcode sequence an IntendedOp expands to.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
	KindGetAttr
	KindSetAttr
	KindRename
	KindRemove
	KindMkdir
	KindReaddir
	KindOpen
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindGetAttr:
		return "getattr"
	case KindSetAttr:
		return "setattr"
	case KindRename:
		return "rename"
	case KindRemove:
		return "remove"
	case KindMkdir:
		return "mkdir"
	case KindReaddir:
		return "readdir"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	default:
		return "unknown"
	}
}

// IntendedOp is one caller-level operation awaiting expansion into NFSv4
// opcodes. Exactly the fields relevant to Kind are meaningful; the builder
// pattern-matches on Kind rather than inspecting every field.
type IntendedOp struct {
	Kind Kind

	File   tcfile.FileRef // primary target
	Target tcfile.FileRef // secondary target (rename/copy destination)

	Offset        int64
	Length        uint32
	Buffer        []byte
	IsCreation    bool
	IsWriteStable bool

	AttrMask  tcfile.AttrMask
	Attrs     tcfile.Attrs
	ShareMode uint32 // OPEN4_SHARE_ACCESS_* for a path-based read/write's OPEN; 0 picks READ or WRITE by Kind

	// Stateid is the stateid of File's OpenState, filled in by file-reference
	// resolution when File is a RefDescriptor. Zero for every other FileRef
	// kind: the builder substitutes the anonymous stateid for those itself.
	Stateid nfs4.Stateid

	ReaddirCookie     uint64
	ReaddirCookieVerf [8]byte
	ReaddirMaxCount   uint32

	// ResolvedHandle/ResolvedTarget are filled in by the file-reference
	// resolution pass (internal/client/dispatch) before the op reaches the
	// builder: every FileRef has by then been reduced to either a known
	// handle or a LOOKUP chain already walked into the plan.
	ResolvedHandle tcfile.FileHandle
	ResolvedTarget tcfile.FileHandle
}

// Validate reports a build-time error for IntendedOps the builder cannot
// expand: a Current reference at batch position 0, or a readdir with a
// zero max count.
func (op IntendedOp) Validate(index int) error {
	if op.File.Kind == tcfile.RefCurrent && index == 0 {
		return fmt.Errorf("intended op %d: Current reference at batch position 0", index)
	}
	if op.Kind == nfs4ReaddirKind() && op.ReaddirMaxCount == 0 {
		return fmt.Errorf("intended op %d: readdir requires a non-zero max count", index)
	}
	return nil
}

func nfs4ReaddirKind() Kind { return KindReaddir }

// stateidFor returns the stateid an op should carry: the anonymous
// stateid for path-based I/O that hasn't gone through OPEN yet in this
// plan, or the stateid of an already-open descriptor.
func stateidFor(hasOpenState bool, s nfs4.Stateid) nfs4.Stateid {
	if !hasOpenState {
		return nfs4.AnonymousStateid
	}
	return s
}
