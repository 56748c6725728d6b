// Package tcfile defines the vectorized client's data model: the tagged
// FileRef used to name a file in a batch, the IoVec/AttrMask/Attrs types
// carried by the public calls, and the FileHandle/OpenState/Stateid types
// that track per-descriptor NFSv4 state.
//
// Nothing in this package talks to a network; it is pure data plus the
// small amount of validation that can be done without a server round trip.
package tcfile

import "fmt"

// RefKind tags which variant of FileRef is populated.
type RefKind int

const (
	// RefPath names a file by an absolute or CWD-relative path.
	RefPath RefKind = iota
	// RefDescriptor names a file by a descriptor previously returned by
	// openv.
	RefDescriptor
	// RefCurrent refers to the file produced by the previous IntendedOp in
	// the same batch.
	RefCurrent
	// RefHandle names a file by a raw, previously-obtained NFSv4 handle.
	RefHandle
)

func (k RefKind) String() string {
	switch k {
	case RefPath:
		return "path"
	case RefDescriptor:
		return "descriptor"
	case RefCurrent:
		return "current"
	case RefHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// FileRef identifies a file as one of: an absolute or CWD-relative path, a
// previously opened descriptor, "the file the previous op named", or a raw
// file handle. Exactly one of the payload fields is meaningful, selected by
// Kind.
type FileRef struct {
	Kind       RefKind
	Path       string     // valid when Kind == RefPath
	Descriptor Descriptor // valid when Kind == RefDescriptor
	Handle     FileHandle // valid when Kind == RefHandle
}

// PathRef builds a FileRef naming an absolute or CWD-relative path.
func PathRef(path string) FileRef { return FileRef{Kind: RefPath, Path: path} }

// DescriptorRef builds a FileRef naming a previously opened descriptor.
func DescriptorRef(fd Descriptor) FileRef { return FileRef{Kind: RefDescriptor, Descriptor: fd} }

// CurrentRef builds a FileRef referring to the previous op's target.
func CurrentRef() FileRef { return FileRef{Kind: RefCurrent} }

// HandleRef builds a FileRef naming a raw file handle.
func HandleRef(h FileHandle) FileRef { return FileRef{Kind: RefHandle, Handle: h} }

func (r FileRef) String() string {
	switch r.Kind {
	case RefPath:
		return fmt.Sprintf("path(%s)", r.Path)
	case RefDescriptor:
		return fmt.Sprintf("fd(%d)", r.Descriptor)
	case RefCurrent:
		return "current"
	case RefHandle:
		return fmt.Sprintf("handle(%x)", []byte(r.Handle))
	default:
		return "invalid"
	}
}

// Descriptor is a library-issued opaque integer identifying an open file.
// Descriptors are process-wide and are never reused for a different file
// while the Descriptor Table holds a live entry for them.
type Descriptor uint32

// FileHandle is the server-assigned, opaque identity of a filesystem
// object. Per RFC 7530 it is at most NFS4_FHSIZE (128) bytes.
type FileHandle []byte

// MaxFileHandleSize is NFS4_FHSIZE, the largest handle the wire format
// allows.
const MaxFileHandleSize = 128

// Equal reports whether two file handles refer to the same wire identity.
func (h FileHandle) Equal(other FileHandle) bool {
	if len(h) != len(other) {
		return false
	}
	for i := range h {
		if h[i] != other[i] {
			return false
		}
	}
	return true
}
