package tcfile

// Offset sentinels accepted by IoVec.Offset, matching the original
// tc_iovec contract: negative offsets carry special meaning instead of
// addressing a byte position.
const (
	// OffsetAppend requests that the write land at the current end of the
	// file, regardless of the descriptor's tracked offset.
	OffsetAppend int64 = -1
	// OffsetCurrent requests the descriptor's current tracked position.
	OffsetCurrent int64 = -2
)

// IoVec describes one read or write within a readv/writev/copyv batch.
type IoVec struct {
	File   FileRef
	Offset int64
	Length uint32
	Buffer []byte

	// IsCreation turns a WRITE into OPEN(CREATE)+WRITE+CLOSE: the target
	// file is created if it does not already exist.
	IsCreation bool

	// IsWriteStable selects DATA_SYNC4 (true) vs UNSTABLE4 (false). An
	// UNSTABLE4 write anywhere in a shard forces a COMMIT at the end of
	// that shard.
	IsWriteStable bool
}

// Timespec is a (seconds, nanoseconds) pair, matching NFSv4's nfstime4.
type Timespec struct {
	Sec  int64
	Nsec uint32
}

// AttrMask selects which fields of Attrs are present in a getattrsv/
// setattrsv call. Each bit corresponds to one Attrs field.
type AttrMask uint16

const (
	AttrMode AttrMask = 1 << iota
	AttrSize
	AttrUID
	AttrGID
	AttrRdev
	AttrNlink
	AttrAtime
	AttrMtime
	AttrCtime

	// AttrAll is the union of every supported attribute.
	AttrAll = AttrMode | AttrSize | AttrUID | AttrGID | AttrRdev |
		AttrNlink | AttrAtime | AttrMtime | AttrCtime
)

// Has reports whether mask includes attr.
func (mask AttrMask) Has(attr AttrMask) bool { return mask&attr != 0 }

// Attrs carries the subset of file attributes selected by an AttrMask. A
// field is meaningful only if its corresponding AttrMask bit is set; the
// zero value of an unset field must not be interpreted as "attribute is
// zero".
type Attrs struct {
	Mask  AttrMask
	Mode  uint32
	Size  uint64
	UID   uint32
	GID   uint32
	Rdev  uint64
	Nlink uint32
	Atime Timespec
	Mtime Timespec
	Ctime Timespec
}

// AttrsSetMode returns a copy of a with Mode set and AttrMode added to the
// mask, mirroring the original API's attrs_set_mode helper.
func AttrsSetMode(a Attrs, mode uint32) Attrs {
	a.Mode = mode
	a.Mask |= AttrMode
	return a
}

// AttrsSetSize returns a copy of a with Size set and AttrSize added to the
// mask.
func AttrsSetSize(a Attrs, size uint64) Attrs {
	a.Size = size
	a.Mask |= AttrSize
	return a
}

// AttrsSetUID returns a copy of a with UID set and AttrUID added to the
// mask.
func AttrsSetUID(a Attrs, uid uint32) Attrs {
	a.UID = uid
	a.Mask |= AttrUID
	return a
}

// AttrsSetGID returns a copy of a with GID set and AttrGID added to the
// mask.
func AttrsSetGID(a Attrs, gid uint32) Attrs {
	a.GID = gid
	a.Mask |= AttrGID
	return a
}

// AttrsSetAtime returns a copy of a with Atime set and AttrAtime added to
// the mask.
func AttrsSetAtime(a Attrs, sec int64, nsec uint32) Attrs {
	a.Atime = Timespec{Sec: sec, Nsec: nsec}
	a.Mask |= AttrAtime
	return a
}

// AttrsSetMtime returns a copy of a with Mtime set and AttrMtime added to
// the mask.
func AttrsSetMtime(a Attrs, sec int64, nsec uint32) Attrs {
	a.Mtime = Timespec{Sec: sec, Nsec: nsec}
	a.Mask |= AttrMtime
	return a
}

// AttrSpec pairs a FileRef with the Attrs to set (setattrsv/mkdirv) or the
// mask to fetch (getattrsv).
type AttrSpec struct {
	File  FileRef
	Attrs Attrs
}

// RenamePair names a source and destination for one renamev entry.
type RenamePair struct {
	From FileRef
	To   FileRef
}

// CopySpec names one copyv entry: copy Length bytes starting at SrcOffset in
// Src to DstOffset in Dst.
type CopySpec struct {
	Src       FileRef
	SrcOffset int64
	Dst       FileRef
	DstOffset int64
	Length    uint32
}
