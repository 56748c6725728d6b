package dispatch

import "github.com/marmos91/tcnfs/internal/nfs4"

// POSIX errno values this client maps NFS statuses onto. Only the subset
// §4.5's table names gets a dedicated constant; everything else maps to
// EIO.
const (
	EPERM      = 1
	ENOENT     = 2
	EIO        = 5
	EACCES     = 13
	EEXIST     = 17
	ENOTDIR    = 20
	EISDIR     = 21
	EINVAL     = 22
	EFBIG      = 27
	ENOSPC     = 28
	EROFS      = 30
	ENAMETOOLONG = 36
	ENOTEMPTY  = 39
	ESTALE     = 116
	ENOTSUP    = 95
	EBADF      = 9
	ETIMEDOUT  = 110
	E2BIG      = 7
)

// ErrnoForStatus implements the fixed NFS4→POSIX mapping table in §4.5.
func ErrnoForStatus(status uint32) int {
	switch status {
	case nfs4.NFS4_OK:
		return 0
	case nfs4.NFS4ERR_NOENT:
		return ENOENT
	case nfs4.NFS4ERR_ACCESS:
		return EACCES
	case nfs4.NFS4ERR_PERM:
		return EPERM
	case nfs4.NFS4ERR_EXIST:
		return EEXIST
	case nfs4.NFS4ERR_NOTDIR:
		return ENOTDIR
	case nfs4.NFS4ERR_ISDIR:
		return EISDIR
	case nfs4.NFS4ERR_FBIG:
		return EFBIG
	case nfs4.NFS4ERR_NOSPC:
		return ENOSPC
	case nfs4.NFS4ERR_ROFS:
		return EROFS
	case nfs4.NFS4ERR_NAMETOOLONG:
		return ENAMETOOLONG
	case nfs4.NFS4ERR_NOTEMPTY:
		return ENOTEMPTY
	case nfs4.NFS4ERR_STALE, nfs4.NFS4ERR_BAD_COOKIE:
		return ESTALE
	case nfs4.NFS4ERR_NOTSUPP:
		return ENOTSUP
	case nfs4.NFS4ERR_INVAL, nfs4.NFS4ERR_BADXDR:
		return EINVAL
	default:
		return EIO
	}
}
