// Package nfs4 holds the wire-level constants and thin argument/result
// shapes for the NFSv4.1 opcodes the planner and executor need: operation
// numbers, status codes, file types, and the handful of per-opcode structs
// that internal/nfs4/codec.go marshals via the go-xdr reflection codec.
//
// This package plays the role of the "assumed to exist" per-opcode XDR
// layer from the specification: it declares the shapes, but leaves the
// byte-level marshal work to the generic XDR codec rather than hand-rolling
// a decoder for every NFSv4 attribute bit.
package nfs4

// ============================================================================
// NFSv4 Status Codes (nfsstat4)
// ============================================================================
//
// Per RFC 7530 Section 13 / RFC 5661 Section 15.1.
const (
	NFS4_OK = 0 // Success

	NFS4ERR_PERM        = 1
	NFS4ERR_NOENT       = 2
	NFS4ERR_IO          = 5
	NFS4ERR_NXIO        = 6
	NFS4ERR_ACCESS      = 13
	NFS4ERR_EXIST       = 17
	NFS4ERR_XDEV        = 18
	NFS4ERR_NOTDIR      = 20
	NFS4ERR_ISDIR       = 21
	NFS4ERR_INVAL       = 22
	NFS4ERR_FBIG        = 27
	NFS4ERR_NOSPC       = 28
	NFS4ERR_ROFS        = 30
	NFS4ERR_MLINK       = 31
	NFS4ERR_NAMETOOLONG = 63
	NFS4ERR_NOTEMPTY    = 66
	NFS4ERR_DQUOT       = 69
	NFS4ERR_STALE       = 70

	NFS4ERR_BADHANDLE           = 10001
	NFS4ERR_BAD_COOKIE          = 10003
	NFS4ERR_NOTSUPP             = 10004
	NFS4ERR_TOOSMALL            = 10005
	NFS4ERR_SERVERFAULT         = 10006
	NFS4ERR_BADTYPE             = 10007
	NFS4ERR_DELAY               = 10008
	NFS4ERR_SAME                = 10009
	NFS4ERR_DENIED              = 10010
	NFS4ERR_EXPIRED             = 10011
	NFS4ERR_LOCKED              = 10012
	NFS4ERR_GRACE               = 10013
	NFS4ERR_FHEXPIRED           = 10014
	NFS4ERR_SHARE_DENIED        = 10015
	NFS4ERR_WRONGSEC            = 10016
	NFS4ERR_CLID_INUSE          = 10017
	NFS4ERR_RESOURCE            = 10018
	NFS4ERR_MOVED               = 10019
	NFS4ERR_NOFILEHANDLE        = 10020
	NFS4ERR_MINOR_VERS_MISMATCH = 10021
	NFS4ERR_STALE_CLIENTID      = 10022
	NFS4ERR_STALE_STATEID       = 10023
	NFS4ERR_OLD_STATEID         = 10024
	NFS4ERR_BAD_STATEID         = 10025
	NFS4ERR_BAD_SEQID           = 10026
	NFS4ERR_NOT_SAME            = 10027
	NFS4ERR_LOCK_RANGE          = 10028
	NFS4ERR_SYMLINK             = 10029
	NFS4ERR_RESTOREFH           = 10030
	NFS4ERR_LEASE_MOVED         = 10031
	NFS4ERR_ATTRNOTSUPP         = 10032
	NFS4ERR_NO_GRACE            = 10033
	NFS4ERR_RECLAIM_BAD         = 10034
	NFS4ERR_RECLAIM_CONFLICT    = 10035
	NFS4ERR_BADXDR              = 10036
	NFS4ERR_LOCKS_HELD          = 10037
	NFS4ERR_OPENMODE            = 10038
	NFS4ERR_BADOWNER            = 10039
	NFS4ERR_BADCHAR             = 10040
	NFS4ERR_BADNAME             = 10041
	NFS4ERR_BAD_RANGE           = 10042
	NFS4ERR_LOCK_NOTSUPP        = 10043
	NFS4ERR_OP_ILLEGAL          = 10044
	NFS4ERR_DEADLOCK            = 10045
	NFS4ERR_FILE_OPEN           = 10046
	NFS4ERR_ADMIN_REVOKED       = 10047
	NFS4ERR_CB_PATH_DOWN        = 10048

	// 4.1 additions (RFC 5661 Section 15.1.1.10)
	NFS4ERR_BADSESSION      = 10052
	NFS4ERR_BADSLOT         = 10053
	NFS4ERR_COMPLETE_ALREADY = 10054
	NFS4ERR_SEQ_MISORDERED  = 10063
	NFS4ERR_SEQUENCE_POS    = 10064
	NFS4ERR_REQ_TOO_BIG     = 10065
	NFS4ERR_REP_TOO_BIG     = 10066
	NFS4ERR_TOO_MANY_OPS    = 10070
	NFS4ERR_OP_NOT_IN_SESSION = 10071
)

// ============================================================================
// File Types (nfs_ftype4)
// ============================================================================
const (
	NF4REG       = 1
	NF4DIR       = 2
	NF4BLK       = 3
	NF4CHR       = 4
	NF4LNK       = 5
	NF4SOCK      = 6
	NF4FIFO      = 7
	NF4ATTRDIR   = 8
	NF4NAMEDATTR = 9
)

// ============================================================================
// NFSv4.0 Operation Numbers (nfs_opnum4), RFC 7530 Section 16.1/16.2
// ============================================================================
const (
	OP_ACCESS              = 3
	OP_CLOSE               = 4
	OP_COMMIT              = 5
	OP_CREATE              = 6
	OP_DELEGPURGE          = 7
	OP_DELEGRETURN         = 8
	OP_GETATTR             = 9
	OP_GETFH               = 10
	OP_LINK                = 11
	OP_LOCK                = 12
	OP_LOCKT               = 13
	OP_LOCKU               = 14
	OP_LOOKUP              = 15
	OP_LOOKUPP             = 16
	OP_NVERIFY             = 17
	OP_OPEN                = 18
	OP_OPENATTR            = 19
	OP_OPEN_CONFIRM        = 20
	OP_OPEN_DOWNGRADE      = 21
	OP_PUTFH               = 22
	OP_PUTPUBFH            = 23
	OP_PUTROOTFH           = 24
	OP_READ                = 25
	OP_READDIR             = 26
	OP_READLINK            = 27
	OP_REMOVE              = 28
	OP_RENAME              = 29
	OP_RENEW               = 30
	OP_RESTOREFH           = 31
	OP_SAVEFH              = 32
	OP_SECINFO             = 33
	OP_SETATTR             = 34
	OP_SETCLIENTID         = 35
	OP_SETCLIENTID_CONFIRM = 36
	OP_VERIFY              = 37
	OP_WRITE               = 38
	OP_RELEASE_LOCKOWNER   = 39

	// NFSv4.1 additions, RFC 5661 Section 18
	OP_BACKCHANNEL_CTL   = 40
	OP_BIND_CONN_TO_SESSION = 41
	OP_EXCHANGE_ID       = 42
	OP_CREATE_SESSION    = 43
	OP_DESTROY_SESSION   = 44
	OP_FREE_STATEID      = 45
	OP_GET_DIR_DELEGATION = 46
	OP_SECINFO_NO_NAME   = 52
	OP_SEQUENCE          = 53
	OP_SET_SSV           = 54
	OP_TEST_STATEID      = 55
	OP_WANT_DELEGATION   = 56
	OP_DESTROY_CLIENTID  = 57
	OP_RECLAIM_COMPLETE  = 58

	OP_ILLEGAL = 10044
)

// ============================================================================
// Attribute bitmap positions (FATTR4_*), RFC 7530 Section 5
// ============================================================================
const (
	FATTR4_TYPE        = 1
	FATTR4_SIZE        = 4
	FATTR4_FILEID      = 20
	FATTR4_MODE        = 33
	FATTR4_NUMLINKS    = 35
	FATTR4_OWNER       = 36
	FATTR4_OWNER_GROUP = 37
	FATTR4_RAWDEV      = 41
	FATTR4_TIME_ACCESS = 47
	FATTR4_TIME_METADATA = 52
	FATTR4_TIME_MODIFY = 53
)

// NFS4_FHSIZE is the maximum file handle size in bytes.
const NFS4_FHSIZE = 128

// NFS4_OTHER_SIZE is the size of the "other" (opaque) field of a stateid4.
const NFS4_OTHER_SIZE = 12

// StableHow4 values for WRITE's stable argument.
const (
	UNSTABLE4  = 0
	DATA_SYNC4 = 1
	FILE_SYNC4 = 2
)

// OpenCreate4 values for OPEN's openflag4.
const (
	OPEN4_NOCREATE = 0
	OPEN4_CREATE   = 1
)

// Share access/deny bits for OPEN.
const (
	OPEN4_SHARE_ACCESS_READ  = 0x1
	OPEN4_SHARE_ACCESS_WRITE = 0x2
	OPEN4_SHARE_ACCESS_BOTH  = 0x3

	OPEN4_SHARE_DENY_NONE = 0x0
)
