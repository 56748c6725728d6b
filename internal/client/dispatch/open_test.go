package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

func TestDispatcherOpenvThenClosev(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4_OK), none(nfs4.OP_LOOKUP, nfs4.NFS4_OK), getfh([]byte{0x0d})}, // lookup "/t" (parent)
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), openOK(), getfh([]byte{0x0f})},                                // open
		{none(nfs4.OP_PUTFH, nfs4.NFS4_OK), none(nfs4.OP_CLOSE, nfs4.NFS4_OK)},                            // close
	})

	specs := []OpenSpec{{Path: "/t/a.txt", ShareAccess: nfs4.OPEN4_SHARE_ACCESS_READ}}
	fds, res := d.Openv(context.Background(), specs, "/")
	require.True(t, res.OK)
	require.Len(t, fds, 1)

	state, ok := d.Descriptors.Get(fds[0])
	require.True(t, ok)
	require.Equal(t, tcfile.FileHandle{0x0f}, state.Handle)

	closeRes := d.Closev(context.Background(), fds)
	require.True(t, closeRes.OK)

	_, stillOpen := d.Descriptors.Get(fds[0])
	require.False(t, stillOpen)
}

func TestDispatcherOpenvFailsOnMissingParent(t *testing.T) {
	d := newDispatcherForTest([][]scriptedOp{
		{none(nfs4.OP_PUTROOTFH, nfs4.NFS4ERR_NOENT)},
	})

	specs := []OpenSpec{{Path: "/missing/a.txt"}}
	fds, res := d.Openv(context.Background(), specs, "/")
	require.False(t, res.OK)
	require.Equal(t, 0, res.FailedIndex)
	require.Equal(t, ENOENT, res.Errno)
	require.Len(t, fds, 1)
}

func TestDispatcherClosevFailsOnUnknownDescriptor(t *testing.T) {
	d := newDispatcherForTest(nil)
	res := d.Closev(context.Background(), []tcfile.Descriptor{9999})
	require.False(t, res.OK)
	require.Equal(t, EBADF, res.Errno)
}
