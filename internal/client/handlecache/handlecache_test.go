package handlecache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/tcnfs/pkg/tcfile"
)

func TestHandleCacheLookupCachesResult(t *testing.T) {
	var calls atomic.Int32
	c := New(func(ctx context.Context, path string) (tcfile.FileHandle, error) {
		calls.Add(1)
		return tcfile.FileHandle{0x01}, nil
	})

	h1, err := c.Lookup(context.Background(), "/a/b")
	require.NoError(t, err)
	h2, err := c.Lookup(context.Background(), "/a/b")
	require.NoError(t, err)

	require.True(t, h1.Equal(h2))
	require.EqualValues(t, 1, calls.Load())
}

func TestHandleCacheDedupesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := New(func(ctx context.Context, path string) (tcfile.FileHandle, error) {
		calls.Add(1)
		<-release
		return tcfile.FileHandle{0x02}, nil
	})

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := c.Lookup(context.Background(), "/shared")
			return err
		})
	}

	close(release)
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, calls.Load())
}

func TestHandleCacheInvalidate(t *testing.T) {
	c := New(func(ctx context.Context, path string) (tcfile.FileHandle, error) {
		return tcfile.FileHandle{0x03}, nil
	})

	_, err := c.Lookup(context.Background(), "/x")
	require.NoError(t, err)
	_, ok := c.Peek("/x")
	require.True(t, ok)

	c.Invalidate("/x")
	_, ok = c.Peek("/x")
	require.False(t, ok)
}

func TestDescriptorTableNeverIssuesZero(t *testing.T) {
	dt := NewDescriptorTable()
	fd := dt.Insert(&OpenState{})
	require.NotZero(t, fd)
}

func TestDescriptorTableGetAndRemove(t *testing.T) {
	dt := NewDescriptorTable()
	state := &OpenState{Handle: tcfile.FileHandle{0x09}}
	fd := dt.Insert(state)

	got, ok := dt.Get(fd)
	require.True(t, ok)
	require.True(t, got.Handle.Equal(state.Handle))

	dt.Remove(fd)
	_, ok = dt.Get(fd)
	require.False(t, ok)
}

func TestOpenStateAdvanceAndDirty(t *testing.T) {
	s := &OpenState{}
	s.Advance(100)
	require.EqualValues(t, 100, s.Offset())

	require.False(t, s.Dirty())
	s.MarkDirty()
	require.True(t, s.Dirty())
	s.ClearDirty()
	require.False(t, s.Dirty())
}
