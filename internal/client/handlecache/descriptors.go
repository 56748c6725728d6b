package handlecache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// OpenState tracks everything a descriptor needs across the lifetime of an
// openv/readv/writev/closev sequence: its handle, its NFSv4 stateid, and
// the position a subsequent OffsetCurrent reference should use.
type OpenState struct {
	mu sync.Mutex

	Path          string // normalized absolute path, for cache invalidation on rename/remove
	Handle        tcfile.FileHandle
	Stateid       nfs4.Stateid
	SeqID         uint32
	CurrentOffset int64
	ShareAccess   uint32
	dirty         bool // unflushed UNSTABLE4 writes pending a COMMIT
}

// MarkDirty records that an UNSTABLE4 write has landed on this descriptor
// and not yet been committed.
func (s *OpenState) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// ClearDirty records that a COMMIT for this descriptor has completed.
func (s *OpenState) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Dirty reports whether an UNSTABLE4 write is outstanding.
func (s *OpenState) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Advance moves CurrentOffset forward by n bytes, used after every read or
// write made through the descriptor, whatever its offset.
func (s *OpenState) Advance(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentOffset += n
}

// Offset returns the descriptor's tracked current offset.
func (s *OpenState) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CurrentOffset
}

// DescriptorTable assigns and tracks Descriptors for files the client has
// opened. Descriptors are never reused while their entry is live: closev
// removes the entry and any later openv on the same path gets a new one.
type DescriptorTable struct {
	next atomic.Uint32

	mu      sync.RWMutex
	entries map[tcfile.Descriptor]*OpenState
}

// NewDescriptorTable creates an empty table. Descriptor 0 is never issued,
// so a zero-value Descriptor reliably means "not open".
func NewDescriptorTable() *DescriptorTable {
	t := &DescriptorTable{entries: make(map[tcfile.Descriptor]*OpenState)}
	t.next.Store(0)
	return t
}

// Insert assigns a fresh descriptor for the given open state and returns it.
func (t *DescriptorTable) Insert(state *OpenState) tcfile.Descriptor {
	fd := tcfile.Descriptor(t.next.Add(1))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[fd] = state
	return fd
}

// Get returns the open state for fd, or false if it is not (or no longer)
// open.
func (t *DescriptorTable) Get(fd tcfile.Descriptor) (*OpenState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.entries[fd]
	return s, ok
}

// Remove drops fd from the table. Called by closev once the CLOSE op in its
// compound has succeeded.
func (t *DescriptorTable) Remove(fd tcfile.Descriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, fd)
}

// Len reports how many descriptors are currently open.
func (t *DescriptorTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *DescriptorTable) String() string {
	return fmt.Sprintf("DescriptorTable{open=%d}", t.Len())
}
