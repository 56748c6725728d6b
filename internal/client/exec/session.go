package exec

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/marmos91/tcnfs/internal/nfs4"
)

// slot tracks one NFSv4.1 session sequence slot: its monotonically
// increasing sequence id and whether it is currently held by an in-flight
// compound.
type slot struct {
	seqID uint32
	busy  bool
}

// Session owns the fixed-size slot array §5 requires: every in-flight
// compound holds exactly one slot for its SEQUENCE prefix, slots are
// reused once freed, and release order does not matter.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	id    [16]byte
	slots []slot
}

// NewSession allocates a session with slotCount sequence slots, all
// starting at sequence id 0 (the value SEQUENCE expects on a slot's first
// use).
func NewSession(slotCount int) *Session {
	s := &Session{
		id:    uuid.New(),
		slots: make([]slot, slotCount),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID returns the 16-byte sessionid4 this session presents in SEQUENCE.
func (s *Session) ID() [16]byte { return s.id }

// Acquire blocks until a slot is free (or ctx is done) and returns its
// index plus the SEQUENCE args to prefix the next compound with. The
// sequence id is NOT incremented here: NFSv4.1 requires the same seqid be
// resent on a retry of the same slot, so the caller increments only after
// a successful (non-retried) completion via Advance.
func (s *Session) Acquire(ctx context.Context) (int, nfs4.SequenceArgs, error) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return 0, nfs4.SequenceArgs{}, err
		}
		for i := range s.slots {
			if !s.slots[i].busy {
				s.slots[i].busy = true
				return i, nfs4.SequenceArgs{
					SessionID:     s.id,
					SeqID:         s.slots[i].seqID,
					SlotID:        uint32(i),
					HighestSlotID: uint32(len(s.slots) - 1),
				}, nil
			}
		}
		s.cond.Wait()
	}
}

// Advance bumps slotID's sequence id after a successful SEQUENCE reply and
// releases the slot for reuse.
func (s *Session) Advance(slotID int) {
	s.mu.Lock()
	s.slots[slotID].seqID++
	s.slots[slotID].busy = false
	s.mu.Unlock()
	s.cond.Signal()
}

// Release frees slotID without advancing its sequence id, used when a
// compound failed before the server ever processed its SEQUENCE op (so a
// retry must resend the same seqid).
func (s *Session) Release(slotID int) {
	s.mu.Lock()
	s.slots[slotID].busy = false
	s.mu.Unlock()
	s.cond.Signal()
}

// Renew resets every slot's sequence id to 0, used after a BADSESSION
// triggers session re-establishment.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.New()
	for i := range s.slots {
		s.slots[i].seqID = 0
	}
}
