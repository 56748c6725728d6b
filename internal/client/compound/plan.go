package compound

import "github.com/marmos91/tcnfs/internal/nfs4"

// Role tags why an opcode was emitted, letting the executor decide which
// results matter to the caller and which are scaffolding.
type Role int

const (
	RoleSetup Role = iota
	RolePayload
	RoleTeardown
)

func (r Role) String() string {
	switch r {
	case RoleSetup:
		return "setup"
	case RolePayload:
		return "payload"
	case RoleTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// PlanOp is one opcode within a CompoundPlan, carrying enough bookkeeping
// for the executor to route its decoded result and for the builder's
// sharing rules to reason about what FileHandle is current.
type PlanOp struct {
	Op        nfs4.Op
	Role      Role
	BackIndex int // index into the originating IntendedOp slice, or -1
}

// CompoundPlan is one COMPOUND4args worth of opcodes, ready for
// internal/nfs4.EncodeCompound. Only its payload ops (see PayloadCount) are
// held to the builder's Capacity; setup and teardown ops come on top.
type CompoundPlan struct {
	Ops []PlanOp

	// OpIndices lists, for each IntendedOp touched by this shard, the
	// IntendedOp's original batch index — used by the executor to know
	// which Result Vector slots this shard can fill.
	OpIndices []int

	// UnstableWritePending records whether any WRITE in this plan used
	// UNSTABLE4, in which case the builder appends a trailing COMMIT.
	UnstableWritePending bool
}

// PayloadCount reports how many ops in the plan carry Role == RolePayload.
// The builder's capacity check only counts these toward
// MAX_OPS_PER_COMPOUND for READ/WRITE per §4.3: setup/teardown scaffolding
// does not count against the payload-op cap.
func (p CompoundPlan) PayloadCount() int {
	n := 0
	for _, op := range p.Ops {
		if op.Role == RolePayload {
			n++
		}
	}
	return n
}
