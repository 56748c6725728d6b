// Package exec sends a built compound.CompoundPlan to the server and
// decodes its reply, handling the NFSv4.1 SEQUENCE prefix, the session's
// slot array, and the bounded retry policy described in §4.4. It knows
// nothing about IntendedOps, paths, or descriptors; internal/client/dispatch
// owns translating decoded results back into handle-cache and
// descriptor-table updates, since that translation needs the caller's
// original FileRefs that exec intentionally doesn't carry.
package exec

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/internal/logger"
	"github.com/marmos91/tcnfs/internal/metrics"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/internal/rpc"
)

// Executor sends CompoundPlans over a Transport, threading the process's
// session through a SEQUENCE prefix on every call.
type Executor struct {
	Transport rpc.Transport
	Session   *Session
	Cred      rpc.UnixAuth
	Retry     RetryPolicy
	Metrics   *metrics.Metrics
}

// New builds an Executor with the default retry policy.
func New(transport rpc.Transport, session *Session, cred rpc.UnixAuth, m *metrics.Metrics) *Executor {
	return &Executor{Transport: transport, Session: session, Cred: cred, Retry: DefaultRetryPolicy, Metrics: m}
}

// Result is the decoded outcome of one Execute call: the per-op results
// aligned with plan.Ops (SEQUENCE itself is not included), plus the
// overall compound status.
type Result struct {
	Status uint32
	Ops    []nfs4.OpResult
}

// Execute sends plan, retrying per the configured RetryPolicy on
// transport failures and the three retryable NFS statuses named in §4.4.
func (e *Executor) Execute(ctx context.Context, plan compound.CompoundPlan) (Result, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(e.Retry.Backoff(attempt - 1)):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
			e.Metrics.IncRetry()
		}

		res, retryable, err := e.executeOnce(ctx, plan)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable || attempt >= int(e.Retry.MaxRetries) {
			return Result{}, lastErr
		}
		logger.Warn("retrying compound", "attempt", attempt+1, "err", err)
	}
}

// executeOnce performs exactly one attempt: acquire a slot, encode with a
// SEQUENCE prefix, call the transport, decode the reply. The bool return
// reports whether the error (if any) is retryable.
func (e *Executor) executeOnce(ctx context.Context, plan compound.CompoundPlan) (Result, bool, error) {
	var seqArgs nfs4.SequenceArgs
	var slotID int
	if e.Session != nil {
		var err error
		slotID, seqArgs, err = e.Session.Acquire(ctx)
		if err != nil {
			return Result{}, false, err
		}
	}

	ops := make([]nfs4.Op, 0, len(plan.Ops)+1)
	if e.Session != nil {
		ops = append(ops, nfs4.Op{Code: nfs4.OP_SEQUENCE, Arg: seqArgs})
	}
	for _, po := range plan.Ops {
		ops = append(ops, po.Op)
	}

	wire, err := nfs4.EncodeCompound("", 1, ops)
	if err != nil {
		if e.Session != nil {
			e.Session.Release(slotID)
		}
		return Result{}, false, fmt.Errorf("encode compound: %w", err)
	}

	xid := rpc.NextXID()
	callMsg, err := rpc.EncodeCall(rpc.CallHeader{
		XID: xid, Prog: rpc.NFSProgram, Vers: rpc.NFSV4Version, Proc: 1, Cred: e.Cred,
	}, wire)
	if err != nil {
		if e.Session != nil {
			e.Session.Release(slotID)
		}
		return Result{}, false, fmt.Errorf("encode call: %w", err)
	}

	e.Metrics.IncCompound()
	reply, err := e.Transport.Call(ctx, xid, callMsg)
	if err != nil {
		if e.Session != nil {
			e.Session.Release(slotID)
		}
		return Result{}, isTransientRetryable(err), err
	}

	_, payload, err := rpc.DecodeReply(reply)
	if err != nil {
		if e.Session != nil {
			e.Session.Release(slotID)
		}
		return Result{}, false, fmt.Errorf("decode rpc reply: %w", err)
	}

	status, results, err := nfs4.DecodeCompoundReply(payload, ops)
	if err != nil {
		if e.Session != nil {
			e.Session.Release(slotID)
		}
		return Result{}, false, fmt.Errorf("decode compound reply: %w", err)
	}

	if e.Session != nil {
		if retryable, sessionErr := sessionRetryable(status); sessionErr {
			e.Session.Release(slotID)
			if retryable == badSession {
				e.Session.Renew()
			}
			return Result{}, true, &rpc.SessionExpiredError{Status: status}
		}
		e.Session.Advance(slotID)
	}

	if retryableStatus(status) {
		return Result{}, true, fmt.Errorf("nfs status %d", status)
	}

	opResults := results
	if e.Session != nil && len(opResults) > 0 {
		opResults = opResults[1:] // drop the SEQUENCE slot's own result
	}
	return Result{Status: status, Ops: opResults}, false, nil
}

type sessionErrKind int

const (
	noSessionErr sessionErrKind = iota
	badSession
	staleClientID
)

func sessionRetryable(status uint32) (sessionErrKind, bool) {
	switch status {
	case nfs4.NFS4ERR_BADSESSION:
		return badSession, true
	case nfs4.NFS4ERR_STALE_CLIENTID:
		return staleClientID, true
	default:
		return noSessionErr, false
	}
}

// retryableStatus reports the NFS statuses the whole compound is retried
// for per §4.4: NFS4ERR_GRACE and NFS4ERR_DELAY.
func retryableStatus(status uint32) bool {
	return status == nfs4.NFS4ERR_GRACE || status == nfs4.NFS4ERR_DELAY
}

// isTransientRetryable reports whether a transport-level error (connection
// reset, timeout) should trigger a compound retry.
func isTransientRetryable(err error) bool {
	_, ok := err.(*rpc.TransientError)
	return ok
}
