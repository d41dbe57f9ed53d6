package dccthread

import "sync/atomic"

// Thread is a single user-space thread record (§3). Fields mirror the
// original C struct (name, context, parent context, callback, int
// arg) adapted to Go idiom: the stack arena is kept only as a
// deterministic allocation check (see SPEC_FULL.md §1), since the
// actual call stack used to run entry is the host goroutine's own.
type Thread struct {
	id    int64
	name  string
	state *threadState

	entry func(arg int)
	arg   int

	ctx   *execContext
	stack []byte

	waiters []*Thread
	waitErr error

	// claimed is CAS-guarded and reset to false each time the
	// scheduler dispatches this thread (dispatch, in scheduler.go).
	// Exactly one of (a) this thread's own next library call
	// (Yield/Wait/Exit, or falling off the end of entry) and (b) the
	// preemption monitor's forced yield gets to report this dispatch
	// as over, by winning the CAS. See claimTurnEnd.
	claimed atomic.Bool

	// parked is true exactly when t's goroutine is blocked on, or
	// about to block on, <-t.ctx.resume: at creation (before the
	// first switchTo), and again right before every such receive in
	// Yield/Wait/claimTurnEnd. dispatch only sends on resume when it
	// wins the CAS on this flag; a thread re-enqueued by a forced
	// yield leaves parked false, since its goroutine never stopped
	// running and has no pending receive for dispatch to rendezvous
	// with. Without this, dispatch would block forever trying to
	// switchTo a goroutine that instead falls straight through to
	// termination.
	parked atomic.Bool

	// listPrev/listNext link this Thread into the scheduler's
	// intrusive ready queue (list.go). Valid only while StateReady.
	listPrev, listNext *Thread
}

// Name returns t's name, assigned at Create time.
func (t *Thread) Name() string { return t.name }

// State returns t's current scheduling state.
func (t *Thread) State() ThreadState { return t.state.load() }
