//go:build unix

package dccthread

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// gate implements the Critical-Section Gate (§4.3): the scheduler's
// own run loop must not be forcibly preempted by the timer signal
// while it is mutating shared state (the ready queue, waiter lists).
//
// The atomic flag is the mechanism that is actually always correct:
// the preemption monitor goroutine checks it before acting and simply
// skips a forced yield if the gate is held, trying again on the next
// tick. The unix.PthreadSigmask pair reinforces this at the OS-signal
// level on the scheduler's locked OS thread, masking the same SIGPROF
// that timer_unix.go's ITIMER_PROF actually delivers, but is
// best-effort: Go's runtime does not guarantee signal delivery targets
// a specific goroutine the way it does a specific OS thread.
type gate struct {
	held    atomic.Bool
	sigprof unix.Sigset_t
	masked  bool
}

func newGate() *gate {
	g := &gate{}
	bit := uint(unix.SIGPROF) - 1
	g.sigprof.Val[bit/64] |= 1 << (bit % 64)
	return g
}

// enter must be called from the scheduler's own goroutine, which is
// expected to have called runtime.LockOSThread beforehand so the
// signal mask change applies to a single, stable OS thread.
func (g *gate) enter() {
	g.held.Store(true)
	var old unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &g.sigprof, &old); err == nil {
		g.masked = true
	}
	runtime.Gosched()
}

func (g *gate) exit() {
	if g.masked {
		_ = unix.PthreadSigmask(unix.SIG_UNBLOCK, &g.sigprof, nil)
		g.masked = false
	}
	g.held.Store(false)
}

// blocked reports whether the scheduler currently holds the gate; the
// preemption monitor consults this before forcing a yield.
func (g *gate) blocked() bool { return g.held.Load() }
