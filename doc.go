// Package dccthread implements a cooperative-plus-preemptive user-space
// thread library: many logical "threads" multiplexed onto a single OS
// thread by a round-robin scheduler, with a process-CPU-time interval
// timer forcing periodic yields from threads that never call back into
// the library voluntarily.
//
// # Architecture
//
// The scheduler ([Init]) owns one goroutine that runs the scheduling
// loop. Every dccthread ([Create]) is represented by an [execContext]:
// a goroutine parked on a resume channel until the scheduler switches
// into it. A context switch ([switchTo]) is therefore a channel
// handoff, not a register save/restore — Go gives no portable way to
// do the latter from library code.
//
// # Execution Model
//
// Exactly one thread is ever RUNNING at a time (the single-RUNNING
// invariant, enforced by the scheduler's own goroutine being the only
// actor permitted to perform a switch). [Yield] performs a voluntary,
// cooperative switch. The preemption timer performs an involuntary one
// when a thread exhausts its quantum without yielding. [Exit] and
// [Wait] perform terminal and blocking switches respectively.
//
// # Thread Safety
//
// [Create], [Yield], [Exit], [Wait], [Self], and [Name] are safe to
// call only from inside a running dccthread (including the implicit
// main thread created by [Init]); they are not safe to call from an
// arbitrary goroutine outside the scheduler's control, mirroring the
// single-OS-thread assumption of the original ucontext-based design.
//
// # Error Types
//
// Fatal conditions ([ErrReinit], [ErrContext], [ErrTimer], [ErrAlloc],
// [ErrDeadlock]) are returned as wrapped errors rather than causing the
// library to terminate the process itself; translating a fatal error
// into process exit is the caller's responsibility (see cmd/dccthreaddemo
// for the intended pattern).
package dccthread
