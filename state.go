package dccthread

import "sync/atomic"

// ThreadState is one of the four states a dccthread can occupy (§3).
type ThreadState uint32

const (
	// StateReady indicates the thread sits in the scheduler's run
	// queue, eligible to be switched into.
	StateReady ThreadState = iota
	// StateRunning indicates the thread currently holds the CPU.
	// At most one thread in the whole process is ever in this state.
	StateRunning
	// StateWaiting indicates the thread is blocked inside Wait,
	// parked until its target terminates.
	StateWaiting
	// StateTerminated indicates the thread's entry function returned
	// or called Exit; it is not requeued and never runs again.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateWaiting:
		return "Waiting"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// threadState is a lock-free holder for a ThreadState, CAS-guarded so
// the scheduler goroutine can move a thread's state while other
// goroutines (through Thread.State) read it without a mutex.
type threadState struct {
	v atomic.Uint32
}

func newThreadState(initial ThreadState) *threadState {
	s := &threadState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *threadState) load() ThreadState {
	return ThreadState(s.v.Load())
}

func (s *threadState) store(state ThreadState) {
	s.v.Store(uint32(state))
}

// transition attempts an atomic from->to move, returning false if the
// state had already moved on (e.g. a thread exited between a
// scheduler decision and its execution).
func (s *threadState) transition(from, to ThreadState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
