package dccthread

import "time"

// DefaultQuantum is the QUANTUM named in §4.2: the process-CPU-time
// slice a RUNNING thread is allotted before the scheduler forces a
// yield on its behalf.
const DefaultQuantum = 10 * time.Millisecond

// preemptionMonitor is implemented per-platform (timer_unix.go,
// timer_windows.go) since the underlying primitive differs: a real
// process CPU-time interval timer delivering SIGPROF on unix, a soft
// wall-clock time.Ticker on windows (which has no setitimer/SIGPROF
// equivalent available to a Go process).
type preemptionMonitor interface {
	start() error
	stop() error
}
