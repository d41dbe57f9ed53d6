package dccthread

import "runtime"

// execContext is the Go stand-in for the ucontext_t-based Execution
// Context Switcher (§4.1). Go gives no portable way for library code
// to save and restore raw register/stack state, so a "context" here is
// a goroutine parked on resume until the scheduler switches into it,
// and a "context switch" is a channel handoff rather than a
// setjmp/longjmp-style trampoline. The goroutine body itself lives in
// Scheduler.spawnInto; the way back to the scheduler is the scheduler's
// events channel, sent on by Yield, Wait, Exit, spawnInto (when entry
// returns) and the preemption monitor's forceYield.
type execContext struct {
	resume chan struct{}
}

func newExecContext() *execContext {
	return &execContext{resume: make(chan struct{})}
}

// switchTo resumes the target context. It is only ever called from
// the scheduler's own goroutine.
func (c *execContext) switchTo() {
	c.resume <- struct{}{}
}

// currentGoroutineID extracts the calling goroutine's runtime ID by
// parsing the "goroutine N [...]" header runtime.Stack always writes
// first. There is no supported API for this; parsing the debug dump is
// the accepted lightweight technique for attaching an ID to log
// entries without adding a dependency.
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id int64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + int64(buf[i]-'0')
	}
	return id
}
