package dccthread

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// eventKind tags a schedEvent sent from a running thread's own
// goroutine back to the scheduler's run loop.
type eventKind int

const (
	eventYield eventKind = iota
	eventWait
	eventExit
)

// schedEvent is how a thread hands control back to the scheduler
// (§4.4): every requeue and waiter-list mutation that follows a yield,
// wait or exit happens on the scheduler's own goroutine, inside run(),
// after receiving one of these — never from the thread goroutine that
// sent it. The one ready-queue mutation made from a thread goroutine is
// Create's append of the new thread, which, like every other access to
// the ready queue and thread table, is guarded by Scheduler.mu.
type schedEvent struct {
	kind   eventKind
	thread *Thread
	target *Thread // only for eventWait
}

// Scheduler is the process-wide run-queue and dispatcher described in
// §3/§4.4. There is exactly one per process, created by Init.
type Scheduler struct {
	opts *schedulerOptions

	mu      sync.Mutex
	ready   threadList
	threads map[int64]*Thread
	nextID  int64

	current atomic.Pointer[Thread]
	main    *Thread

	events  chan schedEvent
	gate    *gate
	monitor preemptionMonitor
	metrics *metricsCounters
	logger  Logger
}

var (
	globalScheduler atomic.Pointer[Scheduler]
)

// Init starts the scheduler: it creates the implicit main thread
// running entry(arg), schedules it, and blocks the calling goroutine
// running the scheduler loop until every thread has terminated or a
// deadlock is detected. It corresponds to dccthread_init in the
// original assignment, translated to return an error instead of
// calling os.Exit itself (see doc.go).
func Init(entry func(arg int), arg int, opts ...Option) error {
	if !globalScheduler.CompareAndSwap(nil, &Scheduler{}) {
		return wrapFatal(ErrReinit, "Init called more than once", nil)
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		globalScheduler.Store(nil)
		return err
	}

	var metrics *metricsCounters
	if cfg.metricsEnabled {
		metrics = &metricsCounters{}
	}

	s := &Scheduler{
		opts:    cfg,
		threads: make(map[int64]*Thread),
		events:  make(chan schedEvent, 1),
		gate:    newGate(),
		metrics: metrics,
		logger:  cfg.logger,
	}
	globalScheduler.Store(s)

	main, err := s.newThread("main", func(int) { entry(arg) }, 0)
	if err != nil {
		globalScheduler.Store(nil)
		return err
	}
	s.main = main

	s.mu.Lock()
	s.ready.pushBack(main)
	s.mu.Unlock()

	// §1 Non-goals forbids true OS-thread parallelism. Go's own runtime
	// will otherwise happily run every thread's goroutine on a distinct
	// OS thread; pinning GOMAXPROCS to 1 for the lifetime of the
	// scheduler is what makes "at most one thread is ever RUNNING"
	// actually true at the OS level, not just in the state field.
	prevProcs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prevProcs)

	s.monitor = newPreemptionMonitor(cfg.quantum, s.gate, s.forceYield)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := s.monitor.start(); err != nil {
		globalScheduler.Store(nil)
		return err
	}
	defer func() { _ = s.monitor.stop() }()

	err = s.run()
	globalScheduler.Store(nil)
	return err
}

func current() (*Scheduler, *Thread, error) {
	s := globalScheduler.Load()
	if s == nil {
		return nil, nil, wrapFatal(ErrContext, "no scheduler is running; call Init first", nil)
	}
	t := s.current.Load()
	if t == nil {
		return nil, nil, wrapFatal(ErrContext, "no thread is currently running", nil)
	}
	return s, t, nil
}

func (s *Scheduler) newThread(name string, entry func(arg int), arg int) (*Thread, error) {
	stack, err := allocStack(s.opts.stackSize)
	if err != nil {
		return nil, err
	}

	id := atomic.AddInt64(&s.nextID, 1)
	t := &Thread{
		id:    id,
		name:  name,
		state: newThreadState(StateReady),
		entry: entry,
		arg:   arg,
		ctx:   newExecContext(),
		stack: stack,
	}
	// t's goroutine (spawned below) blocks on <-t.ctx.resume before
	// running entry at all, so it starts out parked; dispatch's first
	// switchTo into it always has a receiver waiting.
	t.parked.Store(true)
	s.spawnInto(t)

	s.mu.Lock()
	s.threads[id] = t
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ThreadsCreated.Add(1)
	}
	return t, nil
}

// allocStack reserves a thread's STACK_SIZE arena (§6), recovering
// from an allocation-failure panic and reporting it as ErrAlloc rather
// than crashing the whole process, matching the spec's fatal-error
// contract rather than Go's default behavior for an oversized make.
func allocStack(size int) (stack []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack, err = nil, wrapFatal(ErrAlloc, "failed to allocate thread stack arena", fmt.Errorf("%v", r))
		}
	}()
	return make([]byte, size), nil
}

// spawnInto launches t's goroutine body, wired so that whether t's
// entry function returns normally or calls Exit mid-flight, an
// eventExit is always sent back to the scheduler exactly once.
func (s *Scheduler) spawnInto(t *Thread) {
	go func() {
		<-t.ctx.resume
		s.logger.Log(LogEntry{Level: LevelDebug, Category: "scheduler",
			ThreadID: t.id, ThreadName: t.name, Message: "thread started",
			Context: map[string]any{"goroutine": currentGoroutineID()}})
		t.entry(t.arg)
		// entry returned without calling Exit. Claim this dispatch as
		// over exactly like Exit does (see claimTurnEnd) before
		// reporting termination.
		t.claimTurnEnd()
		s.events <- schedEvent{kind: eventExit, thread: t}
	}()
}

// Create spawns a new thread (§4.5 dccthread_create) and appends it to
// the ready queue. It must be called from inside a running thread.
func Create(name string, entry func(arg int), arg int) (*Thread, error) {
	s, _, err := current()
	if err != nil {
		return nil, err
	}
	t, err := s.newThread(name, entry, arg)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ready.pushBack(t)
	s.mu.Unlock()
	return t, nil
}

// Yield voluntarily relinquishes the CPU, moving the caller to the
// back of the ready queue (§4.5 dccthread_yield).
func Yield() error {
	s, t, err := current()
	if err != nil {
		return err
	}
	t.claimTurnEnd()
	s.events <- schedEvent{kind: eventYield, thread: t}
	t.parked.Store(true)
	<-t.ctx.resume
	return nil
}

// Exit terminates the calling thread (§4.5 dccthread_exit). Like the
// original, it never returns to its caller.
func Exit() {
	s, t, err := current()
	if err != nil {
		// Nothing sensible to do without a scheduler; match Go
		// convention for misuse of a goroutine-local primitive
		// outside its required context.
		panic(err)
	}
	t.claimTurnEnd()
	s.events <- schedEvent{kind: eventExit, thread: t}
	runtime.Goexit()
}

// Wait blocks the caller until target terminates (§4.5
// dccthread_wait), or returns without blocking on target if target has
// already terminated. Returns ErrContext for a nil handle or for a
// target that is neither known to the scheduler nor terminated. If the
// scheduler detects a deadlock, Init returns ErrDeadlock and a caller
// blocked here never returns.
func Wait(target *Thread) error {
	s, t, err := current()
	if err != nil {
		return err
	}
	if target == nil {
		return wrapFatal(ErrContext, "Wait called with a nil thread handle", nil)
	}
	t.claimTurnEnd()
	s.events <- schedEvent{kind: eventWait, thread: t, target: target}
	t.parked.Store(true)
	<-t.ctx.resume
	return t.waitErr
}

// claimTurnEnd settles the race between this thread reaching a
// library call on its own and the preemption monitor having already
// force-yielded it first (see Thread.claimed). If the monitor already
// claimed this dispatch, the thread's reported state (Ready, back in
// the queue) is stale — it is still actually executing, since Go gives
// no way to have suspended it the instant its quantum expired — so it
// waits to be legitimately redispatched (which resets claimed to
// false) before reporting the real, current event. Each such wait is
// itself a parking point, so it is announced via Thread.parked the
// same way Yield/Wait announce theirs, letting dispatch know it must
// actually switchTo rather than skip the send.
func (t *Thread) claimTurnEnd() {
	for !t.claimed.CompareAndSwap(false, true) {
		t.parked.Store(true)
		<-t.ctx.resume
	}
}

// Self returns the handle of the currently running thread.
func Self() (*Thread, error) {
	_, t, err := current()
	return t, err
}

// Name returns t's name (§4.5 dccthread_name).
func Name(t *Thread) string {
	if t == nil {
		return ""
	}
	return t.name
}

// Metrics returns a snapshot of the running scheduler's counters, or
// the zero value if metrics were not enabled via WithMetrics.
func Metrics() MetricsSnapshot {
	s := globalScheduler.Load()
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}

// forceYield is invoked by the preemption monitor on the RUNNING
// thread's behalf when its quantum expires without a voluntary Yield.
func (s *Scheduler) forceYield() {
	t := s.current.Load()
	if t == nil || !t.claimed.CompareAndSwap(false, true) {
		// Either nothing is running yet, or the thread already
		// reported its own turn ending (a voluntary Yield/Wait/Exit
		// raced with this tick); nothing to do either way.
		return
	}
	if s.metrics != nil {
		s.metrics.Preemptions.Add(1)
	}
	s.events <- schedEvent{kind: eventYield, thread: t}
}

// run is the scheduler loop (§4.4): pop the next ready thread, switch
// into it, wait for it to hand control back, apply the resulting
// state transition, repeat until nothing is runnable.
func (s *Scheduler) run() error {
	s.mu.Lock()
	empty := s.ready.empty()
	var next *Thread
	if !empty {
		next = s.ready.popFront()
	}
	s.mu.Unlock()
	if empty {
		return wrapFatal(ErrContext, "scheduler started with an empty ready queue", nil)
	}
	s.dispatch(next)

	for {
		ev := <-s.events
		s.gate.enter()
		s.applyEvent(ev)

		s.mu.Lock()
		empty := s.ready.empty()
		var next *Thread
		if !empty {
			next = s.ready.popFront()
		}
		waiting := s.countWaiting()
		s.mu.Unlock()

		if empty {
			s.gate.exit()
			if waiting == 0 {
				return nil
			}
			return s.declareDeadlock()
		}

		if s.metrics != nil {
			s.metrics.ContextSwitches.Add(1)
		}
		s.dispatch(next)
		s.gate.exit()
	}
}

// dispatch gives t the CPU. If t's goroutine is genuinely parked on
// <-t.ctx.resume (it won the parked CAS), a real switchTo rendezvous
// happens. If t was re-queued by a forced yield, its goroutine never
// stopped running in the first place — there is nothing parked to
// switch into, and sending anyway would block this call forever the
// moment that goroutine runs to completion instead of cooperating
// (see claimTurnEnd and Thread.parked). t simply keeps running
// un-interrupted until it next reaches a library call.
func (s *Scheduler) dispatch(t *Thread) {
	if !t.state.transition(StateReady, StateRunning) {
		panic("dccthread: dispatch target was not Ready")
	}
	t.claimed.Store(false)
	s.current.Store(t)
	if t.parked.CompareAndSwap(true, false) {
		t.ctx.switchTo()
	}
}

func (s *Scheduler) applyEvent(ev schedEvent) {
	switch ev.kind {
	case eventYield:
		if !ev.thread.state.transition(StateRunning, StateReady) {
			panic("dccthread: yield from a non-Running thread")
		}
		s.mu.Lock()
		s.ready.pushBack(ev.thread)
		s.mu.Unlock()
		s.logger.Log(LogEntry{Level: LevelDebug, Category: "scheduler",
			ThreadID: ev.thread.id, ThreadName: ev.thread.name, Message: "yield"})

	case eventWait:
		s.resolveWait(ev.thread, ev.target)

	case eventExit:
		// Terminated is irreversible; Store rather than a from-state
		// CAS, matching the rest of the module's state discipline.
		ev.thread.state.store(StateTerminated)
		s.mu.Lock()
		waiters := ev.thread.waiters
		ev.thread.waiters = nil
		for _, w := range waiters {
			if !w.state.transition(StateWaiting, StateReady) {
				panic("dccthread: released waiter was not Waiting")
			}
			w.waitErr = nil
			s.ready.pushBack(w)
		}
		delete(s.threads, ev.thread.id)
		s.mu.Unlock()
		s.logger.Log(LogEntry{Level: LevelInfo, Category: "join",
			ThreadID: ev.thread.id, ThreadName: ev.thread.name, Message: "terminated"})
	}
}

func (s *Scheduler) resolveWait(waiter, target *Thread) {
	s.mu.Lock()
	_, known := s.threads[target.id]
	s.mu.Unlock()

	if !known && target.State() != StateTerminated {
		if !waiter.state.transition(StateRunning, StateReady) {
			panic("dccthread: wait from a non-Running thread")
		}
		waiter.waitErr = wrapFatal(ErrContext,
			fmt.Sprintf("Wait target %q is not a known thread handle", target.name), nil)
		s.mu.Lock()
		s.ready.pushBack(waiter)
		s.mu.Unlock()
		return
	}

	if target.State() == StateTerminated {
		if !waiter.state.transition(StateRunning, StateReady) {
			panic("dccthread: wait from a non-Running thread")
		}
		waiter.waitErr = nil
		s.mu.Lock()
		s.ready.pushBack(waiter)
		s.mu.Unlock()
		return
	}

	if !waiter.state.transition(StateRunning, StateWaiting) {
		panic("dccthread: wait from a non-Running thread")
	}
	waiter.waitErr = nil
	s.mu.Lock()
	target.waiters = append(target.waiters, waiter)
	s.mu.Unlock()
}

func (s *Scheduler) countWaiting() int {
	n := 0
	for _, t := range s.threads {
		if t.state.load() == StateWaiting {
			n++
		}
	}
	return n
}

// declareDeadlock ends the scheduler loop immediately: the ready queue
// is empty and at least one thread is parked in StateWaiting, so by
// construction nothing can ever move it back to Ready again. Any
// threads still parked in Wait are abandoned along with the scheduler
// loop itself; the caller of Init is the one who finds out.
func (s *Scheduler) declareDeadlock() error {
	if s.metrics != nil {
		s.metrics.DeadlocksDetected.Add(1)
	}
	s.logger.Log(LogEntry{Level: LevelError, Category: "scheduler", Message: "deadlock detected"})
	return wrapFatal(ErrDeadlock, "no thread can make progress", nil)
}
