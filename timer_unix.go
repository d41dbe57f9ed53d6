//go:build unix

package dccthread

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// unixPreemptionMonitor arms a real ITIMER_PROF interval timer and
// listens for the SIGPROF it delivers, forcing a yield on each tick
// unless the scheduler currently holds the Critical-Section Gate.
// Grounded on the teacher's own per-platform real-syscall file split
// (wakeup_linux.go), here applied to unix.Setitimer instead of
// eventfd.
type unixPreemptionMonitor struct {
	quantum time.Duration
	onFire  func()
	gate    *gate

	sigCh  chan os.Signal
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newPreemptionMonitor(quantum time.Duration, g *gate, onFire func()) preemptionMonitor {
	return &unixPreemptionMonitor{quantum: quantum, onFire: onFire, gate: g}
}

func (m *unixPreemptionMonitor) start() error {
	m.sigCh = make(chan os.Signal, 4)
	m.stopCh = make(chan struct{})
	signal.Notify(m.sigCh, syscall.SIGPROF)

	iv := itimervalFor(m.quantum)
	if _, err := unix.Setitimer(unix.ITIMER_PROF, iv); err != nil {
		signal.Stop(m.sigCh)
		return wrapFatal(ErrTimer, "setitimer(ITIMER_PROF)", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-m.sigCh:
				if !m.gate.blocked() {
					m.onFire()
				}
			case <-m.stopCh:
				return
			}
		}
	}()
	return nil
}

func (m *unixPreemptionMonitor) stop() error {
	var zero unix.Itimerval
	_, err := unix.Setitimer(unix.ITIMER_PROF, zero)
	signal.Stop(m.sigCh)
	close(m.stopCh)
	m.wg.Wait()
	if err != nil {
		return wrapFatal(ErrTimer, "disarm setitimer(ITIMER_PROF)", err)
	}
	return nil
}

func itimervalFor(d time.Duration) unix.Itimerval {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.Itimerval{Interval: tv, Value: tv}
}
