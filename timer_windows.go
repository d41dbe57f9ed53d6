//go:build windows

package dccthread

import (
	"sync"
	"time"
)

// windowsPreemptionMonitor is a soft fallback: Windows has no
// setitimer/SIGPROF equivalent reachable from a Go process, so
// preemption here is driven by a wall-clock time.Ticker instead of a
// real process-CPU-time signal. This is an honest degradation, not a
// faithful translation of §4.2, and is documented as such in
// DESIGN.md.
type windowsPreemptionMonitor struct {
	quantum time.Duration
	onFire  func()
	gate    *gate

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newPreemptionMonitor(quantum time.Duration, g *gate, onFire func()) preemptionMonitor {
	return &windowsPreemptionMonitor{quantum: quantum, onFire: onFire, gate: g}
}

func (m *windowsPreemptionMonitor) start() error {
	m.stopCh = make(chan struct{})
	ticker := time.NewTicker(m.quantum)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
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

func (m *windowsPreemptionMonitor) stop() error {
	close(m.stopCh)
	m.wg.Wait()
	return nil
}
