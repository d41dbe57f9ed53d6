package dccthread

import "sync/atomic"

// metricsCounters holds atomic counters accumulated across a
// scheduler's lifetime, enabled via WithMetrics. Deliberately simpler
// than the teacher's latency-percentile Metrics (eventloop/metrics.go):
// nothing in this domain produces a latency distribution worth
// streaming percentile tracking, only monotonic event counts. Kept
// unexported so the package's single public metrics name is the
// Metrics() accessor, mirroring eventloop's own Loop.Metrics() method
// returning a value snapshot rather than exposing its live counters.
type metricsCounters struct {
	ThreadsCreated    atomic.Int64
	ContextSwitches   atomic.Int64
	Preemptions       atomic.Int64
	DeadlocksDetected atomic.Int64
}

// MetricsSnapshot is a point-in-time, non-atomic copy of the
// scheduler's counters, safe to read after the fact. Returned by
// Metrics().
type MetricsSnapshot struct {
	ThreadsCreated    int64
	ContextSwitches   int64
	Preemptions       int64
	DeadlocksDetected int64
}

func (m *metricsCounters) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ThreadsCreated:    m.ThreadsCreated.Load(),
		ContextSwitches:   m.ContextSwitches.Load(),
		Preemptions:       m.Preemptions.Load(),
		DeadlocksDetected: m.DeadlocksDetected.Load(),
	}
}
