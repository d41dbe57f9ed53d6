package dccthread

import "testing"

func TestMetricsCountersSnapshot(t *testing.T) {
	var m metricsCounters
	m.ThreadsCreated.Add(3)
	m.ContextSwitches.Add(10)
	m.Preemptions.Add(2)
	m.DeadlocksDetected.Add(1)

	snap := m.snapshot()
	want := MetricsSnapshot{ThreadsCreated: 3, ContextSwitches: 10, Preemptions: 2, DeadlocksDetected: 1}
	if snap != want {
		t.Fatalf("snapshot() = %+v, want %+v", snap, want)
	}
}

func TestMetricsWithoutSchedulerIsZeroValue(t *testing.T) {
	if got := Metrics(); got != (MetricsSnapshot{}) {
		t.Fatalf("Metrics() with no scheduler running = %+v, want zero value", got)
	}
}
