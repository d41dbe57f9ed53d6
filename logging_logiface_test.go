package dccthread

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
)

// logifaceEvent is a minimal logiface.Event implementation, the same
// shape eventloop's own coverage_extra_test.go uses to exercise its
// Logger adapter path without depending on a concrete sink like zerolog
// or slog.
type logifaceEvent struct {
	logiface.UnimplementedEvent
	level logiface.Level
	msg   string
}

func (e *logifaceEvent) Level() logiface.Level { return e.level }

func (e *logifaceEvent) AddField(key string, val any) {
	if key == "msg" {
		e.msg, _ = val.(string)
	}
}

type logifaceEventFactory struct{}

func (logifaceEventFactory) NewEvent(level logiface.Level) *logifaceEvent {
	return &logifaceEvent{level: level}
}

type logifaceEventWriter struct{ out *bytes.Buffer }

func (w logifaceEventWriter) Write(event *logifaceEvent) error {
	w.out.WriteString(event.level.String() + ": " + event.msg + "\n")
	return nil
}

// logifaceLogger adapts this package's Logger interface onto a
// logiface-backed sink, mirroring eventloop's own documented pattern of
// keeping its native Logger small and adapting logiface behind it in
// tests rather than depending on it from the core package.
type logifaceLogger struct {
	logger *logiface.Logger[logiface.Event]
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return l.logger.Level() != logiface.LevelDisabled
}

func (l *logifaceLogger) Log(entry LogEntry) {
	var b *logiface.Builder[logiface.Event]
	switch {
	case entry.Level >= LevelError:
		b = l.logger.Err()
	case entry.Level >= LevelWarn:
		b = l.logger.Warning()
	case entry.Level >= LevelInfo:
		b = l.logger.Info()
	default:
		b = l.logger.Debug()
	}
	b.Log(entry.Message)
}

func TestLogifaceAdapterWritesThroughToSink(t *testing.T) {
	var buf bytes.Buffer
	typed := logiface.New[*logifaceEvent](
		logiface.WithEventFactory[*logifaceEvent](logifaceEventFactory{}),
		logiface.WithWriter[*logifaceEvent](logifaceEventWriter{out: &buf}),
	)

	adapter := &logifaceLogger{logger: typed.Logger()}
	if !adapter.IsEnabled(LevelInfo) {
		t.Fatal("adapter should report enabled when the underlying logiface logger is not disabled")
	}

	adapter.Log(LogEntry{Level: LevelError, Category: "scheduler", Message: "deadlock detected"})

	if !strings.Contains(buf.String(), "deadlock detected") {
		t.Fatalf("expected the message to reach the logiface sink, got %q", buf.String())
	}
}
