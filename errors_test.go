package dccthread

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapFatalIsSentinel(t *testing.T) {
	err := wrapFatal(ErrDeadlock, "no thread can make progress", nil)
	if !errors.Is(err, ErrDeadlock) {
		t.Fatalf("errors.Is(%v, ErrDeadlock) = false, want true", err)
	}
	if errors.Is(err, ErrAlloc) {
		t.Fatal("errors.Is should not match an unrelated sentinel")
	}
}

func TestWrapFatalCarriesCause(t *testing.T) {
	cause := fmt.Errorf("setitimer: permission denied")
	err := wrapFatal(ErrTimer, "arming preemption timer", cause)
	if !errors.Is(err, ErrTimer) {
		t.Fatal("errors.Is should match the sentinel")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should also match the wrapped cause")
	}

	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As should unwrap to *FatalError")
	}
	if fe.Cause != cause {
		t.Fatalf("fe.Cause = %v, want %v", fe.Cause, cause)
	}
}

func TestFatalErrorMessageFormat(t *testing.T) {
	err := wrapFatal(ErrAlloc, "stack arena", nil)
	want := fmt.Sprintf("%s: stack arena", ErrAlloc)
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	cause := errors.New("out of memory")
	withCause := wrapFatal(ErrAlloc, "stack arena", cause)
	wantWithCause := fmt.Sprintf("%s: stack arena: %s", ErrAlloc, cause)
	if withCause.Error() != wantWithCause {
		t.Fatalf("Error() = %q, want %q", withCause.Error(), wantWithCause)
	}
}
