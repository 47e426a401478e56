package chain

import (
	"sync"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/event"
)

// Terminal is the built-in filter placed past the tail of every chain
// (spec.md §4.3): it accepts every event, optionally forwards a clone
// to a user-supplied custom output sink, and latches a condition
// variable on observing Shut_Down that WaitForShutdown blocks on.
type Terminal struct {
	mu       sync.Mutex
	cond     *sync.Cond
	shutdown bool

	custom capability.Filter

	// capture, when non-nil, receives a clone of every non-info event
	// observed (the copying variant used by the optimizer's head
	// replay-log capture, spec.md §4.7).
	capture *[]*event.Event
}

// NewTerminal constructs a terminal optionally forwarding a clone of
// every event to custom (nil disables forwarding).
func NewTerminal(custom capability.Filter) *Terminal {
	t := &Terminal{custom: custom}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// NewCopyingTerminal constructs a terminal that also appends a clone of
// every non-info event to *log, in arrival order.
func NewCopyingTerminal(custom capability.Filter, log *[]*event.Event) *Terminal {
	t := NewTerminal(custom)
	t.capture = log
	return t
}

// Execute implements capability.Filter.
func (t *Terminal) Execute(ev *event.Event) error {
	raw := ev.Raw()
	isShutDown := raw.Code.IsShutDown()

	if t.capture != nil && raw.Code.Major() != event.MajorInfo {
		if clone, err := ev.Clone(); err == nil {
			t.mu.Lock()
			*t.capture = append(*t.capture, clone)
			t.mu.Unlock()
		}
	}

	var err error
	if t.custom != nil {
		if clone, cerr := ev.Clone(); cerr == nil {
			err = t.custom.Execute(clone)
		}
	}
	ev.Release()

	if isShutDown {
		t.mu.Lock()
		t.shutdown = true
		t.cond.Broadcast()
		t.mu.Unlock()
	}
	return err
}

// WaitForShutdown blocks until a Shut_Down event has reached this
// terminal.
func (t *Terminal) WaitForShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.shutdown {
		t.cond.Wait()
	}
}

// ShutdownObserved reports whether Shut_Down has already latched,
// without blocking.
func (t *Terminal) ShutdownObserved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shutdown
}
