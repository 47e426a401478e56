// Package capability implements the filter capability-negotiation
// surface of spec.md's REDESIGN FLAGS: rather than the original's
// QueryInterface-style dynamic dispatch, each filter exposes a struct
// of optional function values, and the composite scans these structs
// directly. Grounded on the capability enumeration implied by
// _examples/original_source/scgms/src/filters.h's TLibraryInfo (a
// struct of optional function pointers resolved per dynamic library)
// and composite_filter.cpp's capability-scan logic.
package capability

import (
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/filterparam"
)

// ErrorList collects the typed, accumulating diagnostics threaded
// through build/configure/load/optimize, per spec.md §7.
type ErrorList struct {
	entries []string
}

// Add appends one diagnostic line.
func (e *ErrorList) Add(msg string) {
	e.entries = append(e.entries, msg)
}

// Entries returns the accumulated diagnostics, in order.
func (e *ErrorList) Entries() []string {
	return e.entries
}

// Empty reports whether no diagnostics were recorded.
func (e *ErrorList) Empty() bool {
	return len(e.entries) == 0
}

// Filter is the minimal surface every filter instance must implement:
// accept one event, forwarding or consuming it. Capabilities beyond
// this are optional and are discovered via Capabilities, not via type
// assertions on Filter itself — keeping the composite's capability
// scan a single, uniform mechanism regardless of which capabilities a
// given filter author chose to implement.
type Filter interface {
	Execute(ev *event.Event) error
}

// Capabilities is the struct of optional function values a filter
// factory returns alongside its Filter, naming which extension points
// that particular filter instance participates in. A nil field means
// "this filter does not support that capability" — the composite's
// build/execute logic treats that as a no-op rather than an error,
// except where spec.md calls out a capability as required.
type Capabilities struct {
	// Configure applies parsed parameters to the filter, returning a
	// non-nil error with errList populated with a human-readable cause
	// on failure. Every filter is expected to implement this, as
	// filters.h 's chain build calls Configure unconditionally.
	Configure func(params map[string]*filterparam.Parameter, errList *ErrorList) error

	// FeedbackSender reports the name of the receiver this sender
	// targets, and accepts the bound receiver's Filter once the
	// composite resolves it by name. Present only on filters that
	// inject events backward.
	FeedbackSender *FeedbackSender

	// FeedbackReceiver reports the name this filter is addressed by
	// for backward injection. Present only on filters that accept
	// feedback-injected events.
	FeedbackReceiver *FeedbackReceiver

	// ErrorInspection lets the optimizer (or any caller) pull the last
	// recorded error/fitness observation out of this filter instance
	// without routing it through the event stream.
	ErrorInspection *ErrorInspection

	// DiscreteModelStep marks this filter as a discrete model driven by
	// an external clock; Step advances it by the given interval.
	DiscreteModelStep *DiscreteModelStep
}

// FeedbackSender is the capability a sender-side feedback filter
// exposes: its declared target name, and a sink to bind once the
// composite resolves that name to a receiver filter.
type FeedbackSender struct {
	// TargetName is the declared name of the receiver this sender
	// addresses.
	TargetName string
	// Sink binds the resolved receiver filter. Called at most once,
	// during chain build, after every filter has been instantiated.
	Sink func(receiver Filter)
}

// FeedbackReceiver is the capability a receiver-side feedback filter
// exposes: the name it is addressed by.
type FeedbackReceiver struct {
	// Name is this receiver's declared address, matched against every
	// FeedbackSender.TargetName during chain build.
	Name string
}

// ErrorInspection lets a caller pull a filter's last observed
// error/fitness scalar without an event round-trip (used by the
// optimizer's signal-error inspector filters, spec.md §4.7).
type ErrorInspection struct {
	LastError func() (value float64, ok bool)
}

// DiscreteModelStep lets an external clock step a discrete model filter
// forward by a requested interval, emitting level events as a side
// effect of Step.
type DiscreteModelStep struct {
	Step func(intervalDays float64) error
}
