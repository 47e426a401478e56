package abi

import (
	"math"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/obslog"
)

// WireEvent is the flattened, C-struct-shaped view of an event (spec.md
// §6 "Event wire shape"): exactly one of Level/Parameters/Info is
// meaningful, selected by Code.Major(), matching TSCGMS_Event_Data's
// field-per-major-type layout in the original's simple_bindings.cpp.
type WireEvent struct {
	Code        event.Code
	DeviceID    guid.GUID
	SignalID    guid.GUID
	DeviceTime  float64
	LogicalTime int64
	SegmentID   int64

	Level      float64
	Parameters []float64
	Info       string
}

func toWireEvent(ev *event.Event) WireEvent {
	raw := ev.Raw()
	w := WireEvent{
		Code:        raw.Code,
		DeviceID:    raw.DeviceID,
		SignalID:    raw.SignalID,
		DeviceTime:  raw.DeviceTime,
		LogicalTime: raw.LogicalTime,
		SegmentID:   raw.SegmentID,
	}
	switch raw.Code.Major() {
	case event.MajorLevel:
		w.Level = raw.Level
	case event.MajorParameters:
		if raw.Parameters != nil {
			w.Parameters = append([]float64(nil), raw.Parameters.Values...)
		}
	case event.MajorInfo, event.MajorError:
		if raw.Info != nil {
			w.Info = raw.Info.Value
		}
	}
	return w
}

// toEvent allocates a fresh *event.Event from the pool and populates it
// from w's flattened fields, for InjectSCGMSEvent's caller-to-chain
// direction.
func (w WireEvent) toEvent() (*event.Event, error) {
	ev, err := event.Allocate(w.Code)
	if err != nil {
		return nil, err
	}
	raw := ev.Raw()
	raw.DeviceID = w.DeviceID
	raw.SignalID = w.SignalID
	raw.DeviceTime = w.DeviceTime
	raw.SegmentID = w.SegmentID
	switch w.Code.Major() {
	case event.MajorLevel:
		raw.Level = w.Level
	case event.MajorParameters:
		raw.Parameters.Values = append([]float64(nil), w.Parameters...)
	case event.MajorInfo, event.MajorError:
		raw.Info.Value = w.Info
	default:
		raw.Level = math.NaN()
	}
	return ev, nil
}

// wireSink adapts a WireEvent callback to capability.Filter, the shape
// Executor's custom-output parameter expects.
type wireSink struct {
	callback func(WireEvent)
}

func (s *wireSink) Execute(ev *event.Event) error {
	s.callback(toWireEvent(ev))
	ev.Release()
	return nil
}

// Session is the simplified one-shot convenience surface of spec.md
// §4.8: one configuration, one running chain, one outgoing-event
// callback, created by Runtime.ExecuteSCGMSConfiguration and driven by
// InjectSCGMSEvent/ShutdownSCGMS, keeping the original's naming.
type Session struct {
	executor *Executor
	errList  *capability.ErrorList
}

// ExecuteSCGMSConfiguration loads configText as an in-memory
// configuration, executes it, and routes every outgoing event to
// callback as a WireEvent. onCreated, if non-nil, observes every built
// filter instance.
func (rt *Runtime) ExecuteSCGMSConfiguration(configText string, callback func(WireEvent), onCreated func(capability.Filter) error) (*Session, error) {
	cfg, err := chainconfig.Load(configText)
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		obslog.Default().Warning().Logf("abi: configuration loaded with warnings: %v", err)
	}

	errList := &capability.ErrorList{}
	exec, buildErr := rt.ExecuteFilterConfiguration(cfg, onCreated, &wireSink{callback: callback}, errList)
	if buildErr != nil {
		return nil, buildErr
	}
	return &Session{executor: exec, errList: errList}, nil
}

// InjectSCGMSEvent converts w to a pooled event and forwards it into
// the session's chain.
func (s *Session) InjectSCGMSEvent(w WireEvent) error {
	ev, err := w.toEvent()
	if err != nil {
		return err
	}
	return s.executor.Execute(ev)
}

// ShutdownSCGMS injects Shut_Down and blocks until the chain's terminal
// has observed it. The chain's filters are not cleared.
func (s *Session) ShutdownSCGMS() error {
	return s.executor.Shutdown()
}

// Errors reports the non-fatal diagnostics accumulated while building
// the session's chain.
func (s *Session) Errors() *capability.ErrorList {
	return s.errList
}
