package event

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/resultcode"
)

// InvalidSegmentID is the reserved sentinel for "no segment assigned".
const InvalidSegmentID int64 = -1

// rationalTimeEpoch is the fixed epoch against which device_time is
// measured, in whole days since the Unix epoch (matches the source's
// Unix_Time_To_Rat_Time, which treats day 0 as 1970-01-01).
const rationalTimeEpoch = 0

var globalLogicalTime int64 // atomic, monotonic across the process

func nextLogicalTime() int64 {
	return atomic.AddInt64(&globalLogicalTime, 1) - 1
}

// UnixToRationalTime converts a wall-clock instant to days since the
// rational-time epoch, the unit device_time is stamped in.
func UnixToRationalTime(t time.Time) float64 {
	return float64(t.Unix())/86400.0 + rationalTimeEpoch
}

// Raw is the flat record carried by an Event: the portion that would
// cross a C ABI boundary as a packed struct (spec.md §6 "Event wire
// shape"). Payload fields are mutually exclusive, selected by
// Code.Major(): Level for MajorLevel, Parameters for MajorParameters,
// Info for MajorInfo/MajorError.
type Raw struct {
	Code        Code
	DeviceID    guid.GUID
	SignalID    guid.GUID
	DeviceTime  float64
	LogicalTime int64
	SegmentID   int64

	Level      float64
	Parameters *ParameterVector
	Info       *InfoString
}

// ParameterVector is a shared, reference-counted ordered sequence of
// float64 values, the payload of a MajorParameters event. Several
// events (the original and its clones) may point at the same vector;
// the last release frees it.
type ParameterVector struct {
	refs   int32 // atomic
	Values []float64
}

func newParameterVector(values []float64) *ParameterVector {
	return &ParameterVector{refs: 1, Values: values}
}

func (p *ParameterVector) addRef() {
	if p != nil {
		atomic.AddInt32(&p.refs, 1)
	}
}

// release drops one reference, returning true when it was the last one.
func (p *ParameterVector) release() bool {
	if p == nil {
		return false
	}
	return atomic.AddInt32(&p.refs, -1) == 0
}

// Clone deep-copies the vector's contents into a fresh, independently
// reference-counted vector. Used by optimizer replay, per spec.md §4.7
// and §9's Parameters_Hint deep-copy asymmetry: replay clones the
// parameter payload explicitly rather than relying on Event.Clone's
// default increment-only behavior.
func (p *ParameterVector) Clone() *ParameterVector {
	if p == nil {
		return nil
	}
	cp := make([]float64, len(p.Values))
	copy(cp, p.Values)
	return newParameterVector(cp)
}

// InfoString is a shared, reference-counted Unicode string, the
// payload of MajorInfo/MajorError events.
type InfoString struct {
	refs  int32 // atomic
	Value string
}

func newInfoString(s string) *InfoString {
	return &InfoString{refs: 1, Value: s}
}

func (i *InfoString) addRef() {
	if i != nil {
		atomic.AddInt32(&i.refs, 1)
	}
}

func (i *InfoString) release() bool {
	if i == nil {
		return false
	}
	return atomic.AddInt32(&i.refs, -1) == 0
}

// Event is a pooled, reference-counted device event. The zero value is
// not usable; construct with Allocate. An Event is owned by exactly one
// holder at a time (spec.md §3); Release transfers it back to the pool
// or, for heap-fallback events, deletes it.
type Event struct {
	raw  Raw
	slot int // index into the pool, or heapSlot if heap-allocated
}

const heapSlot = -1

// Allocate acquires an event from the shared pool (or the heap, on pool
// exhaustion) and initializes it for the given code: logical clock from
// the global counter, device_time from wall-clock, segment_id to
// InvalidSegmentID, and a fresh empty/zero payload of the matching
// major type.
func Allocate(code Code) (*Event, error) {
	ev := defaultPool.alloc()
	if ev == nil {
		return nil, resultcode.New(resultcode.OutOfMemory, "event pool and heap fallback both exhausted")
	}
	ev.initialize(code)
	return ev, nil
}

func (e *Event) initialize(code Code) {
	e.raw = Raw{
		Code:        code,
		DeviceTime:  UnixToRationalTime(time.Now()),
		LogicalTime: nextLogicalTime(),
		SegmentID:   InvalidSegmentID,
	}
	switch code.Major() {
	case MajorInfo, MajorError:
		e.raw.Info = newInfoString("")
	case MajorParameters:
		e.raw.Parameters = newParameterVector(nil)
	default:
		e.raw.Level = math.NaN()
	}
}

// Raw returns a pointer to the event's internal record, for direct
// read/write under the caller's discipline (spec.md §4.1 raw()). The
// pointer is valid only while the caller holds the event.
func (e *Event) Raw() *Raw {
	return &e.raw
}

// Clone bitwise-copies the raw record, assigns a fresh logical-clock
// stamp strictly greater than the source's, and increments the shared
// payload's refcount (it does NOT deep-copy Parameters or Info) — per
// spec.md §4.1's clone() contract. Optimizer replay deep-copies
// explicitly via ParameterVector.Clone when it needs an independent
// copy (see package optimizer).
func (e *Event) Clone() (*Event, error) {
	clone := defaultPool.alloc()
	if clone == nil {
		return nil, resultcode.New(resultcode.OutOfMemory, "event pool and heap fallback both exhausted")
	}
	clone.raw = e.raw
	clone.raw.LogicalTime = nextLogicalTime()
	switch e.raw.Code.Major() {
	case MajorInfo, MajorError:
		clone.raw.Info.addRef()
	case MajorParameters:
		clone.raw.Parameters.addRef()
	}
	return clone, nil
}

// Release drops the event's reference to its shared payload (clearing
// the payload pointer on its last reference), then returns the slot to
// the pool (or leaves the heap-allocated fallback to the garbage
// collector). Release must not fail and is safe to call exactly once
// per held event.
func (e *Event) Release() {
	switch e.raw.Code.Major() {
	case MajorInfo, MajorError:
		if e.raw.Info.release() {
			e.raw.Info = nil
		}
	case MajorParameters:
		if e.raw.Parameters.release() {
			e.raw.Parameters = nil
		}
	}
	if e.slot == heapSlot {
		return
	}
	defaultPool.free(e.slot)
}

// String renders a short diagnostic form, useful in log fields and test
// failure messages.
func (e *Event) String() string {
	return fmt.Sprintf("Event{code=%d logical_time=%d segment=%d}", e.raw.Code, e.raw.LogicalTime, e.raw.SegmentID)
}
