package optimizer

import "github.com/smartcgms-go/core/event"

// replayLog is the captured, reusable head-produced event stream
// (spec.md §4.7 "Head" bullet; GLOSSARY "Replay log"). The master copy
// is captured once via chain.NewCopyingTerminal; every bodyClone drawn
// from an empty pool gets its own Clone of it.
type replayLog struct {
	events []*event.Event
}

// Clone produces an independent copy of the log's event list: each
// event gets its own pooled slot and a fresh logical-time stamp via
// Event.Clone, but shared payloads (Parameters/Info) are still
// reference-counted, not deep-copied, at this level — matching the
// original's Pop_Optimizing_Configuration, which initializes each
// pooled event from the master copy without deep-copying its payload.
// The true payload isolation happens per-injection, in
// injectReplayEvent, exactly once an event is about to be replayed
// against one specific candidate (parameters_optimizer.cpp:770-794).
func (l replayLog) Clone() replayLog {
	if len(l.events) == 0 {
		return replayLog{}
	}
	out := make([]*event.Event, 0, len(l.events))
	for _, ev := range l.events {
		clone, err := ev.Clone()
		if err != nil {
			for _, c := range out {
				c.Release()
			}
			return replayLog{}
		}
		out = append(out, clone)
	}
	return replayLog{events: out}
}

// release drops every event still held by the log, for the case where
// a bodyClone is discarded rather than returned to the pool (e.g. a
// patch failure before any replay was attempted).
func (l replayLog) release() {
	for _, ev := range l.events {
		ev.Release()
	}
}

// injectReplayEvent clones ev once more for one specific injection into
// a candidate's composite, deep-copying the parameter-vector payload
// when present so that filter mutation during this candidate's
// execution can never corrupt the log shared by every other candidate
// drawn from the same bodyClone (Open Question decision 3, SPEC_FULL
// §4: the Parameters_Hint deep-copy asymmetry — info events are never
// captured into the log in the first place, so no equivalent deep copy
// of InfoString is needed here).
func injectReplayEvent(ev *event.Event) (*event.Event, error) {
	clone, err := ev.Clone()
	if err != nil {
		return nil, err
	}
	if clone.Raw().Code.Major() == event.MajorParameters && clone.Raw().Parameters != nil {
		clone.Raw().Parameters = clone.Raw().Parameters.Clone()
	}
	return clone, nil
}
