package optimizer

import (
	"fmt"
	"io"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chain"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/resultcode"
)

// Target names one model-parameter vector to optimize: the filter's
// 0-based position in the configuration and the config name of its
// lower/value/upper bound-triple parameter (spec.md §4.7).
type Target struct {
	FilterIndex int
	ParamName   string
}

// characteristics is the result of walking a configuration's filter
// kinds to discover the optimizable body's extent and objective count.
// Grounded on Count_Config_Characteristics
// (parameters_optimizer.cpp:380-460).
type characteristics struct {
	bodyBegin      int
	bodyEnd        int
	objectiveCount int
}

// discardSink is the probe terminal used while characterizing: a probe
// filter is only constructed to inspect its returned Capabilities, never
// executed, so its Execute is never actually called in practice.
type discardSink struct{}

func (discardSink) Execute(ev *event.Event) error {
	ev.Release()
	return nil
}

// characterize instantiates every filter in cfg transiently (one probe
// instance each, wired to a discardSink rather than a real chain) to
// discover body_begin (the first filter exposing a feedback receiver,
// or the smallest target filter index, whichever is lower), body_end
// (one past the last filter exposing signal-error inspection or a
// feedback sender), and objective_count (the number of signal-error
// inspectors within [body_begin, body_end)).
func characterize(cfg *chainconfig.Configuration, creator chain.FilterCreator, targets []preparedTarget) (characteristics, error) {
	bodyBegin := -1
	for _, t := range targets {
		if bodyBegin == -1 || t.filterIndex < bodyBegin {
			bodyBegin = t.filterIndex
		}
	}

	bodyEnd := -1
	var objectiveIndexes []int

	for i, link := range cfg.Links {
		f, caps, err := creator.CreateFilter(link.Kind, discardSink{})
		if err != nil {
			return characteristics{}, resultcode.New(resultcode.NotImpl, fmt.Sprintf("cannot-resolve-filter-descriptor: %s: %v", link.Kind, err))
		}

		if caps.FeedbackReceiver != nil && i < bodyBegin {
			bodyBegin = i
		}
		if caps.ErrorInspection != nil {
			objectiveIndexes = append(objectiveIndexes, i)
		}
		if caps.ErrorInspection != nil || caps.FeedbackSender != nil {
			bodyEnd = i + 1
		}

		releaseProbe(f)
	}

	if bodyBegin == -1 || bodyEnd == -1 || bodyBegin >= bodyEnd {
		return characteristics{}, resultcode.New(resultcode.Fail, "unsupported-metric-configuration")
	}

	objectiveCount := 0
	for _, idx := range objectiveIndexes {
		if idx >= bodyBegin && idx < bodyEnd {
			objectiveCount++
		}
	}

	return characteristics{bodyBegin: bodyBegin, bodyEnd: bodyEnd, objectiveCount: objectiveCount}, nil
}

func releaseProbe(f capability.Filter) {
	if c, ok := f.(io.Closer); ok {
		_ = c.Close()
	}
}
