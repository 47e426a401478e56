// Package chain implements the composite filter/executor of spec.md
// §4.2: tail-to-head chain construction from a persistent
// configuration, feedback-pair wiring, single-threaded execution
// visibility, and cooperative shutdown. Grounded on
// _examples/original_source/scgms/src/composite_filter.{h,cpp} and
// filters.{h,cpp}'s plugin-dispatch creation convention.
package chain

import (
	"fmt"
	"io"
	"sync"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/resultcode"
)

// FilterCreator resolves a filter's kind GUID to an instance wired to
// next, the shape package pluginloader's Loader.CreateFilter satisfies
// — named as an interface here so chain doesn't import pluginloader
// (chain sits above both in the dependency order, but only needs this
// one method).
type FilterCreator interface {
	CreateFilter(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, error)
}

// State is a composite's lifecycle stage (spec.md §4.2's state machine:
// empty → built → executing → refusing → cleared).
type State int32

const (
	StateEmpty State = iota
	StateBuilt
	StateExecuting
	StateRefusing
	StateCleared
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilt:
		return "built"
	case StateExecuting:
		return "executing"
	case StateRefusing:
		return "refusing"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

type builtFilter struct {
	kind   guid.GUID
	filter capability.Filter
	caps   capability.Capabilities
}

// Composite builds, owns, and drives one chain of filter instances.
//
// Locking: a single non-recursive mutex serializes every Execute call,
// per spec.md's REDESIGN FLAGS entry on the shared recursive lock
// ("a single non-recursive mutex suffices if execute is written to
// avoid re-entry within one filter"). Re-entry is avoided structurally:
// forward propagation calls a filter's downstream sink directly
// (never back through Composite.Execute), and feedback injection is
// decoupled through feedbackReceiver's own goroutine (decision 1,
// DESIGN.md) rather than recursing into this lock.
type Composite struct {
	mu    sync.Mutex
	state State

	head    capability.Filter
	filters []builtFilter // head→tail order
	recv    map[string]*feedbackReceiver
}

// Build walks cfg tail→head, instantiating each filter via creator,
// configuring it, wiring feedback pairs, and returning the assembled,
// ready-to-execute composite (spec.md §4.2 build()).
//
// onCreated, if non-nil, is invoked with each filter instance as it's
// built (head-insertion order is irrelevant to the callback; it fires
// in build order, tail-to-head). errList accumulates non-fatal
// diagnostics from Configure.
func Build(cfg *chainconfig.Configuration, creator FilterCreator, terminal capability.Filter, onCreated func(capability.Filter) error, errList *capability.ErrorList) (*Composite, error) {
	c := &Composite{}

	var next capability.Filter = terminal
	var built []builtFilter

	for i := len(cfg.Links) - 1; i >= 0; i-- {
		link := cfg.Links[i]

		f, caps, err := creator.CreateFilter(link.Kind, next)
		if err != nil {
			errList.Add(fmt.Sprintf("cannot-resolve-filter-descriptor: %s: %v", link.Kind, err))
			shutdownPartial(built)
			return nil, resultcode.New(resultcode.NotImpl, "cannot resolve filter "+link.Kind.String())
		}

		if caps.Configure != nil {
			params := make(map[string]*filterparam.Parameter, len(link.Parameters()))
			for _, p := range link.Parameters() {
				params[p.ConfigName()] = p
			}
			if err := caps.Configure(params, errList); err != nil {
				errList.Add(fmt.Sprintf("failed-to-configure-filter: %s: %v", link.Kind, err))
				shutdownPartial(built)
				return nil, resultcode.New(resultcode.Fail, "failed to configure filter "+link.Kind.String())
			}
		}

		if onCreated != nil {
			if err := onCreated(f); err != nil {
				shutdownPartial(built)
				return nil, err
			}
		}

		wrapped := f
		if caps.FeedbackReceiver != nil {
			wrapped = newFeedbackReceiver(f)
		}

		built = append([]builtFilter{{kind: link.Kind, filter: wrapped, caps: caps}}, built...)
		next = wrapped
	}

	recv := make(map[string]*feedbackReceiver, len(built))
	for _, bf := range built {
		if bf.caps.FeedbackReceiver != nil {
			recv[bf.caps.FeedbackReceiver.Name] = bf.filter.(*feedbackReceiver)
		}
	}
	for _, bf := range built {
		if bf.caps.FeedbackSender != nil {
			fr, ok := recv[bf.caps.FeedbackSender.TargetName]
			if !ok {
				shutdownPartial(built)
				return nil, resultcode.New(resultcode.Fail, "feedback-sender-not-connected: "+bf.caps.FeedbackSender.TargetName)
			}
			bf.caps.FeedbackSender.Sink(fr)
		}
	}

	c.filters = built
	c.recv = recv
	if len(built) > 0 {
		c.head = built[0].filter
	}
	c.state = StateBuilt
	return c, nil
}

// shutdownPartial broadcasts a Shut_Down event through the portion of
// the chain already built when Build aborts midway, per spec.md §4.2
// step 2, then releases every built filter.
func shutdownPartial(built []builtFilter) {
	if len(built) == 0 {
		return
	}
	if ev, err := event.Allocate(event.CodeShut_Down); err == nil {
		_ = built[0].filter.Execute(ev)
	}
	releaseFilters(built)
}

func releaseFilters(built []builtFilter) {
	for _, bf := range built {
		if fr, ok := bf.filter.(*feedbackReceiver); ok {
			fr.Close()
		}
		if c, ok := bf.filter.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// State reports the composite's current lifecycle stage.
func (c *Composite) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute forwards ev to the head of the chain under the composite's
// lock (spec.md §4.2 execute()). The composite owns ev's release: on
// the empty-chain or refused-execution paths ev is released here;
// otherwise downstream filters are responsible for releasing it
// exactly once.
func (c *Composite) Execute(ev *event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateCleared || c.state == StateRefusing {
		ev.Release()
		return resultcode.New(resultcode.IllegalMethodCall, "composite refuses further execution")
	}
	if c.head == nil {
		// Empty chain: release without forwarding, per spec.md's
		// empty-composite rule and composite_filter.cpp's
		// "mExecutors.empty()" early return.
		ev.Release()
		return resultcode.New(resultcode.False, "no chain")
	}

	isShutDown := ev.Raw().Code.IsShutDown()
	c.state = StateExecuting
	err := c.head.Execute(ev)
	if isShutDown {
		c.state = StateRefusing
	} else {
		c.state = StateBuilt
	}
	return err
}

// Clear sets the one-way refuse-execute flag, then releases every
// filter in head-to-tail order (spec.md §4.2 clear()). Safe to call
// more than once; subsequent calls are no-ops.
func (c *Composite) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCleared {
		return
	}
	c.state = StateRefusing
	releaseFilters(c.filters)
	c.filters = nil
	c.head = nil
	c.state = StateCleared
}

// Filters returns the kind GUIDs of every built filter, head-to-tail,
// for diagnostics and tests.
func (c *Composite) Filters() []guid.GUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]guid.GUID, len(c.filters))
	for i, bf := range c.filters {
		out[i] = bf.kind
	}
	return out
}
