package abi

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chain"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/resultcode"
)

// Executor is a built, running chain: the head of the composite plus
// its terminal, the handle ExecuteFilterConfiguration returns
// (spec.md §4.8's out-executor).
type Executor struct {
	composite *chain.Composite
	terminal  *chain.Terminal
}

// ExecuteFilterConfiguration builds cfg's chain and returns a running
// Executor (spec.md §4.8's execute_filter_configuration). onCreated, if
// non-nil, is invoked with every filter instance in build order.
// customOutput, if non-nil, receives a clone of every event the chain's
// tail emits — the embedder's read-side hook into an otherwise
// fire-and-forget chain. Build diagnostics accumulate into errList.
func (rt *Runtime) ExecuteFilterConfiguration(cfg *chainconfig.Configuration, onCreated func(capability.Filter) error, customOutput capability.Filter, errList *capability.ErrorList) (*Executor, error) {
	term := chain.NewTerminal(customOutput)
	composite, err := chain.Build(cfg, rt.Loader, term, onCreated, errList)
	if err != nil {
		return nil, err
	}
	return &Executor{composite: composite, terminal: term}, nil
}

// Execute forwards ev into the chain's head.
func (x *Executor) Execute(ev *event.Event) error {
	return x.composite.Execute(ev)
}

// Shutdown injects a Shut_Down event, the cooperative-teardown signal
// of spec.md §5, then blocks until the terminal observes it.
func (x *Executor) Shutdown() error {
	sd, err := event.Allocate(event.CodeShut_Down)
	if err != nil {
		return err
	}
	if err := x.composite.Execute(sd); err != nil {
		return resultcode.New(resultcode.Fail, "shutdown: "+err.Error())
	}
	x.terminal.WaitForShutdown()
	return nil
}

// WaitForShutdown blocks until Shut_Down has reached the terminal,
// without injecting it — for an embedder driving shutdown itself via
// Execute.
func (x *Executor) WaitForShutdown() {
	x.terminal.WaitForShutdown()
}

// Clear releases every filter in the chain. Safe to call after
// Shutdown, or instead of it to abandon a chain mid-flight.
func (x *Executor) Clear() {
	x.composite.Clear()
}
