package optimizer

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chain"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/resultcode"
)

// fetchEventsToReplay builds headCfg once, drives it with a single
// CodeSolve_Parameters kickoff event, and captures every non-info event
// it emits into a replayLog — the "Head ... executed once against a
// copying terminal" step of spec.md §4.7. Grounded on
// Fetch_Events_To_Replay (parameters_optimizer.cpp's use of
// CCopying_Terminal_Filter).
func fetchEventsToReplay(headCfg *chainconfig.Configuration, creator chain.FilterCreator, onFilterCreated func(capability.Filter) error, errList *capability.ErrorList) (replayLog, error) {
	var captured []*event.Event
	term := chain.NewCopyingTerminal(nil, &captured)

	composite, err := chain.Build(headCfg, creator, term, onFilterCreated, errList)
	if err != nil {
		return replayLog{}, resultcode.New(resultcode.Fail, "failed to build head chain: "+err.Error())
	}

	kickoff, err := event.Allocate(event.CodeSolve_Parameters)
	if err != nil {
		composite.Clear()
		return replayLog{}, err
	}
	if err := composite.Execute(kickoff); err != nil {
		composite.Clear()
		return replayLog{}, resultcode.New(resultcode.Fail, "failed to drive head chain: "+err.Error())
	}

	term.WaitForShutdown()
	composite.Clear()

	return replayLog{events: captured}, nil
}
