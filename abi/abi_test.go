package abi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/descriptor"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/pluginloader"
	"github.com/smartcgms-go/core/resultcode"
)

// producerFilter stands in for a real device-event source filter: on
// the CodeSolve_Parameters kickoff it emits a fixed Level sequence
// followed by Shut_Down; any other event is simply released, so
// replaying Shut_Down through it a second time (e.g. Executor.Shutdown
// after the kickoff already delivered one) is a no-op rather than a
// second round of emissions.
type producerFilter struct{ next capability.Filter }

func (f *producerFilter) Execute(ev *event.Event) error {
	isKickoff := ev.Raw().Code == event.CodeSolve_Parameters
	ev.Release()
	if !isKickoff {
		return nil
	}
	for _, lvl := range []float64{1, 2, 3} {
		e, err := event.Allocate(event.CodeLevel)
		if err != nil {
			return err
		}
		e.Raw().Level = lvl
		if err := f.next.Execute(e); err != nil {
			return err
		}
	}
	sd, err := event.Allocate(event.CodeShut_Down)
	if err != nil {
		return err
	}
	return f.next.Execute(sd)
}

// passThroughFilter forwards every event unchanged.
type passThroughFilter struct{ next capability.Filter }

func (f *passThroughFilter) Execute(ev *event.Event) error { return f.next.Execute(ev) }

// inspectorFilter averages forwarded Level values, exposing the
// running average as its last error.
type inspectorFilter struct {
	next  capability.Filter
	mu    sync.Mutex
	sum   float64
	count int
}

func (f *inspectorFilter) Execute(ev *event.Event) error {
	if ev.Raw().Code == event.CodeLevel {
		f.mu.Lock()
		f.sum += ev.Raw().Level
		f.count++
		f.mu.Unlock()
	}
	return f.next.Execute(ev)
}

func (f *inspectorFilter) lastError() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == 0 {
		return 0, false
	}
	return f.sum / float64(f.count), true
}

// newTestRuntime builds an isolated Runtime with a scratch registry and
// loader (never touching the process-wide singletons), registering
// kindProducer/kindPassthrough/kindInspector in-process.
func newTestRuntime(t *testing.T) (*Runtime, guid.GUID, guid.GUID, guid.GUID) {
	t.Helper()

	reg := descriptor.New()
	loader := pluginloader.New(reg)
	rt := New(loader, reg)

	kindProducer, kindPassthrough, kindInspector := guid.New(), guid.New(), guid.New()

	ok := loader.Register(pluginloader.Contribution{
		Path: "in-process",
		CreateFilter: func(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			switch kind {
			case kindProducer:
				return &producerFilter{next: next}, capability.Capabilities{}, resultcode.OK
			case kindPassthrough:
				return &passThroughFilter{next: next}, capability.Capabilities{}, resultcode.OK
			case kindInspector:
				ins := &inspectorFilter{next: next}
				return ins, capability.Capabilities{ErrorInspection: &capability.ErrorInspection{LastError: ins.lastError}}, resultcode.OK
			default:
				return nil, capability.Capabilities{}, resultcode.NotImpl
			}
		},
		FilterDescriptors: []descriptor.FilterDescriptor{
			{Kind: kindProducer, DisplayName: "producer"},
			{Kind: kindPassthrough, DisplayName: "passthrough"},
			{Kind: kindInspector, DisplayName: "inspector", Params: []descriptor.ParamSpec{{Name: "Parameters", Type: filterparam.TypeDoubleArray}}},
		},
	})
	require.True(t, ok)

	return rt, kindProducer, kindPassthrough, kindInspector
}

func TestExecuteFilterConfigurationEndToEnd(t *testing.T) {
	rt, kindProducer, kindPassthrough, _ := newTestRuntime(t)

	cfg := rt.CreatePersistentFilterChainConfiguration()
	cfg.Add(rt.CreateFilterConfigurationLink(kindProducer))
	cfg.Add(rt.CreateFilterConfigurationLink(kindPassthrough))

	var built []capability.Filter
	errList := &capability.ErrorList{}

	exec, err := rt.ExecuteFilterConfiguration(cfg, func(f capability.Filter) error {
		built = append(built, f)
		return nil
	}, nil, errList)
	require.NoError(t, err)
	require.True(t, errList.Empty())
	assert.Len(t, built, 2)

	kickoff, err := rt.CreateDeviceEvent(event.CodeSolve_Parameters)
	require.NoError(t, err)
	require.NoError(t, exec.Execute(kickoff))

	exec.WaitForShutdown()
	exec.Clear()
}

func TestExecuteSCGMSConfigurationConvenienceSurface(t *testing.T) {
	rt, kindProducer, _, _ := newTestRuntime(t)

	cfg := rt.CreatePersistentFilterChainConfiguration()
	cfg.Add(rt.CreateFilterConfigurationLink(kindProducer))
	configText, err := cfg.Save()
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []WireEvent

	session, err := rt.ExecuteSCGMSConfiguration(configText, func(w WireEvent) {
		mu.Lock()
		seen = append(seen, w)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	require.True(t, session.Errors().Empty())

	require.NoError(t, session.InjectSCGMSEvent(WireEvent{Code: event.CodeSolve_Parameters}))
	require.NoError(t, session.ShutdownSCGMS())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 4) // 3 levels + shut_down
	assert.Equal(t, []float64{1, 2, 3}, []float64{seen[0].Level, seen[1].Level, seen[2].Level})
	assert.Equal(t, event.CodeShut_Down, seen[3].Code)
}

func TestOptimizeParametersEndToEnd(t *testing.T) {
	rt, kindProducer, _, kindInspector := newTestRuntime(t)

	cfg := rt.CreatePersistentFilterChainConfiguration()
	cfg.Add(rt.CreateFilterConfigurationLink(kindProducer))

	target := rt.CreateFilterConfigurationLink(kindInspector)
	param := rt.CreateFilterParameter(filterparam.TypeDoubleArray, "Parameters")
	param.SetDoubleArray([]float64{0, 0 /* lower */, 1, 1 /* values */, 5, 5 /* upper */})
	target.SetParameter(param)
	cfg.Add(target)

	ok := rt.Loader.Register(pluginloader.Contribution{
		Path: "in-process-solver",
		SolveGeneric: func(solverID guid.GUID, setup pluginloader.SolverSetup) (pluginloader.SolverProgress, resultcode.Code) {
			fitness, err := setup.Fitness(setup.Hints[0])
			if err != nil {
				return pluginloader.SolverProgress{}, resultcode.Fail
			}
			return pluginloader.SolverProgress{BestSolution: setup.Hints[0], BestFitness: fitness}, resultcode.OK
		},
	})
	require.True(t, ok)

	errList := &capability.ErrorList{}
	progress, err := rt.OptimizeParameters(cfg, 1, "Parameters", guid.New(), 4, 1, nil, nil, errList)
	require.NoError(t, err)
	require.True(t, errList.Empty())

	assert.Equal(t, []float64{1, 1}, progress.BestSolution)
	require.Len(t, progress.BestFitness, 1)
	assert.InDelta(t, 2.0, progress.BestFitness[0], 1e-9) // avg(1,2,3)

	param, okParam := cfg.Links[1].Parameter("Parameters")
	require.True(t, okParam)
	triple, err := param.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 5, 5}, triple)
}

func TestGetFilterDescriptorsEnumeratesRegistered(t *testing.T) {
	rt, kindProducer, kindPassthrough, kindInspector := newTestRuntime(t)

	descs := rt.GetFilterDescriptors()
	require.Len(t, descs, 3)

	kinds := map[guid.GUID]bool{}
	for _, d := range descs {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds[kindProducer])
	assert.True(t, kinds[kindPassthrough])
	assert.True(t, kinds[kindInspector])
}
