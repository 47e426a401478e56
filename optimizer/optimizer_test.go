package optimizer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/pluginloader"
)

// passThroughFilter forwards every event unchanged.
type passThroughFilter struct{ next capability.Filter }

func (f *passThroughFilter) Execute(ev *event.Event) error { return f.next.Execute(ev) }

// producerFilter stands in for the head's real data source: on the
// CodeSolve_Parameters kickoff it emits a fixed sequence of Level
// events followed by Shut_Down, independent of anything downstream.
type producerFilter struct{ next capability.Filter }

func (f *producerFilter) Execute(ev *event.Event) error {
	isKickoff := ev.Raw().Code == event.CodeSolve_Parameters
	ev.Release()
	if !isKickoff {
		return nil
	}
	for _, lvl := range []float64{2, 4, 6} {
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

// inspectorFilter is a toy signal-error inspector: it averages every
// Level value it forwards and exposes that average as its last error.
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

// fakeCreator dispatches CreateFilter by kind GUID, mirroring the shape
// chain.FilterCreator/pluginloader.Loader.CreateFilter expose.
type fakeCreator struct {
	kinds map[guid.GUID]func(next capability.Filter) (capability.Filter, capability.Capabilities, error)
}

func (c *fakeCreator) CreateFilter(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, error) {
	fn, ok := c.kinds[kind]
	if !ok {
		return nil, capability.Capabilities{}, fmt.Errorf("unknown filter kind %s", kind)
	}
	return fn(next)
}

// fakeSolver is a minimal generic-solver stand-in: it evaluates exactly
// one candidate (the first hint) and reports it as the best solution.
type fakeSolver struct{}

func (fakeSolver) SolveGeneric(_ guid.GUID, setup pluginloader.SolverSetup) (pluginloader.SolverProgress, error) {
	fitness, err := setup.Fitness(setup.Hints[0])
	if err != nil {
		return pluginloader.SolverProgress{}, err
	}
	return pluginloader.SolverProgress{BestSolution: setup.Hints[0], BestFitness: fitness}, nil
}

// buildWorkedExampleConfig assembles spec.md §8 scenario 5's six-filter
// configuration: filter 2 is a feedback receiver, filter 4 is a
// signal-error inspector, filter 5 is a display-only tail sink, and
// filter 3's "Parameters" vector (n=2, bounds [0,10]) is the optimized
// target. Expected slicing: head=[0,2), body=[2,5), tail=[5,6).
func buildWorkedExampleConfig(t *testing.T) (*chainconfig.Configuration, *fakeCreator, guid.GUID) {
	t.Helper()

	k0, k1, k2, k3, k4, k5 := guid.New(), guid.New(), guid.New(), guid.New(), guid.New(), guid.New()

	creator := &fakeCreator{kinds: map[guid.GUID]func(next capability.Filter) (capability.Filter, capability.Capabilities, error){
		k0: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			return &producerFilter{next: next}, capability.Capabilities{}, nil
		},
		k1: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			return &passThroughFilter{next: next}, capability.Capabilities{}, nil
		},
		k2: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			return &passThroughFilter{next: next}, capability.Capabilities{FeedbackReceiver: &capability.FeedbackReceiver{Name: "fb"}}, nil
		},
		k3: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			return &passThroughFilter{next: next}, capability.Capabilities{}, nil
		},
		k4: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			ins := &inspectorFilter{next: next}
			return ins, capability.Capabilities{ErrorInspection: &capability.ErrorInspection{LastError: ins.lastError}}, nil
		},
		k5: func(next capability.Filter) (capability.Filter, capability.Capabilities, error) {
			return &passThroughFilter{next: next}, capability.Capabilities{}, nil
		},
	}}

	link3 := chainconfig.NewLink(k3)
	param := filterparam.New(filterparam.TypeDoubleArray, "Parameters")
	param.SetDoubleArray([]float64{0, 0 /* lower */, 1, 2 /* values */, 10, 10 /* upper */})
	link3.SetParameter(param)

	cfg := &chainconfig.Configuration{Links: []*chainconfig.FilterConfigurationLink{
		chainconfig.NewLink(k0),
		chainconfig.NewLink(k1),
		chainconfig.NewLink(k2),
		link3,
		chainconfig.NewLink(k4),
		chainconfig.NewLink(k5),
	}}

	return cfg, creator, k0
}

func TestCharacterizeMatchesWorkedExampleSlicing(t *testing.T) {
	cfg, creator, _ := buildWorkedExampleConfig(t)
	targets := []Target{{FilterIndex: 3, ParamName: "Parameters"}}

	errList := &capability.ErrorList{}
	prob, err := prepareParameters(cfg, targets, errList)
	require.NoError(t, err)

	chars, err := characterize(cfg, creator, prob.targets)
	require.NoError(t, err)

	assert.Equal(t, 2, chars.bodyBegin)
	assert.Equal(t, 5, chars.bodyEnd)
	assert.Equal(t, 1, chars.objectiveCount)
}

func TestOptimizeWritesBackSolvedParameters(t *testing.T) {
	cfg, creator, _ := buildWorkedExampleConfig(t)
	targets := []Target{{FilterIndex: 3, ParamName: "Parameters"}}

	d := NewDriver(creator, fakeSolver{})
	errList := &capability.ErrorList{}

	progress, err := d.Optimize(cfg, targets, guid.New(), 4, 1, nil, nil, errList)
	require.NoError(t, err)
	require.True(t, errList.Empty())

	assert.Equal(t, []float64{1, 2}, progress.BestSolution)
	require.Len(t, progress.BestFitness, 1)
	assert.InDelta(t, 4.0, progress.BestFitness[0], 1e-9) // avg(2,4,6)

	param, ok := cfg.Links[3].Parameter("Parameters")
	require.True(t, ok)
	triple, err := param.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 2, 10, 10}, triple)
}

func TestOptimizeRejectsZeroTargets(t *testing.T) {
	cfg, creator, _ := buildWorkedExampleConfig(t)
	d := NewDriver(creator, fakeSolver{})
	errList := &capability.ErrorList{}

	_, err := d.Optimize(cfg, nil, guid.New(), 4, 1, nil, nil, errList)
	require.Error(t, err)
	assert.Contains(t, errList.Entries(), "parameters-to-optimize-not-found")
}

func TestCalculateFitnessEvaluatesCandidatesConcurrently(t *testing.T) {
	cfg, creator, _ := buildWorkedExampleConfig(t)
	targets := []Target{{FilterIndex: 3, ParamName: "Parameters"}}

	d := NewDriver(creator, fakeSolver{})
	errList := &capability.ErrorList{}

	candidates := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	results, err := d.CalculateFitness(cfg, targets, candidates, nil, errList)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, fitness := range results {
		require.Len(t, fitness, 1)
		assert.InDelta(t, 4.0, fitness[0], 1e-9)
	}
}

func TestBoundsPatchAndWriteBackRoundTrip(t *testing.T) {
	cfg, _, _ := buildWorkedExampleConfig(t)
	targets := []Target{{FilterIndex: 3, ParamName: "Parameters"}}
	errList := &capability.ErrorList{}

	prob, err := prepareParameters(cfg, targets, errList)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, prob.lower)
	assert.Equal(t, []float64{1, 2}, prob.initial)
	assert.Equal(t, []float64{10, 10}, prob.upper)

	body := sliceConfiguration(cfg, 2, 5)
	require.NoError(t, patchCandidateIntoClone(body, 2, prob, []float64{7, 8}))

	patched, ok := body.Links[1].Parameter("Parameters") // body index 1 == cfg index 3
	require.True(t, ok)
	arr, err := patched.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 7, 8, 10, 10}, arr)

	// the clone's mutation must never reach the original configuration.
	original, ok := cfg.Links[3].Parameter("Parameters")
	require.True(t, ok)
	arr, err = original.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 2, 10, 10}, arr)

	require.NoError(t, writeBackParameters(cfg, prob, []float64{9, 9}))
	arr, err = original.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 9, 9, 10, 10}, arr)
}
