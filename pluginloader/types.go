// Package pluginloader implements the process-wide, lazily-initialized
// plugin registry of spec.md §4.6: dynamic-library discovery under a
// well-known solvers/ directory, C-ABI-style factory/descriptor symbol
// resolution, and dispatch-until-first-success creation semantics.
// Grounded on
// _examples/original_source/scgms/src/filters.{h,cpp}'s
// CLoaded_Filters (load_libraries, Call_Func, create_*_body).
package pluginloader

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/descriptor"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/resultcode"
)

// FilterFactory instantiates a filter of the given kind, wired to
// downstream output next (spec.md §4.2's build-tail-to-head convention).
type FilterFactory func(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code)

// Metric is the minimal shape a plugin-contributed fitness metric
// exposes: accumulate a sample, read back the aggregate, reset between
// time segments.
type Metric interface {
	Accumulate(level float64)
	Calculate() (value float64, ok bool)
	Reset()
}

// MetricFactory instantiates a metric of the given kind.
type MetricFactory func(metricID guid.GUID) (Metric, resultcode.Code)

// Signal is the minimal shape a plugin-contributed calculated/filtered
// signal exposes: sample a level at a rational time.
type Signal interface {
	Get(rationalTime float64) (level float64, ok bool)
}

// SignalFactory instantiates a calculated signal, optionally backed by
// an approximator.
type SignalFactory func(calcID, approxID guid.GUID) (Signal, resultcode.Code)

// DiscreteModel is the minimal shape a plugin-contributed discrete
// simulation model exposes: advance by an interval, emitting events to
// its configured output filter as a side effect.
type DiscreteModel interface {
	Step(intervalDays float64) error
}

// DiscreteModelFactory instantiates a discrete model, wired to output.
type DiscreteModelFactory func(modelID guid.GUID, params []float64, output capability.Filter) (DiscreteModel, resultcode.Code)

// Approximator is the minimal shape a plugin-contributed signal
// approximation strategy exposes.
type Approximator interface {
	GetLevels(times []float64) []float64
}

// ApproximatorFactory instantiates an approximator bound to signal.
type ApproximatorFactory func(approxID guid.GUID, signal Signal) (Approximator, resultcode.Code)

// SolverSetup is the input a generic solver plugin drives: bounds,
// population/generation limits, optional seed hints, and the fitness
// callback the solver invokes once per candidate (spec.md §4.7's
// calculate_fitness, crossing from the optimizer into the solver).
type SolverSetup struct {
	LowerBounds    []float64
	UpperBounds    []float64
	Hints          [][]float64
	PopulationSize int
	MaxGenerations int
	Fitness        func(candidate []float64) (fitness []float64, err error)
	Progress       func(generation, maxGenerations int)
}

// SolverProgress is a generic solver plugin's terminal result.
type SolverProgress struct {
	BestSolution []float64
	BestFitness  []float64
}

// SolverFactory runs a generic solver to completion against setup.
type SolverFactory func(solverID guid.GUID, setup SolverSetup) (SolverProgress, resultcode.Code)

// Contribution is everything one discovered library may export: any
// subset of factory entry points and any subset of descriptor tables
// (spec.md §4.6: "each plugin exports any subset of the factory and
// descriptor C symbols"). A library is retained only if at least one
// field is populated (has returns true).
type Contribution struct {
	Path string

	CreateFilter        FilterFactory
	CreateMetric        MetricFactory
	CreateSignal        SignalFactory
	CreateDiscreteModel DiscreteModelFactory
	CreateApproximator  ApproximatorFactory
	SolveGeneric        SolverFactory

	FilterDescriptors []descriptor.FilterDescriptor
	ModelDescriptors  []descriptor.ModelDescriptor
	MetricDescriptors []descriptor.MetricDescriptor
	SolverDescriptors []descriptor.SolverDescriptor
	SignalDescriptors []descriptor.SignalDescriptor
	ApproxDescriptors []descriptor.ApproxDescriptor
}

func (c Contribution) hasFactory() bool {
	return c.CreateFilter != nil || c.CreateMetric != nil || c.CreateSignal != nil ||
		c.CreateDiscreteModel != nil || c.CreateApproximator != nil || c.SolveGeneric != nil
}

func (c Contribution) hasDescriptors() bool {
	return len(c.FilterDescriptors) > 0 || len(c.ModelDescriptors) > 0 || len(c.MetricDescriptors) > 0 ||
		len(c.SolverDescriptors) > 0 || len(c.SignalDescriptors) > 0 || len(c.ApproxDescriptors) > 0
}

// has reports whether the contribution resolved at least one symbol,
// the condition under which load_libraries retains the library.
func (c Contribution) has() bool {
	return c.hasFactory() || c.hasDescriptors()
}
