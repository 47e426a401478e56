// Package optimizer implements the parameter-optimizer driver of
// spec.md §4.7: chain characterization into head/body/tail, a
// thread-safe body-clone pool, replay-log-driven candidate fitness
// evaluation, parallel dispatch across candidates, and post-solve
// recomputation with write-back. Grounded on
// _examples/original_source/scgms/src/parameters_optimizer.{h,cpp}'s
// CParameters_Optimizer.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chain"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/pluginloader"
	"github.com/smartcgms-go/core/resultcode"
)

// MaxObjectives bounds objective_count, per spec.md §4.7 ("Must be in
// [1, MAX_OBJECTIVES]"). The retrieved original_source set did not
// carry solver::Maximum_Objectives_Count's concrete value, so this is a
// deliberately chosen, documented stand-in rather than a transcribed
// constant (see DESIGN.md).
const MaxObjectives = 16

// Solver is the generic-solver dispatch surface the driver needs,
// satisfied by *pluginloader.Loader.
type Solver interface {
	SolveGeneric(solverID guid.GUID, setup pluginloader.SolverSetup) (pluginloader.SolverProgress, error)
}

// Retainer is satisfied by a chain.FilterCreator that can pin its
// loaded libraries for the duration of a scoped operation — satisfied
// by *pluginloader.Loader. Optimize uses it to keep every plugin
// library referenced by any candidate's body alive for the whole run
// (Open Question decision 2, DESIGN.md), rather than building a dummy
// "oversubscription" composite purely to hold library references.
type Retainer interface {
	Retain() pluginloader.Handle
}

// Driver runs optimizations against one creator/solver pairing.
// Grounded on CParameters_Optimizer.
type Driver struct {
	creator chain.FilterCreator
	solver  Solver
}

// NewDriver constructs a driver. creator resolves filter kinds to
// instances (ordinarily *pluginloader.Loader, which also satisfies
// Solver and Retainer); solver dispatches the generic-solver plugin
// that drives population/generation iteration.
func NewDriver(creator chain.FilterCreator, solver Solver) *Driver {
	return &Driver{creator: creator, solver: solver}
}

// Optimize drives one optimization run against cfg for the given
// targets, writing the solved parameters back into cfg's own links on
// success. onFilterCreated, if non-nil, is invoked with every filter
// instance built during head execution and every candidate evaluation,
// in build order — the embedder hook of spec.md §4.8's
// optimize_parameters.
func (d *Driver) Optimize(cfg *chainconfig.Configuration, targets []Target, solverID guid.GUID, populationSize, maxGenerations int, hints [][]float64, onFilterCreated func(capability.Filter) error, errList *capability.ErrorList) (pluginloader.SolverProgress, error) {
	var zero pluginloader.SolverProgress

	prob, err := prepareParameters(cfg, targets, errList)
	if err != nil {
		return zero, err
	}

	chars, err := characterize(cfg, d.creator, prob.targets)
	if err != nil {
		errList.Add(err.Error())
		return zero, err
	}
	if chars.objectiveCount < 1 || chars.objectiveCount > MaxObjectives {
		errList.Add("unsupported-metric-configuration")
		return zero, resultcode.New(resultcode.Fail, "objective count out of range")
	}

	headCfg := &chainconfig.Configuration{Links: cfg.Links[:chars.bodyBegin]}
	masterLog, err := fetchEventsToReplay(headCfg, d.creator, onFilterCreated, errList)
	if err != nil {
		return zero, err
	}

	masterBody := sliceConfiguration(cfg, chars.bodyBegin, chars.bodyEnd)
	resolveVariablesEagerly(masterBody)

	p := newPool(masterBody, masterLog)

	// Keep every plugin library a candidate's body might resolve
	// filters against alive for the run's duration.
	if retainer, ok := d.creator.(Retainer); ok {
		h := retainer.Retain()
		defer h.Close()
	}

	hintVectors := make([][]float64, 0, len(hints)+1)
	hintVectors = append(hintVectors, prob.initial)
	hintVectors = append(hintVectors, hints...)

	setup := pluginloader.SolverSetup{
		LowerBounds:    prob.lower,
		UpperBounds:    prob.upper,
		Hints:          hintVectors,
		PopulationSize: populationSize,
		MaxGenerations: maxGenerations,
		Fitness: func(candidate []float64) ([]float64, error) {
			return d.calculateSingleFitness(p, prob, chars, candidate, onFilterCreated)
		},
	}

	progress, err := d.solver.SolveGeneric(solverID, setup)
	if err != nil {
		errList.Add("solver-failed")
		return zero, resultcode.New(resultcode.Fail, "solver failed: "+err.Error())
	}

	// Post-solve recomputation: verify the reported best metric by
	// recomputing fitness once more at the returned solution
	// (parameters_optimizer.cpp:693-697).
	if _, err := d.calculateSingleFitness(p, prob, chars, progress.BestSolution, onFilterCreated); err != nil {
		errList.Add("solver-failed")
		return zero, resultcode.New(resultcode.Unexpected, "cannot recompute validation fitness: "+err.Error())
	}

	if err := writeBackParameters(cfg, prob, progress.BestSolution); err != nil {
		errList.Add("failed-to-write-parameters")
		return zero, err
	}

	return progress, nil
}

// CalculateFitness evaluates every candidate in candidates concurrently,
// one worker per candidate, each drawing its own body clone from the
// pool (spec.md §4.7 "Parallelism"). The first evaluation failure
// cancels the remaining, not-yet-started workers; workers already
// mid-evaluation still run to completion since cancellation here is
// cooperative, never preemptive (spec.md §5).
func (d *Driver) CalculateFitness(cfg *chainconfig.Configuration, targets []Target, candidates [][]float64, onFilterCreated func(capability.Filter) error, errList *capability.ErrorList) ([][]float64, error) {
	prob, err := prepareParameters(cfg, targets, errList)
	if err != nil {
		return nil, err
	}
	chars, err := characterize(cfg, d.creator, prob.targets)
	if err != nil {
		errList.Add(err.Error())
		return nil, err
	}
	if chars.objectiveCount < 1 || chars.objectiveCount > MaxObjectives {
		errList.Add("unsupported-metric-configuration")
		return nil, resultcode.New(resultcode.Fail, "objective count out of range")
	}

	headCfg := &chainconfig.Configuration{Links: cfg.Links[:chars.bodyBegin]}
	masterLog, err := fetchEventsToReplay(headCfg, d.creator, onFilterCreated, errList)
	if err != nil {
		return nil, err
	}
	masterBody := sliceConfiguration(cfg, chars.bodyBegin, chars.bodyEnd)
	resolveVariablesEagerly(masterBody)
	p := newPool(masterBody, masterLog)

	if retainer, ok := d.creator.(Retainer); ok {
		h := retainer.Retain()
		defer h.Close()
	}

	results := make([][]float64, len(candidates))
	group, ctx := errgroup.WithContext(context.Background())
	for i, candidate := range candidates {
		i, candidate := i, candidate
		group.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fitness, err := d.calculateSingleFitness(p, prob, chars, candidate, onFilterCreated)
			if err != nil {
				return err
			}
			results[i] = fitness
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// calculateSingleFitness implements calculate_single_fitness (spec.md
// §4.7 steps 1-6).
func (d *Driver) calculateSingleFitness(p *pool, prob problem, chars characteristics, candidate []float64, onFilterCreated func(capability.Filter) error) ([]float64, error) {
	bc := p.acquire()

	if err := patchCandidateIntoClone(bc.body, chars.bodyBegin, prob, candidate); err != nil {
		p.discard(bc)
		return nil, err
	}

	rec := &metricRecorder{inner: d.creator}
	var buildErrs capability.ErrorList
	term := chain.NewTerminal(nil)

	composite, err := chain.Build(bc.body, rec, term, onFilterCreated, &buildErrs)
	if err != nil {
		p.discard(bc)
		return nil, resultcode.New(resultcode.Fail, fmt.Sprintf("cannot build candidate composite: %v", err))
	}

	replayFailed := false
	for _, ev := range bc.log.events {
		clone, err := injectReplayEvent(ev)
		if err != nil {
			replayFailed = true
			break
		}
		if err := composite.Execute(clone); err != nil {
			replayFailed = true
			break
		}
	}

	if replayFailed {
		if sd, err := event.Allocate(event.CodeShut_Down); err == nil {
			_ = composite.Execute(sd)
		}
	}
	term.WaitForShutdown()
	composite.Clear()

	if replayFailed {
		p.discard(bc)
		return nil, errors.New("replay aborted")
	}

	fitness := make([]float64, chars.objectiveCount)
	n := 0
	ok := true
	for _, inspect := range rec.inspectors() {
		if n >= len(fitness) {
			break
		}
		v, valid := inspect()
		if !valid {
			ok = false
			break
		}
		fitness[n] = v
		n++
	}
	if !ok || n != chars.objectiveCount {
		p.discard(bc)
		return nil, errors.New("objective count mismatch")
	}

	p.release(bc)
	return fitness, nil
}
