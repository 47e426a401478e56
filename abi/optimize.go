package abi

import (
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/optimizer"
	"github.com/smartcgms-go/core/pluginloader"
)

// OptimizeParameters drives a single-target optimization run, writing
// the solved parameters back into cfg on success (spec.md §4.8's
// optimize_parameters).
func (rt *Runtime) OptimizeParameters(cfg *chainconfig.Configuration, filterIndex int, paramName string, solverID guid.GUID, populationSize, maxGenerations int, hints [][]float64, onCreated func(capability.Filter) error, errList *capability.ErrorList) (pluginloader.SolverProgress, error) {
	return rt.OptimizeMultipleParameters(cfg, []optimizer.Target{{FilterIndex: filterIndex, ParamName: paramName}}, solverID, populationSize, maxGenerations, hints, onCreated, errList)
}

// OptimizeMultipleParameters is the multi-target variant of
// OptimizeParameters, optimizing every named target's bounds-triple
// parameter jointly against the solver's combined objective vector.
func (rt *Runtime) OptimizeMultipleParameters(cfg *chainconfig.Configuration, targets []optimizer.Target, solverID guid.GUID, populationSize, maxGenerations int, hints [][]float64, onCreated func(capability.Filter) error, errList *capability.ErrorList) (pluginloader.SolverProgress, error) {
	driver := optimizer.NewDriver(rt.Loader, rt.Loader)
	return driver.Optimize(cfg, targets, solverID, populationSize, maxGenerations, hints, onCreated, errList)
}

// CalculateFitness evaluates an explicit candidate batch concurrently
// without running a solver, for embedders that drive their own search
// loop against the same head/body/tail slicing the optimizer uses.
func (rt *Runtime) CalculateFitness(cfg *chainconfig.Configuration, targets []optimizer.Target, candidates [][]float64, onCreated func(capability.Filter) error, errList *capability.ErrorList) ([][]float64, error) {
	driver := optimizer.NewDriver(rt.Loader, rt.Loader)
	return driver.CalculateFitness(cfg, targets, candidates, onCreated, errList)
}
