package pluginloader

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/descriptor"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/obslog"
	"github.com/smartcgms-go/core/resultcode"
)

// solversDirName is the well-known directory name, relative to the
// loader binary, searched for plugin libraries (spec.md §4.6/§6).
const solversDirName = "solvers"

// library is one retained, successfully-resolved contribution.
type library struct {
	path string
	Contribution
}

// Loader is the process-wide plugin registry. The zero value is not
// usable; construct with New. Safe for concurrent use.
type Loader struct {
	mu        sync.RWMutex
	libraries []*library
	registry  *descriptor.Registry
	retained  int64

	// warnLimiter rate-limits the "library X failed to load" diagnostic,
	// since a misconfigured solvers/ directory can otherwise flood the
	// log once per discovery pass.
	warnLimiter *catrate.Limiter
}

// New constructs a loader backed by registry, which accumulates every
// discovered descriptor table so package descriptor's signal-name
// resolution and filter-descriptor lookup see plugin contributions.
func New(registry *descriptor.Registry) *Loader {
	return &Loader{
		registry:    registry,
		warnLimiter: catrate.NewLimiter(map[time.Duration]int{time.Minute: 5}),
	}
}

var (
	processOnce   sync.Once
	processLoader *Loader
)

// Process returns the lazily-constructed, process-wide loader backed by
// descriptor.Default(), per spec.md §4.6's "process-wide
// lazily-initialized registry".
func Process() *Loader {
	processOnce.Do(func() {
		processLoader = New(descriptor.Default())
	})
	return processLoader
}

// Handle is a loader-scope retention token (Open Question decision 2,
// see DESIGN.md): Go's plugin.Open has no unload primitive, so there is
// nothing to reference-count down to. Close unloads nothing and only
// decrements the loader's diagnostic retention count; Handle exists
// so call sites keep the acquire/release shape spec.md §5's resource-
// lifecycle convention expects without pretending a .so can be
// unloaded.
type Handle struct{ l *Loader }

// Close implements io.Closer. Always returns nil.
func (h Handle) Close() error {
	if h.l != nil {
		h.l.mu.Lock()
		h.l.retained--
		h.l.mu.Unlock()
	}
	return nil
}

// Retain acquires a Handle, incrementing the loader's retention count
// for diagnostic purposes; no method reports the count.
func (l *Loader) Retain() Handle {
	l.mu.Lock()
	l.retained++
	l.mu.Unlock()
	return Handle{l: l}
}

// Load discovers libraries under <dir>/solvers (or dir itself, if the
// nested directory doesn't exist, per spec.md §4.6's fallback), opening
// each with the platform dynamic-loader and resolving the well-known
// factory/descriptor symbol names. A library is retained only if it
// resolves at least one symbol. Load never fails outright: a library
// that won't open or resolve anything is simply skipped, with a rate-
// limited warning.
func (l *Loader) Load(dir string) error {
	solversDir := filepath.Join(dir, solversDirName)
	if info, err := os.Stat(solversDir); err != nil || !info.IsDir() {
		solversDir = dir
	}

	entries, err := os.ReadDir(solversDir)
	if err != nil {
		// No solvers directory at all is not an error: an embedder may
		// run entirely with filters registered in-process via Register.
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		path := filepath.Join(solversDir, entry.Name())
		c, err := openLibrary(path)
		if err != nil {
			if l.warnLimiter != nil {
				if _, allowed := l.warnLimiter.Allow(path); allowed {
					obslog.Default().Warning().Logf("pluginloader: %s: %v", path, err)
				}
			}
			continue
		}
		l.Register(c)
	}
	return nil
}

// openLibrary opens path with the stdlib plugin loader and resolves
// every well-known exported symbol, following the original's
// Resolve_Func-per-entry-point convention
// (_examples/original_source/scgms/src/filters.cpp:134-147).
func openLibrary(path string) (Contribution, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return Contribution{}, fmt.Errorf("open: %w", err)
	}

	c := Contribution{Path: path}
	lookupFilterFactory(p, "CreateFilter", &c.CreateFilter)
	lookupMetricFactory(p, "CreateMetric", &c.CreateMetric)
	lookupSignalFactory(p, "CreateSignal", &c.CreateSignal)
	lookupDiscreteModelFactory(p, "CreateDiscreteModel", &c.CreateDiscreteModel)
	lookupApproximatorFactory(p, "CreateApproximator", &c.CreateApproximator)
	lookupSolverFactory(p, "SolveGeneric", &c.SolveGeneric)

	lookupSlice(p, "FilterDescriptors", &c.FilterDescriptors)
	lookupSlice(p, "ModelDescriptors", &c.ModelDescriptors)
	lookupSlice(p, "MetricDescriptors", &c.MetricDescriptors)
	lookupSlice(p, "SolverDescriptors", &c.SolverDescriptors)
	lookupSlice(p, "SignalDescriptors", &c.SignalDescriptors)
	lookupSlice(p, "ApproxDescriptors", &c.ApproxDescriptors)

	return c, nil
}

func lookupFilterFactory(p *plugin.Plugin, sym string, out *FilterFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(FilterFactory); ok {
			*out = f
		}
	}
}

func lookupMetricFactory(p *plugin.Plugin, sym string, out *MetricFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(MetricFactory); ok {
			*out = f
		}
	}
}

func lookupSignalFactory(p *plugin.Plugin, sym string, out *SignalFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(SignalFactory); ok {
			*out = f
		}
	}
}

func lookupDiscreteModelFactory(p *plugin.Plugin, sym string, out *DiscreteModelFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(DiscreteModelFactory); ok {
			*out = f
		}
	}
}

func lookupApproximatorFactory(p *plugin.Plugin, sym string, out *ApproximatorFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(ApproximatorFactory); ok {
			*out = f
		}
	}
}

func lookupSolverFactory(p *plugin.Plugin, sym string, out *SolverFactory) {
	if s, err := p.Lookup(sym); err == nil {
		if f, ok := s.(SolverFactory); ok {
			*out = f
		}
	}
}

func lookupSlice[T any](p *plugin.Plugin, sym string, out *[]T) {
	if s, err := p.Lookup(sym); err == nil {
		if ptr, ok := s.(*[]T); ok {
			*out = *ptr
		}
	}
}

// Register directly retains a contribution without going through
// dynamic-library discovery — the path for
// any filter/model/metric/solver/signal/approximator that ships as
// ordinary Go code linked into the embedder rather than a separate
// .so, and the path tests use to exercise dispatch semantics without
// real plugin files. Returns false if the contribution resolved
// nothing and was therefore discarded, per spec.md §4.6.
func (l *Loader) Register(c Contribution) bool {
	if !c.has() {
		return false
	}

	l.mu.Lock()
	l.libraries = append(l.libraries, &library{path: c.Path, Contribution: c})
	l.mu.Unlock()

	if l.registry != nil {
		for _, d := range c.FilterDescriptors {
			l.registry.RegisterFilter(d)
		}
		for _, d := range c.ModelDescriptors {
			l.registry.RegisterModel(d)
		}
		for _, d := range c.MetricDescriptors {
			l.registry.RegisterMetric(d)
		}
		for _, d := range c.SolverDescriptors {
			l.registry.RegisterSolver(d)
		}
		for _, d := range c.SignalDescriptors {
			l.registry.RegisterSignal(d)
		}
		for _, d := range c.ApproxDescriptors {
			l.registry.RegisterApprox(d)
		}
	}
	return true
}

// CreateFilter dispatches filter instantiation across every library in
// load order (spec.md §4.6's Call_Func semantics).
func (l *Loader) CreateFilter(kind guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, error) {
	type result struct {
		filter capability.Filter
		caps   capability.Capabilities
	}
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (result, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.CreateFilter == nil {
			continue
		}
		factory := lib.CreateFilter
		fns = append(fns, func() (result, resultcode.Code) {
			f, caps, code := factory(kind, next)
			return result{filter: f, caps: caps}, code
		})
	}
	res, err := dispatch(fns)
	return res.filter, res.caps, err
}

// CreateMetric dispatches metric instantiation, per spec.md §4.6.
func (l *Loader) CreateMetric(metricID guid.GUID) (Metric, error) {
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (Metric, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.CreateMetric == nil {
			continue
		}
		factory := lib.CreateMetric
		fns = append(fns, func() (Metric, resultcode.Code) { return factory(metricID) })
	}
	return dispatch(fns)
}

// CreateSignal dispatches calculated-signal instantiation.
func (l *Loader) CreateSignal(calcID, approxID guid.GUID) (Signal, error) {
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (Signal, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.CreateSignal == nil {
			continue
		}
		factory := lib.CreateSignal
		fns = append(fns, func() (Signal, resultcode.Code) { return factory(calcID, approxID) })
	}
	return dispatch(fns)
}

// CreateDiscreteModel dispatches discrete-model instantiation.
func (l *Loader) CreateDiscreteModel(modelID guid.GUID, params []float64, output capability.Filter) (DiscreteModel, error) {
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (DiscreteModel, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.CreateDiscreteModel == nil {
			continue
		}
		factory := lib.CreateDiscreteModel
		fns = append(fns, func() (DiscreteModel, resultcode.Code) { return factory(modelID, params, output) })
	}
	return dispatch(fns)
}

// CreateApproximator dispatches approximator instantiation.
func (l *Loader) CreateApproximator(approxID guid.GUID, signal Signal) (Approximator, error) {
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (Approximator, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.CreateApproximator == nil {
			continue
		}
		factory := lib.CreateApproximator
		fns = append(fns, func() (Approximator, resultcode.Code) { return factory(approxID, signal) })
	}
	return dispatch(fns)
}

// SolveGeneric dispatches a generic-solver run.
func (l *Loader) SolveGeneric(solverID guid.GUID, setup SolverSetup) (SolverProgress, error) {
	l.mu.RLock()
	libs := append([]*library(nil), l.libraries...)
	l.mu.RUnlock()

	fns := make([]func() (SolverProgress, resultcode.Code), 0, len(libs))
	for _, lib := range libs {
		if lib.SolveGeneric == nil {
			continue
		}
		factory := lib.SolveGeneric
		fns = append(fns, func() (SolverProgress, resultcode.Code) { return factory(solverID, setup) })
	}
	return dispatch(fns)
}

// DescribeLoaded reports the path of every retained library, for
// diagnostics (the supplemented
// feature mirroring the original's describe_loaded_filters).
func (l *Loader) DescribeLoaded() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.libraries))
	for _, lib := range l.libraries {
		out = append(out, lib.path)
	}
	return out
}
