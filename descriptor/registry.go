package descriptor

import (
	"sort"
	"sync"

	"github.com/smartcgms-go/core/guid"
)

// Registry is a process-wide collection of descriptor tables, built
// incrementally as package pluginloader discovers contributing
// libraries. Construct with New; the zero value's tables are nil maps,
// so registering into it panics. Descriptor memory is
// conceptually plugin-owned (spec.md §3's invariant); this registry
// only holds the values contributed at registration time, indexed by
// GUID for dispatch, mirroring the dense-hash-index redesign spec.md's
// REDESIGN FLAGS prescribes in place of the original's linear scan.
type Registry struct {
	mu sync.RWMutex

	filters map[guid.GUID]FilterDescriptor
	models  map[guid.GUID]ModelDescriptor
	metrics map[guid.GUID]MetricDescriptor
	solvers map[guid.GUID]SolverDescriptor
	signals map[guid.GUID]SignalDescriptor
	approxs map[guid.GUID]ApproxDescriptor

	// signalOrder preserves contribution order so Resolve_Signal_By_Name
	// style lookups and enumeration are deterministic across a process
	// run, independent of map iteration order.
	signalOrder []guid.GUID
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		filters: make(map[guid.GUID]FilterDescriptor),
		models:  make(map[guid.GUID]ModelDescriptor),
		metrics: make(map[guid.GUID]MetricDescriptor),
		solvers: make(map[guid.GUID]SolverDescriptor),
		signals: make(map[guid.GUID]SignalDescriptor),
		approxs: make(map[guid.GUID]ApproxDescriptor),
	}
}

func (r *Registry) RegisterFilter(d FilterDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[d.Kind] = d
}

func (r *Registry) RegisterModel(d ModelDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[d.ModelID] = d
}

func (r *Registry) RegisterMetric(d MetricDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[d.MetricID] = d
}

func (r *Registry) RegisterSolver(d SolverDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solvers[d.SolverID] = d
}

func (r *Registry) RegisterSignal(d SignalDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.signals[d.SignalID]; !exists {
		r.signalOrder = append(r.signalOrder, d.SignalID)
	}
	r.signals[d.SignalID] = d
}

func (r *Registry) RegisterApprox(d ApproxDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approxs[d.ApproxID] = d
}

func (r *Registry) Filter(kind guid.GUID) (FilterDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.filters[kind]
	return d, ok
}

func (r *Registry) Model(id guid.GUID) (ModelDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.models[id]
	return d, ok
}

func (r *Registry) Metric(id guid.GUID) (MetricDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.metrics[id]
	return d, ok
}

func (r *Registry) Solver(id guid.GUID) (SolverDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.solvers[id]
	return d, ok
}

func (r *Registry) Signal(id guid.GUID) (SignalDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.signals[id]
	return d, ok
}

func (r *Registry) Approx(id guid.GUID) (ApproxDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.approxs[id]
	return d, ok
}

// Filters returns every registered filter descriptor, sorted by kind
// GUID for deterministic enumeration (spec.md §4.8's get_filter_descriptors).
func (r *Registry) Filters() []FilterDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FilterDescriptor, 0, len(r.filters))
	for _, d := range r.filters {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind.String() < out[j].Kind.String() })
	return out
}

// Signals returns every registered signal descriptor in contribution
// order, the order Resolve_Signal_By_Name's linear scan relied on in
// the original.
func (r *Registry) Signals() []SignalDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SignalDescriptor, 0, len(r.signalOrder))
	for _, id := range r.signalOrder {
		out = append(out, r.signals[id])
	}
	return out
}

// Models returns every registered model descriptor, sorted by model
// GUID.
func (r *Registry) Models() []ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelDescriptor, 0, len(r.models))
	for _, d := range r.models {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID.String() < out[j].ModelID.String() })
	return out
}

// Metrics returns every registered metric descriptor, sorted by metric
// GUID (spec.md §4.8's get_metric_descriptors).
func (r *Registry) Metrics() []MetricDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MetricDescriptor, 0, len(r.metrics))
	for _, d := range r.metrics {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricID.String() < out[j].MetricID.String() })
	return out
}

// Solvers returns every registered solver descriptor, sorted by solver
// GUID (spec.md §4.8's get_solver_descriptors).
func (r *Registry) Solvers() []SolverDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SolverDescriptor, 0, len(r.solvers))
	for _, d := range r.solvers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SolverID.String() < out[j].SolverID.String() })
	return out
}

// Approxes returns every registered approximator descriptor, sorted by
// approximator GUID (spec.md §4.8's get_approx_descriptors).
func (r *Registry) Approxes() []ApproxDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ApproxDescriptor, 0, len(r.approxs))
	for _, d := range r.approxs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApproxID.String() < out[j].ApproxID.String() })
	return out
}
