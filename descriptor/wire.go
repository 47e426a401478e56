package descriptor

import (
	"sync"

	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, lazily constructed on
// first use (spec.md §4.6's "process-wide lazily-initialized registry").
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = New() })
	return defaultRegistry
}

// Install wires r's signal resolution and filter-descriptor lookup into
// the filterparam and chainconfig package hooks, so GUID-typed
// parameter parsing and persistent-configuration loading can resolve
// against it without an import cycle (filterparam, chainconfig →
// descriptor, per the dependency order those packages' hook doc
// comments describe). Called by package abi's New on every call, each
// call replacing the previously installed hooks.
func Install(r *Registry) {
	filterparam.ResolveSignalByName = r.ResolveSignalByName
	chainconfig.LookupFilterDescriptor = func(kind guid.GUID) (chainconfig.FilterDescriptor, bool) {
		d, ok := r.Filter(kind)
		if !ok {
			return chainconfig.FilterDescriptor{}, false
		}
		params := make([]chainconfig.ParamSpec, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, chainconfig.ParamSpec{Name: p.Name, Type: p.Type})
		}
		return chainconfig.FilterDescriptor{Kind: d.Kind, DisplayName: d.DisplayName, Params: params}, true
	}
}
