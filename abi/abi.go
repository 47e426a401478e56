// Package abi implements the public embedding surface of spec.md
// §4.8: object-creation helpers, chain execution, parameter
// optimization, and descriptor enumeration, plus a simplified one-shot
// convenience surface (convenience.go). Every function here is the
// package boundary where internal `error` values are mirrored into
// resultcode.Code, per SPEC_FULL.md §1's error-handling ambient stack.
// Grounded on _examples/original_source/scgms/src/filter_configuration_executor.{h,cpp}
// (the original's Execute_Filter_Configuration/Get_*_Descriptors entry
// points) and simple_bindings.cpp (its one-shot convenience wrapper,
// mirrored here by convenience.go), reworked as Go constructors and
// methods rather than out-parameters.
package abi

import (
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/descriptor"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/obslog"
	"github.com/smartcgms-go/core/pluginloader"
)

// Runtime is the embedder's single handle onto the process-wide
// descriptor registry and plugin loader. Construct with New or
// NewProcess.
type Runtime struct {
	Registry *descriptor.Registry
	Loader   *pluginloader.Loader
}

// New wires registry into the filterparam/chainconfig resolution hooks
// (descriptor.Install) and pairs it with loader, returning the
// resulting Runtime. Exposed directly so tests can pair a scratch
// registry/loader without touching process-wide singletons.
func New(loader *pluginloader.Loader, registry *descriptor.Registry) *Runtime {
	descriptor.Install(registry)
	return &Runtime{Registry: registry, Loader: loader}
}

// NewProcess wires up the process-wide singletons
// (descriptor.Default/pluginloader.Process) and, if pluginDir is
// non-empty, discovers and loads every plugin library under it
// (pluginloader's <dir>/solvers convention). This is the path
// cmd/scgms-run and any other real embedder uses; tests that need
// isolated state should use New with scratch instances instead.
func NewProcess(pluginDir string) (*Runtime, error) {
	rt := New(pluginloader.Process(), descriptor.Default())
	if pluginDir != "" {
		if err := rt.Loader.Load(pluginDir); err != nil {
			return nil, err
		}
		obslog.Default().Info().Logf("abi: loaded %d plugin librar(ies) from %s", len(rt.Loader.DescribeLoaded()), pluginDir)
	}
	return rt, nil
}

// CreateDeviceEvent allocates a fresh event of the given code from the
// shared pool (spec.md §4.8's create_device_event).
func (rt *Runtime) CreateDeviceEvent(code event.Code) (*event.Event, error) {
	return event.Allocate(code)
}

// CreateFilterParameter constructs an empty, typed, named parameter
// cell (create_filter_parameter).
func (rt *Runtime) CreateFilterParameter(t filterparam.Type, configName string) *filterparam.Parameter {
	return filterparam.New(t, configName)
}

// CreateFilterConfigurationLink constructs an empty link for the given
// filter kind (create_filter_configuration_link).
func (rt *Runtime) CreateFilterConfigurationLink(kind guid.GUID) *chainconfig.FilterConfigurationLink {
	return chainconfig.NewLink(kind)
}

// CreatePersistentFilterChainConfiguration constructs an empty
// configuration (create_persistent_filter_chain_configuration).
func (rt *Runtime) CreatePersistentFilterChainConfiguration() *chainconfig.Configuration {
	return chainconfig.New()
}

// GetFilterDescriptors enumerates every filter descriptor known to the
// registry, sorted by kind GUID.
func (rt *Runtime) GetFilterDescriptors() []descriptor.FilterDescriptor {
	return rt.Registry.Filters()
}

// GetModelDescriptors enumerates every discrete/signal model
// descriptor.
func (rt *Runtime) GetModelDescriptors() []descriptor.ModelDescriptor {
	return rt.Registry.Models()
}

// GetMetricDescriptors enumerates every fitness-metric descriptor.
func (rt *Runtime) GetMetricDescriptors() []descriptor.MetricDescriptor {
	return rt.Registry.Metrics()
}

// GetSolverDescriptors enumerates every parameter-optimizer solver
// descriptor.
func (rt *Runtime) GetSolverDescriptors() []descriptor.SolverDescriptor {
	return rt.Registry.Solvers()
}

// GetApproxDescriptors enumerates every signal-approximation
// descriptor.
func (rt *Runtime) GetApproxDescriptors() []descriptor.ApproxDescriptor {
	return rt.Registry.Approxes()
}

// GetSignalDescriptors enumerates every signal descriptor, in
// contribution order (the order the original's name-resolution linear
// scan relied on), followed by the compile-time "Virtual N" signal
// slots so they're discoverable the same way as plugin-registered
// signals rather than only resolvable by already knowing the name.
func (rt *Runtime) GetSignalDescriptors() []descriptor.SignalDescriptor {
	return append(rt.Registry.Signals(), descriptor.VirtualSignalDescriptors()...)
}

// DescribeLoaded reports the path of every plugin library the loader
// has retained, for operator diagnostics.
func (rt *Runtime) DescribeLoaded() []string {
	return rt.Loader.DescribeLoaded()
}
