// Package descriptor implements the plugin-contributed declarative
// metadata tables of spec.md §3 "Descriptor tables" and the signal-name
// resolver of spec.md §4.6: per-kind registries (filter, model, metric,
// solver, signal, approximator) populated by package pluginloader as it
// discovers libraries, plus Install, which wires this registry into the
// filterparam and chainconfig package hooks so lower layers can resolve
// signal names and filter descriptors without importing descriptor
// directly. Grounded on
// _examples/original_source/scgms/src/filters.{h,cpp}'s
// CLoaded_Filters descriptor tables (mFilter_Descriptors,
// mSignal_Descriptors, ...) and Resolve_Signal_By_Name.
package descriptor

import (
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
)

// ParamSpec names one declared parameter of a filter descriptor.
type ParamSpec struct {
	Name string
	Type filterparam.Type
	// Unused marks a parameter deliberately left out of the filter's
	// effective configuration, per the original's "flags" bit tagging
	// parameters that don't require a presented value.
	Unused bool
}

// FilterDescriptor is a plugin-contributed filter descriptor: kind GUID,
// display name, and ordered parameter specs (spec.md §3).
type FilterDescriptor struct {
	Kind        guid.GUID
	DisplayName string
	Params      []ParamSpec
}

// ModelDescriptor is a plugin-contributed discrete/signal model
// descriptor: model GUID, parameter bounds/defaults, and the signals it
// produces versus the reference signals it's fit against (spec.md §3).
type ModelDescriptor struct {
	ModelID         guid.GUID
	DisplayName     string
	ParamTypes      []filterparam.Type
	LowerBounds     []float64
	UpperBounds     []float64
	DefaultBounds   []float64
	ProducedSignals []guid.GUID
	ReferenceSignal []guid.GUID
}

// MetricDescriptor is a plugin-contributed fitness-metric descriptor.
type MetricDescriptor struct {
	MetricID    guid.GUID
	DisplayName string
}

// SolverDescriptor is a plugin-contributed parameter-optimizer
// descriptor.
type SolverDescriptor struct {
	SolverID       guid.GUID
	DisplayName    string
	SpecializedFor []guid.GUID // model IDs this solver is purpose-built for, if any
}

// SignalDescriptor is a plugin-contributed signal descriptor: GUID and
// display name, the latter matched by the signal-name resolver
// (spec.md §4.6).
type SignalDescriptor struct {
	SignalID    guid.GUID
	DisplayName string
}

// ApproxDescriptor is a plugin-contributed signal-approximation
// descriptor (e.g. linear, Akima).
type ApproxDescriptor struct {
	ApproxID    guid.GUID
	DisplayName string
}
