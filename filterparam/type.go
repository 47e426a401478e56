// Package filterparam implements the typed, named configuration cell
// attached to a filter instance (spec.md §3 "Filter parameter"):
// variable resolution ($(NAME) syntax against a config-supplied table
// then the OS environment, with a reserved "%unused%" sentinel),
// deferred-file backing ($([[deferred to]] PATH) magic), per-array-slot
// variable binding, and deep Clone. Grounded directly on
// _examples/original_source/scgms/src/filter_parameter.{h,cpp}.
package filterparam

import "github.com/smartcgms-go/core/guid"

// Type is the closed set of parameter kinds from spec.md §3.
type Type int8

const (
	TypeNull Type = iota
	TypeWideString
	TypeRationalTime
	TypeDouble
	TypeInt64
	TypeSubjectID
	TypeBoolean
	TypeSignalID
	TypeSignalModelID
	TypeDiscreteModelID
	TypeMetricID
	TypeProducedSignalID
	TypeSolverID
	TypeInt64Array
	TypeDoubleArray
)

// IsGUID reports whether t stores its literal value as a guid.GUID.
func (t Type) IsGUID() bool {
	switch t {
	case TypeSignalID, TypeSignalModelID, TypeDiscreteModelID, TypeMetricID, TypeProducedSignalID, TypeSolverID:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeWideString:
		return "wide-string"
	case TypeRationalTime:
		return "rational-time"
	case TypeDouble:
		return "double"
	case TypeInt64:
		return "int64"
	case TypeSubjectID:
		return "subject-id"
	case TypeBoolean:
		return "boolean"
	case TypeSignalID:
		return "signal-id"
	case TypeSignalModelID:
		return "signal-model-id"
	case TypeDiscreteModelID:
		return "discrete-model-id"
	case TypeMetricID:
		return "metric-id"
	case TypeProducedSignalID:
		return "produced-signal-id"
	case TypeSolverID:
		return "solver-id"
	case TypeInt64Array:
		return "int64-array"
	case TypeDoubleArray:
		return "double-array"
	default:
		return "unknown"
	}
}

// ResolveSignalByName resolves a bare signal name (e.g. "Virtual 2") to
// a GUID, as a last resort when a GUID-typed parameter's literal text
// does not parse as a GUID. Wired by package descriptor at process
// startup (see abi's initialization path); left nil, GUID parameter
// text that isn't a literal GUID simply fails to parse. This
// indirection exists because filterparam is lower in the dependency
// order than descriptor (filterparam, chainconfig → descriptor) so it
// cannot import it directly.
var ResolveSignalByName func(name string) (guid.GUID, bool)

// UnusedVariableName is the reserved variable name marking a parameter
// as deliberately unset; resolving it yields an empty value with no
// error (spec.md's "%unused%" literal).
const UnusedVariableName = "%unused%"
