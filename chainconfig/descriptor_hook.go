package chainconfig

import (
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
)

// ParamSpec names one declared parameter of a filter descriptor: its
// config-file key and expected type.
type ParamSpec struct {
	Name string
	Type filterparam.Type
}

// FilterDescriptor is the slice of a plugin-contributed filter
// descriptor that Load/Save need: display name (for the human-readable
// section comment) and the ordered parameter specs (for type-directed
// parsing and round-trip emission).
type FilterDescriptor struct {
	Kind        guid.GUID
	DisplayName string
	Params      []ParamSpec
}

// LookupFilterDescriptor resolves a filter-kind GUID to its declared
// descriptor. Wired by package descriptor during process
// initialization (see abi's startup path); left nil, Load treats every
// filter GUID as unknown. This indirection exists because
// chainconfig is lower in the dependency order than descriptor
// (filterparam, chainconfig → descriptor, pluginloader), so it cannot
// import it directly.
var LookupFilterDescriptor func(kind guid.GUID) (FilterDescriptor, bool)
