package chainconfig

import (
	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
)

// FilterConfigurationLink is an ordered container of filter parameters
// plus the filter-kind GUID (spec.md §3 "Filter configuration link").
type FilterConfigurationLink struct {
	Kind guid.GUID

	// names preserves declared parameter order, independent of the
	// map's iteration order, so Save emits parameters in the order they
	// were declared/loaded.
	names  []string
	params map[string]*filterparam.Parameter
}

// NewLink constructs an empty link for the given filter kind.
func NewLink(kind guid.GUID) *FilterConfigurationLink {
	return &FilterConfigurationLink{Kind: kind, params: make(map[string]*filterparam.Parameter)}
}

// SetParameter adds or replaces the named parameter, preserving first-
// declared order.
func (l *FilterConfigurationLink) SetParameter(p *filterparam.Parameter) {
	if _, exists := l.params[p.ConfigName()]; !exists {
		l.names = append(l.names, p.ConfigName())
	}
	l.params[p.ConfigName()] = p
}

// Parameter looks up a declared parameter by its config name.
func (l *FilterConfigurationLink) Parameter(name string) (*filterparam.Parameter, bool) {
	p, ok := l.params[name]
	return p, ok
}

// Parameters returns every declared parameter, in declaration order.
func (l *FilterConfigurationLink) Parameters() []*filterparam.Parameter {
	out := make([]*filterparam.Parameter, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.params[name])
	}
	return out
}

// SetParentPath propagates parentPath to every contained parameter.
func (l *FilterConfigurationLink) SetParentPath(parentPath string) {
	for _, p := range l.params {
		_ = p.SetParentPath(parentPath)
	}
}

// InjectVariables propagates a variable binding to every contained
// parameter.
func (l *FilterConfigurationLink) InjectVariables(vars map[string]string) {
	for _, p := range l.params {
		p.InjectVariables(vars)
	}
}

// Clone produces a deep, independent copy of the link and every
// parameter it contains.
func (l *FilterConfigurationLink) Clone() *FilterConfigurationLink {
	clone := NewLink(l.Kind)
	clone.names = append([]string(nil), l.names...)
	clone.params = make(map[string]*filterparam.Parameter, len(l.params))
	for name, p := range l.params {
		clone.params[name] = p.Clone()
	}
	return clone
}
