package filterparam

import (
	"os"
	"strings"

	"github.com/smartcgms-go/core/resultcode"
)

// isVariableName reports whether s has the "$(NAME)" shape, returning
// the enclosed name when it does.
func isVariableName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	name := s[2 : len(s)-1]
	if name == "" {
		return "", false
	}
	return name, true
}

// formatVariableName renders the "$(NAME)" form, the uninterpreted text
// representation of a variable-bound parameter.
func formatVariableName(name string) string {
	return "$(" + name + ")"
}

// evaluateVariable resolves name against the parameter's own
// configuration-supplied table first (letting a configuration shadow
// an OS variable of the same name), then the OS environment. The
// reserved UnusedVariableName resolves to an empty string with
// resultcode.False ("valid text for an unused option"), never an
// error.
func (p *Parameter) evaluateVariable(name string) (string, resultcode.Code) {
	if name == UnusedVariableName {
		return "", resultcode.False
	}
	if v, ok := p.nonOSVariables[name]; ok {
		return v, resultcode.OK
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, resultcode.OK
	}
	return "", resultcode.NotSet
}

// SetVariable binds name to value in this parameter's own variable
// table, which is consulted before the OS environment. Rejects the
// reserved UnusedVariableName, matching the source's
// TYPE_E_AMBIGUOUSNAME guard.
func (p *Parameter) SetVariable(name, value string) error {
	if name == UnusedVariableName {
		return resultcode.New(resultcode.AmbiguousName, "cannot rebind reserved variable "+UnusedVariableName)
	}
	if p.nonOSVariables == nil {
		p.nonOSVariables = make(map[string]string)
	}
	p.nonOSVariables[name] = value
	return nil
}

// InjectVariables merges vars into this parameter's variable table,
// without overwriting names already bound. Used by
// chainconfig.FilterConfigurationLink.InjectVariables to propagate a
// chain-wide variable table down to every parameter.
func (p *Parameter) InjectVariables(vars map[string]string) {
	if len(vars) == 0 {
		return
	}
	if p.nonOSVariables == nil {
		p.nonOSVariables = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		if _, exists := p.nonOSVariables[k]; !exists {
			p.nonOSVariables[k] = v
		}
	}
}
