package filterparam

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/joeycumines/floater"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/resultcode"
)

// Parameter is a typed, named configuration cell, per spec.md §3. The
// zero value is not usable; construct with New.
type Parameter struct {
	typ        Type
	configName string
	parentPath string

	variableName   string
	nonOSVariables map[string]string

	deferredPathOrVar string

	str  string
	dbl  float64
	i64  int64
	b    bool
	guid guid.GUID

	int64Array  []int64
	doubleArray []float64
	arrayVars   []string
}

// New constructs an empty parameter of the given type and config name
// (the key it's addressed by within its owning link).
func New(t Type, configName string) *Parameter {
	return &Parameter{typ: t, configName: configName}
}

// Type reports the parameter's closed type.
func (p *Parameter) Type() Type { return p.typ }

// ConfigName reports the key this parameter is addressed by.
func (p *Parameter) ConfigName() string { return p.configName }

// SetParentPath sets the directory relative file references (deferred
// paths) resolve against.
func (p *Parameter) SetParentPath(path string) error {
	if path == "" {
		return resultcode.New(resultcode.InvalidArg, "parent path must not be empty")
	}
	p.parentPath = path
	return nil
}

// ParentPath reports the currently-bound parent path.
func (p *Parameter) ParentPath() string { return p.parentPath }

// --- scalar getters/setters ---

// GetDouble resolves the parameter's double/rational-time value,
// following its variable binding if one is set.
func (p *Parameter) GetDouble() (float64, error) {
	if p.variableName == "" {
		return p.dbl, nil
	}
	strVal, rc := p.evaluateVariable(p.variableName)
	if !resultcode.Succeeded(rc) {
		return math.NaN(), resultcode.New(rc, "variable "+p.variableName+" not set")
	}
	var v float64
	var ok bool
	if p.typ == TypeRationalTime {
		v, ok = parseRationalTime(strVal)
	} else {
		v, ok = parseRationalOrFloat(strVal)
	}
	if !ok {
		return math.NaN(), resultcode.New(resultcode.InvalidArg, "not a number: "+strVal)
	}
	return v, nil
}

// SetDouble sets a literal double value, clearing any variable binding.
func (p *Parameter) SetDouble(v float64) {
	p.variableName = ""
	p.dbl = v
}

// GetInt64 resolves the parameter's int64/subject-id value.
func (p *Parameter) GetInt64() (int64, error) {
	if p.variableName == "" {
		return p.i64, nil
	}
	strVal, rc := p.evaluateVariable(p.variableName)
	if !resultcode.Succeeded(rc) {
		return math.MaxInt64, resultcode.New(rc, "variable "+p.variableName+" not set")
	}
	v, ok := parseInt64Token(strVal)
	if !ok {
		return math.MaxInt64, resultcode.New(resultcode.InvalidArg, "not an integer: "+strVal)
	}
	return v, nil
}

// SetInt64 sets a literal int64 value, clearing any variable binding.
func (p *Parameter) SetInt64(v int64) {
	p.variableName = ""
	p.i64 = v
}

// GetBool resolves the parameter's boolean value.
func (p *Parameter) GetBool() (bool, error) {
	if p.variableName == "" {
		return p.b, nil
	}
	strVal, rc := p.evaluateVariable(p.variableName)
	if !resultcode.Succeeded(rc) {
		return false, resultcode.New(rc, "variable "+p.variableName+" not set")
	}
	v, ok := parseBoolToken(strVal)
	if !ok {
		return false, resultcode.New(resultcode.InvalidArg, "not a boolean: "+strVal)
	}
	return v, nil
}

// SetBool sets a literal boolean value, clearing any variable binding.
func (p *Parameter) SetBool(v bool) {
	p.variableName = ""
	p.b = v
}

// GetGUID resolves the parameter's GUID-typed value (any of the
// signal/model/metric/solver-id flavors).
func (p *Parameter) GetGUID() (guid.GUID, error) {
	if p.variableName == "" {
		return p.guid, nil
	}
	strVal, rc := p.evaluateVariable(p.variableName)
	if !resultcode.Succeeded(rc) {
		return guid.Nil, resultcode.New(rc, "variable "+p.variableName+" not set")
	}
	v, err := guid.Parse(strVal)
	if err != nil {
		return guid.Nil, resultcode.New(resultcode.InvalidArg, "not a GUID: "+strVal)
	}
	return v, nil
}

// SetGUID sets a literal GUID value, clearing any variable binding.
func (p *Parameter) SetGUID(v guid.GUID) {
	p.variableName = ""
	p.guid = v
}

// GetWString resolves the wide-string value. When readInterpreted is
// false and the parameter is variable-bound, the literal "$(NAME)" form
// is returned instead of the variable's current value.
func (p *Parameter) GetWString(readInterpreted bool) (string, error) {
	if p.variableName == "" {
		return p.str, nil
	}
	if !readInterpreted {
		return formatVariableName(p.variableName), nil
	}
	strVal, rc := p.evaluateVariable(p.variableName)
	if !resultcode.Succeeded(rc) {
		return "", resultcode.New(rc, "variable "+p.variableName+" not set")
	}
	return strVal, nil
}

// SetWString sets a literal wide-string value, clearing any variable binding.
func (p *Parameter) SetWString(v string) {
	p.variableName = ""
	p.str = v
}

// GetDoubleArray resolves the double-array value, including any
// per-slot variable bindings.
func (p *Parameter) GetDoubleArray() ([]float64, error) {
	values := make([]float64, len(p.doubleArray))
	copy(values, p.doubleArray)
	rc := p.resolveArrayVariablesFloat(values, p.arrayVars, parseRationalOrFloatOK)
	if !resultcode.Succeeded(rc) {
		return nil, resultcode.New(rc, "unresolved array variable")
	}
	return values, nil
}

// SetDoubleArray sets a literal double-array value, discarding any
// per-slot variable bindings.
func (p *Parameter) SetDoubleArray(v []float64) {
	p.variableName = ""
	p.doubleArray = append([]float64(nil), v...)
	p.arrayVars = nil
}

// GetInt64Array resolves the int64-array value (time-segment-id list),
// including any per-slot variable bindings.
func (p *Parameter) GetInt64Array() ([]int64, error) {
	values := make([]int64, len(p.int64Array))
	copy(values, p.int64Array)
	rc := p.resolveArrayVariables(values, p.arrayVars, parseInt64Token)
	if !resultcode.Succeeded(rc) {
		return nil, resultcode.New(rc, "unresolved array variable")
	}
	return values, nil
}

// SetInt64Array sets a literal int64-array value, discarding any
// per-slot variable bindings.
func (p *Parameter) SetInt64Array(v []int64) {
	p.variableName = ""
	p.int64Array = append([]int64(nil), v...)
	p.arrayVars = nil
}

// GetFilePath resolves the parameter's value as an absolute path,
// relative to ParentPath if not already absolute.
func (p *Parameter) GetFilePath() (string, error) {
	var result string
	if p.variableName == "" {
		if p.str == "" {
			return "", nil
		}
		result = p.str
	} else {
		strVal, rc := p.evaluateVariable(p.variableName)
		if !resultcode.Succeeded(rc) {
			return "", resultcode.New(rc, "variable "+p.variableName+" not set")
		}
		result = strVal
	}
	return makeAbsolutePath(result, p.parentPath), nil
}

// Clone produces a deep, independent copy, per spec.md §3.
func (p *Parameter) Clone() *Parameter {
	clone := New(p.typ, p.configName)
	clone.variableName = p.variableName
	clone.parentPath = p.parentPath
	clone.deferredPathOrVar = p.deferredPathOrVar
	clone.str = p.str
	clone.dbl = p.dbl
	clone.i64 = p.i64
	clone.b = p.b
	clone.guid = p.guid
	clone.int64Array = append([]int64(nil), p.int64Array...)
	clone.doubleArray = append([]float64(nil), p.doubleArray...)
	clone.arrayVars = append([]string(nil), p.arrayVars...)
	if p.nonOSVariables != nil {
		clone.nonOSVariables = make(map[string]string, len(p.nonOSVariables))
		for k, v := range p.nonOSVariables {
			clone.nonOSVariables[k] = v
		}
	}
	return clone
}

// FromString parses str as this parameter's textual form, resolving
// the deferred-file magic and the "$(NAME)" variable form first, before
// dispatching on Type. Grounded on CFilter_Parameter::from_string.
func (p *Parameter) FromString(str string) error {
	effective := str

	if pathOrVar, isDeferred := isDeferredParameter(str); isDeferred {
		p.deferredPathOrVar = pathOrVar
		path, rc := p.resolveDeferredPath()
		if rc == resultcode.NotSet {
			return resultcode.New(resultcode.NotSet, "deferred path variable not set")
		}
		content, loadRC, err := loadFromFile(path)
		if err != nil {
			return err
		}
		if resultcode.Succeeded(loadRC) {
			if content == "" {
				return resultcode.New(resultcode.NotSet, "deferred file is empty")
			}
			effective = content
		}
	} else {
		p.deferredPathOrVar = ""
	}

	if name, isVar := isVariableName(effective); isVar {
		p.variableName = name
		return nil
	}
	p.variableName = ""

	switch p.typ {
	case TypeWideString:
		p.str = effective
		return nil

	case TypeInt64Array:
		values, arrayVars, ok := parseArray(effective, parseInt64Token)
		if !ok {
			return resultcode.New(resultcode.Fail, "malformed int64 array: "+effective)
		}
		p.int64Array, p.arrayVars = values, arrayVars
		return nil

	case TypeDoubleArray:
		values, arrayVars, ok := parseArray(effective, parseRationalOrFloatOK)
		if !ok {
			return resultcode.New(resultcode.Fail, "malformed double array: "+effective)
		}
		p.doubleArray, p.arrayVars = values, arrayVars
		return nil

	case TypeRationalTime:
		v, ok := parseRationalTime(effective)
		if !ok {
			return resultcode.New(resultcode.Fail, "not a rational time: "+effective)
		}
		p.dbl = v
		return nil

	case TypeDouble:
		v, ok := parseRationalOrFloat(effective)
		if !ok {
			return resultcode.New(resultcode.Fail, "not a number: "+effective)
		}
		p.dbl = v
		return nil

	case TypeInt64, TypeSubjectID:
		v, ok := parseInt64Token(effective)
		if !ok {
			return resultcode.New(resultcode.Fail, "not an integer: "+effective)
		}
		p.i64 = v
		return nil

	case TypeBoolean:
		v, ok := parseBoolToken(effective)
		if !ok {
			return resultcode.New(resultcode.Fail, "not a boolean: "+effective)
		}
		p.b = v
		return nil

	case TypeSignalID, TypeSignalModelID, TypeDiscreteModelID, TypeMetricID, TypeProducedSignalID, TypeSolverID:
		if g, err := guid.Parse(effective); err == nil {
			p.guid = g
			return nil
		}
		if ResolveSignalByName != nil {
			if g, ok := ResolveSignalByName(effective); ok {
				p.guid = g
				return nil
			}
		}
		return resultcode.New(resultcode.Fail, "not a GUID and not resolvable by name: "+effective)

	default:
		return resultcode.New(resultcode.Fail, "unsupported parameter type for from_string")
	}
}

// ToString renders this parameter's current value. When readInterpreted
// is false, variable bindings render as "$(NAME)" and a deferred-file
// binding writes its current content back to the file and renders the
// deferred magic string instead.
func (p *Parameter) ToString(readInterpreted bool) (string, error) {
	var converted string
	var rc resultcode.Code = resultcode.OK

	switch p.typ {
	case TypeDoubleArray:
		converted, rc = arrayToString(p.doubleArray, p.arrayVars, readInterpreted, p.evaluateVariable, formatFloat)
	case TypeInt64Array:
		converted, rc = arrayToString(p.int64Array, p.arrayVars, readInterpreted, p.evaluateVariable, formatInt64)
	default:
		converted, rc = p.scalarToString(readInterpreted)
	}

	if !resultcode.Succeeded(rc) {
		return "", resultcode.New(rc, "cannot render parameter "+p.configName)
	}

	if p.deferredPathOrVar != "" && !readInterpreted {
		path, pathRC := p.resolveDeferredPath()
		if pathRC == resultcode.NotSet {
			return "", resultcode.New(resultcode.NotSet, "deferred path variable not set")
		}
		if resultcode.Succeeded(pathRC) {
			if err := saveToFile(path, converted); err != nil {
				return "", err
			}
		}
		return formatDeferred(p.deferredPathOrVar), nil
	}

	return converted, nil
}

func (p *Parameter) scalarToString(readInterpreted bool) (string, resultcode.Code) {
	if p.variableName != "" {
		if !readInterpreted {
			return formatVariableName(p.variableName), resultcode.OK
		}
		return p.evaluateVariable(p.variableName)
	}

	switch p.typ {
	case TypeWideString:
		return p.str, resultcode.OK
	case TypeRationalTime, TypeDouble:
		r := new(big.Rat)
		r.SetFloat64(p.dbl)
		return floater.FormatDecimalRat(r, -1, 53), resultcode.OK
	case TypeInt64, TypeSubjectID:
		return strconv.FormatInt(p.i64, 10), resultcode.OK
	case TypeBoolean:
		if p.b {
			return "true", resultcode.OK
		}
		return "false", resultcode.OK
	case TypeSignalID, TypeSignalModelID, TypeDiscreteModelID, TypeMetricID, TypeProducedSignalID, TypeSolverID:
		return p.guid.String(), resultcode.OK
	default:
		return "", resultcode.OK
	}
}

func parseRationalOrFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseRationalOrFloatOK(s string) (float64, bool) {
	return parseRationalOrFloat(s)
}

func parseBoolToken(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// rationalTimeDateLayouts are the ISO-like date forms accepted as a
// rational-time literal, per spec.md §4.4's "also parses an ISO-like
// date string to days". Tried in order after a plain decimal fails.
var rationalTimeDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseRationalTime parses a rational-time literal: a locale-free
// decimal number of days, or, failing that, an ISO-like date/time
// string converted to days since the rational-time epoch.
func parseRationalTime(s string) (float64, bool) {
	if v, ok := parseRationalOrFloat(s); ok {
		return v, true
	}
	s = strings.TrimSpace(s)
	for _, layout := range rationalTimeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return event.UnixToRationalTime(t), true
		}
	}
	return 0, false
}
