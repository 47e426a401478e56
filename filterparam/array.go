package filterparam

import (
	"strconv"
	"strings"

	"github.com/smartcgms-go/core/resultcode"
)

// parseArray splits a space-delimited literal into per-slot values,
// recording which slots were variable references (mArray_Vars in the
// source) rather than literal text. conv converts one non-variable
// token; it must report ok=false for malformed tokens.
func parseArray[T any](str string, conv func(string) (T, bool)) (values []T, arrayVars []string, ok bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, nil, true
	}
	tokens := strings.Fields(str)
	values = make([]T, 0, len(tokens))
	arrayVars = make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if name, isVar := isVariableName(tok); isVar {
			arrayVars = append(arrayVars, name)
			var zero T
			values = append(values, zero)
			continue
		}
		v, valid := conv(tok)
		if !valid {
			return nil, nil, false
		}
		arrayVars = append(arrayVars, "")
		values = append(values, v)
	}
	return values, arrayVars, true
}

// resolveArrayVariables re-evaluates every variable-bound slot recorded
// in arrayVars against the parameter's variable table, writing resolved
// values into values in place.
func (p *Parameter) resolveArrayVariables(values []int64, arrayVars []string, conv func(string) (int64, bool)) resultcode.Code {
	for i, name := range arrayVars {
		if name == "" {
			continue
		}
		strVal, rc := p.evaluateVariable(name)
		if !resultcode.Succeeded(rc) {
			return rc
		}
		v, ok := conv(strVal)
		if !ok {
			return resultcode.InvalidArg
		}
		values[i] = v
	}
	return resultcode.OK
}

func (p *Parameter) resolveArrayVariablesFloat(values []float64, arrayVars []string, conv func(string) (float64, bool)) resultcode.Code {
	for i, name := range arrayVars {
		if name == "" {
			continue
		}
		strVal, rc := p.evaluateVariable(name)
		if !resultcode.Succeeded(rc) {
			return rc
		}
		v, ok := conv(strVal)
		if !ok {
			return resultcode.InvalidArg
		}
		values[i] = v
	}
	return resultcode.OK
}

// arrayToString renders values back to the space-delimited textual
// form. When readInterpreted is false, variable-bound slots render as
// "$(NAME)" rather than their resolved value.
func arrayToString[T any](values []T, arrayVars []string, readInterpreted bool, evaluate func(name string) (string, resultcode.Code), format func(T) string) (string, resultcode.Code) {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i < len(arrayVars) && arrayVars[i] != "" {
			if readInterpreted {
				strVal, rc := evaluate(arrayVars[i])
				if !resultcode.Succeeded(rc) {
					return "", resultcode.NotSet
				}
				b.WriteString(strVal)
			} else {
				b.WriteString(formatVariableName(arrayVars[i]))
			}
			continue
		}
		b.WriteString(format(v))
	}
	return b.String(), resultcode.OK
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseInt64Token(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
