package pluginloader

import "github.com/smartcgms-go/core/resultcode"

// dispatch implements spec.md §4.6's creation-dispatch rule: iterate
// candidates in load order, skip a candidate reporting resultcode.NotImpl,
// return immediately on the first resultcode.OK, and otherwise remember
// the most recent non-NotImpl failure — discarded if a later candidate
// succeeds, returned if none ever does. fns with a nil entry are
// skipped (the library didn't resolve that symbol), matching
// Call_Func's "an unresolved symbol is simply not offered".
func dispatch[T any](fns []func() (T, resultcode.Code)) (T, error) {
	var zero T
	var lastErr error
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		v, code := fn()
		switch {
		case code == resultcode.OK:
			return v, nil
		case code == resultcode.NotImpl:
			continue
		default:
			lastErr = resultcode.New(code, "")
		}
	}
	if lastErr != nil {
		return zero, lastErr
	}
	return zero, resultcode.New(resultcode.NotImpl, "no contributing library resolved this request")
}
