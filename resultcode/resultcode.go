// Package resultcode defines the HRESULT-shaped status codes returned
// across every public boundary of this module, mirroring the exit-code
// family a C-ABI embedder expects (spec §6/§7). Internal packages mostly
// use plain Go errors; resultcode.Code is the currency at the edges that
// must present a stable, comparable status to callers — chain building,
// configuration load/save, and the optimizer.
package resultcode

import "fmt"

// Code is a result status, modeled after Win32 HRESULT conventions:
// zero and positive values indicate success (possibly partial), negative
// values indicate failure.
type Code int32

const (
	// OK indicates unqualified success.
	OK Code = 0
	// False indicates a qualified or partial success (e.g. a load that
	// skipped unknown sections, or Execute on an empty chain).
	False Code = 1

	// InvalidArg indicates a malformed or missing argument.
	InvalidArg Code = -1
	// NotImpl indicates no contributing implementation claims a request.
	NotImpl Code = -2
	// Fail is a generic, otherwise-unclassified failure.
	Fail Code = -3
	// NotSet indicates a referenced variable has no bound value.
	NotSet Code = -4
	// OutOfMemory indicates pool exhaustion combined with a heap
	// allocation failure.
	OutOfMemory Code = -5
	// IllegalMethodCall indicates an operation forbidden by the
	// object's current state (e.g. Execute after shutdown).
	IllegalMethodCall Code = -6
	// IllegalStateChange indicates an attempted state transition the
	// object's state machine does not allow.
	IllegalStateChange Code = -7
	// Unexpected indicates an internal invariant was violated.
	Unexpected Code = -8
	// CantOpenFile indicates a file could not be opened for read/write.
	CantOpenFile Code = -9
	// AmbiguousName indicates a name resolves to more than one entity.
	AmbiguousName Code = -10
	// FileNotFound indicates a referenced file does not exist.
	FileNotFound Code = -11
)

var names = map[Code]string{
	OK:                 "S_OK",
	False:              "S_FALSE",
	InvalidArg:         "E_INVALIDARG",
	NotImpl:            "E_NOTIMPL",
	Fail:               "E_FAIL",
	NotSet:             "E_NOT_SET",
	OutOfMemory:        "E_OUTOFMEMORY",
	IllegalMethodCall:  "E_ILLEGAL_METHOD_CALL",
	IllegalStateChange: "E_ILLEGAL_STATE_CHANGE",
	Unexpected:         "E_UNEXPECTED",
	CantOpenFile:       "E_CANT_OPEN_FILE",
	AmbiguousName:      "E_AMBIGUOUS_NAME",
	FileNotFound:       "E_FILE_NOT_FOUND",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("E_UNKNOWN(%d)", int32(c))
}

// Succeeded reports whether c represents success, qualified or not (c >= 0).
func Succeeded(c Code) bool {
	return c >= OK
}

// Failed reports whether c represents failure (c < 0).
func Failed(c Code) bool {
	return c < OK
}

// Error adapts a Code to the error interface so it can travel through
// ordinary Go error-handling paths when a package needs to return both.
type Error struct {
	Code Code
	// Msg optionally narrows the generic code with a human-readable detail.
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New wraps a Code and an optional message as an error. Only OK yields
// a nil error: False is qualified success, not the absence of a
// result, so callers that need to signal partial success (e.g.
// chainconfig.Load's S_FALSE) rely on a non-nil *Error surviving the
// call.
func New(c Code, msg string) error {
	if c == OK {
		return nil
	}
	return &Error{Code: c, Msg: msg}
}

// FromError recovers the Code carried by err, if any, defaulting to Fail
// for a non-nil error that does not carry one, and OK for a nil error.
func FromError(err error) Code {
	if err == nil {
		return OK
	}
	var ce *Error
	if as, ok := err.(*Error); ok {
		ce = as
	} else if errAs(err, &ce) {
		// handled below
	}
	if ce != nil {
		return ce.Code
	}
	return Fail
}

func errAs(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
