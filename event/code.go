// Package event implements the pooled, reference-counted, polymorphic
// device event of spec.md §3/§4.1: a fixed-slot pool with atomic
// allocation, a global monotonic logical clock, and a payload that is
// exactly one of scalar level, shared parameter vector, or shared info
// string, selected by the event code's major category. Grounded on
// _examples/original_source/scgms/src/device_event.{h,cpp}.
package event

// Code enumerates device event codes. Each code belongs to exactly one
// MajorType, which determines the event's payload kind; the two are
// kept distinct (rather than folded into one enum) because several
// codes of the same major type exist (e.g. multiple control codes).
type Code int32

const (
	CodeNothing Code = iota

	// Level codes.
	CodeLevel
	CodeMasked_Level

	// Parameters codes.
	CodeParameters
	CodeParameters_Hint

	// Info codes.
	CodeInformation
	CodeWarning

	// Control codes.
	CodeShut_Down
	CodeSolve_Parameters
	CodeTime_Segment_Start
	CodeTime_Segment_Stop
	CodeWarm_Reset

	// Error codes.
	CodeError
)

// MajorType classifies a Code by the payload shape it carries.
type MajorType int8

const (
	MajorLevel MajorType = iota
	MajorParameters
	MajorInfo
	MajorControl
	MajorError
)

var majorTypes = map[Code]MajorType{
	CodeNothing:            MajorControl,
	CodeLevel:              MajorLevel,
	CodeMasked_Level:       MajorLevel,
	CodeParameters:         MajorParameters,
	CodeParameters_Hint:    MajorParameters,
	CodeInformation:        MajorInfo,
	CodeWarning:            MajorInfo,
	CodeShut_Down:          MajorControl,
	CodeSolve_Parameters:   MajorControl,
	CodeTime_Segment_Start: MajorControl,
	CodeTime_Segment_Stop:  MajorControl,
	CodeWarm_Reset:         MajorControl,
	CodeError:              MajorError,
}

// Major reports the payload category of c. Unknown codes are treated
// as control events, carrying no shared payload — mirroring the
// source's "default" switch arm.
func (c Code) Major() MajorType {
	if m, ok := majorTypes[c]; ok {
		return m
	}
	return MajorControl
}

// IsShutDown reports whether c is the cooperative-teardown control event.
func (c Code) IsShutDown() bool {
	return c == CodeShut_Down
}
