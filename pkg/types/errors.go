package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a gamescript error code.
type ErrorCode string

// Error codes, grouped by subsystem.
const (
	// S0xxx: Lexer/Syntax errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrCharNotClosed     ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrUnexpectedEnd     ErrorCode = "S0104"
	ErrNumberOutOfRange  ErrorCode = "S0105"
	ErrUnexpectedToken   ErrorCode = "S0201"
	ErrMalformedForm     ErrorCode = "S0202"
	ErrInvalidPattern    ErrorCode = "S0203"

	// G0xxx: Scope errors
	ErrUnboundSymbol ErrorCode = "G0101"
	ErrRebind        ErrorCode = "G0102"

	// T0xxx: Type errors
	ErrTypeMismatch       ErrorCode = "T0201"
	ErrNonBoolean         ErrorCode = "T0202"
	ErrHeterogeneousArray ErrorCode = "T0203"
	ErrShapeMismatch      ErrorCode = "T0204"

	// F0xxx: Function call errors
	ErrArityMismatch      ErrorCode = "F0301"
	ErrNotCallable        ErrorCode = "F0302"
	ErrForeignFailure     ErrorCode = "F0303"
	ErrUnsupportedForeign ErrorCode = "F0304"

	// P0xxx: Pattern errors
	ErrPatternMismatch ErrorCode = "P0401"
	ErrNoMatch         ErrorCode = "P0402"

	// R0xxx: Reference errors
	ErrInvalidReference ErrorCode = "R0501"

	// D0xxx: Domain errors raised by built-ins
	ErrDivisionByZero  ErrorCode = "D0601"
	ErrIndexRange      ErrorCode = "D0602"
	ErrParseValue      ErrorCode = "D0603"
	ErrInvalidArgument ErrorCode = "D0604"
	ErrUserError       ErrorCode = "D0605"
	ErrAssertion       ErrorCode = "D0606"

	// U0xxx: Runtime limits
	ErrCancelled ErrorCode = "U0701"
	ErrMaxDepth  ErrorCode = "U0702"
	ErrStepLimit ErrorCode = "U0703"
	ErrInternal  ErrorCode = "U0799"
)

// Subsystem tags used in error frames.
const (
	SubsystemParse   = "parse"
	SubsystemEval    = "eval"
	SubsystemCall    = "call"
	SubsystemScope   = "scope"
	SubsystemPattern = "pattern"
	SubsystemForeign = "foreign"
	SubsystemBuiltin = "builtin"
	SubsystemArena   = "arena"
)

// MaxFrames bounds the number of frames kept in a trace. Outer frames beyond
// it are only counted.
const MaxFrames = 64

// Frame is a single failure record of an error trace.
type Frame struct {
	Subsystem string
	Location  *Location
	Message   string
}

func (f Frame) String() string {
	if f.Location != nil {
		return fmt.Sprintf("[%s] %s: %s", f.Subsystem, f.Location, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Subsystem, f.Message)
}

// Error represents a structured gamescript error.
//
// The error carries the root cause (Code, Message, Location) and the frames
// pushed by every enclosing layer while the failure propagated outward.
// Frames are stored innermost first.
type Error struct {
	Code     ErrorCode
	Message  string
	Location *Location
	Frames   []Frame
	Elided   int
	Err      error
}

// NewError creates a new error rooted in the given subsystem.
func NewError(code ErrorCode, subsystem string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Frames:  []Frame{{Subsystem: subsystem, Message: message}},
	}
}

// Errorf is like NewError with a formatted message.
func Errorf(code ErrorCode, subsystem string, format string, args ...interface{}) *Error {
	return NewError(code, subsystem, fmt.Sprintf(format, args...))
}

// At attaches a source location to the error and to its root frame.
func (e *Error) At(loc Location) *Error {
	if loc.IsZero() {
		return e
	}
	l := loc
	e.Location = &l
	if len(e.Frames) > 0 && e.Frames[0].Location == nil {
		e.Frames[0].Location = &l
	}
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Push adds an outer frame to the trace.
func (e *Error) Push(subsystem string, loc *Location, message string) *Error {
	if len(e.Frames) >= MaxFrames {
		e.Elided++
		return e
	}
	e.Frames = append(e.Frames, Frame{Subsystem: subsystem, Location: loc, Message: message})
	return e
}

// Error implements the error interface. The root cause comes first on the
// first line; the trace follows with the outermost frame first and the
// innermost cause last.
func (e *Error) Error() string {
	head := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Location != nil {
		head = fmt.Sprintf("%s at %s: %s", e.Code, e.Location, e.Message)
	}
	if len(e.Frames) <= 1 {
		return head
	}
	var sb strings.Builder
	sb.WriteString(head)
	if e.Elided > 0 {
		fmt.Fprintf(&sb, "\n  ... %d outer frames elided", e.Elided)
	}
	for i := len(e.Frames) - 1; i >= 0; i-- {
		sb.WriteString("\n  ")
		sb.WriteString(e.Frames[i].String())
	}
	return sb.String()
}

// Trace returns the frames outermost first.
func (e *Error) Trace() []Frame {
	out := make([]Frame, len(e.Frames))
	for i, f := range e.Frames {
		out[len(e.Frames)-1-i] = f
	}
	return out
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so that errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Wrap adds a frame to err. Non-gamescript errors are converted into an
// ErrInternal error that keeps the original as its cause.
func Wrap(err error, subsystem string, loc *Location, message string) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if !errors.As(err, &ge) {
		ge = NewError(ErrInternal, subsystem, err.Error()).WithCause(err)
	}
	return ge.Push(subsystem, loc, message)
}

// CodeOf returns the code of a gamescript error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// HasCode reports whether err is a gamescript error with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
