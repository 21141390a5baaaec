package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse     Phase = "parse"     // JSON text to Value
	PhaseEncode    Phase = "encode"    // Value to JSON text
	PhaseDispatch  Phase = "dispatch"  // bridge request routing
	PhaseMemory    Phase = "memory"    // pool and arena operations
	PhaseWatch     Phase = "watch"     // filesystem watching
	PhaseBroadcast Phase = "broadcast" // reload client delivery
	PhaseRuntime   Phase = "runtime"   // coordinator lifecycle
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax           Kind = "syntax"
	KindTypeMismatch     Kind = "type_mismatch"
	KindOverflow         Kind = "overflow"
	KindInvalidUTF8      Kind = "invalid_utf8"
	KindUnsupported      Kind = "unsupported"
	KindAllocation       Kind = "allocation"
	KindScopeUnderflow   Kind = "scope_underflow"
	KindDoubleFree       Kind = "double_free"
	KindLeak             Kind = "leak"
	KindMethodNotFound   Kind = "method_not_found"
	KindMalformedRequest Kind = "malformed_request"
	KindNotFound         Kind = "not_found"
	KindNotInitialized   Kind = "not_initialized"
	KindInvalidInput     Kind = "invalid_input"
	KindClosed           Kind = "closed"
	KindIO               Kind = "io"
	KindInternal         Kind = "internal"
)

// Error is the structured error type used throughout the runtime core
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Method string
	Detail string
	Path   []string
	Offset int // byte offset into source text for parse errors, -1 otherwise
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset > 0 || (e.Phase == PhaseParse && e.Offset == 0) {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Method != "" {
		b.WriteString(": method ")
		b.WriteString(e.Method)
	}

	if e.Detail != "" {
		if e.Method != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset into the source text
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Method sets the bridge method name
func (b *Builder) Method(m string) *Builder {
	b.err.Method = m
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a JSON syntax error at a byte offset
func Syntax(offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Offset: offset,
		Detail: detail,
	}
}

// Encode creates a serialization error
func Encode(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
		Offset: -1,
	}
}

// NonFinite creates an error for serializing NaN or infinite floats
func NonFinite(path []string, v float64) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: fmt.Sprintf("non-finite float %v has no JSON representation", v),
		Value:  v,
		Offset: -1,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size int, cause error) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
		Offset: -1,
	}
}

// ScopeUnderflow creates a scope discipline violation error
func ScopeUnderflow(detail string) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindScopeUnderflow,
		Detail: detail,
		Offset: -1,
	}
}

// DoubleFree creates a double-free contract violation error
func DoubleFree(size int) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindDoubleFree,
		Detail: fmt.Sprintf("block of %d bytes freed twice", size),
		Offset: -1,
	}
}

// Leaked creates a leak report error covering n outstanding allocations
func Leaked(n int) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d allocation(s) outstanding at teardown", n),
		Value:  n,
		Offset: -1,
	}
}

// MethodNotFound creates an unknown-method dispatch error
func MethodNotFound(method string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindMethodNotFound,
		Method: method,
		Detail: "no handler registered",
		Offset: -1,
	}
}

// MalformedRequest creates an envelope validation error
func MalformedRequest(detail string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindMalformedRequest,
		Detail: detail,
		Offset: -1,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
		Offset: -1,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
		Offset: -1,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Offset: -1,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
		Offset: -1,
	}
}

// Closed creates an operating-on-closed-resource error
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
		Offset: -1,
	}
}

// IO creates an I/O error for watch and broadcast paths
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}

// Internal creates an internal error, typically from a recovered handler panic
func Internal(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}
