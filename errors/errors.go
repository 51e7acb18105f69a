package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which decoding stage produced the error
type Phase string

const (
	PhaseContainer Phase = "container" // SWF header and tag stream
	PhaseArchive   Phase = "archive"   // SWC zip extraction
	PhasePool      Phase = "pool"      // ABC constant pool
	PhaseAssemble  Phase = "assemble"  // method/class/script/body tables
	PhaseBytecode  Phase = "bytecode"  // instruction stream
	PhaseRender    Phase = "render"    // text projections
	PhaseLoad      Phase = "load"      // files and configuration
)

// Kind categorizes the error
type Kind string

const (
	KindBadSignature           Kind = "bad_signature"
	KindLengthExceeded         Kind = "length_exceeded"
	KindUnsupportedCompression Kind = "unsupported_compression"
	KindTruncated              Kind = "truncated"
	KindDanglingReference      Kind = "dangling_reference"
	KindUnsupportedOpcode      Kind = "unsupported_opcode"
	KindMalformedMultiname     Kind = "malformed_multiname"
	KindInvalidData            Kind = "invalid_data"
	KindOverflow               Kind = "overflow"
	KindNotFound               Kind = "not_found"
	KindInvalidInput           Kind = "invalid_input"
)

// Error is the structured error type used throughout the decoder
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Offset int // absolute byte offset, -1 when unknown
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		fmt.Fprintf(&b, "%d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Kinded returns a match target for errors.Is that ignores the phase.
func Kinded(kind Kind) *Error {
	return &Error{Kind: kind, Offset: -1}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, Kinded(kind))
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

// Path sets the location path (e.g. "method_body", "12")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the absolute byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
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

// BadSignature creates a container signature error
func BadSignature(sig []byte) *Error {
	return &Error{
		Phase:  PhaseContainer,
		Kind:   KindBadSignature,
		Offset: 0,
		Detail: fmt.Sprintf("unrecognized signature %q", sig),
		Value:  string(sig),
	}
}

// LengthExceeded creates an error for a declared length that runs past the buffer
func LengthExceeded(phase Phase, what string, declared, available int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthExceeded,
		Offset: -1,
		Detail: fmt.Sprintf("%s declares %d bytes, %d available", what, declared, available),
		Value:  declared,
	}
}

// UnsupportedCompression creates an unsupported compression scheme error
func UnsupportedCompression(scheme string, cause error) *Error {
	return &Error{
		Phase:  PhaseContainer,
		Kind:   KindUnsupportedCompression,
		Offset: -1,
		Detail: scheme,
		Cause:  cause,
	}
}

// Truncated creates an error for a field that runs past the end of the buffer
func Truncated(phase Phase, what string, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Offset: offset,
		Detail: what,
	}
}

// DanglingReference creates an out-of-range or forward reference error
func DanglingReference(phase Phase, table string, index uint32, length int, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDanglingReference,
		Offset: offset,
		Detail: fmt.Sprintf("%s index %d out of range (length %d)", table, index, length),
		Value:  index,
	}
}

// UnsupportedOpcode creates an error for a byte absent from the opcode table
func UnsupportedOpcode(op byte, offset int) *Error {
	return &Error{
		Phase:  PhaseBytecode,
		Kind:   KindUnsupportedOpcode,
		Offset: offset,
		Detail: fmt.Sprintf("opcode 0x%02x", op),
		Value:  op,
	}
}

// MalformedMultiname creates an error for an unrecognized or ill-formed name record
func MalformedMultiname(detail string, offset int) *Error {
	return &Error{
		Phase:  PhasePool,
		Kind:   KindMalformedMultiname,
		Offset: offset,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Offset: offset,
		Detail: detail,
	}
}

// Overflow creates an error for a varint longer than its maximum width
func Overflow(phase Phase, what string, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Offset: offset,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a file loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns a copy of err with the given path prefixed, if err is an *Error.
// Other errors are returned unchanged.
func WithPath(err error, path ...string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), e.Path...)
	return &cp
}
