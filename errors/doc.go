// Package errors provides structured error types for the abcdump decoder.
//
// Errors are categorized by Phase (which decoding stage failed) and Kind
// (error category). The Error type carries the byte offset, a location
// path, the offending value and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePool, errors.KindDanglingReference).
//		Path("multiname", "12").
//		Offset(r.Position()).
//		Detail("namespace index %d out of range", idx).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseBytecode, "s24 operand", off)
//	err := errors.UnsupportedOpcode(0xfe, off)
//
// All errors implement the standard error interface and support errors.Is/As.
// errors.Is matches on Phase and Kind; use Kinded(kind) to match on Kind only:
//
//	if stderrors.Is(err, errors.Kinded(errors.KindTruncated)) { ... }
package errors
