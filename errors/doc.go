// Package errors provides structured error types for the web-runtime core.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, byte offset, method name, and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		Offset(42).
//		Detail("unexpected character %q", c).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(42, "unterminated string")
//	err := errors.MethodNotFound("fs.readFlie")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind agree, so
// sentinel checks compare taxonomy rather than message text.
package errors
