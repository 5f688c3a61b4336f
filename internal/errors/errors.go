// Package errors defines the closed error-kind model described in
// SPEC_FULL.md §7: a fixed enumeration of failure kinds, each carrying a
// message and, for pinjectN's aggregated failures, the individual
// per-target errors that were collected.
package errors

import (
	"fmt"
	"strings"
)

// Kind is the closed set of error kinds a program can raise. It is never
// extended at runtime; new failure modes get a new Kind constant, not a
// free-form string.
type Kind int

const (
	ProgramExit Kind = iota
	InvalidChar
	InvalidInstruction
	StackUnderflow
	ValueError
	InvalidOperands
	RoundParenthesisError
	SquaredParenthesisError
	CurlyParenthesisError
	StringQuotingError
	InvalidNameDefine
	FileNotFound
	FileNotCreatable
	IOError
	InjectError
)

var kindNames = map[Kind]string{
	ProgramExit:            "ProgramExit",
	InvalidChar:            "InvalidChar",
	InvalidInstruction:     "InvalidInstruction",
	StackUnderflow:         "StackUnderflow",
	ValueError:             "ValueError",
	InvalidOperands:        "InvalidOperands",
	RoundParenthesisError:  "RoundParenthesisError",
	SquaredParenthesisError: "SquaredParenthesisError",
	CurlyParenthesisError:  "CurlyParenthesisError",
	StringQuotingError:     "StringQuotingError",
	InvalidNameDefine:      "InvalidNameDefine",
	FileNotFound:           "FileNotFound",
	FileNotCreatable:       "FileNotCreatable",
	IOError:                "IOError",
	InjectError:            "InjectError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UnknownError"
}

// Error is the interpreter's own error type. Line is the source line a
// compile error was raised on; it is 0 when not known, which includes
// every error raised while executing. Inject carries one entry per failed
// target when Kind is InjectError (from injectN or pinjectN); it is nil
// otherwise. Cause holds
// the underlying OS error for FileNotFound/FileNotCreatable/IOError,
// wrapped with github.com/pkg/errors at the point of failure so the CLI's
// --verbose flag can print a full cause chain (SPEC_FULL.md §6); nil for
// every other kind.
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Inject  []*Error
	Cause   error
}

// New constructs an Error of kind with message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error of kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrapf constructs an Error of kind with a formatted message, carrying
// cause for later inspection via Unwrap/Cause.
func Wrapf(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Unwrap exposes Cause to the standard errors package.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AtLine returns a copy of e with Line set, used once the compiler knows
// which source line raised it.
func (e *Error) AtLine(line int) *Error {
	out := *e
	out.Line = line
	return &out
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	if len(e.Inject) > 0 {
		sb.WriteString(":")
		for _, sub := range e.Inject {
			sb.WriteString("\n  ")
			sb.WriteString(sub.Error())
		}
	}
	return sb.String()
}

// Is reports whether target is an *Error of the same Kind, so callers
// can use errors.Is(err, &errors.Error{Kind: errors.StackUnderflow}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Injected builds an InjectError aggregating the per-target failures
// collected by injectN or pinjectN, in target order. total is the number of targets
// attempted, not just the number that failed.
func Injected(failures []*Error, total int) *Error {
	return &Error{
		Kind:    InjectError,
		Message: fmt.Sprintf("%d of %d targets failed", len(failures), total),
		Inject:  failures,
	}
}
