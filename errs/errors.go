// Package errs collects the assembler's diagnostic error model: every
// fallible pass returns its findings as a List rather than panicking
// or stopping at the first problem, so a caller sees every error a pass
// produced in one report.
package errs

import (
	"fmt"
	"strings"

	"github.com/riscv-tools/riscv-as/token"
)

// Kind tags the category of an assembler error. Values mirror the tagged
// union in the spec: each fallible operation fails with exactly one of
// these.
type Kind int

const (
	IllegalSymbol Kind = iota
	RedefinedSymbol
	UnknownOpcode
	UnknownDirective
	BadDirectiveArg
	BadRegister
	BadImmediate
	ImmediateOutOfRange
	UnresolvedSymbol
	RelocationOverflow
	BadRelocationTarget
	Misaligned
	UnknownInstruction
	AmbiguousEncoding
	Syntax
)

var kindNames = map[Kind]string{
	IllegalSymbol:       "illegal symbol",
	RedefinedSymbol:     "redefined symbol",
	UnknownOpcode:       "unknown opcode",
	UnknownDirective:    "unknown directive",
	BadDirectiveArg:     "bad directive argument",
	BadRegister:         "bad register",
	BadImmediate:        "bad immediate",
	ImmediateOutOfRange: "immediate out of range",
	UnresolvedSymbol:     "unresolved symbol",
	RelocationOverflow:   "relocation overflow",
	BadRelocationTarget:  "bad relocation target",
	Misaligned:           "misaligned",
	UnknownInstruction:  "unknown instruction",
	AmbiguousEncoding:   "ambiguous encoding",
	Syntax:              "syntax error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "error"
}

// Error is a single diagnostic: its kind, a human-readable message, the
// source Location it applies to, and (when available) the raw source
// line for context.
type Error struct {
	Pos     token.Location
	Kind    Kind
	Message string
	Context string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message))
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n    %s", e.Context))
	}
	return sb.String()
}

// New creates a new Error without source context.
func New(pos token.Location, kind Kind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(pos token.Location, kind Kind, format string, args ...interface{}) *Error {
	return New(pos, kind, fmt.Sprintf(format, args...))
}

// WithContext attaches the offending source line to an error.
func WithContext(pos token.Location, kind Kind, message, context string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message, Context: context}
}

// List collects the errors produced by a single pass. A pass keeps
// processing after each error (per spec, errors accumulate per-line) and
// hands the aggregate back to its caller.
type List struct {
	Errors []*Error
}

// Add appends an error to the list.
func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

// Addf appends a formatted error to the list.
func (l *List) Addf(pos token.Location, kind Kind, format string, args ...interface{}) {
	l.Add(Newf(pos, kind, format, args...))
}

// HasErrors reports whether any error was recorded.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface over the aggregate.
func (l *List) Error() string {
	var sb strings.Builder
	for i, e := range l.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Append merges another list's errors into this one.
func (l *List) Append(other *List) {
	if other == nil {
		return
	}
	l.Errors = append(l.Errors, other.Errors...)
}
