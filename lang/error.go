package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput          = NewError("failed to read input")
	ErrRegionNotFound     = NewError("region marker not found")
	ErrDefinitionNotFound = NewError("definition not found")
	ErrFilterCompile      = NewError("filter compilation failed")
	ErrFilterEvaluate     = NewError("filter evaluation failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is matches errors sharing a sentinel's message, so errors.Is works on
// values derived from a sentinel through Wrap or With.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError is a fatal grammar failure at a known source position. Unlike
// a no-match, it is never recovered by trying another alternative; it
// propagates to the top-level caller, which aborts the parse.
type SyntaxError struct {
	Message  string
	Filename string
	Line     int    // 1-based; 0 when the input ended before any token
	Column   int    // 1-based
	Token    string // offending token text, empty at end of input
	Source   string // original source, for context formatting
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	if e.Filename != "" {
		buf.WriteString(e.Filename)
		buf.WriteString(":")
	}

	if e.Line > 0 {
		buf.WriteString(strconv.Itoa(e.Line))
		buf.WriteString(":")
		buf.WriteString(strconv.Itoa(e.Column))
		buf.WriteString(": ")
	} else if e.Filename != "" {
		buf.WriteString(" ")
	}

	buf.WriteString(e.Message)

	if e.Token != "" {
		buf.WriteString(", got ")
		buf.WriteString(strconv.Quote(e.Token))
	}

	return buf.String()
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Message),
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("token", e.Token),
	)
}

// Snippet formats the offending source line with a caret marker under the
// error column. It returns an empty string when no source context exists.
func (e *SyntaxError) Snippet() string {
	if e.Source == "" || e.Line <= 0 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Line > len(lines) {
		return ""
	}

	line := lines[e.Line-1]

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// Print marker pointing to the column
	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Line))+5)

	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
