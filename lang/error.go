package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax        = NewError("syntax error")
	ErrExprCompile   = NewError("expression compilation failed")
	ErrExprEvaluate  = NewError("expression evaluation failed")
	ErrNotIterable   = NewError("value is not iterable")
	ErrAssign        = NewError("invalid assignment")
	ErrLoopControl   = NewError("loop control outside of loop")
	ErrIncludeArgs   = NewError("invalid include arguments")
	ErrEmit          = NewError("emit failed")
	ErrInvalidHeader = NewError("invalid control header")
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

// Is reports whether target is a sentinel sharing this error's message.
// Wrapping a sentinel creates a new value, so identity alone cannot match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured logging attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

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

// ParseError reports a directive syntax error at a position in its source.
type ParseError struct {
	Source string // The directive source being parsed
	Reason string
	Line   int // 1-based
	Column int // 1-based, 0 if unknown
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("line ")
	buf.WriteString(strconv.Itoa(e.Line))

	if e.Column > 0 {
		buf.WriteString(", column ")
		buf.WriteString(strconv.Itoa(e.Column))
	}

	buf.WriteString(": ")
	buf.WriteString(e.Reason)

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteRune('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Snippet returns the offending source line followed by a caret marking the
// error column. It returns an empty string if the line is out of range.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(e.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Line-1])

	if e.Column > 0 {
		src.WriteRune('\n')
		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		src.WriteString(strings.Repeat(" ", len(num)+5+e.Column-1))
		src.WriteRune('^')
	}

	return src.String()
}

// syntaxError wraps a ParseError into ErrSyntax with position attributes.
func syntaxError(source string, line, col int, reason string) error {
	return ErrSyntax.Wrap(&ParseError{
		Source: source,
		Reason: reason,
		Line:   line,
		Column: col,
	}).With(
		slog.Int("line", line),
		slog.Int("column", col),
	)
}
