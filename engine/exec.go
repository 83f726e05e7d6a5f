package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/prex/lang"
)

// Fault describes a statement that failed while a document was processed.
type Fault struct {
	Err      error
	Path     string // document being processed
	Fragment string // directive source of the failing statement
	Trace    string // include chain, outermost first
	Line     int    // source line of the fragment
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s:%d: %v", f.Path, f.Line, f.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (f *Fault) Unwrap() error { return f.Err }

// dispatch routes a generated statement.
//
// While a quote body is open the statement is deferred into that body. When
// compiling, it is collected. Otherwise it runs immediately with f as its
// runtime.
func (f *frame) dispatch(ctx context.Context, s *lang.Stmt, line int) error {
	if q := f.openQuote(); q != nil {
		q.body = append(q.body, s)

		return nil
	}

	if f.engine.compiling {
		f.program = append(f.program, s)

		return nil
	}

	if err := s.Run(ctx, f.engine.env, f); err != nil {
		return f.fault(err, s.String(), line)
	}

	return nil
}

// fault wraps err as an execution fault of fragment. Faults raised by a
// nested document are returned unchanged, so the innermost fragment is the
// one reported.
func (f *frame) fault(err error, fragment string, line int) error {
	if errors.Is(err, ErrExecute) {
		return err
	}

	trace := f.engine.trace()

	return ErrExecute.Wrap(&Fault{
		Err:      err,
		Path:     f.path,
		Fragment: fragment,
		Trace:    trace,
		Line:     line,
	}).With(
		slog.String("path", f.path),
		slog.Int("line", line),
		slog.String("fragment", fragment),
		slog.String("trace", trace),
	)
}
