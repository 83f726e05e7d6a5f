package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/prex/lang"
)

// quote is the buffer of one quote block: the header text captured between
// "<#" and ":", and the statements of its body.
type quote struct {
	header strings.Builder
	body   lang.Program
	line   int
	open   bool // header complete, body collecting
}

// openQuote returns the innermost quote whose body is collecting, or nil.
func (f *frame) openQuote() *quote {
	for i := len(f.quotes) - 1; i >= 0; i-- {
		if f.quotes[i].open {
			return f.quotes[i]
		}
	}

	return nil
}

// closeQuote compiles the innermost quote into one control statement whose
// controlled block is the quote body, and dispatches it.
func (f *frame) closeQuote(ctx context.Context) error {
	q := f.quotes[len(f.quotes)-1]
	f.quotes = f.quotes[:len(f.quotes)-1]

	s, err := compileQuote(q)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("path", f.path),
			slog.Int("line", q.line),
		)
	}

	f.engine.logger.TraceContext(ctx, "quote",
		slog.String("header", s.Header()),
		slog.Int("statements", len(q.body)),
		slog.Int("line", q.line))

	return f.dispatch(ctx, s, q.line)
}

// compileQuote parses the quote header as a control header and installs the
// body as its controlled block.
func compileQuote(q *quote) (*lang.Stmt, error) {
	header := strings.TrimSpace(lang.Normalize(q.header.String(), 0))
	if header == "" {
		return nil, ErrQuoteHeader.Wrap(fmt.Errorf("line %d: empty header", q.line))
	}

	s, err := lang.ParseHeader(header)
	if err != nil {
		return nil, ErrQuoteHeader.Wrap(fmt.Errorf("line %d: %w", q.line, err))
	}

	s.Line = 0

	body := q.body
	if body == nil {
		body = lang.Program{}
	}

	if s.Kind == lang.KindIf {
		s.Clauses[0].Body = body
	} else {
		s.Body = body
	}

	return s, nil
}
