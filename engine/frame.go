package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/prex/lang"
)

// region is one entry of a frame's mode stack: the mode and the text
// accumulated since the region was opened or last flushed.
type region struct {
	pending strings.Builder
	mode    Mode
	line    int  // source line where the region opened
	flushed bool // a continuation fragment has been flushed
}

// frame is the parser state of one document being processed.
//
// Frames live in the engine's arena, indexed by include depth, and are
// reused once the document they served is finished.
type frame struct {
	engine  *Engine
	out     io.Writer
	path    string
	regions []*region
	quotes  []*quote
	program lang.Program // statements collected while compiling
	line    int
}

// reset prepares f to process the document at path.
func (f *frame) reset(e *Engine, out io.Writer, path string) {
	f.engine = e
	f.out = out
	f.path = path
	f.regions = f.regions[:0]
	f.quotes = f.quotes[:0]
	f.program = nil
	f.line = 1
}

// release drops references held by a finished frame.
func (f *frame) release() {
	clear(f.regions)
	clear(f.quotes)
	f.out = nil
	f.program = nil
}

func (f *frame) top() *region { return f.regions[len(f.regions)-1] }

// push flushes the active region and opens a region for mode.
func (f *frame) push(ctx context.Context, mode Mode) error {
	if len(f.regions) > 0 {
		if err := f.flush(ctx, f.top()); err != nil {
			return err
		}
	}

	f.regions = append(f.regions, &region{mode: mode, line: f.line})

	if mode == QuoteHeader {
		f.quotes = append(f.quotes, &quote{line: f.line})
	}

	f.engine.logger.TraceContext(ctx, "push",
		slog.String("mode", mode.String()),
		slog.Int("line", f.line))

	return nil
}

// pop closes the active region. A closed quote body is compiled and
// dispatched. Any other region is flushed.
func (f *frame) pop(ctx context.Context) error {
	if len(f.regions) <= 1 {
		return f.unbalanced()
	}

	r := f.top()
	f.regions = f.regions[:len(f.regions)-1]

	f.engine.logger.TraceContext(ctx, "pop",
		slog.String("mode", r.mode.String()),
		slog.Int("line", f.line))

	switch r.mode {
	case Quote:
		return f.closeQuote(ctx)

	case QuoteHeader:
		// A header closed by anything but its own delimiter never opens a
		// body, so its quote is dropped.
		err := f.flush(ctx, r)
		f.quotes = f.quotes[:len(f.quotes)-1]

		return err

	default:
		return f.flush(ctx, r)
	}
}

// closeHeader ends the active quote header and opens its body.
func (f *frame) closeHeader(ctx context.Context) error {
	r := f.top()
	f.regions = f.regions[:len(f.regions)-1]

	if err := f.flush(ctx, r); err != nil {
		return err
	}

	f.quotes[len(f.quotes)-1].open = true

	return f.push(ctx, Quote)
}

// closeQuoteEnd handles the quote-end delimiter.
func (f *frame) closeQuoteEnd(ctx context.Context) error {
	switch f.top().mode {
	case QuoteContinuation:
		if err := f.pop(ctx); err != nil {
			return err
		}

		if f.top().mode != Quote {
			return f.unbalanced()
		}

		return f.pop(ctx)

	case Quote:
		return f.pop(ctx)

	default:
		return f.unbalanced()
	}
}

// literal appends text to the active region. Text directly inside a quote
// body becomes an emit statement of that body.
func (f *frame) literal(ctx context.Context, text string) error {
	r := f.top()

	if r.mode == Quote {
		if text == "" {
			return nil
		}

		return f.dispatch(ctx, lang.Emit(text), f.line)
	}

	r.pending.WriteString(text)

	return nil
}

// feed drives one line of input through the mode stack.
func (f *frame) feed(ctx context.Context, line string) error {
	for tok := range Tokenize(line) {
		f.line += strings.Count(tok.Text, "\n")

		if err := f.step(ctx, tok); err != nil {
			return err
		}
	}

	return nil
}

// step applies the transition for one token.
func (f *frame) step(ctx context.Context, tok Token) error {
	top := f.top().mode

	switch tok.Trigger {
	case TriggerDirectiveStart:
		return f.push(ctx, Directive)

	case TriggerExprStart:
		return f.push(ctx, Expr)

	case TriggerDirectiveEnd, TriggerExprEnd:
		return f.pop(ctx)

	case TriggerQuoteHeaderStart:
		return f.push(ctx, QuoteHeader)

	case TriggerQuoteHeaderEnd:
		if top == QuoteHeader {
			return f.closeHeader(ctx)
		}

	case TriggerQuoteContinuationStart:
		if top == Quote {
			return f.push(ctx, QuoteContinuation)
		}

	case TriggerQuoteContinuationEnd:
		if top == QuoteContinuation {
			return f.pop(ctx)
		}

	case TriggerQuoteEnd:
		return f.closeQuoteEnd(ctx)
	}

	return f.literal(ctx, tok.Text)
}

// finish flushes the base region at end of input.
func (f *frame) finish(ctx context.Context) error {
	if len(f.regions) > 1 {
		r := f.top()

		return ErrUnterminated.Wrap(fmt.Errorf(
			"%s:%d: %s region opened here was never closed",
			f.path, r.line, r.mode,
		)).With(
			slog.String("path", f.path),
			slog.String("mode", r.mode.String()),
			slog.Int("line", r.line),
		)
	}

	return f.flush(ctx, f.top())
}

func (f *frame) unbalanced() error {
	mode := f.top().mode

	return ErrUnbalanced.Wrap(fmt.Errorf(
		"%s:%d: unexpected closing delimiter in %s region",
		f.path, f.line, mode,
	)).With(
		slog.String("path", f.path),
		slog.String("mode", mode.String()),
		slog.Int("line", f.line),
	)
}

// Emit implements lang.Runtime.
func (f *frame) Emit(_ context.Context, text string) error {
	if _, err := io.WriteString(f.out, text); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Include implements lang.Runtime.
func (f *frame) Include(ctx context.Context, call lang.Call) error {
	return f.engine.include(ctx, f, call)
}
