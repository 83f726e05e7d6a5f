package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/prex/lang"
)

// flush converts the text accumulated in r into a statement and dispatches
// it. Quote headers collect their text in the quote buffer instead.
func (f *frame) flush(ctx context.Context, r *region) error {
	text := r.pending.String()
	r.pending.Reset()

	var err error

	switch r.mode {
	case Normal:
		if text != "" {
			err = f.dispatch(ctx, lang.Emit(text), r.line)
		}

	case Directive:
		err = f.flushDirective(ctx, text, r.line)

	case Expr:
		if src := strings.TrimSpace(lang.Normalize(text, 0)); src != "" {
			err = f.dispatch(ctx, lang.EmitExpr(src), r.line)
		}

	case QuoteHeader:
		f.quotes[len(f.quotes)-1].header.WriteString(text)

	case QuoteContinuation:
		// Indentation before the first fragment of a continuation line is
		// markup.
		if !r.flushed {
			text = lang.Normalize(text, 0)
			r.flushed = true
		}

		if text != "" {
			err = f.dispatch(ctx, lang.Emit(text), r.line)
		}
	}

	if err != nil {
		return err
	}

	if f.engine.lineMarkers {
		return f.dispatch(ctx, lang.Emit("\n#line "+strconv.Itoa(f.line)+"\n"), f.line)
	}

	return nil
}

// flushDirective parses directive text into a block statement.
func (f *frame) flushDirective(ctx context.Context, text string, line int) error {
	src := lang.Normalize(text, 0)
	if strings.TrimSpace(src) == "" {
		return nil
	}

	f.engine.logger.TraceContext(ctx, "directive",
		slog.String("source", src),
		slog.Int("line", line))

	prog, err := lang.Parse(src)
	if err != nil {
		return f.fault(err, strings.TrimSpace(src), line)
	}

	return f.dispatch(ctx, lang.Block(prog, src), line)
}
