package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/prex/lang"
)

// Include records one document processed through include or include_py.
type Include struct {
	Path string         // resolved path of the included document
	Vars map[string]any // variables in effect for the included document
}

// include processes the document named by call on behalf of caller.
func (e *Engine) include(ctx context.Context, caller *frame, call lang.Call) error {
	mode := Directive

	if !call.Directive {
		m, err := ParseMode(call.Mode)
		if err != nil {
			return ErrInclude.Wrap(err)
		}

		if !m.startable() {
			return ErrInclude.Wrap(ErrInvalidMode.Wrap(
				fmt.Errorf("document cannot start in %s", m),
			))
		}

		mode = m
	}

	path := resolve(caller.path, call.Path)

	restore := e.env.Overlay(call.Vars)
	defer restore()

	e.deps = append(e.deps, Include{Path: path, Vars: maps.Clone(e.env.Vars())})

	out := caller.out
	if call.Output != nil {
		out = call.Output
	}

	e.logger.DebugContext(ctx, "include",
		slog.String("path", path),
		slog.String("mode", mode.String()),
		slog.Int("depth", e.depth),
		slog.Int("line", call.Line))

	err := e.processFile(ctx, out, path, mode)
	if err != nil && !errors.Is(err, ErrExecute) {
		return ErrInclude.Wrap(err).With(slog.String("path", path))
	}

	return err
}

// resolve locates an included document. Relative paths are tried against
// the directory of the including document first, then the working directory.
func resolve(from, path string) string {
	if filepath.IsAbs(path) || from == "" {
		return path
	}

	candidate := filepath.Join(filepath.Dir(from), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return path
}

// enter acquires the frame for a new document at the next include depth.
func (e *Engine) enter(out io.Writer, path string) (*frame, error) {
	if e.depth >= e.maxDepth {
		return nil, ErrMaxDepthExceeded.Wrap(fmt.Errorf(
			"depth %d: %s", e.maxDepth, e.traceWith(path),
		))
	}

	if e.depth == len(e.frames) {
		e.frames = append(e.frames, new(frame))
	}

	f := e.frames[e.depth]
	f.reset(e, out, path)
	e.depth++

	return f, nil
}

// leave releases the innermost frame.
func (e *Engine) leave() {
	e.depth--
	e.frames[e.depth].release()
}

// trace returns the chain of documents being processed, outermost first.
func (e *Engine) trace() string { return e.traceWith() }

func (e *Engine) traceWith(next ...string) string {
	paths := make([]string, 0, e.depth+len(next))

	for _, f := range e.frames[:e.depth] {
		paths = append(paths, f.path)
	}

	return strings.Join(append(paths, next...), " → ")
}
