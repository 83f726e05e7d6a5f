package engine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/klauspost/readahead"

	"github.com/ardnew/prex/lang"
	"github.com/ardnew/prex/log"
)

// DefaultMaxDepth is the default limit on nested documents.
const DefaultMaxDepth = 100

// Engine processes templates against one shared environment.
//
// Every document processed by an Engine, including included documents,
// shares its environment and appends to its dependency list. An Engine is
// not safe for concurrent use.
type Engine struct {
	env         *lang.Env
	logger      log.Logger
	deps        []Include
	frames      []*frame
	depth       int
	maxDepth    int
	lineMarkers bool
	compiling   bool
}

// Option configures an [Engine].
type Option func(*Engine)

// WithEnv sets the shared environment.
func WithEnv(env *lang.Env) Option {
	return func(e *Engine) {
		if env != nil {
			e.env = env
		}
	}
}

// WithLineMarkers enables "#line N" markers after every flushed region.
func WithLineMarkers(enable bool) Option {
	return func(e *Engine) { e.lineMarkers = enable }
}

// WithMaxDepth limits the number of nested documents.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithLogger sets the logger for engine diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New returns an engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   log.Default(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.env == nil {
		e.env = lang.NewEnv(lang.WithLogger(e.logger))
	}

	lang.WithBuiltins(modeConstants())(e.env)

	return e
}

// Env returns the shared environment.
func (e *Engine) Env() *lang.Env { return e.env }

// Dependencies returns every document included so far, in call order.
func (e *Engine) Dependencies() []Include { return slices.Clone(e.deps) }

// Process renders the document at path to w, starting in mode.
func (e *Engine) Process(ctx context.Context, w io.Writer, path string, mode Mode) error {
	return e.processFile(ctx, w, path, mode)
}

// ProcessReader renders the document read from r to w, starting in mode.
// The name identifies the document in diagnostics and resolves relative
// includes.
func (e *Engine) ProcessReader(
	ctx context.Context,
	w io.Writer,
	r io.Reader,
	name string,
	mode Mode,
) error {
	return e.process(ctx, w, r, name, mode)
}

// Compile translates the document read from r into a program without
// running it. Included documents are not read; include statements are kept.
func (e *Engine) Compile(
	ctx context.Context,
	r io.Reader,
	name string,
	mode Mode,
) (prog lang.Program, err error) {
	e.compiling = true
	defer func() { e.compiling = false }()

	f, err := e.enter(io.Discard, name)
	if err != nil {
		return nil, err
	}

	defer e.leave()

	if err := e.run(ctx, f, r, mode); err != nil {
		return nil, err
	}

	return f.program, nil
}

// Process renders the document at path to w using env, starting in mode.
func Process(ctx context.Context, w io.Writer, env *lang.Env, path string, mode Mode) error {
	return New(WithEnv(env)).Process(ctx, w, path, mode)
}

func (e *Engine) processFile(ctx context.Context, w io.Writer, path string, mode Mode) error {
	file, err := os.Open(path)
	if err != nil {
		return ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	defer file.Close()

	return e.process(ctx, w, file, path, mode)
}

func (e *Engine) process(
	ctx context.Context,
	w io.Writer,
	r io.Reader,
	name string,
	mode Mode,
) error {
	f, err := e.enter(w, name)
	if err != nil {
		return err
	}

	defer e.leave()

	return e.run(ctx, f, r, mode)
}

// run feeds the document read from r through frame f line by line.
func (e *Engine) run(ctx context.Context, f *frame, r io.Reader, mode Mode) error {
	if !mode.startable() {
		return ErrInvalidMode.With(slog.String("mode", mode.String()))
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	br := bufio.NewReader(ra)

	if err := f.push(ctx, mode); err != nil {
		return err
	}

	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		line, err := br.ReadString('\n')
		if line != "" {
			if ferr := f.feed(ctx, line); ferr != nil {
				return ferr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return ErrReadInput.Wrap(err).With(slog.String("path", f.path))
		}
	}

	return f.finish(ctx)
}
