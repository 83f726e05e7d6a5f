package cmd

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/prex/engine"
	"github.com/ardnew/prex/lang"
	"github.com/ardnew/prex/log"
)

// Render processes a template into an output file.
type Render struct {
	Input  string   `arg:"" help:"Template file or '-' for stdin"            name:"input"`
	Output string   `arg:"" help:"Output file or '-' for stdout"             name:"output"`
	Vars   []string `arg:"" help:"Template variables as key=value pairs"     name:"vars"   optional:""`

	Depfile     string      `help:"Write make dependencies of output to file"  short:"d" type:"path"`
	LineMarkers bool        `help:"Emit #line markers after each region"       short:"l"`
	VarsFile    []string    `help:"YAML mapping of template variables"                   type:"existingfile"`
	Mode        engine.Mode `help:"Initial mode: NORMAL or PRE"                short:"m" default:"NORMAL"`
	MaxDepth    int         `help:"Maximum include nesting"                              default:"${maxDepth}"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := parseVars(r.VarsFile, r.Vars)
	if err != nil {
		return err
	}

	if sameFile(r.Input, r.Output) {
		return ErrOpenOutput.With(slog.String("path", r.Output)).Wrap(ErrSameFile)
	}

	in, name, err := openInput(r.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(r.Output)
	if err != nil {
		return err
	}

	eng := newEngine(vars, r.LineMarkers, r.MaxDepth)

	w := bufio.NewWriter(out)

	err = eng.ProcessReader(ctx, w, in, name, r.Mode)
	if err == nil {
		err = w.Flush()
	}

	if err != nil {
		out.Discard()
		reportFault(ctx, err)

		return err
	}

	if err := out.Close(); err != nil {
		return ErrOpenOutput.Wrap(err).With(slog.String("path", r.Output))
	}

	log.DebugContext(ctx, "rendered",
		slog.String("input", name),
		slog.String("output", r.Output),
		slog.Int("includes", len(eng.Dependencies())),
	)

	if r.Depfile != "" {
		return writeDepfile(r.Depfile, r.Output, eng.Dependencies())
	}

	return nil
}

// newEngine returns an engine over a fresh environment holding vars.
func newEngine(vars map[string]any, lineMarkers bool, maxDepth int) *engine.Engine {
	logger := log.Default()

	return engine.New(
		engine.WithEnv(lang.NewEnv(
			lang.WithVars(vars),
			lang.WithLogger(logger),
		)),
		engine.WithLineMarkers(lineMarkers),
		engine.WithMaxDepth(maxDepth),
		engine.WithLogger(logger),
	)
}

func writeDepfile(path, target string, deps []engine.Include) error {
	f, err := os.Create(path)
	if err != nil {
		return ErrWriteDepfile.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	if err := engine.WriteDepfile(f, target, deps); err != nil {
		return ErrWriteDepfile.Wrap(err).With(slog.String("path", path))
	}

	return f.Close()
}

// reportFault logs the location and source fragment of a failed statement.
func reportFault(ctx context.Context, err error) {
	var fault *engine.Fault
	if !errors.As(err, &fault) {
		return
	}

	log.ErrorContext(ctx, "exception in code",
		slog.String("path", fault.Path),
		slog.Int("line", fault.Line),
		slog.String("trace", fault.Trace),
		slog.String("fragment", fault.Fragment),
		slog.Any("error", fault.Err),
	)
}
