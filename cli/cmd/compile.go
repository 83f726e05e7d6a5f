package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/prex/engine"
	"github.com/ardnew/prex/log"
)

// Compile prints the program a template compiles to, without running it.
type Compile struct {
	Input string      `arg:"" help:"Template file or '-' for stdin" name:"input"`
	Mode  engine.Mode `help:"Initial mode: NORMAL or PRE" short:"m" default:"NORMAL"`

	out io.Writer // stdout when nil
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, name, err := openInput(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	prog, err := engine.New(engine.WithLogger(log.Default())).
		Compile(ctx, in, name, c.Mode)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "compiled",
		slog.String("input", name),
		slog.Int("statements", len(prog)),
	)

	if len(prog) == 0 {
		return nil
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	_, err = fmt.Fprintln(out, prog.String())

	return err
}
