package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/prex/engine"
	"github.com/ardnew/prex/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the user's editor on a
// multi-line template, then renders whatever was saved with the session
// engine.
type editCommand struct {
	ctx    context.Context
	engine *engine.Engine
	logger log.Logger
	source string // template shown in the editor
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	edited string // saved template
	output string // rendered output
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run edits and renders the template. An empty template renders nothing.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", "prex-repl-*.tpl")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	_, err = f.WriteString(c.source)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	if err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.edited = string(data)

	c.logger.TraceContext(c.ctx, "repl edit",
		slog.Int("length", len(c.edited)))

	if strings.TrimSpace(c.edited) == "" {
		return nil
	}

	var out strings.Builder

	err = c.engine.ProcessReader(
		c.ctx, &out, strings.NewReader(c.edited), path, engine.Normal,
	)
	c.output = out.String()

	return err
}

// runEditor runs $EDITOR, or vi, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
