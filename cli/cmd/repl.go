package cmd

import (
	"context"

	"github.com/ardnew/prex/cli/cmd/repl"
	"github.com/ardnew/prex/log"
)

// Repl starts an interactive session sharing one engine across inputs.
type Repl struct {
	Vars        []string `arg:"" help:"Template variables as key=value pairs" name:"vars" optional:""`
	VarsFile    []string `help:"YAML mapping of template variables" type:"existingfile"`
	LineMarkers bool     `help:"Emit #line markers after each region" short:"l"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := parseVars(r.VarsFile, r.Vars)
	if err != nil {
		return err
	}

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	eng := newEngine(vars, r.LineMarkers, 0)

	return repl.Run(ctx, eng, cacheDir, log.Default())
}
