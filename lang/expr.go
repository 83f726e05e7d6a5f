package lang

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/prex/log"
)

// Expr is an expr-lang expression compiled on first use.
//
// Compilation is deferred until the expression first runs so identifiers can
// be resolved against the bindings that exist at that point. The compiled
// program is cached and reused on every later evaluation, including each
// iteration of an enclosing loop.
type Expr struct {
	Source  string
	program *vm.Program
	names   []string // free identifiers, checked before each run
}

// NewExpr returns an uncompiled expression.
func NewExpr(source string) *Expr {
	return &Expr{Source: source}
}

// Compiled reports whether the expression has been compiled.
func (e *Expr) Compiled() bool { return e.program != nil }

// compile compiles the expression against the names bound in env.
func (e *Expr) compile(env map[string]any, logger log.Logger) error {
	if e.program != nil {
		return nil
	}

	program, err := expr.Compile(
		e.Source,
		expr.Patch(&hyphenPatcher{env: env, logger: logger}),
	)
	if err != nil {
		return ErrExprCompile.Wrap(err).
			With(slog.String("source", e.Source))
	}

	e.program = program
	e.names = freeNames(program.Node())

	return nil
}

// eval compiles the expression if needed and runs it with env.
func (e *Expr) eval(env map[string]any, logger log.Logger) (any, error) {
	if err := e.compile(env, logger); err != nil {
		return nil, err
	}

	for _, name := range e.names {
		if _, ok := env[name]; !ok {
			return nil, ErrExprEvaluate.Wrap(fmt.Errorf("name %q is not defined", name)).
				With(slog.String("source", e.Source))
		}
	}

	result, err := vm.Run(e.program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).
			With(slog.String("source", e.Source))
	}

	return result, nil
}

// Eval evaluates source against the current bindings of env.
// It is used for one-off expressions, such as those typed interactively.
func Eval(source string, env *Env) (any, error) {
	return NewExpr(source).eval(env.Runtime(), env.logger)
}

// freeNames returns the identifiers of node that are looked up in the
// environment: every identifier except let-bound names and $env.
func freeNames(node ast.Node) []string {
	var c nameCollector

	ast.Walk(&node, &c)

	return slices.DeleteFunc(c.idents, func(name string) bool {
		return slices.Contains(c.locals, name) || strings.HasPrefix(name, "$env")
	})
}

type nameCollector struct {
	idents []string
	locals []string
}

// Visit implements [ast.Visitor].
func (c *nameCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !slices.Contains(c.idents, n.Value) {
			c.idents = append(c.idents, n.Value)
		}

	case *ast.VariableDeclaratorNode:
		c.locals = append(c.locals, n.Name)
	}
}
