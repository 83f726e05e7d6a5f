package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Runtime receives the side effects of a running program.
type Runtime interface {
	// Emit appends text to the active output.
	Emit(ctx context.Context, text string) error
	// Include processes another document.
	Include(ctx context.Context, call Call) error
}

// Call describes one include request.
type Call struct {
	// Path names the document to process.
	Path string
	// Vars are variable overrides visible only while the document runs.
	Vars map[string]any
	// Mode is the start mode requested by the caller, or nil.
	Mode any
	// Output receives the document's output instead of the caller's output
	// when non-nil.
	Output io.Writer
	// Directive is set for include_py, which processes the whole document as
	// directive source.
	Directive bool
	// Line is the directive line of the include statement.
	Line int
}

// signal reports loop control raised by a statement.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
)

// Run executes the program.
func (p Program) Run(ctx context.Context, env *Env, rt Runtime) error {
	sig, err := p.run(ctx, env, rt)
	if err != nil {
		return err
	}

	if sig != sigNone {
		return ErrLoopControl
	}

	return nil
}

func (p Program) run(ctx context.Context, env *Env, rt Runtime) (signal, error) {
	for _, s := range p {
		sig, err := s.run(ctx, env, rt)
		if err != nil || sig != sigNone {
			return sig, err
		}
	}

	return sigNone, nil
}

// Run executes a single statement.
func (s *Stmt) Run(ctx context.Context, env *Env, rt Runtime) error {
	return Program{s}.Run(ctx, env, rt)
}

func (s *Stmt) run(ctx context.Context, env *Env, rt Runtime) (signal, error) {
	switch s.Kind {
	case KindEmit:
		return sigNone, rt.Emit(ctx, s.Text)

	case KindEmitExpr:
		v, err := s.eval(s.Expr, env)
		if err != nil {
			return sigNone, err
		}

		return sigNone, rt.Emit(ctx, Stringify(v))

	case KindBlock:
		return s.Body.run(ctx, env, rt)

	case KindSet:
		return sigNone, s.assign(env)

	case KindInclude:
		call, err := s.call(env)
		if err != nil {
			return sigNone, err
		}

		return sigNone, rt.Include(ctx, call)

	case KindExec:
		_, err := s.eval(s.Expr, env)

		return sigNone, err

	case KindIf:
		for _, c := range s.Clauses {
			v, err := s.eval(c.Cond, env)
			if err != nil {
				return sigNone, err
			}

			if Truthy(v) {
				return c.Body.run(ctx, env, rt)
			}
		}

		return s.Else.run(ctx, env, rt)

	case KindFor:
		return s.loopFor(ctx, env, rt)

	case KindWhile:
		return s.loopWhile(ctx, env, rt)

	case KindBreak:
		return sigBreak, nil

	case KindContinue:
		return sigContinue, nil

	default:
		return sigNone, nil
	}
}

func (s *Stmt) loopFor(ctx context.Context, env *Env, rt Runtime) (signal, error) {
	v, err := s.eval(s.Expr, env)
	if err != nil {
		return sigNone, err
	}

	steps, keyed, err := iterate(v)
	if err != nil {
		return sigNone, s.fail(err)
	}

	for _, step := range steps {
		if err := context.Cause(ctx); err != nil {
			return sigNone, err
		}

		if len(s.Targets) == 1 {
			if keyed {
				env.Set(s.Targets[0], step.key)
			} else {
				env.Set(s.Targets[0], step.val)
			}
		} else {
			env.Set(s.Targets[0], step.key)
			env.Set(s.Targets[1], step.val)
		}

		sig, err := s.Body.run(ctx, env, rt)
		if err != nil {
			return sigNone, err
		}

		if sig == sigBreak {
			break
		}
	}

	return sigNone, nil
}

func (s *Stmt) loopWhile(ctx context.Context, env *Env, rt Runtime) (signal, error) {
	for {
		if err := context.Cause(ctx); err != nil {
			return sigNone, err
		}

		v, err := s.eval(s.Expr, env)
		if err != nil {
			return sigNone, err
		}

		if !Truthy(v) {
			return sigNone, nil
		}

		sig, err := s.Body.run(ctx, env, rt)
		if err != nil {
			return sigNone, err
		}

		if sig == sigBreak {
			return sigNone, nil
		}
	}
}

// assign performs a KindSet statement.
func (s *Stmt) assign(env *Env) error {
	v, err := s.eval(s.Expr, env)
	if err != nil {
		return err
	}

	if s.Op != "=" {
		name := s.Targets[0]

		old, ok := env.Lookup(name)
		if !ok {
			return s.fail(ErrAssign.Wrap(fmt.Errorf("name %q is not defined", name)))
		}

		if v, err = applyOp(s.Op[:1], old, v); err != nil {
			return s.fail(ErrAssign.Wrap(err))
		}

		env.Set(name, v)

		return nil
	}

	if len(s.Targets) == 1 {
		env.Set(s.Targets[0], v)

		return nil
	}

	steps, _, err := iterate(v)
	if err != nil || len(steps) != len(s.Targets) {
		return s.fail(ErrAssign.Wrap(fmt.Errorf(
			"cannot unpack %T into %d names", v, len(s.Targets),
		)))
	}

	for i, name := range s.Targets {
		env.Set(name, steps[i].val)
	}

	return nil
}

// call evaluates the arguments of an include statement.
func (s *Stmt) call(env *Env) (Call, error) {
	call := Call{Directive: s.Directive, Line: s.Line}

	args := make([]any, len(s.Args))

	for i, a := range s.Args {
		v, err := s.eval(a, env)
		if err != nil {
			return call, err
		}

		args[i] = v
	}

	path, ok := args[0].(string)
	if !ok || path == "" {
		return call, s.fail(ErrIncludeArgs.Wrap(
			fmt.Errorf("path must be a non-empty string, got %T", args[0]),
		))
	}

	call.Path = path

	if len(args) > 1 && args[1] != nil {
		vars, err := toVars(args[1])
		if err != nil {
			return call, s.fail(ErrIncludeArgs.Wrap(err))
		}

		call.Vars = vars
	}

	if len(args) > 2 {
		call.Mode = args[2]
	}

	if len(args) > 3 && args[3] != nil {
		w, ok := args[3].(io.Writer)
		if !ok {
			return call, s.fail(ErrIncludeArgs.Wrap(
				fmt.Errorf("output must be a writable buffer, got %T", args[3]),
			))
		}

		call.Output = w
	}

	return call, nil
}

func (s *Stmt) eval(e *Expr, env *Env) (any, error) {
	v, err := e.eval(env.Runtime(), env.logger)
	if err != nil {
		return nil, s.fail(err)
	}

	return v, nil
}

// fail attaches the statement line to err.
func (s *Stmt) fail(err error) error {
	if s.Line == 0 {
		return err
	}

	return WrapError(err).With(slog.Int("directive_line", s.Line))
}

// toVars converts an include variable argument to a variable map.
func toVars(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return maps.Clone(m), nil

	case map[any]any:
		vars := make(map[string]any, len(m))
		for k, val := range m {
			vars[Stringify(k)] = val
		}

		return vars, nil

	default:
		return nil, fmt.Errorf("variables must be a map, got %T", v)
	}
}

// opPrograms holds one compiled program per augmented assignment operator,
// each computing "a OP b".
var opPrograms = sync.OnceValues(func() (map[string]*vm.Program, error) {
	programs := make(map[string]*vm.Program)

	for _, op := range []string{"+", "-", "*", "/", "%"} {
		program, err := expr.Compile("a " + op + " b")
		if err != nil {
			return nil, err
		}

		programs[op] = program
	}

	return programs, nil
})

func applyOp(op string, a, b any) (any, error) {
	programs, err := opPrograms()
	if err != nil {
		return nil, err
	}

	program, ok := programs[op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %s", strconv.Quote(op))
	}

	return vm.Run(program, map[string]any{"a": a, "b": b})
}
