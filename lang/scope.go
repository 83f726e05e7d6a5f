package lang

import (
	"maps"

	"github.com/ardnew/prex/log"
)

// Env is the execution environment shared by every statement of a run,
// including statements of included documents.
//
// Bindings are layered; later layers shadow earlier ones:
//
//	builtins < globals < variables
//
// Globals live for the whole run. Variables are the user-facing bindings
// (command line key=value pairs, include overrides) and are scoped per
// include with [Env.Overlay]. The active variable map is also bound to the
// name "vars".
//
// Env is not safe for concurrent use.
type Env struct {
	builtins map[string]any
	globals  map[string]any
	vars     map[string]any
	logger   log.Logger
}

// EnvOption configures an [Env].
type EnvOption func(*Env)

// WithVars sets the initial variable bindings.
func WithVars(vars map[string]any) EnvOption {
	return func(e *Env) {
		if vars != nil {
			e.vars = vars
		}
	}
}

// WithGlobals sets initial global bindings.
func WithGlobals(globals map[string]any) EnvOption {
	return func(e *Env) { maps.Copy(e.globals, globals) }
}

// WithBuiltins adds builtin bindings, replacing any with the same name.
func WithBuiltins(builtins map[string]any) EnvOption {
	return func(e *Env) { maps.Copy(e.builtins, builtins) }
}

// WithProcessEnv binds env() to the given "KEY=VALUE" list instead of the
// process environment.
func WithProcessEnv(environ []string) EnvOption {
	return func(e *Env) {
		e.builtins["env"] = envFunc(environMap(environ))
	}
}

// WithLogger sets the logger used while compiling and running statements.
func WithLogger(logger log.Logger) EnvOption {
	return func(e *Env) { e.logger = logger }
}

// NewEnv returns a new environment with the default builtins.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		builtins: builtins(),
		globals:  make(map[string]any),
		vars:     make(map[string]any),
		logger:   log.Default(),
	}

	e.builtins["env"] = envFunc(environMap(nil))

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Vars returns the active variable bindings.
func (e *Env) Vars() map[string]any { return e.vars }

// Globals returns the global bindings.
func (e *Env) Globals() map[string]any { return e.globals }

// Logger returns the environment's logger.
func (e *Env) Logger() log.Logger { return e.logger }

// Lookup returns the value bound to name, searching variables, globals, then
// builtins.
func (e *Env) Lookup(name string) (any, bool) {
	if name == "vars" {
		return e.vars, true
	}

	for _, layer := range []map[string]any{e.vars, e.globals, e.builtins} {
		if v, ok := layer[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Set binds name to value. A name already bound in the active variables is
// updated there; any other name becomes a global.
func (e *Env) Set(name string, value any) {
	if _, ok := e.vars[name]; ok {
		e.vars[name] = value

		return
	}

	e.globals[name] = value
}

// Overlay installs a copy of the active variables with overrides applied and
// returns a function restoring the previous variables.
//
// A nil or empty overrides map leaves the active variables installed as-is,
// so assignments to existing variables remain visible to the caller.
func (e *Env) Overlay(overrides map[string]any) (restore func()) {
	prev := e.vars

	if len(overrides) > 0 {
		next := maps.Clone(prev)
		if next == nil {
			next = make(map[string]any, len(overrides))
		}

		maps.Copy(next, overrides)

		e.vars = next
	}

	return func() { e.vars = prev }
}

// Runtime returns the flattened bindings seen by expressions.
func (e *Env) Runtime() map[string]any {
	env := make(map[string]any, len(e.builtins)+len(e.globals)+len(e.vars)+1)

	maps.Copy(env, e.builtins)
	maps.Copy(env, e.globals)
	maps.Copy(env, e.vars)

	env["vars"] = e.vars

	return env
}
