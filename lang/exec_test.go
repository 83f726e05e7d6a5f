package lang

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// recorder is a Runtime collecting emitted text and include calls.
type recorder struct {
	out   strings.Builder
	calls []Call
}

func (r *recorder) Emit(_ context.Context, text string) error {
	r.out.WriteString(text)

	return nil
}

func (r *recorder) Include(_ context.Context, call Call) error {
	r.calls = append(r.calls, call)

	return nil
}

func run(t *testing.T, source string, env *Env) *recorder {
	t.Helper()

	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	r := &recorder{}

	err = prog.Run(t.Context(), env, r)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	return r
}

func TestRun_Output(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"emit", `emit("a" + "b")`, "ab"},
		{"stringify_nil", `emit(nil)`, ""},
		{"for_range", "for i in range(3):\n    emit(str(i) + \",\")", "0,1,2,"},
		{"for_map_keys", `for k in {"b": 1, "a": 2}: emit(k)`, "ab"},
		{"for_map_pairs", `for k, v in {"b": 1, "a": 2}: emit(k + str(v))`, "a2b1"},
		{"for_enumerate", `for i, s in ["x", "y"]: emit(str(i) + s)`, "0x1y"},
		{"for_string", `for c in "hé": emit(c + ".")`, "h.é."},
		{"break", "for i in range(10):\n    if i == 2: break\n    emit(str(i))", "01"},
		{"continue", "for i in range(4):\n    if i % 2 == 0: continue\n    emit(str(i))", "13"},
		{"while", "n = 0\nwhile n < 3:\n    n += 1\n    emit(str(n))", "123"},
		{"elif", "x = 5\nif x < 3: emit(\"lo\")\nelif x < 9: emit(\"mid\")\nelse: emit(\"hi\")", "mid"},
		{"else", "if []: emit(\"t\")\nelse: emit(\"f\")", "f"},
		{"unpack", "a, b = [1, \"z\"]\nemit(str(a) + b)", "1z"},
		{"augmented_string", "s = \"a\"\ns += \"b\"\nemit(s)", "ab"},
		{"augmented_number", "n = 7\nn -= 2\nn *= 3\nn %= 4\nemit(str(n))", "3"},
		{"buffer", "b = buffer()\nemit(str(b))", ""},
		{"yaml", `emit(fromYAML("k: v").k)`, "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.source, NewEnv())

			if got := r.out.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRun_Scoping(t *testing.T) {
	vars := map[string]any{"name": "cli"}
	env := NewEnv(WithVars(vars))

	run(t, "name = \"changed\"\nother = 1", env)

	if vars["name"] != "changed" {
		t.Errorf("expected variable updated in place, got %v", vars["name"])
	}

	if _, ok := vars["other"]; ok {
		t.Error("expected new name bound as global, found in variables")
	}

	if env.Globals()["other"] != 1 {
		t.Errorf("expected global other=1, got %v", env.Globals()["other"])
	}

	restore := env.Overlay(map[string]any{"name": "inner"})
	run(t, "name = \"inner2\"", env)

	if v, _ := env.Lookup("name"); v != "inner2" {
		t.Errorf("expected overlay binding inner2, got %v", v)
	}

	restore()

	if v, _ := env.Lookup("name"); v != "changed" {
		t.Errorf("expected restored binding changed, got %v", v)
	}
}

func TestRun_Include(t *testing.T) {
	var buf bytes.Buffer

	env := NewEnv(WithGlobals(map[string]any{"out": &buf, "PRE": 1}))
	r := run(t, `include("a.tpl", {"x": 1}, PRE, out); include_py("b.py")`, env)

	if len(r.calls) != 2 {
		t.Fatalf("expected 2 include calls, got %d", len(r.calls))
	}

	a := r.calls[0]
	if a.Path != "a.tpl" || a.Vars["x"] != 1 || a.Output != &buf || a.Directive {
		t.Errorf("unexpected call: %+v", a)
	}

	if a.Mode != 1 {
		t.Errorf("expected mode 1, got %v", a.Mode)
	}

	if b := r.calls[1]; b.Path != "b.py" || !b.Directive || b.Line != 1 {
		t.Errorf("unexpected call: %+v", b)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"not_iterable", `for x in true: pass`, ErrNotIterable},
		{"augment_undefined", `y += 1`, ErrAssign},
		{"unpack_mismatch", `a, b = [1]`, ErrAssign},
		{"loop_control", `break`, ErrLoopControl},
		{"include_path", `include(1)`, ErrIncludeArgs},
		{"include_vars", `include("a", 1)`, ErrIncludeArgs},
		{"include_out", `include("a", nil, nil, "x")`, ErrIncludeArgs},
		{"compile", `emit(1 +)`, ErrExprCompile},
		{"evaluate", `emit(fromYAML("["))`, ErrExprEvaluate},
		{"unbound_name", `emit(nosuch)`, ErrExprEvaluate},
		{"unbound_function", `emit(nosuch(1))`, ErrExprEvaluate},
		{"unbound_condition", `if typo: pass`, ErrExprEvaluate},
		{"for_nil", `for x in nil: pass`, ErrNotIterable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.source)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			err = prog.Run(t.Context(), NewEnv(), &recorder{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	prog, err := Parse("while true: pass")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = prog.Run(ctx, NewEnv(), &recorder{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_CompilesOnce(t *testing.T) {
	prog, err := Parse("for i in range(3): emit(str(i))")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	body := prog[0].Body[0].Expr
	if body.Compiled() {
		t.Fatal("expected expression uncompiled before run")
	}

	if err := prog.Run(t.Context(), NewEnv(), &recorder{}); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if !body.Compiled() {
		t.Error("expected expression compiled after run")
	}
}

func TestEval_Names(t *testing.T) {
	env := NewEnv(WithVars(map[string]any{"x": 2}))

	tests := []struct {
		source string
		want   any
	}{
		{`x * 3`, 6},
		{`let y = x + 1; y * y`, 9},
		{`vars.missing ?? "none"`, "none"},
		{`$env.x`, 2},
		{`filter([1, 2, 3], # > x)`, []any{3}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Eval(tt.source, env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := Eval(`x + missing`, env); !errors.Is(err, ErrExprEvaluate) {
		t.Errorf("expected ErrExprEvaluate, got %v", err)
	}
}

func TestApplyOp(t *testing.T) {
	tests := []struct {
		op   string
		a, b any
		want any
	}{
		{"+", 2, 3, 5},
		{"+", "a", "b", "ab"},
		{"-", 7, 2, 5},
		{"*", 4, 3, 12},
		{"/", 9, 2, 4.5},
		{"%", 7, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, err := applyOp(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := applyOp("^", 1, 2); err == nil {
		t.Error("expected error for unsupported operator")
	}
}
