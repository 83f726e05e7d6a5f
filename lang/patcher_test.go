package lang

import (
	"slices"
	"testing"

	"github.com/expr-lang/expr/ast"
	exprparser "github.com/expr-lang/expr/parser"
)

func parseBinary(t *testing.T, source string) *ast.BinaryNode {
	t.Helper()

	tree, err := exprparser.Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}

	bin, ok := tree.Node.(*ast.BinaryNode)
	if !ok {
		t.Fatalf("expected binary node for %q, got %T", source, tree.Node)
	}

	return bin
}

func TestHyphenName(t *testing.T) {
	tests := []struct {
		source   string
		wantBase []string // nil for a top-level name
		wantName string
		wantOK   bool
	}{
		{"log-pretty", nil, "log-pretty", true},
		{"a-b-c", nil, "a-b-c", true},
		{"cfg.log-pretty", []string{"cfg"}, "log-pretty", true},
		{"cfg.sub.log-pretty-print", []string{"cfg", "sub"}, "log-pretty-print", true},
		{"a - 5", nil, "", false},
		{"a + b", nil, "", false},
		{"(a + b) - c", nil, "", false},
		{"f(x) - y", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			base, name, ok := hyphenName(parseBinary(t, tt.source))
			if ok != tt.wantOK {
				t.Fatalf("expected ok %v, got %v", tt.wantOK, ok)
			}

			if !ok {
				return
			}

			if name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, name)
			}

			if tt.wantBase == nil {
				if base != nil {
					t.Errorf("expected top-level name, got base %v", base)
				}

				return
			}

			path, _ := memberPath(base)
			if !slices.Equal(path, tt.wantBase) {
				t.Errorf("expected base %v, got %v", tt.wantBase, path)
			}
		})
	}
}

func TestWalkPath(t *testing.T) {
	env := map[string]any{
		"build-type": "debug",
		"cfg": map[string]any{
			"log-level": "info",
			"nested":    map[string]any{"max-depth": 3},
		},
	}

	tests := []struct {
		path []string
		key  string
		want bool
	}{
		{[]string{"cfg"}, "log-level", true},
		{[]string{"cfg", "nested"}, "max-depth", true},
		{[]string{"cfg"}, "log-format", false},
		{[]string{"other"}, "log-level", false},
		{[]string{"build-type"}, "x", false},
		{nil, "build-type", true},
	}

	for _, tt := range tests {
		if got := hasKey(walkPath(env, tt.path), tt.key); got != tt.want {
			t.Errorf("%v/%s: expected %v, got %v", tt.path, tt.key, tt.want, got)
		}
	}
}

func TestEval_HyphenatedNames(t *testing.T) {
	env := NewEnv(WithVars(map[string]any{
		"build-type": "debug",
		"opt":        map[string]any{"max-jobs": 4},
		"a":          10,
		"b":          3,
		"a-b":        1,
		"n":          5,
	}))

	tests := []struct {
		source string
		want   any
	}{
		{`build-type`, "debug"},
		{`(opt.max-jobs) * 2`, 8},
		{`a - n`, 5},
		{`a-b`, 1},
		{`a-b - n`, -4},
		{`"type=" + (build-type)`, "type=debug"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Eval(tt.source, env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
