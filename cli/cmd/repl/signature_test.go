package repl

import (
	"slices"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"no_call", "greeting", 8, functionCall{}},
		{"first_arg", "add(", 4, functionCall{"add", 0, true}},
		{"second_arg", "add(1, 2", 8, functionCall{"add", 1, true}},
		{"qualified", "path.cat(a, ", 12, functionCall{"path.cat", 1, true}},
		{"nested_inner", "f(g(1, ", 7, functionCall{"g", 1, true}},
		{"nested_closed", "f(g(1, 2), ", 11, functionCall{"f", 1, true}},
		{"list_argument", "concat([1, 2], ", 15, functionCall{"concat", 1, true}},
		{"after_close", "f(1)", 4, functionCall{}},
		{"grouping", "(1 + ", 5, functionCall{}},
		{"in_region", "<$ upper(", 9, functionCall{"upper", 0, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBuiltinSignature(t *testing.T) {
	tests := []struct {
		name     string
		want     []string
		variadic bool
		ok       bool
	}{
		{"path.rel", []string{"string", "string"}, false, true},
		{"path.cat", []string{"...string"}, true, true},
		{"range", []string{"...any"}, true, true},
		{"file.exists", []string{"string"}, false, true},
		{"platform", nil, false, false},
		{"path", nil, false, false},
		{"missing.fn", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, variadic, ok := builtinSignature(tt.name)
			if ok != tt.ok || variadic != tt.variadic || !slices.Equal(params, tt.want) {
				t.Errorf("expected (%v, %v, %v), got (%v, %v, %v)",
					tt.want, tt.variadic, tt.ok, params, variadic, ok)
			}
		})
	}
}

func TestSignature_ExprBuiltin(t *testing.T) {
	params, ok := signature("replace")
	if !ok || !slices.Equal(params, []string{"string", "old", "new"}) {
		t.Errorf("unexpected signature %v, %v", params, ok)
	}

	if !isFunction("upper") || !isFunction("path.abs") || isFunction("hostname") {
		t.Error("unexpected function classification")
	}
}
