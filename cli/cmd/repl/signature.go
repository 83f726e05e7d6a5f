package repl

import (
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/prex/lang"
)

// exprSignatures lists the parameters of frequently used expression
// language builtins. Other builtins complete without a hint.
var exprSignatures = map[string][]string{
	"len":       {"v"},
	"all":       {"array", "predicate"},
	"any":       {"array", "predicate"},
	"filter":    {"array", "predicate"},
	"map":       {"array", "mapper"},
	"find":      {"array", "predicate"},
	"count":     {"array", "predicate"},
	"sortBy":    {"array", "mapper"},
	"groupBy":   {"array", "mapper"},
	"concat":    {"...arrays"},
	"join":      {"array", "separator"},
	"split":     {"string", "separator"},
	"replace":   {"string", "old", "new"},
	"trim":      {"string"},
	"upper":     {"string"},
	"lower":     {"string"},
	"hasPrefix": {"string", "prefix"},
	"hasSuffix": {"string", "suffix"},
	"int":       {"v"},
	"float":     {"v"},
	"string":    {"v"},
	"type":      {"v"},
	"keys":      {"map"},
	"values":    {"map"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // qualified name, e.g. "path.cat"
	argIndex int    // zero-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' && r != '-' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// builtinEnv holds the builtin bindings inspected for signatures.
var builtinEnv = sync.OnceValue(func() *lang.Env { return lang.NewEnv() })

// signature returns the parameter names of the function called name.
func signature(name string) (params []string, ok bool) {
	if params, ok := exprSignatures[name]; ok {
		return params, true
	}

	params, _, ok = builtinSignature(name)

	return params, ok
}

// builtinSignature describes a builtin function by reflection, naming each
// parameter by its type.
func builtinSignature(name string) (params []string, variadic, ok bool) {
	segments := strings.Split(name, ".")

	v, found := builtinEnv().Lookup(segments[0])
	if !found {
		return nil, false, false
	}

	for _, seg := range segments[1:] {
		m, isMap := v.(map[string]any)
		if !isMap {
			return nil, false, false
		}

		v = m[seg]
	}

	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func {
		return nil, false, false
	}

	for i := range t.NumIn() {
		in := t.In(i)

		if t.IsVariadic() && i == t.NumIn()-1 {
			params = append(params, "..."+typeName(in.Elem()))
		} else {
			params = append(params, typeName(in))
		}
	}

	return params, t.IsVariadic(), true
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Interface:
		return "any"
	case reflect.Pointer:
		return typeName(t.Elem())
	case reflect.Func, reflect.Slice, reflect.Map, reflect.String, reflect.Bool:
		return t.Kind().String()
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders name(params) with the parameter at arg
// highlighted. A trailing variadic parameter absorbs every later argument.
func renderSignatureHint(name string, params []string, arg int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(p, "...")
		if i == arg || (variadic && arg >= i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
