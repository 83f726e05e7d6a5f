package lang

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/prex/log"
)

// hyphenPatcher makes hyphenated variable names usable in expressions.
//
// Command line variables such as build-type=debug are bound under their
// hyphenated name, but the expression parser reads "build-type" as a
// subtraction. The patcher runs after parsing and replaces a chain of
// subtractions between plain names with a single identifier or member
// access when, and only when, that hyphenated name is bound. Children are
// visited first, so the longest bound prefix of a chain wins.
type hyphenPatcher struct {
	env    map[string]any
	logger log.Logger
}

// Visit implements [ast.Visitor].
func (p *hyphenPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}

	base, name, ok := hyphenName(bin)
	if !ok {
		return
	}

	var patched ast.Node

	if base == nil {
		if _, bound := p.env[name]; !bound {
			return
		}

		patched = &ast.IdentifierNode{Value: name}
	} else {
		path, ok := memberPath(base)
		if !ok || !hasKey(walkPath(p.env, path), name) {
			return
		}

		patched = &ast.MemberNode{Node: base, Property: &ast.StringNode{Value: name}}
	}

	ast.Patch(node, patched)

	p.logger.Trace("patch hyphenated name",
		slog.String("name", name),
		slog.Bool("member", base != nil))
}

// hyphenName reads a subtraction chain as a hyphenated name. The chain must
// start with an identifier or a member access with a constant property, and
// every subtrahend must be an identifier. For "cfg.log - level - max" it
// returns the "cfg" node and "log-level-max"; for "a - b" it returns a nil
// base and "a-b".
func hyphenName(bin *ast.BinaryNode) (base ast.Node, name string, ok bool) {
	if bin.Operator != "-" {
		return nil, "", false
	}

	right, ok := bin.Right.(*ast.IdentifierNode)
	if !ok {
		return nil, "", false
	}

	switch left := bin.Left.(type) {
	case *ast.IdentifierNode:
		return nil, left.Value + "-" + right.Value, true

	case *ast.MemberNode:
		prop, ok := left.Property.(*ast.StringNode)
		if !ok {
			return nil, "", false
		}

		return left.Node, prop.Value + "-" + right.Value, true

	case *ast.BinaryNode:
		base, name, ok := hyphenName(left)
		if !ok {
			return nil, "", false
		}

		return base, name + "-" + right.Value, true
	}

	return nil, "", false
}

// memberPath returns the names along an identifier or member access chain,
// e.g. ["a", "b", "c"] for a.b.c.
func memberPath(node ast.Node) ([]string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return []string{n.Value}, true

	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, false
		}

		path, ok := memberPath(n.Node)

		return append(path, prop.Value), ok
	}

	return nil, false
}

// walkPath follows path through nested maps starting at root. It returns
// nil when a segment is missing or not a map.
func walkPath(root map[string]any, path []string) any {
	var v any = root

	for _, seg := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}

		v = m[seg]
	}

	return v
}

func hasKey(v any, key string) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}

	_, ok = m[key]

	return ok
}
