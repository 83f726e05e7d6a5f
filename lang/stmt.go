package lang

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

import (
	"strconv"
	"strings"
)

// Kind identifies the operation performed by a [Stmt].
type Kind int

const (
	KindEmit     Kind = iota // emit
	KindEmitExpr             // emit-expr
	KindBlock                // block
	KindSet                  // set
	KindInclude              // include
	KindExec                 // exec
	KindIf                   // if
	KindFor                  // for
	KindWhile                // while
	KindPass                 // pass
	KindBreak                // break
	KindContinue             // continue
)

// Stmt is one instruction of a compiled template.
//
// Only the fields relevant to Kind are set:
//
//	KindEmit      Text
//	KindEmitExpr  Expr
//	KindBlock     Body, Text (normalized directive source)
//	KindSet       Targets, Op, Expr
//	KindInclude   Args, Directive
//	KindExec      Expr
//	KindIf        Clauses, Else
//	KindFor       Targets, Expr, Body
//	KindWhile     Expr, Body
type Stmt struct {
	Expr      *Expr
	Text      string
	Op        string
	Targets   []string
	Args      []*Expr
	Clauses   []Clause
	Body      Program
	Else      Program
	Line      int
	Kind      Kind
	Directive bool
}

// Clause is one conditional branch of an if statement.
type Clause struct {
	Cond *Expr
	Body Program
}

// Program is an ordered sequence of statements.
type Program []*Stmt

// Emit returns a statement that writes text verbatim.
func Emit(text string) *Stmt {
	return &Stmt{Kind: KindEmit, Text: text}
}

// EmitExpr returns a statement that writes the string form of the result of
// evaluating source.
func EmitExpr(source string) *Stmt {
	return &Stmt{Kind: KindEmitExpr, Expr: NewExpr(source)}
}

// Block returns a statement that runs body as a unit. The source text is
// kept for diagnostics.
func Block(body Program, source string) *Stmt {
	return &Stmt{Kind: KindBlock, Body: body, Text: source}
}

// Controlled reports whether s is a control construct owning a Body.
func (s *Stmt) Controlled() bool {
	switch s.Kind {
	case KindIf, KindFor, KindWhile:
		return true
	default:
		return false
	}
}

// Header returns the control header of s without the trailing colon, or an
// empty string if s is not a control construct.
func (s *Stmt) Header() string {
	switch s.Kind {
	case KindIf:
		if len(s.Clauses) == 0 {
			return ""
		}

		return "if " + s.Clauses[0].Cond.Source

	case KindFor:
		return "for " + strings.Join(s.Targets, ", ") + " in " + s.Expr.Source

	case KindWhile:
		return "while " + s.Expr.Source

	default:
		return ""
	}
}

// String renders s as directive source at column zero.
func (s *Stmt) String() string {
	var buf strings.Builder

	s.format(&buf, 0)

	return strings.TrimSuffix(buf.String(), "\n")
}

// String renders the program as directive source.
//
// Parsing the result yields a program with the same behavior.
func (p Program) String() string {
	var buf strings.Builder

	p.Format(&buf, 0)

	return strings.TrimSuffix(buf.String(), "\n")
}

// Format writes the program as directive source indented to column indent.
func (p Program) Format(buf *strings.Builder, indent int) {
	for _, s := range p {
		s.format(buf, indent)
	}
}

func (s *Stmt) format(buf *strings.Builder, indent int) {
	pad := strings.Repeat(" ", indent)

	line := func(text string) {
		buf.WriteString(pad)
		buf.WriteString(text)
		buf.WriteRune('\n')
	}

	suite := func(header string, body Program) {
		line(header + ":")

		text := body.String()
		if strings.TrimSpace(text) == "" {
			line(strings.Repeat(" ", IndentUnit) + "pass")

			return
		}

		buf.WriteString(Normalize(text, indent+IndentUnit))
		buf.WriteRune('\n')
	}

	switch s.Kind {
	case KindEmit:
		line("emit(" + strconv.Quote(s.Text) + ")")

	case KindEmitExpr:
		line("emit(" + s.Expr.Source + ")")

	case KindBlock:
		s.Body.Format(buf, indent)

	case KindSet:
		line(strings.Join(s.Targets, ", ") + " " + s.Op + " " + s.Expr.Source)

	case KindInclude:
		name := "include"
		if s.Directive {
			name = "include_py"
		}

		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.Source
		}

		line(name + "(" + strings.Join(args, ", ") + ")")

	case KindExec:
		line(s.Expr.Source)

	case KindIf:
		for i, c := range s.Clauses {
			keyword := "elif "
			if i == 0 {
				keyword = "if "
			}

			suite(keyword+c.Cond.Source, c.Body)
		}

		if s.Else != nil {
			suite("else", s.Else)
		}

	case KindFor, KindWhile:
		suite(s.Header(), s.Body)

	case KindPass, KindBreak, KindContinue:
		line(s.Kind.String())
	}
}
