package lang

import (
	"regexp"
	"strings"
)

// Directive source is a sequence of statements with indentation-delimited
// blocks:
//
//	total = 0
//	for i, name in names:
//	    if name != "":
//	        emit(name + "\n"); total += 1
//	    else:
//	        pass
//	include("footer.tpl", {"count": total})
//
// Expressions are expr-lang expressions. A logical line continues onto the
// next physical line while a bracket or string literal is open. Lines whose
// first non-blank characters are "#" or "//" are comments.

var (
	assignPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s*([-+*/%]?=)`,
	)
	forPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s+in\s`,
	)
	callPattern = regexp.MustCompile(`^(emit|include|include_py)\s*\(`)
)

// logical is one logical line of directive source.
type logical struct {
	text   string
	indent int
	line   int
}

type parser struct {
	source string
	lines  []logical
	pos    int
}

// Parse parses directive source into a program.
func Parse(source string) (Program, error) {
	lines, err := splitLogical(source)
	if err != nil {
		return nil, err
	}

	p := &parser{source: source, lines: lines}

	if len(lines) == 0 {
		return Program{}, nil
	}

	prog, err := p.block(lines[0].indent)
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.lines) {
		l := p.lines[p.pos]

		return nil, syntaxError(source, l.line, l.indent+1, "unindent does not match any outer indentation level")
	}

	return prog, nil
}

// ParseHeader parses a control header such as "for i in range(3)" or
// "if debug" into a control statement with an empty body. A trailing colon
// is optional.
func ParseHeader(header string) (*Stmt, error) {
	text := strings.TrimSpace(header)

	if i := findColon(text); i >= 0 {
		if strings.TrimSpace(text[i+1:]) != "" {
			return nil, ErrInvalidHeader.Wrap(syntaxError(header, 1, i+2, "unexpected text after ':'"))
		}

		text = strings.TrimSpace(text[:i])
	}

	p := &parser{source: header}

	s, err := p.header(logical{text: text, line: 1})
	if err != nil {
		return nil, ErrInvalidHeader.Wrap(err)
	}

	return s, nil
}

// block parses statements at exactly the given indentation.
func (p *parser) block(indent int) (Program, error) {
	var prog Program

	for p.pos < len(p.lines) {
		l := p.lines[p.pos]

		if l.indent < indent {
			break
		}

		if l.indent > indent {
			return nil, p.errorf(l, "unexpected indent")
		}

		stmts, err := p.statement(indent)
		if err != nil {
			return nil, err
		}

		prog = append(prog, stmts...)
	}

	return prog, nil
}

// statement parses the logical line at p.pos, and its controlled blocks if it
// is a compound statement.
func (p *parser) statement(indent int) (Program, error) {
	l := p.lines[p.pos]

	switch keyword(l.text) {
	case "if", "for", "while":
		s, err := p.compound(indent)
		if err != nil {
			return nil, err
		}

		return Program{s}, nil

	case "elif", "else":
		return nil, p.errorf(l, "'"+keyword(l.text)+"' without matching 'if'")

	default:
		p.pos++

		return p.simple(l, l.text)
	}
}

// compound parses an if, for, or while statement with its suites.
func (p *parser) compound(indent int) (*Stmt, error) {
	l := p.lines[p.pos]

	header, rest, err := p.splitSuite(l)
	if err != nil {
		return nil, err
	}

	s, err := p.header(logical{text: header, indent: l.indent, line: l.line})
	if err != nil {
		return nil, err
	}

	p.pos++

	body, err := p.suite(l, rest, indent)
	if err != nil {
		return nil, err
	}

	if s.Kind != KindIf {
		s.Body = body

		return s, nil
	}

	s.Clauses[0].Body = body

	for p.pos < len(p.lines) && p.lines[p.pos].indent == indent {
		l = p.lines[p.pos]

		kw := keyword(l.text)
		if kw != "elif" && kw != "else" {
			break
		}

		header, rest, err := p.splitSuite(l)
		if err != nil {
			return nil, err
		}

		p.pos++

		cond := strings.TrimSpace(strings.TrimPrefix(header, kw))

		body, err := p.suite(l, rest, indent)
		if err != nil {
			return nil, err
		}

		if kw == "else" {
			if cond != "" {
				return nil, p.errorf(l, "unexpected text after 'else'")
			}

			s.Else = body

			break
		}

		if cond == "" {
			return nil, p.errorf(l, "expected condition after 'elif'")
		}

		s.Clauses = append(s.Clauses, Clause{Cond: NewExpr(cond), Body: body})
	}

	return s, nil
}

// header parses the text of an if, for, or while header.
func (p *parser) header(l logical) (*Stmt, error) {
	kw := keyword(l.text)
	rest := strings.TrimSpace(strings.TrimPrefix(l.text, kw))

	switch kw {
	case "if":
		if rest == "" {
			return nil, p.errorf(l, "expected condition after 'if'")
		}

		return &Stmt{
			Kind:    KindIf,
			Clauses: []Clause{{Cond: NewExpr(rest)}},
			Line:    l.line,
		}, nil

	case "while":
		if rest == "" {
			return nil, p.errorf(l, "expected condition after 'while'")
		}

		return &Stmt{Kind: KindWhile, Expr: NewExpr(rest), Line: l.line}, nil

	case "for":
		m := forPattern.FindStringSubmatchIndex(rest + " ")
		if m == nil {
			return nil, p.errorf(l, "expected 'for NAME[, NAME] in EXPR'")
		}

		targets := splitNames(rest[m[2]:m[3]])
		if len(targets) > 2 {
			return nil, p.errorf(l, "too many loop variables")
		}

		iter := strings.TrimSpace(rest[min(m[1], len(rest)):])
		if iter == "" {
			return nil, p.errorf(l, "expected expression after 'in'")
		}

		return &Stmt{
			Kind:    KindFor,
			Targets: targets,
			Expr:    NewExpr(iter),
			Line:    l.line,
		}, nil

	default:
		return nil, p.errorf(l, "expected 'if', 'for', or 'while'")
	}
}

// splitSuite splits a compound line at its header colon.
func (p *parser) splitSuite(l logical) (header, rest string, err error) {
	i := findColon(l.text)
	if i < 0 {
		return "", "", p.errorf(l, "expected ':'")
	}

	return strings.TrimSpace(l.text[:i]), strings.TrimSpace(l.text[i+1:]), nil
}

// suite parses the body of a compound statement: either the inline
// statements following the colon, or the indented block on the next lines.
func (p *parser) suite(l logical, inline string, indent int) (Program, error) {
	if inline != "" {
		return p.simple(l, inline)
	}

	if p.pos >= len(p.lines) || p.lines[p.pos].indent <= indent {
		return nil, p.errorf(l, "expected an indented block")
	}

	return p.block(p.lines[p.pos].indent)
}

// simple parses one or more ';'-separated simple statements.
func (p *parser) simple(l logical, text string) (Program, error) {
	var prog Program

	for _, part := range splitTop(text, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		s, err := p.simpleOne(l, part)
		if err != nil {
			return nil, err
		}

		s.Line = l.line
		prog = append(prog, s)
	}

	return prog, nil
}

func (p *parser) simpleOne(l logical, text string) (*Stmt, error) {
	switch text {
	case "pass":
		return &Stmt{Kind: KindPass}, nil
	case "break":
		return &Stmt{Kind: KindBreak}, nil
	case "continue":
		return &Stmt{Kind: KindContinue}, nil
	}

	if m := callPattern.FindStringSubmatch(text); m != nil {
		open := len(m[0]) - 1
		if closeParen(text, open) == len(text)-1 {
			return p.call(l, m[1], text[open+1:len(text)-1])
		}
	}

	if m := assignPattern.FindStringSubmatchIndex(text); m != nil {
		op := text[m[4]:m[5]]
		rest := text[m[1]:]

		if op != "=" || !strings.HasPrefix(rest, "=") {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return nil, p.errorf(l, "expected expression after '"+op+"'")
			}

			targets := splitNames(text[m[2]:m[3]])
			if op != "=" && len(targets) > 1 {
				return nil, p.errorf(l, "augmented assignment to multiple names")
			}

			return &Stmt{
				Kind:    KindSet,
				Targets: targets,
				Op:      op,
				Expr:    NewExpr(rest),
			}, nil
		}
	}

	return &Stmt{Kind: KindExec, Expr: NewExpr(text)}, nil
}

// call parses the arguments of emit, include, and include_py.
func (p *parser) call(l logical, name, args string) (*Stmt, error) {
	var exprs []*Expr

	for _, a := range splitTop(args, ',') {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, p.errorf(l, "empty argument to "+name)
		}

		exprs = append(exprs, NewExpr(a))
	}

	switch name {
	case "emit":
		if len(exprs) != 1 {
			return nil, p.errorf(l, "emit takes exactly one argument")
		}

		return &Stmt{Kind: KindEmitExpr, Expr: exprs[0]}, nil

	case "include":
		if len(exprs) < 1 || len(exprs) > 4 {
			return nil, p.errorf(l, "include takes 1 to 4 arguments")
		}

		return &Stmt{Kind: KindInclude, Args: exprs}, nil

	default:
		if len(exprs) < 1 || len(exprs) > 2 {
			return nil, p.errorf(l, "include_py takes 1 or 2 arguments")
		}

		return &Stmt{Kind: KindInclude, Args: exprs, Directive: true}, nil
	}
}

func (p *parser) errorf(l logical, reason string) error {
	return syntaxError(p.source, l.line, l.indent+1, reason)
}

// keyword returns the leading keyword of a line if it is one of the compound
// statement keywords.
func keyword(text string) string {
	for _, kw := range []string{"if", "elif", "else", "for", "while"} {
		if !strings.HasPrefix(text, kw) {
			continue
		}

		if len(text) == len(kw) || !isIdentByte(text[len(kw)]) {
			return kw
		}
	}

	return ""
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func splitNames(s string) []string {
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	return names
}

// splitLogical splits source into logical lines, joining physical lines while
// brackets or string literals are open and dropping blank and comment lines.
func splitLogical(source string) ([]logical, error) {
	var (
		lines []logical
		buf   strings.Builder
		depth int
		quote byte
		start = 1
		line  = 1
	)

	flush := func() {
		text := buf.String()
		buf.Reset()

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "//") {
			return
		}

		lines = append(lines, logical{
			text:   trimmed,
			indent: indentWidth(text),
			line:   start,
		})
	}

	for i := 0; i < len(source); i++ {
		c := source[i]

		if quote != 0 {
			buf.WriteByte(c)

			switch {
			case c == '\\' && quote != '`' && i+1 < len(source):
				i++
				buf.WriteByte(source[i])

				if source[i] == '\n' {
					line++
				}
			case c == quote:
				quote = 0
			case c == '\n':
				if quote != '`' {
					return nil, syntaxError(source, line, 0, "unterminated string literal")
				}

				line++
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, syntaxError(source, line, 0, "unbalanced '"+string(c)+"'")
			}
		case '\n':
			line++

			if depth == 0 {
				flush()

				start = line

				continue
			}
		}

		buf.WriteByte(c)
	}

	if quote != 0 {
		return nil, syntaxError(source, line, 0, "unterminated string literal")
	}

	if depth > 0 {
		return nil, syntaxError(source, start, 0, "unclosed bracket")
	}

	flush()

	return lines, nil
}

// indentWidth returns the column of the first non-blank character, with tabs
// advancing to the next multiple of 8.
func indentWidth(text string) int {
	n := 0

	for _, c := range text {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		default:
			return n
		}
	}

	return n
}

// visitTop calls fn for every byte of text outside string literals with the
// bracket depth at that byte. Iteration stops when fn returns false.
func visitTop(text string, fn func(i, depth int) bool) {
	var (
		depth int
		quote byte
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c

			continue
		case ')', ']', '}':
			depth--
		}

		if !fn(i, depth) {
			return
		}

		switch c {
		case '(', '[', '{':
			depth++
		}
	}
}

// splitTop splits text at every sep outside brackets and string literals.
func splitTop(text string, sep byte) []string {
	var (
		parts []string
		last  int
	)

	visitTop(text, func(i, depth int) bool {
		if depth == 0 && text[i] == sep {
			parts = append(parts, text[last:i])
			last = i + 1
		}

		return true
	})

	return append(parts, text[last:])
}

// findColon returns the index of the first top-level ':' that does not close
// a ternary '?', or -1.
func findColon(text string) int {
	found, pending := -1, 0

	visitTop(text, func(i, depth int) bool {
		if depth != 0 {
			return true
		}

		switch text[i] {
		case '?':
			next := byte(0)
			if i+1 < len(text) {
				next = text[i+1]
			}

			// "??" and "?." are not ternaries.
			if next != '?' && next != '.' && (i == 0 || text[i-1] != '?') {
				pending++
			}

		case ':':
			if pending > 0 {
				pending--

				return true
			}

			found = i

			return false
		}

		return true
	})

	return found
}

// closeParen returns the index of the bracket closing the one at open, or -1.
func closeParen(text string, open int) int {
	found := -1

	visitTop(text, func(i, depth int) bool {
		if i > open && depth == 0 && text[i] == ')' {
			found = i

			return false
		}

		return true
	})

	return found
}
