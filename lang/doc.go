// Package lang implements the directive language embedded in prex templates.
//
// A template is compiled into a [Program]: a flat sequence of [Stmt] values,
// each tagged with a [Kind]. Literal template text becomes [KindEmit]
// statements, expression markers become [KindEmitExpr] statements, and
// directive blocks are parsed by [Parse] into assignments, calls, and the
// control constructs if, for, and while.
//
// # Syntax
//
// Directive source is indentation-structured:
//
//	names = ["a", "b"]
//	for i, name in names:
//	    if i > 0:
//	        emit(", ")
//	    emit(name)
//	include("footer.tpl", {"count": len(names)})
//
// Recognized statements:
//
//	NAME[, NAME] = EXPR
//	NAME OP= EXPR             OP is one of + - * / %
//	emit(EXPR)
//	include(PATH[, VARS[, MODE[, OUT]]])
//	include_py(PATH[, VARS])
//	if EXPR: ... [elif EXPR: ...] [else: ...]
//	for NAME[, NAME] in EXPR: ...
//	while EXPR: ...
//	pass | break | continue
//	EXPR                      evaluated for its side effects
//
// Statements on one line are separated with ';'. A suite may follow the
// colon on the same line. Every EXPR is an expr-lang expression
// (https://expr-lang.org).
//
// # Evaluation
//
// Expressions compile on first use and are cached on the statement, so a
// loop body compiles once. Names resolve through an [Env]:
//
//  1. Variables (command line key=value, include overrides, bound as "vars")
//  2. Globals (any other assignment)
//  3. Builtins (range, str, buffer, toYAML, fromYAML, readFile, env, target,
//     platform, hostname, user, shell, cwd, file.*, path.*, mung.*)
//
// Hyphenated variable names such as build-type are resolved by rewriting
// the subtraction expr-lang parses them as, whenever the joined name is bound.
//
// Side effects of a running program go through a [Runtime], which the
// template engine implements.
package lang
