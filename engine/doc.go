// Package engine renders prex templates.
//
// A template is literal text interleaved with delimited regions:
//
//	<@ directive source @>     run for effect
//	<$ expression $>           evaluated, string form emitted
//	<#header: body #>          quote block
//
// Text inside a quote body is not emitted directly. It is compiled into the
// controlled block of the header, so
//
//	<#for i in range(3):##  <$i$>, #>
//
// emits "0, 1, 2, ". A "##" inside a quote body starts a continuation line
// that ends at the line break. Indentation before the first fragment of a
// continuation line is markup and is not emitted.
//
// # Processing
//
// Input is read line by line and split by [Tokenize]. Each document gets a
// frame holding a stack of lexical regions, one per open delimiter. Opening a
// region flushes the text collected by the region it interrupts, and closing
// a region flushes its own text:
//
//	NORMAL  emit the text verbatim
//	PRE     parse the text as directive source and run it
//	EXPR    evaluate the text and emit the result
//
// Statements generated while a quote body is open are deferred into that
// body. The quote runs once, as a single control statement, when it closes.
//
// # Includes
//
// Directives call include and include_py to process other documents with
// the same environment. Variables passed to include are visible only to the
// included document. Every include is recorded in [Engine.Dependencies],
// which [WriteDepfile] writes as a make rule.
//
// Frames are kept in an arena indexed by include depth. Nesting beyond the
// configured maximum fails with [ErrMaxDepthExceeded], reporting the chain
// of documents.
package engine
