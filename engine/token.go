package engine

import (
	"iter"
	"strings"
)

// Trigger identifies the delimiter that produced a [Token].
type Trigger int

const (
	TriggerNone                   Trigger = iota // none
	TriggerDirectiveStart                        // directive-start
	TriggerDirectiveEnd                          // directive-end
	TriggerExprStart                             // expr-start
	TriggerExprEnd                               // expr-end
	TriggerQuoteHeaderStart                      // quote-header-start
	TriggerQuoteHeaderEnd                        // quote-header-end
	TriggerQuoteContinuationStart                // quote-continuation-start
	TriggerQuoteContinuationEnd                  // quote-continuation-end
	TriggerQuoteEnd                              // quote-end
)

// delimiter pairs a marker with its trigger.
type delimiter struct {
	marker  string
	trigger Trigger
}

// delimiters in tie-break order: when two markers start at the same offset,
// the one listed first wins.
//
//nolint:gochecknoglobals
var delimiters = [...]delimiter{
	{"<@", TriggerDirectiveStart},
	{"@>", TriggerDirectiveEnd},
	{"<$", TriggerExprStart},
	{"$>", TriggerExprEnd},
	{"<#", TriggerQuoteHeaderStart},
	{":", TriggerQuoteHeaderEnd},
	{"##", TriggerQuoteContinuationStart},
	{"\n", TriggerQuoteContinuationEnd},
	{"#>", TriggerQuoteEnd},
}

// Marker returns the delimiter text of t, or an empty string for
// [TriggerNone].
func (t Trigger) Marker() string {
	for _, d := range delimiters {
		if d.trigger == t {
			return d.marker
		}
	}

	return ""
}

// Token is either literal text (Trigger is [TriggerNone]) or a delimiter.
type Token struct {
	Text    string
	Trigger Trigger
}

// Tokenize yields the tokens of one line of input.
//
// Literal tokens and delimiter tokens alternate: every delimiter is preceded
// by a literal token, which is empty when the delimiter starts the remaining
// input or directly follows another delimiter. Text after the last delimiter
// is yielded as a final literal token.
func Tokenize(line string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for line != "" {
			at, match := -1, delimiter{}

			for _, d := range delimiters {
				i := strings.Index(line, d.marker)
				if i >= 0 && (at < 0 || i < at) {
					at, match = i, d
				}
			}

			if at < 0 {
				yield(Token{Text: line})

				return
			}

			if !yield(Token{Text: line[:at]}) {
				return
			}

			if !yield(Token{Text: match.marker, Trigger: match.trigger}) {
				return
			}

			line = line[at+len(match.marker):]
		}
	}
}
