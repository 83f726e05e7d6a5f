package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/prex/lang"
)

// isWordBoundary reports whether r delimits a completion word: whitespace,
// the member-access dot, and expression punctuation. Hyphens are not
// boundaries because names may contain them.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '$', '@', '#':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading to the word starting at
// wordStart. For "x + path.ba" with word "ba" it returns "path".
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// inCode reports whether cursor lies inside an open expression or directive
// region of a template line.
func inCode(input string, cursor int) bool {
	before := input[:min(cursor, len(input))]

	open := max(strings.LastIndex(before, "<$"), strings.LastIndex(before, "<@"))
	if open < 0 {
		return false
	}

	closed := max(strings.LastIndex(before, "$>"), strings.LastIndex(before, "@>"))

	return closed < open
}

// exprBuiltinNames returns the names of the expression language builtins.
func exprBuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtin.Index))
}

// childCandidates returns completion names under parent. An empty parent
// yields every bound name and builtin function. Otherwise the parent is
// resolved in env, falling back to the builtin namespaces.
func childCandidates(env *lang.Env, parent string) []string {
	if parent == "" {
		names := lang.BuiltinEnvKeys()
		names = append(names, exprBuiltinNames()...)
		names = append(names, slices.Collect(maps.Keys(env.Globals()))...)
		names = append(names, slices.Collect(maps.Keys(env.Vars()))...)

		slices.Sort(names)

		return slices.Compact(names)
	}

	segments := strings.Split(parent, ".")

	if v, ok := env.Lookup(segments[0]); ok {
		for _, seg := range segments[1:] {
			m, ok := v.(map[string]any)
			if !ok {
				v = nil

				break
			}

			v = m[seg]
		}

		if m, ok := v.(map[string]any); ok {
			return slices.Sorted(maps.Keys(m))
		}
	}

	return lang.BuiltinEnvLookup(parent)
}

// computeMatches ranks candidates for the word at the cursor. Outside code
// regions of a template line nothing is completed. After a dot every member
// is offered unfiltered.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	var candidates []string

	switch {
	case strings.HasPrefix(input, ":"):
		if wordStart != 1 {
			return nil, wordStart, wordEnd
		}

		candidates = commandNames

	case m.mode == modeTemplate && !inCode(input, cursor):
		return nil, wordStart, wordEnd

	default:
		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.engine.Env(), parent)

		if word == "" {
			if parent == "" {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar renders matches on one line, ellipsized to width. The
// selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(ellipsis) + lipgloss.Width(sep)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)

			if i < len(matches)-1 && used+w+reserve > width {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched runes emphasized.
// Functions get a "()" suffix that is not inserted on completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, emph := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, emph = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(emph.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a callable builtin.
func isFunction(name string) bool {
	if _, ok := builtin.Index[name]; ok {
		return true
	}

	_, _, ok := builtinSignature(name)

	return ok
}
