package lang

import "strings"

// IndentUnit is the number of columns a controlled block is indented past
// its control header.
const IndentUnit = 4

// Normalize re-indents text to the given column.
//
// The longest leading whitespace prefix shared by every non-blank line is
// removed, then indent spaces are prepended to each non-blank line. Blank
// lines do not take part in computing the prefix and are returned empty.
// Relative indentation between lines is preserved.
func Normalize(text string, indent int) string {
	lines := strings.Split(text, "\n")

	prefix, found := "", false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

		if !found {
			prefix, found = lead, true

			continue
		}

		n := 0
		for n < len(prefix) && n < len(lead) && prefix[n] == lead[n] {
			n++
		}

		prefix = prefix[:n]
	}

	pad := strings.Repeat(" ", indent)

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		lines[i] = pad + line[len(prefix):]
	}

	return strings.Join(lines, "\n")
}
