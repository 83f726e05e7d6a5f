package engine

import (
	"io"
	"strings"
)

// WriteDepfile writes a make-style dependency rule naming every included
// document as a prerequisite of target:
//
//	target: dep1 dep2
//
// Spaces and '#' in paths are escaped with a backslash, and '$' is doubled.
func WriteDepfile(w io.Writer, target string, deps []Include) error {
	var buf strings.Builder

	buf.WriteString(escapeDep(target))
	buf.WriteRune(':')

	for _, d := range deps {
		buf.WriteRune(' ')
		buf.WriteString(escapeDep(d.Path))
	}

	buf.WriteRune('\n')

	_, err := io.WriteString(w, buf.String())

	return err
}

var depEscaper = strings.NewReplacer(" ", `\ `, "#", `\#`, "$", "$$")

func escapeDep(path string) string { return depEscaper.Replace(path) }
