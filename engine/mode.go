package engine

//go:generate go tool stringer --linecomment --type Mode,Trigger --output mode_string.go

import (
	"fmt"
	"strings"
)

// Mode is a lexical region of a template.
type Mode int

const (
	Normal            Mode = iota // NORMAL
	Directive                     // PRE
	Expr                          // EXPR
	QuoteHeader                   // QUOTE_HEADER
	QuoteContinuation             // QUOTE_CONTINUATION
	Quote                         // QUOTE
)

// ParseMode converts an include mode argument to a Mode.
//
// A Mode is returned as-is, integers are taken as Mode values, and strings
// are matched case-insensitively against the mode names. Nil is [Normal].
func ParseMode(v any) (Mode, error) {
	switch m := v.(type) {
	case nil:
		return Normal, nil

	case Mode:
		if m.valid() {
			return m, nil
		}

	case int:
		if Mode(m).valid() {
			return Mode(m), nil
		}

	case string:
		for mode := Normal; mode <= Quote; mode++ {
			if strings.EqualFold(m, mode.String()) {
				return mode, nil
			}
		}
	}

	return Normal, ErrInvalidMode.Wrap(fmt.Errorf("%v", v))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m Mode) valid() bool { return Normal <= m && m <= Quote }

// startable reports whether a document may begin in mode m.
func (m Mode) startable() bool { return m == Normal || m == Directive }

// modeConstants returns the mode names bound in every environment so
// directives can write include("x.tpl", nil, PRE).
func modeConstants() map[string]any {
	return map[string]any{
		Normal.String():    Normal,
		Directive.String(): Directive,
	}
}
