package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns the names of the defined log levels, most verbose first.
func Levels() iter.Seq[string] { return names(levels) }

// ParseLevel parses a level name. Besides the defined names, any string
// accepted by [slog.Level.UnmarshalText] ("DEBUG+2", "WARN-1") is allowed.
// Anything else yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, l := range levels {
		if strings.EqualFold(s, l.String()) {
			return l
		}
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// label is the upper-case level name written to log records.
func (l Level) label() string {
	for _, d := range levels {
		if l == d {
			return strings.ToUpper(d.String())
		}
	}

	return slog.Level(l).String()
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

var formats = []Format{FormatText, FormatJSON}

// Formats returns the names of the defined log formats.
func Formats() iter.Seq[string] { return names(formats) }

// ParseFormat parses a format name, yielding [DefaultFormat] for unknown
// names.
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for _, f := range formats {
		if strings.EqualFold(s, f.String()) {
			return f
		}
	}

	return DefaultFormat
}

func names[T fmt.Stringer](vals []T) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range vals {
			if !yield(v.String()) {
				return
			}
		}
	}
}

// DefaultTimeLayout is the default timestamp layout.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information.
const DefaultCaller = false

// DefaultPretty is the default setting for pretty printing. Pretty output
// is only colorized when written to a terminal.
const DefaultPretty = true

// config is an immutable logger configuration. Options produce modified
// copies.
type config struct {
	output     io.Writer
	formatTime func(time.Time) string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return defaults(w).with(opts...)
}

func defaults(w io.Writer) config {
	if w == nil {
		w = io.Discard
	}

	return config{
		output:     w,
		formatTime: timeFormatter(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
		caller:     DefaultCaller,
		pretty:     DefaultPretty,
	}
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					s := c.formatTime(t)
					if s == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(s)
				}

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(Level(l).label())
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch c.format {
	case FormatJSON:
		if c.pretty {
			return newPrettyJSONHandler(c.output, opts, isTerminal(c.output))
		}

		return slog.NewJSONHandler(c.output, opts)

	case FormatText:
		if c.pretty {
			return newPrettyTextHandler(c.output, opts, isTerminal(c.output))
		}

		return slog.NewTextHandler(c.output, opts)
	}

	return slog.DiscardHandler
}

// isTerminal reports whether w is a terminal device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// namedLayouts maps case-insensitive names, with punctuation removed, to
// timestamp layouts. "none" disables timestamps.
var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

// timeFormatter returns a function formatting timestamps with layout, which
// is either a name from namedLayouts or a literal [time.Time.Format] layout.
// The function returns "" when timestamps are disabled.
func timeFormatter(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if key == "" {
		return func(time.Time) string { return "" }
	}

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
