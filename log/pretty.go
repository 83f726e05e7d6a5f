package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// palette writes colored strings, or plain ones when color is off.
type palette bool

func (p palette) paint(buf *bytes.Buffer, color, s string) {
	if p {
		buf.WriteString(color)
	}

	buf.WriteString(s)

	if p {
		buf.WriteString(colorReset)
	}
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

// prettyBase holds what both pretty handlers share.
type prettyBase struct {
	opts   slog.HandlerOptions
	color  palette
	mu     *sync.Mutex
	w      io.Writer
	prefix string // dotted group path, with trailing dot
	attrs  []slog.Attr
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions, color bool) prettyBase {
	return prettyBase{opts: *opts, color: palette(color), mu: &sync.Mutex{}, w: w}
}

func (b prettyBase) Enabled(_ context.Context, level slog.Level) bool {
	return level >= b.opts.Level.Level()
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	for _, a := range attrs {
		a.Key = b.prefix + a.Key
		b.attrs = append(b.attrs[:len(b.attrs):len(b.attrs)], a)
	}

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		b.prefix += name + "."
	}

	return b
}

// header returns the timestamp, level, source and message of r, in that
// order, with the configured timestamp layout applied. A disabled timestamp
// is omitted.
func (b prettyBase) header(r slog.Record) []slog.Attr {
	var attrs []slog.Attr

	if !r.Time.IsZero() {
		t := slog.Time(slog.TimeKey, r.Time)
		if b.opts.ReplaceAttr != nil {
			t = b.opts.ReplaceAttr(nil, t)
		}

		if t.Key != "" {
			attrs = append(attrs, t)
		}
	}

	attrs = append(attrs, slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			attrs = append(attrs, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	return append(attrs, slog.String(slog.MessageKey, r.Message))
}

// body returns the handler and record attributes of r.
func (b prettyBase) body(r slog.Record) []slog.Attr {
	attrs := append([]slog.Attr(nil), b.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = b.prefix + a.Key
		attrs = append(attrs, a)

		return true
	})

	return attrs
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler writes one line per record: key=value pairs with
// unquoted values.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts, color)}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.header(r) {
		h.writeAttr(buf, a)
	}

	for _, a := range h.body(r) {
		h.writeAttr(buf, a)
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			g.Key = a.Key + "." + g.Key
			h.writeAttr(buf, g)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	h.color.paint(buf, colorGray, a.Key)
	buf.WriteByte('=')
	writeValue(buf, h.color, a.Value)
}

// prettyJSONHandler writes each record as an indented JSON-like object with
// unquoted string values.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts, color)}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{")

	first := true

	for _, a := range append(h.header(r), h.body(r)...) {
		h.writeField(buf, a, "  ", &first)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}

func (h *prettyJSONHandler) writeField(buf *bytes.Buffer, a slog.Attr, indent string, first *bool) {
	a.Value = a.Value.Resolve()

	if !*first {
		buf.WriteByte(',')
	}

	*first = false

	buf.WriteString("\n" + indent)
	h.color.paint(buf, colorGray, a.Key)
	buf.WriteString(": ")

	if a.Value.Kind() != slog.KindGroup {
		writeValue(buf, h.color, a.Value)

		return
	}

	buf.WriteString("{")

	nested := true
	for _, g := range a.Value.Group() {
		h.writeField(buf, g, indent+"  ", &nested)
	}

	buf.WriteString("\n" + indent + "}")
}

func writeValue(buf *bytes.Buffer, p palette, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		p.paint(buf, colorCyan, v.String())

	case slog.KindInt64:
		p.paint(buf, colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		p.paint(buf, colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		p.paint(buf, colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			p.paint(buf, colorGreen, "true")
		} else {
			p.paint(buf, colorRed, "false")
		}

	case slog.KindDuration:
		p.paint(buf, colorMagenta, v.Duration().String())

	case slog.KindTime:
		p.paint(buf, colorBlue, v.Time().Format(time.RFC3339))

	default:
		switch x := v.Any().(type) {
		case slog.Level:
			p.paint(buf, levelColor(x), Level(x).label())
		case nil:
			p.paint(buf, colorGray, "null")
		default:
			p.paint(buf, colorCyan, strings.TrimSpace(v.String()))
		}
	}
}
