package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyText(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))

	l.With(slog.String("path", "main.tpl")).
		WithGroup("frame").
		Info("push", slog.Int("depth", 2), slog.Bool("quote", false),
			slog.Any("error", errors.New("boom")))

	want := "level=INFO msg=push path=main.tpl frame.depth=2 frame.quote=false frame.error=boom\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}

	if strings.Contains(buf.String(), "\033[") {
		t.Error("expected no color codes for a non-terminal writer")
	}
}

func TestPrettyText_Group(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Warn("include",
		slog.Group("vars", slog.String("who", "a"), slog.Int("n", 1)))

	if want := "level=WARN msg=include vars.who=a vars.n=1\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestPrettyText_Time(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("2006")).Info("x")

	if want := "time=" + time.Now().Format("2006") + " "; !strings.HasPrefix(buf.String(), want) {
		t.Errorf("expected prefix %q, got %q", want, buf.String())
	}
}

func TestPrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).Error("exception in code",
		slog.String("path", "a.tpl"),
		slog.Group("at", slog.Int("line", 4)))

	want := strings.Join([]string{
		"{",
		"  level: ERROR,",
		"  msg: exception in code,",
		"  path: a.tpl,",
		"  at: {",
		"    line: 4",
		"  }",
		"}",
	}, "\n") + "\n"

	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestPalette(t *testing.T) {
	var buf bytes.Buffer

	palette(true).paint(&buf, colorRed, "x")

	if want := colorRed + "x" + colorReset; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
