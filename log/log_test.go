package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// jsonLogger returns a plain JSON logger without timestamps writing to buf.
func jsonLogger(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{
		WithFormat(FormatJSON),
		WithPretty(false),
		WithTimeLayout("none"),
	}, opts...)...)
}

// records decodes one JSON object per line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for line := range strings.Lines(buf.String()) {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}

		out = append(out, m)
	}

	return out
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("expected defaults, got level %v format %v", l.Level(), l.Format())
	}

	if !l.pretty || l.caller {
		t.Errorf("unexpected defaults: pretty %v caller %v", l.pretty, l.caller)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := jsonLogger(&buf, WithLevel(LevelDebug))

	l.Trace("trace")
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	var got []string
	for _, r := range records(t, &buf) {
		got = append(got, r["level"].(string))
	}

	if want := "DEBUG INFO WARN ERROR"; strings.Join(got, " ") != want {
		t.Errorf("expected %q, got %q", want, strings.Join(got, " "))
	}
}

func TestLogger_TraceLevelLabel(t *testing.T) {
	var buf bytes.Buffer

	jsonLogger(&buf, WithLevel(LevelTrace)).TraceContext(t.Context(), "flush", slog.String("mode", "PRE"))

	r := records(t, &buf)
	if len(r) != 1 || r[0]["level"] != "TRACE" || r[0]["mode"] != "PRE" {
		t.Errorf("unexpected record %v", r)
	}

	if _, ok := r[0]["time"]; ok {
		t.Error("expected timestamp to be omitted")
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	jsonLogger(&buf, WithCaller(true)).Info("here")

	r := records(t, &buf)

	src, ok := r[0]["source"].(map[string]any)
	if !ok {
		t.Fatalf("expected source, got %v", r[0])
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected call site in log_test.go, got %v", src)
	}
}

func TestLogger_WithWrap(t *testing.T) {
	var buf bytes.Buffer

	base := jsonLogger(&buf)
	child := base.With(slog.String("path", "a.tpl"))

	child.Info("one")
	base.Info("two")

	r := records(t, &buf)
	if r[0]["path"] != "a.tpl" {
		t.Errorf("expected attribute on child record, got %v", r[0])
	}

	if _, ok := r[1]["path"]; ok {
		t.Errorf("expected parent unchanged, got %v", r[1])
	}

	buf.Reset()

	wrapped := child.Wrap(WithLevel(LevelError))
	wrapped.Warn("dropped")

	if buf.Len() != 0 {
		t.Errorf("expected warn filtered after wrap, got %q", buf.String())
	}

	if child.Level() != DefaultLevel {
		t.Error("expected wrap to leave the original logger unchanged")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Info("ignored")
	l.With(slog.Int("n", 1)).Error("ignored")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("expected defaults from zero logger")
	}

	var buf bytes.Buffer

	l.Wrap(WithOutput(&buf), WithFormat(FormatJSON), WithPretty(false)).Info("ok")

	if !strings.Contains(buf.String(), `"msg":"ok"`) {
		t.Errorf("expected wrapped zero logger to write, got %q", buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Go(func() {
			l.With(slog.Int("worker", i)).Info("done")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 20 {
		t.Errorf("expected 20 records, got %d", n)
	}
}
