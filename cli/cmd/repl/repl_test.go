package repl

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/prex/engine"
	"github.com/ardnew/prex/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), engine.New(), NewHistory(""), log.Default())
}

func TestModel_RenderEvaluate(t *testing.T) {
	m := testModel(t)

	out, err := m.render("a<$ 1 + 2 $>b<@ n = 4 @>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if out != "a3b" {
		t.Errorf("expected %q, got %q", "a3b", out)
	}

	tests := []struct {
		line string
		want string
	}{
		{"n * 2", "8"},
		{`upper("x")`, `"X"`},
		{"[1, 2]", "[1 2]"},
	}

	for _, tt := range tests {
		got, err := m.evaluate(tt.line)
		if err != nil {
			t.Errorf("evaluate %q: %v", tt.line, err)

			continue
		}

		if got != tt.want {
			t.Errorf("evaluate %q: expected %q, got %q", tt.line, tt.want, got)
		}
	}
}

func TestModel_RenderFault(t *testing.T) {
	m := testModel(t)

	_, err := m.render(`<$ fromYAML("[") $>`)

	var fault *engine.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *engine.Fault, got %v", err)
	}

	if got := describe(err); !strings.Contains(got, `in: emit(fromYAML("["))`) {
		t.Errorf("expected failing fragment in %q", got)
	}
}

func TestModel_Command(t *testing.T) {
	m := testModel(t)

	m, _ = m.command("mode")
	if m.mode != modeExpr {
		t.Errorf("expected toggle to expression mode, got %v", m.mode)
	}

	m, _ = m.command("mode t")
	if m.mode != modeTemplate {
		t.Errorf("expected template mode, got %v", m.mode)
	}

	m, cmd := m.command("bogus")
	if cmd == nil || m.quitting {
		t.Error("expected an error message for an unknown command")
	}

	m, _ = m.command("quit")
	if !m.quitting {
		t.Error("expected quit to end the session")
	}
}

func TestModel_Help(t *testing.T) {
	m := testModel(t)

	for _, line := range []string{"", "help"} {
		if _, cmd := m.command(line); cmd == nil {
			t.Errorf("expected help output for %q", line)
		}
	}

	// tea.Println appends the line break itself.
	if strings.HasSuffix(helpMessage, "\n") {
		t.Error("help message ends with a line break")
	}
}

func TestModel_Recall(t *testing.T) {
	m := testModel(t)

	m.remember("<$ x $>", modeTemplate)
	m.remember("x + 1", modeExpr)
	m.remember("vars", modeCommand)

	m = m.recall(2)
	if got := m.input.Value(); got != ":vars" || m.mode != modeTemplate {
		t.Errorf("expected command recall, got %q in mode %v", got, m.mode)
	}

	m = m.recall(1)
	if got := m.input.Value(); got != "x + 1" || m.mode != modeExpr {
		t.Errorf("expected expression recall, got %q in mode %v", got, m.mode)
	}

	m = m.recall(3)
	if got := m.input.Value(); got != "" || m.historyIdx != 3 {
		t.Errorf("expected cleared input past the newest entry, got %q at %d", got, m.historyIdx)
	}
}

func TestComputeMatches(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		mode  inputMode
		input string
		want  string
	}{
		{modeTemplate, ":va", "vars"},
		{modeTemplate, "<$ path.ca", "cat"},
		{modeExpr, "hostn", "hostname"},
		{modeTemplate, "hostn", ""},
	}

	for _, tt := range tests {
		m = m.switchMode(tt.mode)
		m.input.SetValue(tt.input)
		m.input.SetCursor(len(tt.input))

		matches, _, _ := m.computeMatches()

		switch {
		case tt.want == "" && len(matches) != 0:
			t.Errorf("%q: expected no matches, got %v", tt.input, matches)
		case tt.want != "" && (len(matches) == 0 || matches[0].Str != tt.want):
			t.Errorf("%q: expected best match %q, got %v", tt.input, tt.want, matches)
		}
	}
}
