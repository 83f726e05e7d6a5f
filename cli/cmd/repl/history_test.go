package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_AddLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"<$ 1 + 1 $>", modeTemplate},
		{"upper(\"a\")", modeExpr},
		{"vars", modeCommand},
		{"  ", modeTemplate},
		{"vars", modeCommand},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("add %q: %v", e.Line, err)
		}
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}

	want := "T:<$ 1 + 1 $>\nX:upper(\"a\")\nC:vars\n"
	if string(data) != want {
		t.Errorf("expected file %q, got %q", want, data)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	for i := range h.Len() {
		got, _ := reloaded.Entry(i)
		orig, _ := h.Entry(i)

		if got != orig {
			t.Errorf("entry %d: expected %+v, got %+v", i, orig, got)
		}
	}
}

func TestHistory_MovesDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a"} {
		if err := h.Add(line, modeTemplate); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}

	if e, _ := h.Entry(1); e.Line != "a" {
		t.Errorf("expected repeated entry last, got %q", e.Line)
	}

	data, _ := os.ReadFile(path)
	if want := "T:b\nT:a\n"; string(data) != want {
		t.Errorf("expected rewritten file %q, got %q", want, data)
	}

	// Same text in another mode is a distinct entry.
	if err := h.Add("a", modeExpr); err != nil {
		t.Fatalf("add: %v", err)
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", h.Len())
	}
}

func TestHistory_UntaggedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("legacy\n\nX:1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if e, _ := h.Entry(0); e != (HistoryEntry{"legacy", modeTemplate}) {
		t.Errorf("unexpected entry %+v", e)
	}

	if e, _ := h.Entry(1); e != (HistoryEntry{"1", modeExpr}) {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestHistory_Entry_OutOfBounds(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("x", modeExpr); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d): expected ErrOutOfBounds, got %v", i, err)
		}
	}
}
