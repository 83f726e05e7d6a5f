package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParseVars(t *testing.T) {
	dir := t.TempDir()
	base := write(t, dir, "base.yaml", "arch: arm\nlevel: 2\nflags: [a, b]\n")
	over := write(t, dir, "over.yaml", "arch: x86\n")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(base, link); err != nil {
		t.Fatal(err)
	}

	// base is read once even though link names it again after over.
	vars, err := parseVars([]string{base, over, link}, []string{"name=demo", "empty="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"arch", "x86"},
		{"name", "demo"},
		{"empty", ""},
	}

	for _, tt := range tests {
		if got := vars[tt.key]; got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.key, tt.want, got)
		}
	}

	if _, ok := vars["flags"].([]any); !ok {
		t.Errorf("expected list for flags, got %T", vars["flags"])
	}
}

func TestParseVars_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, dir, "bad.yaml", "- not\n- a mapping\n")

	tests := []struct {
		name  string
		files []string
		pairs []string
		want  error
	}{
		{"missing_equals", nil, []string{"novalue"}, ErrVariable},
		{"empty_key", nil, []string{"=x"}, ErrVariable},
		{"not_mapping", []string{bad}, nil, ErrVarsFile},
		{"missing_file", []string{filepath.Join(dir, "nope.yaml")}, nil, ErrVarsFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVars(tt.files, tt.pairs)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a.txt", "a")
	b := write(t, dir, "b.txt", "b")

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, y string
		want bool
	}{
		{a, a, true},
		{a, link, true},
		{a, b, false},
		{a, filepath.Join(dir, "new.txt"), false},
		{"-", "-", false},
	}

	for _, tt := range tests {
		if got := sameFile(tt.x, tt.y); got != tt.want {
			t.Errorf("sameFile(%s, %s): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestOutput_Discard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	out, err := createOutput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := out.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}

	out.Discard()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected partial output removed, got %v", err)
	}
}
