package lang

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestGNUTarget(t *testing.T) {
	tests := []struct {
		in    target
		goarm string
		want  string
	}{
		{target{"linux", "amd64"}, "", "x86_64"},
		{target{"linux", "386"}, "", "i386"},
		{target{"linux", "arm64"}, "", "aarch64"},
		{target{"darwin", "arm64"}, "", "arm64"},
		{target{"linux", "arm"}, "7,softfloat", "armv7"},
		{target{"linux", "arm"}, "", "arm"},
		{target{"linux", "riscv64"}, "", "riscv64"},
	}

	for _, tt := range tests {
		t.Setenv("GOARM", tt.goarm)

		if got := gnuTarget(tt.in); got.Arch != tt.want || got.OS != tt.in.OS {
			t.Errorf("gnuTarget(%v): expected arch %q, got %v", tt.in, tt.want, got)
		}
	}
}

func TestHostPlatform_Override(t *testing.T) {
	t.Setenv("GOHOSTOS", "plan9")
	t.Setenv("GOHOSTARCH", "")
	os.Unsetenv("GOHOSTARCH")
	t.Setenv("GOARCH", "mips")

	if got := hostPlatform(); got != (target{"plan9", "mips"}) {
		t.Errorf("unexpected platform %v", got)
	}
}

func TestEnv_ProcessEnv(t *testing.T) {
	env := NewEnv(WithProcessEnv([]string{"CC=clang", "EMPTY=", "bogus"}))

	tests := []struct {
		source string
		want   string
	}{
		{`env("CC")`, "clang"},
		{`env("EMPTY")`, ""},
		{`env("HOME")`, ""},
	}

	for _, tt := range tests {
		got, err := Eval(tt.source, env)
		if err != nil {
			t.Fatalf("%s: %v", tt.source, err)
		}

		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.source, tt.want, got)
		}
	}
}

func TestBuiltinEnvLookup(t *testing.T) {
	if got := BuiltinEnvLookup("file"); !slices.Equal(got, []string{"exists", "isDir", "isRegular", "isSymlink"}) {
		t.Errorf("unexpected file members %v", got)
	}

	if got := BuiltinEnvLookup("path.cat"); got != nil {
		t.Errorf("expected nil for a function, got %v", got)
	}

	if got := BuiltinEnvLookup("nope"); got != nil {
		t.Errorf("expected nil for an unknown name, got %v", got)
	}

	t.Setenv("PREX_LOOKUP_TEST", "1")

	if got := BuiltinEnvLookup("env"); !slices.Contains(got, "PREX_LOOKUP_TEST") {
		t.Error("expected process environment names")
	}

	keys := BuiltinEnvKeys()
	for _, name := range []string{"env", "vars", "range", "mung"} {
		if !slices.Contains(keys, name) {
			t.Errorf("expected key %q", name)
		}
	}
}

func TestFileBuiltins(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	link := filepath.Join(dir, "l")

	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.Symlink(file, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	files := builtins()["file"].(map[string]any)
	isDir := files["isDir"].(func(string) bool)
	isRegular := files["isRegular"].(func(string) bool)
	isSymlink := files["isSymlink"].(func(string) bool)

	switch {
	case !fileExists(file) || fileExists(filepath.Join(dir, "missing")):
		t.Error("unexpected exists result")
	case !isDir(dir) || isDir(file):
		t.Error("unexpected isDir result")
	case !isRegular(file) || !isRegular(link) || isRegular(dir):
		t.Error("unexpected isRegular result")
	case !isSymlink(link) || isSymlink(file):
		t.Error("unexpected isSymlink result")
	}

	if got := pathRel(dir, file); got != "f.txt" {
		t.Errorf("expected f.txt, got %q", got)
	}
}
