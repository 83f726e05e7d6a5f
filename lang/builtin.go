package lang

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"
)

// builtinTable holds the process-wide builtin bindings. Host facts are read
// once, on first use.
//
//nolint:gochecknoglobals
var builtinTable = sync.OnceValue(func() map[string]any {
	platform := hostPlatform()

	return map[string]any{
		"range":    rangeFunc,
		"str":      Stringify,
		"buffer":   newBuffer,
		"toYAML":   toYAML,
		"fromYAML": fromYAML,
		"readFile": readFile,

		"target":   gnuTarget(platform),
		"platform": platform,
		"hostname": hostname(),
		"user":     currentUser(),
		"shell":    loginShell(),
		"cwd":      cwd,

		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     statIs(os.Stat, fs.FileMode.IsDir),
			"isRegular": statIs(os.Stat, fs.FileMode.IsRegular),
			"isSymlink": statIs(os.Lstat, func(m fs.FileMode) bool { return m&fs.ModeSymlink != 0 }),
		},

		"path": map[string]any{
			"abs":  pathAbs,
			"cat":  filepath.Join,
			"rel":  pathRel,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
		},

		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
})

// builtins returns a copy of the builtin bindings that the caller may extend.
func builtins() map[string]any { return maps.Clone(builtinTable()) }

// BuiltinEnvKeys returns the sorted top-level builtin names, including the
// per-environment names "env" and "vars".
func BuiltinEnvKeys() []string {
	keys := append(slices.Collect(maps.Keys(builtinTable())), "env", "vars")

	return slices.Sorted(slices.Values(keys))
}

// BuiltinEnvLookup returns the sorted member names of the builtin namespace
// at the dot-separated path, or nil when path does not name a namespace.
// The path "env" yields the names of the process environment variables.
func BuiltinEnvLookup(path string) []string {
	switch path {
	case "":
		return BuiltinEnvKeys()
	case "env":
		return slices.Sorted(maps.Keys(environMap(nil)))
	}

	var v any = builtinTable()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}

		v = m[seg]
	}

	if m, ok := v.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	return nil
}

// rangeFunc returns the integers from start up to (not including) stop,
// advancing by step. With one argument, start is zero. With two, step is one.
func rangeFunc(args ...any) ([]int, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("range: expected 1 to 3 arguments, got %d", len(args))
	}

	bounds := [3]int{0, 0, 1}
	at := bounds[:]

	if len(args) == 1 {
		at = bounds[1:]
	}

	for i, a := range args {
		n, ok := toInt(a)
		if !ok {
			return nil, fmt.Errorf("range: argument %d is %T, not an integer", i+1, a)
		}

		at[i] = n
	}

	start, stop, step := bounds[0], bounds[1], bounds[2]
	if step == 0 {
		return nil, errors.New("range: step must not be zero")
	}

	var seq []int

	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		seq = append(seq, i)
	}

	return seq, nil
}

// newBuffer returns an empty buffer usable as the output of an include.
func newBuffer() *bytes.Buffer { return new(bytes.Buffer) }

func toYAML(v any) (string, error) {
	b, err := yaml.Marshal(v)

	return string(b), err
}

func fromYAML(s string) (v any, err error) {
	err = yaml.Unmarshal([]byte(s), &v)

	return v, err
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)

	return string(b), err
}

// target names an operating system and instruction set architecture.
type target struct {
	OS   string
	Arch string
}

// hostPlatform returns the host in Go naming (linux/amd64). GOHOSTOS and
// GOOS override the detected OS, GOHOSTARCH and GOARCH the architecture.
func hostPlatform() target {
	return target{
		OS:   firstEnv(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: firstEnv(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

// gnuArch maps Go architecture names to GCC/LLVM triple names that differ.
var gnuArch = map[string]string{
	"386":    "i386",
	"amd64":  "x86_64",
	"arm64":  "aarch64",
	"mipsle": "mipsel",
}

// gnuTarget converts p to GCC/LLVM naming (linux/x86_64).
func gnuTarget(p target) target {
	switch {
	case p.Arch == "arm":
		// GOARM=7 or GOARM=7,softfloat
		v, _, _ := strings.Cut(os.Getenv("GOARM"), ",")
		if v = strings.TrimSpace(v); v >= "5" && v <= "7" && len(v) == 1 {
			p.Arch = "armv" + v
		}

	case p.Arch == "arm64" && p.OS == "darwin":
		// Apple toolchains keep arm64.

	case gnuArch[p.Arch] != "":
		p.Arch = gnuArch[p.Arch]
	}

	return p
}

// firstEnv returns the value of the first set environment variable among
// keys, or fallback.
func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			return v
		}
	}

	return fallback
}

func hostname() string {
	h, _ := os.Hostname()

	return h
}

func currentUser() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
}

// loginShell returns $SHELL, or the current user's shell from /etc/passwd.
func loginShell() string {
	if sh, ok := os.LookupEnv("SHELL"); ok {
		return sh
	}

	u := currentUser()
	if u == nil {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		// name:passwd:uid:gid:gecos:home:shell
		fields := strings.Split(s.Text(), ":")
		if len(fields) == 7 && fields[0] == u.Username {
			return fields[6]
		}
	}

	return ""
}

func cwd() string {
	if dir, err := os.Getwd(); err == nil {
		return dir
	}

	return pathAbs(".")
}

// fileExists reports whether path can be stat'ed or fails for a reason
// other than not existing.
func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !errors.Is(err, fs.ErrNotExist)
}

// statIs returns a predicate testing the mode of a path with stat.
func statIs(
	stat func(string) (fs.FileInfo, error),
	is func(fs.FileMode) bool,
) func(string) bool {
	return func(path string) bool {
		info, err := stat(path)

		return err == nil && is(info.Mode())
	}
}

func pathAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

// pathRel returns to relative to from, both made absolute first. When no
// relative path exists it returns the two joined.
func pathRel(from, to string) string {
	rel, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return rel
}

// mungPrefix prepends prefix items to the path list in environment variable
// key, removing duplicates.
func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// mungPrefixIf is mungPrefix keeping only the items accepted by predicate.
func mungPrefixIf(key string, predicate func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// environMap splits "KEY=VALUE" entries into a map. A nil list reads the
// process environment.
func environMap(environ []string) map[string]string {
	if environ == nil {
		environ = os.Environ()
	}

	m := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}

// envFunc returns the env builtin, looking names up in environ.
func envFunc(environ map[string]string) func(string) string {
	return func(key string) string { return environ[key] }
}
