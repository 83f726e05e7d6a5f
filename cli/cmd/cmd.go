package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdio is the path naming stdin or stdout.
const stdio = "-"

// stdinName identifies stdin in diagnostics. Includes from stdin resolve
// against the working directory.
const stdinName = "<stdin>"

// openInput opens the template at path, or stdin for "-".
func openInput(path string) (r io.ReadCloser, name string, err error) {
	if path == stdio {
		return io.NopCloser(os.Stdin), stdinName, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", ErrOpenInput.Wrap(err).With(slog.String("path", path))
	}

	return f, path, nil
}

// output is a rendered destination. Discard removes a partially written
// file; it does nothing for stdout.
type output struct {
	io.Writer

	file *os.File
}

// createOutput creates the file at path, or returns stdout for "-".
func createOutput(path string) (*output, error) {
	if path == stdio {
		return &output{Writer: os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, ErrOpenOutput.Wrap(err).With(slog.String("path", path))
	}

	return &output{Writer: f, file: f}, nil
}

func (o *output) Close() error {
	if o.file == nil {
		return nil
	}

	return o.file.Close()
}

func (o *output) Discard() {
	if o.file == nil {
		return
	}

	_ = o.file.Close()
	_ = os.Remove(o.file.Name())
}

// fileKey uniquely identifies a file by its device and inode numbers, so
// symlinks and relative paths naming the same file compare equal.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey returns false if info carries no *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// keyOf resolves path to its fileKey.
func keyOf(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// sameFile reports whether a and b name the same existing file.
func sameFile(a, b string) bool {
	if a == stdio || b == stdio {
		return false
	}

	ka, ok := keyOf(a)
	if !ok {
		return false
	}

	kb, ok := keyOf(b)

	return ok && ka == kb
}

// parseVars builds template variables from YAML files and key=value pairs.
// Files are merged in order, each read once however often it is named.
// Pairs override file values and always bind strings.
func parseVars(files, pairs []string) (map[string]any, error) {
	vars := make(map[string]any)
	seen := make(map[fileKey]struct{})

	for _, path := range files {
		if key, ok := keyOf(path); ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		m, err := readVarsFile(path)
		if err != nil {
			return nil, err
		}

		maps.Copy(vars, m)
	}

	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		if key = strings.TrimSpace(key); !ok || key == "" {
			return nil, ErrVariable.
				With(slog.String("arg", pair)).
				Wrap(NewError("expected key=value"))
		}

		vars[key] = val
	}

	return vars, nil
}

func readVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrVarsFile.Wrap(err).With(slog.String("path", path))
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ErrVarsFile.Wrap(err).With(slog.String("path", path))
	}

	return m, nil
}
