package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/prex/engine"
)

type initCLI struct {
	Level string `default:"info" name:"log-level"`
	Empty string `name:"empty"`

	Render struct {
		LineMarkers bool        `name:"line-markers"`
		Mode        engine.Mode `name:"mode" default:"PRE"`
		VarsFile    []string    `name:"vars-file"`
	} `cmd:""`
	Init Init `cmd:""`
}

// initContext parses args against initCLI with the config file at path.
func initContext(t *testing.T, path string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{"create_new_config", false, false, nil},
		{"overwrite_existing_with_force", true, true, nil},
		{"fail_without_force", false, true, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config")

			if tt.exists {
				if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, path))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]map[string]any
			if err := yaml.Unmarshal(data, &doc); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, data)
			}

			cfg := doc[ConfigIdentifier]

			if cfg["log-level"] != "info" {
				t.Errorf("expected log-level %q, got %v", "info", cfg["log-level"])
			}

			if cfg["mode"] != "PRE" {
				t.Errorf("expected mode %q, got %v", "PRE", cfg["mode"])
			}

			if cfg["line-markers"] != false {
				t.Errorf("expected line-markers false, got %v", cfg["line-markers"])
			}

			for _, omitted := range []string{"empty", "vars-file", "help"} {
				if _, ok := cfg[omitted]; ok {
					t.Errorf("expected %s omitted, got %v", omitted, cfg[omitted])
				}
			}
		})
	}
}

func TestInit_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config")

	err := (&Init{}).Run(initContext(t, path))
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("expected ErrWriteConfig, got %v", err)
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   any
		wantOK bool
	}{
		{"nil", nil, nil, false},
		{"empty_string", "", "", false},
		{"string", "x", "x", true},
		{"bool", false, false, true},
		{"int", 3, 3, true},
		{"mode", engine.Directive, "PRE", true},
		{"empty_list", []string{}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := flagValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}

			if ok && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
