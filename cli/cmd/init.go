package cmd

import (
	"context"
	"encoding"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/prex/log"
	"github.com/ardnew/prex/profile"
)

// defaultConfigIndent is the number of spaces per YAML indentation level.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		yaml.MapSlice{{Key: ConfigIdentifier, Value: i.settings(ktx)}},
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// settings collects the value of every configurable flag of every command,
// in model order. A flag name shared by several commands is written once.
func (i *Init) settings(ktx *kong.Context) yaml.MapSlice {
	var (
		out  yaml.MapSlice
		seen = make(map[string]bool)
	)

	ignore := []string{"help", "version", profile.Tag}

	var visit func(node *kong.Node)

	visit = func(node *kong.Node) {
		for _, flag := range node.Flags {
			if flag.Hidden || seen[flag.Name] ||
				slices.ContainsFunc(ignore, func(s string) bool {
					return strings.HasPrefix(flag.Name, s)
				}) {
				continue
			}

			seen[flag.Name] = true

			if v, ok := flagValue(ktx.FlagValue(flag)); ok {
				out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
			}
		}

		for _, child := range node.Children {
			visit(child)
		}
	}

	visit(ktx.Model.Node)

	return out
}

// flagValue converts a flag value to its YAML form. Unset values (nil, empty
// strings and empty lists) are omitted.
func flagValue(val any) (any, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false

	case string:
		return v, v != ""

	case encoding.TextMarshaler:
		text, err := v.MarshalText()

		return string(text), err == nil && len(text) > 0

	case []string:
		return v, len(v) > 0

	default:
		return v, true
	}
}
