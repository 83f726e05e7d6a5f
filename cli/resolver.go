package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] reading YAML configuration.
//
// Settings are read from the mapping under the top-level key name, or from
// the whole document when that key is absent. Nested mappings join their
// keys with hyphens, and underscores match hyphens:
//
//	config:
//	  log:
//	    level: debug
//	  line_markers: true
//
// sets --log-level=debug and --line-markers. Command-line flags override
// configured values. A file that fails to parse configures nothing.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return config{}, nil //nolint:nilerr
		}

		if sub, ok := doc[name].(map[string]any); ok {
			doc = sub
		}

		cfg := make(config)
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over flattened flag names.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for key, val := range m {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := val.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(val)
	}
}

// scalar converts numbers to strings, which kong's mappers parse.
func scalar(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = scalar(e)
		}

		return out
	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
