// Package cli contains the command line interface for prex.
//
// # Usage
//
//	prex [flags] <input> <output> [key=value ...]
//	prex compile <input>
//	prex repl [key=value ...]
//	prex init [--force]
//
// Rendering is the default command, so "prex in.tpl out.c" renders in.tpl
// into out.c. Either path may be "-" for stdin or stdout.
//
// # Configuration
//
// Flag defaults are read from the user configuration directory
// (for example ~/.config/prex): "config" in YAML and "config.json" in JSON.
// "prex init" writes the current flag values to the YAML file:
//
//	config:
//	  log:
//	    level: debug
//	  line-markers: true
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, ...)
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize output
//
// # Profiling Options
//
// Available only when built with the pprof tag (go build -tags pprof):
//
//   - --pprof-mode: profile to record (cpu, heap, allocs, ...)
//   - --pprof-dir: output directory (default ~/.cache/prex/pprof)
package cli
