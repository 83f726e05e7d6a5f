// Package log provides structured logging for prex on top of [log/slog].
//
// A [Logger] is built from an immutable configuration set with functional
// options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Attributes are given as [slog.Attr] values. [Logger.With] returns a logger
// that adds them to every record, and [Logger.Wrap] derives a logger with a
// modified configuration.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug]. The template engine logs mode
// transitions and flushes at trace level, includes and dependency records at
// debug level.
//
// # Output
//
// [FormatText] (the default) and [FormatJSON] are written by the slog
// handlers, or by pretty handlers when [WithPretty] is set. Pretty records
// leave string values unquoted, indent JSON, and are colorized only when
// the output is a terminal. Timestamps use the layout given to
// [WithTimeLayout]; "none" omits them.
//
// # Default Logger
//
// Package-level functions ([Info], [DebugContext], ...) write to a default
// logger on stderr, reconfigured in place by [Config]. Functions without a
// context argument use [DefaultContextProvider].
package log
