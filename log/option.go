package log

import "io"

// Option modifies a logger configuration.
type Option func(*config)

// WithDefaults resets every setting to its default, writing to w.
func WithDefaults(w io.Writer) Option {
	return func(c *config) { *c = defaults(w) }
}

// WithOutput sets the destination of log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. The layout is either a name
// ("RFC3339", "Kitchen", "ms", ...) or a literal layout for
// [time.Time.Format]. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.formatTime = timeFormatter(layout) }
}

// WithCaller sets whether records include the source location of the call.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty sets whether records use the pretty handlers: unquoted text
// values, or indented JSON.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}
