package log

import (
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{" debug ", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"DEBUG+2", Level(-2)},
		{"verbose", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNames(t *testing.T) {
	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("unexpected levels %v", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("unexpected formats %v", got)
	}
}

func TestLevel_Label(t *testing.T) {
	if got := LevelTrace.label(); got != "TRACE" {
		t.Errorf("expected TRACE, got %q", got)
	}

	if got := Level(2).label(); got != "INFO+2" {
		t.Errorf("expected INFO+2, got %q", got)
	}
}

func TestTimeFormatter(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-05T14:07:09Z"},
		{"rfc-3339-nano", "2024-03-05T14:07:09.123456789Z"},
		{"Kitchen", "2:07PM"},
		{"ms", "Mar  5 14:07:09.123"},
		{"2006/01/02", "2024/03/05"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := timeFormatter(tt.layout)(ts); got != tt.want {
			t.Errorf("timeFormatter(%q): expected %q, got %q", tt.layout, tt.want, got)
		}
	}
}

func TestConfig_Options(t *testing.T) {
	c := makeConfig(nil,
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelDebug || c.format != FormatJSON || !c.caller || c.pretty {
		t.Errorf("options not applied: %+v", c)
	}

	if c.output == nil {
		t.Error("expected a discarding writer for nil output")
	}

	reset := c.with(WithDefaults(nil))
	if reset.level != DefaultLevel || reset.format != DefaultFormat || reset.pretty != DefaultPretty {
		t.Errorf("expected defaults, got %+v", reset)
	}

	if c.level != LevelDebug {
		t.Error("expected options to leave the original configuration unchanged")
	}
}
